package models

// Product is a single sale transaction loaded from the seed feed.
// Column names match the products table schema, including the camel-cased
// dateOfSale column.
type Product struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Title       string  `gorm:"column:title" json:"title"`
	Price       float64 `gorm:"column:price" json:"price"`
	Description string  `gorm:"column:description" json:"description"`
	Category    string  `gorm:"column:category" json:"category"`
	Image       string  `gorm:"column:image" json:"image"`
	Sold        bool    `gorm:"column:sold" json:"sold"`
	DateOfSale  string  `gorm:"column:dateOfSale" json:"dateOfSale"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}
