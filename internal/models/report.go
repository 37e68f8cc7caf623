package models

import "encoding/json"

// Statistics is the per-month sales summary
type Statistics struct {
	TotalSaleAmount   float64 `json:"totalSaleAmount"`
	TotalSoldItems    int64   `json:"totalSoldItems"`
	TotalNotSoldItems int64   `json:"totalNotSoldItems"`
}

// PriceRangeCount is one bar of the price histogram
type PriceRangeCount struct {
	PriceRange string `json:"priceRange"`
	ItemCount  int64  `json:"itemCount"`
}

// CategoryCount is one slice of the category pie chart
type CategoryCount struct {
	Category  string `json:"category"`
	ItemCount int64  `json:"itemCount"`
}

// CombinedData holds the three report bodies exactly as the report
// endpoints returned them
type CombinedData struct {
	Statistics json.RawMessage `json:"statistics"`
	BarChart   json.RawMessage `json:"barChart"`
	PieChart   json.RawMessage `json:"pieChart"`
}

// SeedResult describes a successful database initialization
type SeedResult struct {
	Message       string `json:"message"`
	RunID         string `json:"runId"`
	Inserted      int    `json:"inserted"`
	TotalProducts int64  `json:"totalProducts"`
}
