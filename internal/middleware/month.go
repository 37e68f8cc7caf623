package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// Month is a validated month filter
type Month struct {
	Name   string // e.g. "March"
	Number string // zero-padded, e.g. "03"
}

type monthContextKey struct{}

var monthNumbers = map[string]string{
	"January":   "01",
	"February":  "02",
	"March":     "03",
	"April":     "04",
	"May":       "05",
	"June":      "06",
	"July":      "07",
	"August":    "08",
	"September": "09",
	"October":   "10",
	"November":  "11",
	"December":  "12",
}

// ParseMonth looks up a case-sensitive English month name
func ParseMonth(name string) (Month, bool) {
	number, ok := monthNumbers[name]
	if !ok {
		return Month{}, false
	}
	return Month{Name: name, Number: number}, true
}

// RequireMonth validates the "month" query parameter. Requests without a
// recognized month name are rejected with 400 before reaching next.
func RequireMonth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		month, ok := ParseMonth(r.URL.Query().Get("month"))
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Invalid month. Please provide a valid month name (January to December).",
			})
			return
		}

		ctx := context.WithValue(r.Context(), monthContextKey{}, month)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MonthFromContext returns the month stored by RequireMonth
func MonthFromContext(ctx context.Context) (Month, bool) {
	month, ok := ctx.Value(monthContextKey{}).(Month)
	return month, ok
}
