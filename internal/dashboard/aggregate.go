package dashboard

import (
	"sort"

	"github.com/vendascope/vendascope/internal/salesapi"
)

// UnknownProduct labels records whose product name is missing.
const UnknownProduct = "Desconhecido"

// ProductTotal is the cumulative quantity sold for one product.
type ProductTotal struct {
	Product  string `json:"produto"`
	Quantity int64  `json:"quantidade"`
}

// DayTotal is the cumulative value sold on one calendar day.
type DayTotal struct {
	Date  salesapi.Date `json:"data"`
	Value float64       `json:"valor"`
}

// AggregateByProduct sums quantity sold per product in a single pass. Entries
// keep the order in which each product first appears, which is also the label
// order on the bar chart. Records without a product name are bucketed under
// UnknownProduct. Zero quantities contribute zero, they are not errors.
func AggregateByProduct(records []salesapi.SaleRecord) []ProductTotal {
	totals := make([]ProductTotal, 0, len(records))
	index := make(map[string]int, len(records))
	for _, record := range records {
		product := record.Product
		if product == "" {
			product = UnknownProduct
		}
		at, seen := index[product]
		if !seen {
			index[product] = len(totals)
			totals = append(totals, ProductTotal{Product: product})
			at = len(totals) - 1
		}
		totals[at].Quantity += record.Quantity
	}
	return totals
}

// AggregateByDay sums total value per calendar day and returns the series
// sorted ascending by date. Grouping merges duplicate dates, so the output
// never contains ties.
func AggregateByDay(records []salesapi.SaleRecord) []DayTotal {
	totals := make([]DayTotal, 0, len(records))
	index := make(map[string]int, len(records))
	for _, record := range records {
		key := record.Date.String()
		at, seen := index[key]
		if !seen {
			index[key] = len(totals)
			totals = append(totals, DayTotal{Date: record.Date})
			at = len(totals) - 1
		}
		totals[at].Value += record.Value
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date.Before(totals[j].Date) })
	return totals
}
