// Package export serialises dashboard aggregates for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vendascope/vendascope/internal/dashboard"
)

// WriteProductTotalsCSV emits the quantity-per-product series.
func WriteProductTotalsCSV(w io.Writer, totals []dashboard.ProductTotal) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Produto", "Quantidade"}); err != nil {
		return err
	}
	for _, total := range totals {
		if err := writer.Write([]string{total.Product, strconv.FormatInt(total.Quantity, 10)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDayTotalsCSV emits the value-per-day series.
func WriteDayTotalsCSV(w io.Writer, totals []dashboard.DayTotal) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Data", "Valor"}); err != nil {
		return err
	}
	for _, total := range totals {
		if err := writer.Write([]string{total.Date.String(), formatFloat(total.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
