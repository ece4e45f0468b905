// Package ui defines the view-model contract between the dashboard state and
// the HTML templates.
package ui

import (
	"html/template"

	"github.com/vendascope/vendascope/internal/charts"
	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/salesapi"
)

// FilterForm echoes the raw date inputs back into the filter panel.
type FilterForm struct {
	DataInicio string
	DataFim    string
}

// RecordRow is one sale record prepared for the records table.
type RecordRow struct {
	ID       string
	Product  string
	Quantity int64
	Date     salesapi.Date
	Value    float64
}

// LookupView is the single-record lookup section.
type LookupView struct {
	Phase    dashboard.LookupPhase
	ID       string
	Record   *RecordRow
	ErrorMsg string
}

// DashboardViewModel combines everything the dashboard page renders.
type DashboardViewModel struct {
	Filters       FilterForm
	Records       []RecordRow
	TotalQuantity int64
	TotalValue    float64
	BarSVG        template.HTML
	LineSVG       template.HTML
	Lookup        LookupView
	HasRecords    bool
	ExportQuery   template.URL
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts charts.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, series []float64, labels []string, opts charts.BarOpts) (template.HTML, error)
}

// ToRecordRows converts sale records into table rows.
func ToRecordRows(records []salesapi.SaleRecord) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, RecordRow{
			ID:       record.ID,
			Product:  record.Product,
			Quantity: record.Quantity,
			Date:     record.Date,
			Value:    record.Value,
		})
	}
	return rows
}

// ToLookupView converts the lookup sub-state for rendering.
func ToLookupView(snap dashboard.LookupSnapshot) LookupView {
	view := LookupView{Phase: snap.Phase, ID: snap.ID}
	if snap.Record != nil {
		row := RecordRow{
			ID:       snap.Record.ID,
			Product:  snap.Record.Product,
			Quantity: snap.Record.Quantity,
			Date:     snap.Record.Date,
			Value:    snap.Record.Value,
		}
		view.Record = &row
	}
	if snap.Err != nil {
		view.ErrorMsg = snap.Err.Message
	}
	return view
}
