package dashhttp

import (
	"fmt"
	"html/template"

	"github.com/vendascope/vendascope/internal/charts"
	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/dashboard/ui"
	"github.com/vendascope/vendascope/internal/salesapi"
)

func (h *Handler) buildViewModel(form ui.FilterForm, filter salesapi.Filter, snap dashboard.Snapshot) (ui.DashboardViewModel, error) {
	if h.line == nil || h.bar == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}

	vm := ui.DashboardViewModel{
		Filters:     form,
		Records:     ui.ToRecordRows(snap.Overview.Records),
		Lookup:      ui.ToLookupView(snap.Lookup),
		ExportQuery: template.URL(filter.Values().Encode()),
	}
	for _, record := range snap.Overview.Records {
		vm.TotalQuantity += record.Quantity
		vm.TotalValue += record.Value
	}
	vm.HasRecords = len(vm.Records) > 0
	if !vm.HasRecords {
		return vm, nil
	}

	barLabels := make([]string, 0, len(snap.Overview.ByProduct))
	barSeries := make([]float64, 0, len(snap.Overview.ByProduct))
	for _, total := range snap.Overview.ByProduct {
		barLabels = append(barLabels, total.Product)
		barSeries = append(barSeries, float64(total.Quantity))
	}
	barSVG, err := h.bar.Bars(charts.DefaultWidth, charts.DefaultHeight, barSeries, barLabels, charts.BarOpts{
		Title:       "Quantidade vendida por produto",
		Description: "Total de unidades vendidas para cada produto no período",
		SeriesLabel: "Quantidade",
	})
	if err != nil {
		return ui.DashboardViewModel{}, err
	}
	vm.BarSVG = barSVG

	lineLabels := make([]string, 0, len(snap.Overview.ByDay))
	lineSeries := make([]float64, 0, len(snap.Overview.ByDay))
	for _, total := range snap.Overview.ByDay {
		lineLabels = append(lineLabels, total.Date.String())
		lineSeries = append(lineSeries, total.Value)
	}
	lineSVG, err := h.line.Line(charts.DefaultWidth, charts.DefaultHeight, lineSeries, lineLabels, charts.LineOpts{
		Title:       "Valor vendido por dia",
		Description: "Soma do valor das vendas em cada dia do período",
		ShowDots:    true,
	})
	if err != nil {
		return ui.DashboardViewModel{}, err
	}
	vm.LineSVG = lineSVG

	return vm, nil
}
