// Package charts renders the dashboard's SVG visualisations server-side.
package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a single-series bar chart, one bar per label.
func Bars(width, height int, series []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("charts: series required")
	}
	if len(labels) != len(series) {
		return "", fmt.Errorf("charts: labels length must match series")
	}

	p, err := newPlot(width, height, opts.Padding, series)
	if err != nil {
		return "", err
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	barColor := fallback(opts.BarColor, "#0ea5e9")
	seriesLabel := fallback(opts.SeriesLabel, "Quantidade")

	groupWidth := p.chartW / float64(len(labels))
	barWidth := groupWidth * 0.6

	var b strings.Builder
	p.openSVG(&b, opts.Title, opts.Description, "Gráfico de barras", "Quantidade vendida por produto", "bar")
	p.writeGrid(&b, opts.TickCount, gridColor, axisColor)
	p.writeAxes(&b, axisColor)

	zeroY := p.y(0)
	for i, label := range labels {
		value := series[i]
		x := p.padding + float64(i)*groupWidth + (groupWidth-barWidth)/2
		top := p.y(value)
		barH := zeroY - top
		if value < 0 {
			top = zeroY
			barH = -barH
		}
		if barH < 0 {
			barH = 0
		}
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>",
			x, top, barWidth, barH, barColor,
			template.HTMLEscapeString(seriesLabel), template.HTMLEscapeString(label))
		center := p.padding + float64(i)*groupWidth + groupWidth/2
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>",
			center, p.bottom()+14, axisColor, template.HTMLEscapeString(label))
	}

	// Legend
	legendY := p.padding - 12
	if legendY < 12 {
		legendY = 12
	}
	fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", p.padding, legendY-8, barColor)
	fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", p.padding+14, legendY, axisColor, template.HTMLEscapeString(seriesLabel))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
