package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders an SVG line chart for the given series and labels.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("charts: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("charts: labels length must match series")
	}

	p, err := newPlot(width, height, opts.Padding, series)
	if err != nil {
		return "", err
	}

	strokeColor := fallback(opts.StrokeColor, "#2563eb")
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")

	step := 0.0
	if len(series) > 1 {
		step = p.chartW / float64(len(series)-1)
	}
	pointX := func(i int) float64 {
		if len(series) > 1 {
			return p.padding + float64(i)*step
		}
		return p.padding + p.chartW/2
	}

	var path strings.Builder
	for i, value := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, pointX(i), p.y(value))
	}

	var b strings.Builder
	p.openSVG(&b, opts.Title, opts.Description, "Gráfico de linha", "Valor vendido por dia", "line")
	p.writeGrid(&b, opts.TickCount, gridColor, axisColor)
	p.writeAxes(&b, axisColor)

	if fillColor != "" {
		area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path.String(), pointX(len(series)-1), p.bottom(), pointX(0), p.bottom())
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fillColor)
	}

	fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path.String(), strokeColor)

	if opts.ShowDots {
		for i, value := range series {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"></circle>", pointX(i), p.y(value), strokeColor)
		}
	}

	for i, label := range labels {
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", pointX(i), p.bottom()+14, axisColor, template.HTMLEscapeString(label))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
