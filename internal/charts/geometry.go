package charts

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// plot holds the shared viewport math for both renderers.
type plot struct {
	width   int
	height  int
	padding float64
	chartW  float64
	chartH  float64
	minVal  float64
	maxVal  float64
}

func newPlot(width, height int, padding float64, series []float64) (plot, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	p := plot{
		width:   width,
		height:  height,
		padding: padding,
		chartW:  float64(width) - 2*padding,
		chartH:  float64(height) - 2*padding,
	}
	if p.chartW <= 0 || p.chartH <= 0 {
		return plot{}, fmt.Errorf("charts: viewport too small")
	}
	p.minVal, p.maxVal = bounds(series)
	// Charts always anchor the value axis at zero.
	if p.minVal > 0 {
		p.minVal = 0
	}
	if p.maxVal < 0 {
		p.maxVal = 0
	}
	if almostEqual(p.maxVal, p.minVal) {
		p.maxVal = p.minVal + 1
	}
	return p, nil
}

func (p plot) scale() float64 { return p.chartH / (p.maxVal - p.minVal) }

// y maps a value onto the vertical pixel axis.
func (p plot) y(value float64) float64 {
	return p.padding + p.chartH - (value-p.minVal)*p.scale()
}

func (p plot) bottom() float64 { return p.padding + p.chartH }

// writeGrid emits horizontal grid lines with tick labels.
func (p plot) writeGrid(b *strings.Builder, tickCount int, gridColor, axisColor string) {
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		value := p.minVal + (p.maxVal-p.minVal)*ratio
		y := p.padding + p.chartH - ratio*p.chartH
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", p.padding, y, p.padding+p.chartW, y, gridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", p.padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value)))
	}
}

// writeAxes emits the value and category axes.
func (p plot) writeAxes(b *strings.Builder, axisColor string) {
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-label=\"Eixos\">", axisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", p.padding, p.padding, p.padding, p.bottom())
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", p.padding, p.y(0), p.padding+p.chartW, p.y(0))
	b.WriteString("</g>")
}

func (p plot) openSVG(b *strings.Builder, title, desc, defaultTitle, defaultDesc, idSuffix string) {
	titleID := makeID(title, idSuffix+"-title")
	descID := makeID(title, idSuffix+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", p.width, p.height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(desc, defaultDesc)))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}
