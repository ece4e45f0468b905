package report

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/platform/httpx"
	"github.com/vendascope/vendascope/internal/salesapi"
)

// OverviewSource supplies the aggregated sales data for the PDF report.
type OverviewSource interface {
	Overview(ctx context.Context, filter salesapi.Filter) (dashboard.Overview, error)
}

// Handler manages report endpoints.
type Handler struct {
	client    *Client
	overviews OverviewSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates a report handler.
func NewHandler(client *Client, overviews OverviewSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, overviews: overviews, logger: logger, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/vendas.pdf", h.vendasPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) vendasPDF(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Parâmetro inválido", err.Error())
		return
	}

	overview, err := h.overviews.Overview(r.Context(), filter)
	if err != nil {
		h.logger.Error("load overview for report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), BuildReportHTML(overview, filter, h.now()))
	if err != nil {
		h.logger.Error("render sales report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "relatorio-vendas.pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func parseFilter(r *http.Request) (salesapi.Filter, error) {
	var filter salesapi.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("dataInicio")); raw != "" {
		from, err := salesapi.ParseDate(raw)
		if err != nil {
			return salesapi.Filter{}, fmt.Errorf("dataInicio inválida: %s", raw)
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("dataFim")); raw != "" {
		to, err := salesapi.ParseDate(raw)
		if err != nil {
			return salesapi.Filter{}, fmt.Errorf("dataFim inválida: %s", raw)
		}
		filter.To = to
	}
	return filter, nil
}

// BuildReportHTML assembles the printable sales summary.
func BuildReportHTML(overview dashboard.Overview, filter salesapi.Filter, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><title>Relatório de Vendas</title></head><body>")
	b.WriteString("<h1>Relatório de Vendas</h1>")
	b.WriteString("<p>Gerado em " + generatedAt.Format("02/01/2006 15:04") + "</p>")
	if !filter.From.IsZero() || !filter.To.IsZero() {
		b.WriteString("<p>Período: " + html.EscapeString(filter.From.String()) + " a " + html.EscapeString(filter.To.String()) + "</p>")
	}

	b.WriteString("<h2>Quantidade por produto</h2><table border=\"1\" cellspacing=\"0\" cellpadding=\"4\">")
	b.WriteString("<tr><th>Produto</th><th>Quantidade</th></tr>")
	for _, total := range overview.ByProduct {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(total.Product), total.Quantity))
	}
	b.WriteString("</table>")

	b.WriteString("<h2>Valor por dia</h2><table border=\"1\" cellspacing=\"0\" cellpadding=\"4\">")
	b.WriteString("<tr><th>Data</th><th>Valor</th></tr>")
	for _, total := range overview.ByDay {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>R$ %.2f</td></tr>", total.Date.String(), total.Value))
	}
	b.WriteString("</table>")

	b.WriteString(fmt.Sprintf("<p>%d vendas no período.</p>", len(overview.Records)))
	b.WriteString("</body></html>")
	return b.String()
}
