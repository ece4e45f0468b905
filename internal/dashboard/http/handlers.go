// Package dashhttp serves the dashboard pages, the JSON snapshot endpoint and
// the CSV export.
package dashhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/dashboard/export"
	"github.com/vendascope/vendascope/internal/dashboard/ui"
	"github.com/vendascope/vendascope/internal/platform/httpx"
	"github.com/vendascope/vendascope/internal/salesapi"
	"github.com/vendascope/vendascope/internal/view"
)

const defaultRequestTimeout = 10 * time.Second

// OverviewService is the slice of the dashboard service the export and API
// endpoints read from.
type OverviewService interface {
	Overview(ctx context.Context, filter salesapi.Filter) (dashboard.Overview, error)
	Invalidate(ctx context.Context) error
}

// Handler coordinates HTTP requests for the sales dashboard.
type Handler struct {
	logger    *slog.Logger
	ctrl      *dashboard.Controller
	svc       OverviewService
	templates *view.Engine
	line      ui.LineRenderer
	bar       ui.BarRenderer
	csvPool   sync.Pool
	timeout   time.Duration
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, ctrl *dashboard.Controller, svc OverviewService, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer) *Handler {
	h := &Handler{
		logger:    logger,
		ctrl:      ctrl,
		svc:       svc,
		templates: templates,
		line:      line,
		bar:       bar,
		timeout:   defaultRequestTimeout,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithTimeout sets the per-request deadline applied before calling the
// controller or the service.
func (h *Handler) WithTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	form, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap := h.ctrl.Refresh(ctx, filter)
	snap = h.applyLookup(ctx, r, snap)

	if snap.Phase == dashboard.PhaseFailed {
		h.renderErrorPage(w, r, snap.Err)
		return
	}

	vm, err := h.buildViewModel(form, filter, snap)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	viewData := view.TemplateData{
		Title:       "Dashboard de Vendas",
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

// applyLookup drives the by-id sub-state from the venda_id query parameter.
// An absent parameter leaves the current lookup untouched, a blank one clears
// it, anything else starts a new lookup.
func (h *Handler) applyLookup(ctx context.Context, r *http.Request, snap dashboard.Snapshot) dashboard.Snapshot {
	if !r.URL.Query().Has("venda_id") {
		return snap
	}
	id := strings.TrimSpace(r.URL.Query().Get("venda_id"))
	if id == "" {
		return h.ctrl.ClearLookup()
	}
	return h.ctrl.Lookup(ctx, id)
}

func (h *Handler) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	_, filter, err := h.parseFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Parâmetro inválido", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap := h.ctrl.Refresh(ctx, filter)
	snap = h.applyLookup(ctx, r, snap)

	status := http.StatusOK
	if snap.Phase == dashboard.PhaseFailed && snap.Err != nil {
		status = statusForKind(snap.Err.Kind)
	}
	httpx.JSON(w, status, snap)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	_, filter, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	overview, err := h.svc.Overview(ctx, filter)
	if err != nil {
		h.logError("load overview", err)
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteProductTotalsCSV(buf, overview.ByProduct); err != nil {
		h.handleServerError(w, "write product csv", err)
		return
	}
	buf.WriteString("\n")
	if err := export.WriteDayTotalsCSV(buf, overview.ByDay); err != nil {
		h.handleServerError(w, "write day csv", err)
		return
	}

	filename := fmt.Sprintf("vendas-%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.Invalidate(ctx); err != nil {
		h.handleServerError(w, "invalidate cache", err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) parseFilters(r *http.Request) (ui.FilterForm, salesapi.Filter, error) {
	form := ui.FilterForm{
		DataInicio: strings.TrimSpace(r.URL.Query().Get("dataInicio")),
		DataFim:    strings.TrimSpace(r.URL.Query().Get("dataFim")),
	}

	var filter salesapi.Filter
	if form.DataInicio != "" {
		from, err := salesapi.ParseDate(form.DataInicio)
		if err != nil {
			return form, salesapi.Filter{}, validationError{field: "dataInicio"}
		}
		filter.From = from
	}
	if form.DataFim != "" {
		to, err := salesapi.ParseDate(form.DataFim)
		if err != nil {
			return form, salesapi.Filter{}, validationError{field: "dataFim"}
		}
		filter.To = to
	}
	// Chronological order is not checked here; the remote API owns the
	// filtering semantics and decides what an inverted range means.
	return form, filter, nil
}

func (h *Handler) handleFilterError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr validationError
	if errors.As(err, &vErr) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		h.renderError(w, r, fmt.Sprintf("Parâmetro %s inválido. Use datas no formato AAAA-MM-DD.", vErr.field))
		return
	}
	h.handleServerError(w, "parse filters", err)
}

func (h *Handler) renderErrorPage(w http.ResponseWriter, r *http.Request, info *dashboard.ErrorInfo) {
	message := "Não foi possível carregar as vendas."
	status := http.StatusBadGateway
	if info != nil {
		message = info.Message
		status = statusForKind(info.Kind)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	h.renderError(w, r, message)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, message string) {
	viewData := view.TemplateData{
		Title:       "Erro",
		CurrentPath: r.URL.Path,
		Data:        map[string]any{"Message": message},
	}
	if err := h.templates.Render(w, "pages/error.html", viewData); err != nil {
		h.logError("render error page", err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func statusForKind(kind salesapi.Kind) int {
	switch kind {
	case salesapi.KindValidation:
		return http.StatusBadRequest
	case salesapi.KindAPI, salesapi.KindDecode:
		return http.StatusBadGateway
	case salesapi.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}

// HandleDashboardForTest exposes the dashboard handler for tests.
func (h *Handler) HandleDashboardForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDashboard(w, r)
}

// HandleCSVForTest exposes the CSV handler for tests.
func (h *Handler) HandleCSVForTest(w http.ResponseWriter, r *http.Request) { h.handleCSV(w, r) }

// HandleAPIForTest exposes the JSON handler for tests.
func (h *Handler) HandleAPIForTest(w http.ResponseWriter, r *http.Request) { h.handleAPIDashboard(w, r) }
