// Package observability exposes Prometheus metrics for the dashboard service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	remoteRequests  *prometheus.HistogramVec
	staleFetches    *prometheus.CounterVec
	jobsTotal       *prometheus.CounterVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendascope_http_requests_total",
		Help: "Número de requisições HTTP por rota e status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendascope_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP por rota.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	remote := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendascope_remote_request_duration_seconds",
		Help:    "Duração das chamadas à API de vendas por endpoint e resultado.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendascope_stale_fetches_total",
		Help: "Resultados de busca descartados por terem sido superados.",
	}, []string{"view"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vendascope_jobs_total",
		Help: "Execuções de tarefas em segundo plano por tipo e resultado.",
	}, []string{"task", "outcome"})
	registry.MustRegister(requests, duration, remote, stale, jobs)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		remoteRequests:  remote,
		staleFetches:    stale,
		jobsTotal:       jobs,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveRemoteRequest records one call against the vendas API. It satisfies
// the salesapi request observer contract.
func (m *Metrics) ObserveRemoteRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(endpoint, outcome).Observe(elapsed.Seconds())
}

// ObserveStaleFetch counts a discarded superseded fetch for the given view.
func (m *Metrics) ObserveStaleFetch(view string) {
	if m == nil {
		return
	}
	m.staleFetches.WithLabelValues(view).Inc()
}

// ObserveJob counts one background task execution.
func (m *Metrics) ObserveJob(task, outcome string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(task, outcome).Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
