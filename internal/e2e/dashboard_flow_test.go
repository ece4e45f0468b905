package e2e

import (
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vendascope/vendascope/internal/app"
	"github.com/vendascope/vendascope/internal/auth"
	"github.com/vendascope/vendascope/internal/charts"
	"github.com/vendascope/vendascope/internal/dashboard"
	dashhttp "github.com/vendascope/vendascope/internal/dashboard/http"
	"github.com/vendascope/vendascope/internal/observability"
	"github.com/vendascope/vendascope/internal/salesapi"
	"github.com/vendascope/vendascope/internal/view"
)

type lineRenderer struct{}

func (lineRenderer) Line(width, height int, series []float64, labels []string, opts charts.LineOpts) (template.HTML, error) {
	return charts.Line(width, height, series, labels, opts)
}

type barRenderer struct{}

func (barRenderer) Bars(width, height int, series []float64, labels []string, opts charts.BarOpts) (template.HTML, error) {
	return charts.Bars(width, height, series, labels, opts)
}

// newUpstream fakes the remote vendas API.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /vendas", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "v-1", "produto": "Caneta", "quantidade": 2, "data": "2024-01-01", "valor": 10.0},
			{"id": "v-2", "produto": "Caderno", "quantidade": 1, "data": "2024-01-02", "valor": 25.0},
		})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["senha"] != "s3nh4-forte" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detalhe": "credenciais inválidas"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "jwt-e2e"})
	})
	return httptest.NewServer(mux)
}

func newRouter(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 10 * time.Second}

	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	metrics := observability.NewMetrics()
	tokens := salesapi.NewRedisTokenStore(redisClient, time.Hour)
	client := salesapi.NewClient(upstreamURL, tokens, logger, salesapi.WithObserver(metrics.ObserveRemoteRequest))
	cache := dashboard.NewCache(redisClient, time.Minute)
	service := dashboard.NewService(client, cache)
	controller := dashboard.NewController(service, logger, dashboard.WithStaleObserver(metrics.ObserveStaleFetch))

	return app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		AuthHandler:      auth.NewHandler(logger, client, templates),
		DashboardHandler: dashhttp.NewHandler(logger, controller, service, templates, lineRenderer{}, barRenderer{}),
		Metrics:          metrics,
	})
}

func TestLoginThenDashboardFlow(t *testing.T) {
	upstream := newUpstream(t)
	defer upstream.Close()
	router := newRouter(t, upstream.URL)

	loginBody := strings.NewReader("email=gestor%40empresa.com&senha=s3nh4-forte")
	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", loginBody)
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRR := httptest.NewRecorder()
	router.ServeHTTP(loginRR, loginReq)
	if loginRR.Code != http.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d: %s", loginRR.Code, loginRR.Body.String())
	}

	dashRR := httptest.NewRecorder()
	router.ServeHTTP(dashRR, httptest.NewRequest(http.MethodGet, "/dashboard?dataInicio=2024-01-01&dataFim=2024-01-31", nil))
	if dashRR.Code != http.StatusOK {
		t.Fatalf("expected dashboard 200, got %d: %s", dashRR.Code, dashRR.Body.String())
	}
	body := dashRR.Body.String()
	if !strings.Contains(body, "Caneta") || !strings.Contains(body, "<svg") {
		t.Fatalf("expected rendered dashboard with charts, got: %s", body)
	}
}

func TestAPIAndCSVShareCache(t *testing.T) {
	upstream := newUpstream(t)
	defer upstream.Close()
	router := newRouter(t, upstream.URL)

	apiRR := httptest.NewRecorder()
	router.ServeHTTP(apiRR, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if apiRR.Code != http.StatusOK {
		t.Fatalf("expected api 200, got %d: %s", apiRR.Code, apiRR.Body.String())
	}
	if !strings.Contains(apiRR.Body.String(), "por_dia") {
		t.Fatalf("expected aggregate series in JSON: %s", apiRR.Body.String())
	}

	csvRR := httptest.NewRecorder()
	router.ServeHTTP(csvRR, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
	if csvRR.Code != http.StatusOK {
		t.Fatalf("expected csv 200, got %d", csvRR.Code)
	}
	if !strings.Contains(csvRR.Body.String(), "Caneta,2") {
		t.Fatalf("unexpected csv body: %s", csvRR.Body.String())
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	upstream := newUpstream(t)
	defer upstream.Close()
	router := newRouter(t, upstream.URL)

	healthRR := httptest.NewRecorder()
	router.ServeHTTP(healthRR, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if healthRR.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", healthRR.Code)
	}

	dashRR := httptest.NewRecorder()
	router.ServeHTTP(dashRR, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if dashRR.Code != http.StatusOK {
		t.Fatalf("expected dashboard 200, got %d", dashRR.Code)
	}

	metricsRR := httptest.NewRecorder()
	router.ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if metricsRR.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", metricsRR.Code)
	}
	if !strings.Contains(metricsRR.Body.String(), "vendascope_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
