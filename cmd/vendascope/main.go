package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/vendascope/vendascope/internal/app"
	"github.com/vendascope/vendascope/internal/auth"
	"github.com/vendascope/vendascope/internal/charts"
	"github.com/vendascope/vendascope/internal/dashboard"
	dashhttp "github.com/vendascope/vendascope/internal/dashboard/http"
	"github.com/vendascope/vendascope/internal/observability"
	"github.com/vendascope/vendascope/internal/salesapi"
	"github.com/vendascope/vendascope/internal/view"
	"github.com/vendascope/vendascope/jobs"
	"github.com/vendascope/vendascope/report"
)

type lineRenderer struct{}

func (lineRenderer) Line(width, height int, series []float64, labels []string, opts charts.LineOpts) (template.HTML, error) {
	return charts.Line(width, height, series, labels, opts)
}

type barRenderer struct{}

func (barRenderer) Bars(width, height int, series []float64, labels []string, opts charts.BarOpts) (template.HTML, error) {
	return charts.Bars(width, height, series, labels, opts)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	tokens := salesapi.NewRedisTokenStore(redisClient, cfg.TokenTTL)
	client := salesapi.NewClient(cfg.VendasAPIURL, tokens, logger,
		salesapi.WithTimeout(cfg.VendasAPITimeout),
		salesapi.WithObserver(metrics.ObserveRemoteRequest),
	)

	cache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	service := dashboard.NewService(client, cache)
	controller := dashboard.NewController(service, logger,
		dashboard.WithStaleObserver(metrics.ObserveStaleFetch),
	)

	go func() {
		if err := cache.ListenForInvalidation(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}()

	dashboardHandler := dashhttp.NewHandler(logger, controller, service, templates, lineRenderer{}, barRenderer{})
	dashboardHandler.WithTimeout(cfg.AppRequestTimeout)
	authHandler := auth.NewHandler(logger, client, templates)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, service, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		ReportHandler:    reportHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
