package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/observability"
	"github.com/vendascope/vendascope/internal/salesapi"
)

// Warmer is the slice of the dashboard service the warmup exercises.
type Warmer interface {
	Overview(ctx context.Context, filter salesapi.Filter) (dashboard.Overview, error)
}

// DashboardWarmupJob pre-populates the overview cache so the first visit
// after an idle period does not pay for the remote fetch.
type DashboardWarmupJob struct {
	Service Warmer
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc Warmer, logger *slog.Logger, metrics *observability.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Service: svc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the job clock for testing.
func (j *DashboardWarmupJob) WithClock(fn func() time.Time) {
	if fn != nil {
		j.clock = fn
	}
}

// Handle processes dashboard warmup tasks. It warms the unfiltered view and
// the trailing window side by side.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 30
	}

	logger := j.logger().With(slog.Int("window_days", payload.WindowDays))
	logger.Info("starting dashboard warmup")

	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := j.now()
	filters := []salesapi.Filter{
		{},
		trailingWindow(now, payload.WindowDays),
	}

	g, gCtx := errgroup.WithContext(jobCtx)
	for _, filter := range filters {
		filter := filter
		g.Go(func() error {
			_, err := j.Service.Overview(gCtx, filter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		j.Metrics.ObserveJob(TaskDashboardWarmup, "failure")
		logger.Error("dashboard warmup failed", slog.Any("error", err))
		return err
	}

	j.Metrics.ObserveJob(TaskDashboardWarmup, "success")
	logger.Info("completed dashboard warmup", slog.Int("windows", len(filters)))
	return nil
}

func trailingWindow(now time.Time, days int) salesapi.Filter {
	to := now
	from := now.AddDate(0, 0, -days)
	return salesapi.Filter{
		From: salesapi.NewDate(from.Year(), from.Month(), from.Day()),
		To:   salesapi.NewDate(to.Year(), to.Month(), to.Day()),
	}
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
