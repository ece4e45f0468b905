package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vendascope/vendascope/internal/dashboard"
	"github.com/vendascope/vendascope/internal/salesapi"
)

type recordingWarmer struct {
	mu      sync.Mutex
	filters []salesapi.Filter
	err     error
}

func (r *recordingWarmer) Overview(ctx context.Context, filter salesapi.Filter) (dashboard.Overview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, filter)
	return dashboard.Overview{}, r.err
}

func newWarmupTask(t *testing.T, payload DashboardWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewDashboardWarmupTask(payload)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestWarmupCoversBothWindows(t *testing.T) {
	warmer := &recordingWarmer{}
	job := NewDashboardWarmupJob(warmer, nil, nil)
	job.WithClock(func() time.Time { return time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC) })

	if err := job.Handle(context.Background(), newWarmupTask(t, DashboardWarmupPayload{WindowDays: 30})); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}

	if len(warmer.filters) != 2 {
		t.Fatalf("expected two warmed windows, got %d", len(warmer.filters))
	}
	var sawUnfiltered, sawTrailing bool
	for _, filter := range warmer.filters {
		if filter.IsZero() {
			sawUnfiltered = true
			continue
		}
		if filter.From.String() == "2024-03-01" && filter.To.String() == "2024-03-31" {
			sawTrailing = true
		}
	}
	if !sawUnfiltered {
		t.Fatalf("expected unfiltered window to be warmed: %+v", warmer.filters)
	}
	if !sawTrailing {
		t.Fatalf("expected trailing 30-day window to be warmed: %+v", warmer.filters)
	}
}

func TestWarmupDefaultsWindow(t *testing.T) {
	warmer := &recordingWarmer{}
	job := NewDashboardWarmupJob(warmer, nil, nil)
	job.WithClock(func() time.Time { return time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC) })

	if err := job.Handle(context.Background(), newWarmupTask(t, DashboardWarmupPayload{})); err != nil {
		t.Fatalf("handle warmup: %v", err)
	}
	if len(warmer.filters) != 2 {
		t.Fatalf("expected two warmed windows, got %d", len(warmer.filters))
	}
}

func TestWarmupPropagatesFetchError(t *testing.T) {
	warmer := &recordingWarmer{err: &salesapi.TransportError{Op: "GET /vendas", Err: context.DeadlineExceeded}}
	job := NewDashboardWarmupJob(warmer, nil, nil)

	if err := job.Handle(context.Background(), newWarmupTask(t, DashboardWarmupPayload{WindowDays: 7})); err == nil {
		t.Fatalf("expected warmup to surface fetch error")
	}
}

func TestWarmupRejectsMalformedPayload(t *testing.T) {
	job := NewDashboardWarmupJob(&recordingWarmer{}, nil, nil)
	task := asynq.NewTask(TaskDashboardWarmup, []byte("not json"))
	if err := job.Handle(context.Background(), task); err != asynq.SkipRetry {
		t.Fatalf("expected SkipRetry for malformed payload, got %v", err)
	}
}
