// Package jobs runs background work through Asynq, keeping the dashboard
// cache warm between user visits.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard overview cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// WarmupCronSpec refreshes the cache every ten minutes.
	WarmupCronSpec = "*/10 * * * *"
)

// DashboardWarmupPayload selects which windows the warmup covers.
type DashboardWarmupPayload struct {
	WindowDays int `json:"janela_dias"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
