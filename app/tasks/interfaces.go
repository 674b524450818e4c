package tasks

import (
	"context"

	"github.com/lysyi3m/rss-hub/app/ingest"
)

// TaskSchedulerInterface defines the scheduling operations used by the main application
// and the refresh endpoint.
//
//	scheduler := NewScheduler(orchestrator, interval, startupDelay)
//	scheduler.Start()
//	defer scheduler.Stop()
//	summary := scheduler.RunNow(ctx)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	RunNow(ctx context.Context) ingest.RunSummary
}
