package tasks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/rss-hub/app/ingest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler triggers ingestion cycles once after a startup delay, then on a fixed
// interval. Background triggers are skipped while any cycle is running. Manual
// runs always execute and may overlap a background run.
type Scheduler struct {
	runner       CycleRunner
	interval     time.Duration
	startupDelay time.Duration
	inFlight     atomic.Int32
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewScheduler(runner CycleRunner, interval, startupDelay time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:       runner,
		interval:     interval,
		startupDelay: startupDelay,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		startup := time.NewTimer(s.startupDelay)
		defer startup.Stop()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-startup.C:
				s.runBackground(TriggerStartup)
			case <-ticker.C:
				s.runBackground(TriggerInterval)
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String(), "startup_delay", s.startupDelay.String())
}

// Stop cancels any running background cycle and waits for the loop to exit
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) RunNow(ctx context.Context) ingest.RunSummary {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	task := NewIngestCycleTask(TriggerManual, s.runner)
	s.executeTask(ctx, task)
	return task.Summary
}

func (s *Scheduler) runBackground(trigger Trigger) {
	if !s.inFlight.CompareAndSwap(0, 1) {
		slog.Warn("Ingestion cycle already running, skipping", "trigger", string(trigger))
		return
	}
	defer s.inFlight.Add(-1)

	s.executeTask(s.ctx, NewIngestCycleTask(trigger, s.runner))
}

func (s *Scheduler) executeTask(ctx context.Context, task TaskInterface) {
	task.Start()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Task execution interrupted", "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}
