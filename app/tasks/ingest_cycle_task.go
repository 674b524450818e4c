package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-hub/app/ingest"
	"github.com/lysyi3m/rss-hub/app/logger"
)

type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerInterval Trigger = "interval"
	TriggerManual   Trigger = "manual"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) ingest.RunSummary
}

type IngestCycleTask struct {
	Task
	Trigger Trigger
	Summary ingest.RunSummary
	runner  CycleRunner
}

func NewIngestCycleTask(trigger Trigger, runner CycleRunner) *IngestCycleTask {
	return &IngestCycleTask{
		Task:    NewTask(TaskTypeIngestCycle),
		Trigger: trigger,
		runner:  runner,
	}
}

func (t *IngestCycleTask) Execute(ctx context.Context) error {
	ctx = logger.Ctx(ctx, slog.String("cycle_id", t.ID), slog.String("trigger", string(t.Trigger)))

	slog.DebugContext(ctx, "Ingestion cycle started")

	t.Summary = t.runner.RunCycle(ctx)

	slog.InfoContext(ctx, "Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration(),
		"sources", t.Summary.SourcesConsidered,
		"succeeded", t.Summary.SourcesSucceeded,
		"new", t.Summary.ArticlesAdded)

	return ctx.Err()
}
