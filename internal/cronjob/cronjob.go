// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cronjob runs the generation processor on an in-process cron
// schedule, for deployments without an external scheduler calling the
// cron endpoint.
package cronjob

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"coinpress/internal/generation"
)

// RunTimeout bounds a single processor run.
const RunTimeout = 30 * time.Minute

// Runner processes due schedules.
type Runner interface {
	RunDue(ctx context.Context) (*generation.RunSummary, error)
}

// Trigger fires the runner on a cron schedule.
type Trigger struct {
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a trigger for a standard 5-field cron spec. Overlapping
// firings are skipped while a run is still in progress.
func New(spec string, runner Runner) (*Trigger, error) {
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	t := &Trigger{cron: c, runner: runner, spec: spec}

	if _, err := c.AddFunc(spec, t.run); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return t, nil
}

// Start begins firing in the background.
func (t *Trigger) Start() {
	t.cron.Start()
	slog.Info("generation trigger started", "schedule", t.spec, "next", t.Next())
}

// Stop halts the schedule and waits for a run in progress to finish. A
// running batch is never cancelled; RunTimeout still bounds it.
func (t *Trigger) Stop() {
	<-t.cron.Stop().Done()
	slog.Info("generation trigger stopped")
}

// Next returns the next firing time, or zero if not started.
func (t *Trigger) Next() time.Time {
	entries := t.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (t *Trigger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	summary, err := t.runner.RunDue(ctx)
	if err != nil {
		slog.Error("scheduled generation run failed", "error", err)
		return
	}
	slog.Info("scheduled generation run",
		"processed", summary.Processed, "success", summary.Success, "failure", summary.Failure)
}
