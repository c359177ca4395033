package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vk-0-7/media-poster/internal/service"
	"github.com/vk-0-7/media-poster/internal/transfer"
)

const defaultTimezone = "America/New_York"

// Scheduler owns the single recurring auto-post schedule. At most one
// schedule is active; starting a new one tears down the previous. The
// state lives on this injected object rather than in package scope so
// handlers and tests share one explicit instance.
type Scheduler struct {
	runner service.AutoPostService

	mu        sync.Mutex
	cron      *cron.Cron
	config    *transfer.ScheduleConfig
	startedAt time.Time
	now       func() time.Time
}

func NewScheduler(runner service.AutoPostService) *Scheduler {
	return &Scheduler{runner: runner, now: time.Now}
}

// Start validates the config, replaces any running schedule, and installs
// a new recurring trigger in the configured timezone.
func (s *Scheduler) Start(config transfer.ScheduleConfig) error {
	if config.CronExpression == "" {
		config.CronExpression = "0 9,15,21 * * *"
	}
	if config.Timezone == "" {
		config.Timezone = defaultTimezone
	}
	config.PostingCriteria = config.PostingCriteria.WithDefaults()

	if _, err := cron.ParseStandard(config.CronExpression); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	// Teardown and install happen under one lock so concurrent Starts
	// cannot each install a schedule and leak the loser's cron.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	c := cron.New(cron.WithLocation(location))
	criteria := config.PostingCriteria
	if _, err := c.AddFunc(config.CronExpression, func() { s.fire(criteria) }); err != nil {
		return fmt.Errorf("failed to install schedule: %w", err)
	}
	c.Start()

	s.cron = c
	s.config = &config
	s.startedAt = s.now()

	slog.Info("auto-posting scheduler started", "expression", config.CronExpression, "timezone", config.Timezone)
	return nil
}

// fire runs one scheduled auto-post pass. Outcomes are only logged; a
// failed run is retried implicitly by the next scheduled fire.
func (s *Scheduler) fire(criteria transfer.SelectionCriteria) {
	slog.Info("scheduled auto-post triggered")

	result, err := s.runner.Run(context.Background(), criteria)
	if err != nil {
		slog.Error("scheduled auto-post failed", "error", err.Error())
		return
	}

	if result.Success {
		slog.Info("scheduled auto-post completed", "message", result.Message)
	} else {
		slog.Error("scheduled auto-post completed with failures", "message", result.Message)
	}
}

// Stop cancels and discards the active schedule. No-op when nothing is
// running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked tears down the active schedule. Callers hold s.mu.
func (s *Scheduler) stopLocked() {
	if s.cron == nil {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.config = nil

	slog.Info("auto-posting scheduler stopped")
}

// Update replaces the running schedule with a new config.
func (s *Scheduler) Update(config transfer.ScheduleConfig) error {
	return s.Start(config)
}

// Status reports the current schedule, its uptime, and the next fire
// time computed from the installed cron entry.
func (s *Scheduler) Status() transfer.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return transfer.SchedulerStatus{Status: "stopped"}
	}

	startedAt := s.startedAt
	status := transfer.SchedulerStatus{
		Status:        "running",
		Config:        s.config,
		StartedAt:     &startedAt,
		UptimeMinutes: int(s.now().Sub(s.startedAt).Minutes()),
	}

	if entries := s.cron.Entries(); len(entries) > 0 {
		next := entries[0].Next
		status.NextRun = &next
	}
	return status
}

// Running reports whether a schedule is installed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}
