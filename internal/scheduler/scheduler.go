// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner removes records older than a cutoff and returns how many it removed.
type Pruner func(ctx context.Context, before time.Time) (int64, error)

// Reloader refreshes a resource from disk.
type Reloader interface {
	Reload() error
}

// Default schedules.
const (
	DefaultPruneSchedule  = "@daily"
	DefaultReloadSchedule = "@weekly"
)

// Options configures the housekeeping jobs. Zero retentions disable pruning.
type Options struct {
	PruneSchedule  string
	ReloadSchedule string

	SessionRetention time.Duration
	EventRetention   time.Duration

	PruneSessions Pruner
	PruneEvents   Pruner
	GeoIP         Reloader
}

// Scheduler handles periodic jobs.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new scheduler instance.
func New(opts Options, logger *slog.Logger) *Scheduler {
	if opts.PruneSchedule == "" {
		opts.PruneSchedule = DefaultPruneSchedule
	}
	if opts.ReloadSchedule == "" {
		opts.ReloadSchedule = DefaultReloadSchedule
	}
	return &Scheduler{
		cron:   cron.New(),
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.PruneSchedule, func() { s.Prune(context.Background()) }); err != nil {
		return fmt.Errorf("prune schedule %q: %w", s.opts.PruneSchedule, err)
	}
	if s.opts.GeoIP != nil {
		if _, err := s.cron.AddFunc(s.opts.ReloadSchedule, s.reloadGeoIP); err != nil {
			return fmt.Errorf("geoip schedule %q: %w", s.opts.ReloadSchedule, err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Prune removes login records and event log entries past their retention.
func (s *Scheduler) Prune(ctx context.Context) {
	now := s.now()
	s.prune(ctx, "userSessions", s.opts.PruneSessions, s.opts.SessionRetention, now)
	s.prune(ctx, "events_log", s.opts.PruneEvents, s.opts.EventRetention, now)
}

func (s *Scheduler) prune(ctx context.Context, what string, fn Pruner, retention time.Duration, now time.Time) {
	if fn == nil || retention <= 0 {
		return
	}
	n, err := fn(ctx, now.Add(-retention))
	if err != nil {
		s.logger.Error("housekeeping failed", "category", "system", "target", what, "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("housekeeping pruned records", "target", what, "count", n)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.opts.GeoIP.Reload(); err != nil {
		s.logger.Warn("geoip reload failed", "category", "system", "error", err)
	}
}
