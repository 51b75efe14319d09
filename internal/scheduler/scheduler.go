// Package scheduler periodically refreshes the weather of the configured
// location.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/couchcryptid/weather-sync-service/internal/observability"
	"github.com/go-co-op/gocron"
)

// Syncer accepts sync requests.
type Syncer interface {
	Sync(ctx context.Context, at *domain.Coordinates) error
}

// Scheduler asks for a sync at start and then every interval. A nil location
// means cache-only syncs.
type Scheduler struct {
	cron     *gocron.Scheduler
	syncer   Syncer
	location *domain.Coordinates
	interval time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Scheduler. An interval of zero disables the periodic refresh;
// Run then only performs the initial sync.
func New(syncer Syncer, location *domain.Coordinates, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Scheduler {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:     cron,
		syncer:   syncer,
		location: location,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("periodic refresh disabled")
		s.trigger(ctx)
		<-ctx.Done()
		return nil
	}

	// gocron runs interval jobs immediately on start, which is the initial sync.
	if _, err := s.cron.Every(s.interval).Do(func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("schedule weather refresh: %w", err)
	}
	s.cron.StartAsync()
	s.metrics.SchedulerRunning.Set(1)
	s.logger.Info("scheduler started", "interval", s.interval, "location", s.location)

	<-ctx.Done()
	s.cron.Stop()
	s.metrics.SchedulerRunning.Set(0)
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) trigger(ctx context.Context) {
	if err := s.syncer.Sync(ctx, s.location); err != nil && ctx.Err() == nil {
		s.logger.Error("scheduled sync failed", "error", err)
	}
}
