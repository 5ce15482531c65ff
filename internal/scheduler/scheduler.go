// Package scheduler runs periodic maintenance on the result store.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"OptionPrisma/internal/metrics"
	"OptionPrisma/internal/store"
)

// Scheduler manages cron tasks. Only retention pruning exists today.
type Scheduler struct {
	Cron    *cron.Cron
	Store   store.Store
	MaxAge  time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Metrics // may be nil
	Ctx     context.Context

	now func() time.Time
}

// NewScheduler creates a Scheduler pruning records older than maxAge.
func NewScheduler(ctx context.Context, st store.Store, maxAge time.Duration, logger *zap.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Store:   st,
		MaxAge:  maxAge,
		Logger:  logger,
		Metrics: m,
		Ctx:     ctx,
		now:     time.Now,
	}
}

// RegisterRetention schedules pruning on a six-field cron expression (seconds first).
func (s *Scheduler) RegisterRetention(expr string) error {
	if s.MaxAge <= 0 {
		return fmt.Errorf("retention max age must be positive, got %s", s.MaxAge)
	}
	if _, err := s.Cron.AddFunc(expr, s.retentionTask); err != nil {
		return fmt.Errorf("register retention task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("tasks", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// Prune deletes every record whose timestamp is older than MaxAge and
// returns how many were removed.
func (s *Scheduler) Prune(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.MaxAge)
	recs, err := s.Store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	removed := 0
	for _, rec := range recs {
		if !rec.Timestamp.Before(cutoff) {
			continue
		}
		ok, err := s.Store.Delete(ctx, rec.SimulationID)
		if err != nil {
			return removed, fmt.Errorf("delete %s: %w", rec.SimulationID, err)
		}
		if ok {
			removed++
		}
	}
	if s.Metrics != nil {
		s.Metrics.RecordsPruned.Add(float64(removed))
	}
	return removed, nil
}

func (s *Scheduler) retentionTask() {
	removed, err := s.Prune(s.Ctx)
	if err != nil {
		s.Logger.Error("retention prune failed", zap.Int("removed", removed), zap.Error(err))
		return
	}
	s.Logger.Info("retention prune finished", zap.Int("removed", removed), zap.Duration("max_age", s.MaxAge))
}
