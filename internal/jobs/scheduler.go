// Package jobs owns the cron scheduler for background maintenance: season
// snapshot batches, overdue-challenge sweeps and price-cache cleanup. The
// scheduler is constructed and started by the composition root; nothing in
// this package runs timers on its own.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"crew-pnl-service/internal/challenge"
	"crew-pnl-service/internal/pricing"
	"crew-pnl-service/internal/season"
)

const jobTimeout = 5 * time.Minute

// Scheduler wires background jobs onto a cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

// AddSeasonSnapshots schedules the write-once snapshot batch for the
// active season.
func (s *Scheduler) AddSeasonSnapshots(spec string, svc *season.Service) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res, err := svc.SnapshotActiveSeason(ctx)
		if err != nil {
			s.logger.Error("season snapshot job failed", zap.Error(err))
			return
		}
		if res.Created > 0 || res.Failed > 0 {
			s.logger.Info("season snapshot job done",
				zap.Int("created", res.Created),
				zap.Int("skipped", res.Skipped),
				zap.Int("failed", res.Failed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule season snapshots: %w", err)
	}
	return nil
}

// AddChallengeSweep schedules the overdue-challenge finalization sweep.
func (s *Scheduler) AddChallengeSweep(spec string, svc *challenge.Service) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res, err := svc.FinalizeOverdue(ctx)
		if err != nil {
			s.logger.Error("challenge sweep failed", zap.Error(err))
			return
		}
		if res.Finalized > 0 || res.Failed > 0 {
			s.logger.Info("challenge sweep done",
				zap.Int("finalized", res.Finalized),
				zap.Int("failed", res.Failed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule challenge sweep: %w", err)
	}
	return nil
}

// AddCachePurge schedules expired-entry cleanup for the in-memory price
// cache. The Redis cache expires entries itself and needs no purge.
func (s *Scheduler) AddCachePurge(spec string, cache *pricing.MemCache) error {
	_, err := s.cron.AddFunc(spec, func() {
		if dropped := cache.Purge(); dropped > 0 {
			s.logger.Debug("price cache purged", zap.Int("dropped", dropped))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cache purge: %w", err)
	}
	return nil
}

// Start launches the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
