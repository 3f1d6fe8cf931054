// Package season manages immutable point-in-time PnL snapshots and the
// season leaderboards read from them.
package season

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/pnl"
	"crew-pnl-service/internal/storage"
)

// ErrInvalidMetric is returned for a metric outside the season whitelist.
var ErrInvalidMetric = errors.New("invalid season metric")

// SnapshotResult summarizes one snapshot batch run.
type SnapshotResult struct {
	Created int
	Skipped int // existing snapshots, left untouched
	Failed  int // per-user failures, batch continued
}

// Service creates season snapshots and serves season leaderboards.
type Service struct {
	trades    storage.TradeStore
	seasons   storage.SeasonStore
	snapshots storage.SnapshotStore
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a season service.
func New(trades storage.TradeStore, seasons storage.SeasonStore, snapshots storage.SnapshotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		trades:    trades,
		seasons:   seasons,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// SnapshotSeason captures a write-once PnL snapshot for every user with at
// least one trade. Users that already have a snapshot for this season are
// skipped, never recomputed, even if trades arrived since. One user's
// failure is counted and logged; the batch continues.
func (s *Service) SnapshotSeason(ctx context.Context, seasonID string) (*SnapshotResult, error) {
	if _, err := s.seasons.GetByID(ctx, seasonID); err != nil {
		return nil, fmt.Errorf("fetch season %s: %w", seasonID, err)
	}

	userIDs, err := s.trades.GetUserIDsWithTrades(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list users with trades: %w", err)
	}

	result := &SnapshotResult{}
	for _, userID := range userIDs {
		created, err := s.snapshotUser(ctx, seasonID, userID)
		if err != nil {
			result.Failed++
			s.logger.Warn("season snapshot failed for user",
				zap.String("season_id", seasonID),
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	s.logger.Info("season snapshot batch finished",
		zap.String("season_id", seasonID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// snapshotUser snapshots one user. Returns false when a snapshot already
// existed. The existence check is an optimization; the store's write-once
// Insert is the real guard, so a concurrent creator just turns into a skip.
func (s *Service) snapshotUser(ctx context.Context, seasonID, userID string) (bool, error) {
	_, err := s.snapshots.Get(ctx, seasonID, userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("check existing snapshot: %w", err)
	}

	trades, err := s.trades.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("fetch trades: %w", err)
	}

	// Snapshots capture full-history PnL without prices: realized figures
	// are exact, and unrealized depends on a price feed that has no place
	// in an immutable baseline.
	res := pnl.Compute(trades, nil)

	snap := &domain.SeasonUserSnapshot{
		SeasonID:    seasonID,
		UserID:      userID,
		RealizedPnL: res.RealizedPnL,
		TotalPnL:    res.TotalPnL,
		Volume:      res.Metrics.Volume,
		TotalTrades: res.Metrics.TotalTrades,
		CreatedAt:   s.now().UnixMilli(),
	}

	if err := s.snapshots.Insert(ctx, snap); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false, nil
		}
		return false, fmt.Errorf("insert snapshot: %w", err)
	}
	return true, nil
}

// SnapshotActiveSeason snapshots the season currently in progress, if any.
// A missing active season is a no-op, not an error; the sweep just has
// nothing to do between seasons.
func (s *Service) SnapshotActiveSeason(ctx context.Context) (*SnapshotResult, error) {
	season, err := s.seasons.GetActive(ctx, s.now().UnixMilli())
	if errors.Is(err, storage.ErrNotFound) {
		return &SnapshotResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active season: %w", err)
	}
	return s.SnapshotSeason(ctx, season.ID)
}

// Leaderboard ranks a season's snapshots by the selected metric. Season
// rankings are frozen the moment snapshots exist: no recomputation, no
// window, just the stored figures.
func (s *Service) Leaderboard(ctx context.Context, seasonID, metric string, limit, offset int) (*domain.LeaderboardPage, error) {
	switch metric {
	case domain.MetricRealizedPnL, domain.MetricTotalPnL, domain.MetricVolume:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	snaps, err := s.snapshots.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("fetch season snapshots: %w", err)
	}

	entries := make([]*domain.LeaderboardEntry, 0, len(snaps))
	for _, snap := range snaps {
		e := &domain.LeaderboardEntry{
			UserID:      snap.UserID,
			RealizedPnL: snap.RealizedPnL,
			TotalPnL:    snap.TotalPnL,
			Volume:      snap.Volume,
			TotalTrades: snap.TotalTrades,
		}
		switch metric {
		case domain.MetricTotalPnL:
			e.Value = snap.TotalPnL
		case domain.MetricVolume:
			e.Value = snap.Volume
		default:
			e.Value = snap.RealizedPnL
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })

	total := len(entries)
	if offset >= len(entries) {
		entries = []*domain.LeaderboardEntry{}
	} else {
		end := offset + limit
		if end > len(entries) {
			end = len(entries)
		}
		entries = entries[offset:end]
	}

	return &domain.LeaderboardPage{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}
