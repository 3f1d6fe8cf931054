// Package leaderboard composes the PnL engine over cohorts of users and
// crews: full-history ledgers, windowed display metrics, ranking and
// pagination.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/pnl"
	"crew-pnl-service/internal/pricing"
	"crew-pnl-service/internal/storage"
)

// Validation errors surfaced to API callers as bad requests.
var (
	ErrInvalidMetric    = errors.New("invalid leaderboard metric")
	ErrInvalidTimeframe = errors.New("invalid leaderboard timeframe")
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Query selects what a leaderboard request ranks and returns.
type Query struct {
	Metric    string // whitelisted, see domain metric constants
	Timeframe string // "all" | "30d" | "7d"
	Chain     string // optional chain filter, empty for all chains
	Limit     int
	Offset    int
}

// Service computes PnL for individual identities and whole cohorts.
type Service struct {
	trades  storage.TradeStore
	users   storage.UserStore
	crews   storage.CrewStore
	archive storage.ProcessedTradeArchive // optional, best effort
	prices  pricing.Source
	pool    pond.Pool
	logger  *zap.Logger
	now     func() time.Time
}

// Options configures a Service.
type Options struct {
	TradeStore  storage.TradeStore
	UserStore   storage.UserStore
	CrewStore   storage.CrewStore
	Archive     storage.ProcessedTradeArchive // may be nil
	PriceSource pricing.Source                // may be nil
	Workers     int                           // bounded pool size, defaults to 8
	Logger      *zap.Logger
}

// New creates a leaderboard service with a bounded worker pool. The trades
// of a cohort are fetched in one bulk read; the per-identity computations
// that follow are pure CPU and run concurrently on the pool.
func New(opts Options) *Service {
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prices := opts.PriceSource
	if prices == nil {
		prices = pricing.StaticSource{}
	}

	return &Service{
		trades:  opts.TradeStore,
		users:   opts.UserStore,
		crews:   opts.CrewStore,
		archive: opts.Archive,
		prices:  prices,
		pool:    pond.NewPool(workers),
		logger:  logger,
		now:     time.Now,
	}
}

// UserPnL computes one user's full PnL result with current prices applied.
func (s *Service) UserPnL(ctx context.Context, userID string) (*domain.PnLResult, error) {
	trades, err := s.trades.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch trades for user %s: %w", userID, err)
	}

	result := pnl.Compute(trades, nil)
	s.repriceAll(ctx, result)
	s.archiveHistory(ctx, result.TradeHistory)
	return result, nil
}

// CrewPnL computes the merged PnL result of a crew's members.
func (s *Service) CrewPnL(ctx context.Context, crewID string) (*domain.PnLResult, error) {
	if _, err := s.crews.GetByID(ctx, crewID); err != nil {
		return nil, fmt.Errorf("fetch crew %s: %w", crewID, err)
	}
	members, err := s.users.GetByCrewID(ctx, crewID)
	if err != nil {
		return nil, fmt.Errorf("fetch crew members: %w", err)
	}

	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	results, err := s.computeCohort(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	merged := mergeResults(results)
	s.repriceAll(ctx, merged)
	return merged, nil
}

// UserLeaderboard ranks eligible users by the selected metric.
//
// Eligibility is decided by the timeframe (at least one trade within it),
// but every eligible user's ledger is built from their entire history: FIFO
// cost basis is only correct over full history. The window then restricts
// which trades count toward the displayed metric.
func (s *Service) UserLeaderboard(ctx context.Context, q Query) (*domain.LeaderboardPage, error) {
	if !domain.ValidUserMetric(q.Metric) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, q.Metric)
	}
	if !domain.ValidTimeframe(q.Timeframe) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeframe, q.Timeframe)
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	cutoff := s.cutoff(q.Timeframe)

	ids, err := s.trades.GetUserIDsWithTrades(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list eligible users: %w", err)
	}
	usersByID, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	results, err := s.computeCohort(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.repriceCohort(ctx, results)

	entries := make([]*domain.LeaderboardEntry, 0, len(ids))
	for i, id := range ids {
		stats := windowedStats(results[i], cutoff, q.Chain)
		entry := &domain.LeaderboardEntry{
			UserID:      id,
			RealizedPnL: stats.realized,
			TotalPnL:    stats.total,
			Volume:      stats.metrics.Volume,
			WinRate:     stats.metrics.WinRate,
			TotalTrades: stats.metrics.TotalTrades,
		}
		if u, ok := usersByID[id]; ok {
			entry.Username = u.Username
		}
		entry.Value = userMetricValue(entry, q.Metric)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })

	total := len(entries)
	return &domain.LeaderboardPage{
		Entries: paginate(entries, limit, offset),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// CrewLeaderboard ranks crews by the selected metric, aggregated over each
// crew's members.
func (s *Service) CrewLeaderboard(ctx context.Context, q Query) (*domain.CrewLeaderboardPage, error) {
	if !domain.ValidCrewMetric(q.Metric) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, q.Metric)
	}
	if !domain.ValidTimeframe(q.Timeframe) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeframe, q.Timeframe)
	}
	limit, offset := normalizePage(q.Limit, q.Offset)
	cutoff := s.cutoff(q.Timeframe)

	crews, err := s.crews.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list crews: %w", err)
	}

	entries := make([]*domain.CrewLeaderboardEntry, 0, len(crews))
	for _, crew := range crews {
		members, err := s.users.GetByCrewID(ctx, crew.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch members of crew %s: %w", crew.ID, err)
		}
		memberIDs := make([]string, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.ID)
		}

		results, err := s.computeCohort(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		s.repriceCohort(ctx, results)

		entry := &domain.CrewLeaderboardEntry{
			CrewID:      crew.ID,
			Name:        crew.Name,
			MemberCount: len(members),
		}
		var winRateSum float64
		for _, res := range results {
			stats := windowedStats(res, cutoff, q.Chain)
			entry.RealizedPnL += stats.realized
			entry.TotalPnL += stats.total
			entry.Volume += stats.metrics.Volume
			entry.TotalTrades += stats.metrics.TotalTrades
			winRateSum += stats.metrics.WinRate
		}
		if len(results) > 0 {
			entry.AvgWinRate = winRateSum / float64(len(results))
		}
		entry.Value = crewMetricValue(entry, q.Metric)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })

	total := len(entries)
	return &domain.CrewLeaderboardPage{
		Entries: paginateCrews(entries, limit, offset),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// computeCohort bulk-fetches full trade histories for ids and computes each
// identity's PnL concurrently on the bounded pool. Results align with ids
// by index.
func (s *Service) computeCohort(ctx context.Context, ids []string) ([]*domain.PnLResult, error) {
	histories, err := s.trades.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch trades: %w", err)
	}

	results := make([]*domain.PnLResult, len(ids))
	group := s.pool.NewGroup()
	for i, id := range ids {
		group.Submit(func() {
			results[i] = pnl.Compute(histories[id], nil)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("compute cohort pnl: %w", err)
	}
	return results, nil
}

// repriceAll resolves prices for one result's positions and overlays them.
func (s *Service) repriceAll(ctx context.Context, result *domain.PnLResult) {
	keys := pnl.PositionKeys(result)
	if len(keys) == 0 {
		return
	}
	prices, err := s.prices.Prices(ctx, keys)
	if err != nil {
		// Missing prices are a normal state; unrealized stays unset.
		s.logger.Warn("price resolution failed", zap.Error(err))
		return
	}
	pnl.Reprice(result, prices)
}

// repriceCohort resolves prices for all results in one Source call.
func (s *Service) repriceCohort(ctx context.Context, results []*domain.PnLResult) {
	keySet := make(map[string]struct{})
	var keys []string
	for _, res := range results {
		for _, k := range pnl.PositionKeys(res) {
			if _, ok := keySet[k]; !ok {
				keySet[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	if len(keys) == 0 {
		return
	}

	prices, err := s.prices.Prices(ctx, keys)
	if err != nil {
		s.logger.Warn("price resolution failed", zap.Error(err))
		return
	}
	for _, res := range results {
		pnl.Reprice(res, prices)
	}
}

// archiveHistory appends ledger output to the analytics archive. Best
// effort: archive failures never fail the caller's request.
func (s *Service) archiveHistory(ctx context.Context, history []*domain.ProcessedTrade) {
	if s.archive == nil || len(history) == 0 {
		return
	}
	if err := s.archive.InsertBulk(ctx, history); err != nil {
		s.logger.Warn("archive processed trades", zap.Error(err))
	}
}

// cutoff maps a timeframe to the earliest timestamp (ms) that counts
// toward the displayed metric. 0 means everything counts.
func (s *Service) cutoff(timeframe string) int64 {
	switch timeframe {
	case domain.Timeframe7d:
		return s.now().Add(-7 * 24 * time.Hour).UnixMilli()
	case domain.Timeframe30d:
		return s.now().Add(-30 * 24 * time.Hour).UnixMilli()
	default:
		return 0
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate(entries []*domain.LeaderboardEntry, limit, offset int) []*domain.LeaderboardEntry {
	if offset >= len(entries) {
		return []*domain.LeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

func paginateCrews(entries []*domain.CrewLeaderboardEntry, limit, offset int) []*domain.CrewLeaderboardEntry {
	if offset >= len(entries) {
		return []*domain.CrewLeaderboardEntry{}
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
