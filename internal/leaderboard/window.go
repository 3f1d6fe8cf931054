package leaderboard

import (
	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/pnl"
)

// stats holds one identity's display figures for a timeframe/chain window.
// The ledger behind them was always built from full history; the window
// only restricts which processed trades count toward the figures.
type stats struct {
	realized float64
	total    float64 // windowed realized + unrealized on current positions
	metrics  domain.PnLMetrics
}

// windowedStats derives display stats from a full-history result. cutoff 0
// and an empty chain mean no filtering.
func windowedStats(res *domain.PnLResult, cutoff int64, chain string) stats {
	history := res.TradeHistory
	if cutoff > 0 || chain != "" {
		history = make([]*domain.ProcessedTrade, 0, len(res.TradeHistory))
		for _, t := range res.TradeHistory {
			if t.Timestamp < cutoff {
				continue
			}
			if chain != "" && t.Chain != chain {
				continue
			}
			history = append(history, t)
		}
	}

	realized := 0.0
	for _, t := range history {
		realized += t.RealizedPnL
	}

	return stats{
		realized: realized,
		total:    realized + res.UnrealizedPnL,
		metrics:  pnl.ComputeMetrics(history),
	}
}

func userMetricValue(e *domain.LeaderboardEntry, metric string) float64 {
	switch metric {
	case domain.MetricTotalPnL:
		return e.TotalPnL
	case domain.MetricVolume:
		return e.Volume
	case domain.MetricWinRate:
		return e.WinRate
	default:
		return e.RealizedPnL
	}
}

func crewMetricValue(e *domain.CrewLeaderboardEntry, metric string) float64 {
	switch metric {
	case domain.MetricTotalPnL:
		return e.TotalPnL
	case domain.MetricVolume:
		return e.Volume
	case domain.MetricAvgWinRate:
		return e.AvgWinRate
	default:
		return e.RealizedPnL
	}
}

// mergeResults combines member results into one crew-level result:
// positions and histories concatenated, totals summed, metrics recomputed
// over the combined history.
func mergeResults(results []*domain.PnLResult) *domain.PnLResult {
	merged := &domain.PnLResult{}
	for _, res := range results {
		if res == nil {
			continue
		}
		merged.Positions = append(merged.Positions, res.Positions...)
		merged.TradeHistory = append(merged.TradeHistory, res.TradeHistory...)
		merged.RealizedPnL += res.RealizedPnL
		merged.UnrealizedPnL += res.UnrealizedPnL
	}
	merged.TotalPnL = merged.RealizedPnL + merged.UnrealizedPnL
	merged.Metrics = pnl.ComputeMetrics(merged.TradeHistory)
	return merged
}
