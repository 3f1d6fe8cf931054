package pnl

import "crew-pnl-service/internal/domain"

// ComputeMetrics derives trading metrics from a processed-trade history.
//
// Volume counts both buys and sells. The win/loss partition is over sells
// only, by sign of realized PnL, but the win rate denominator is all trades:
// a user who only buys has a win rate of 0. This is the documented contract,
// not a bug. Empty partitions yield 0, never NaN.
func ComputeMetrics(history []*domain.ProcessedTrade) domain.PnLMetrics {
	m := domain.PnLMetrics{TotalTrades: len(history)}

	var winSum, lossSum float64
	for _, t := range history {
		m.Volume += t.USDValue

		if t.Direction != domain.DirectionSell {
			continue
		}
		switch {
		case t.RealizedPnL > 0:
			m.ProfitableTrades++
			winSum += t.RealizedPnL
		case t.RealizedPnL < 0:
			m.LosingTrades++
			lossSum += t.RealizedPnL
		}
	}

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.ProfitableTrades) / float64(m.TotalTrades)
	}
	if m.ProfitableTrades > 0 {
		m.AvgWin = winSum / float64(m.ProfitableTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = lossSum / float64(m.LosingTrades)
	}

	return m
}
