package pnl

import "crew-pnl-service/internal/domain"

// Compute runs the full accounting pipeline over one identity's trades:
// normalize -> group by token -> FIFO ledger -> positions -> pricing overlay
// -> metrics. It is pure and synchronous: no I/O, no shared state, safe to
// invoke concurrently for many identities.
//
// Every call site (dashboards, leaderboards, seasons, challenges) goes
// through this one function; call sites differ only in which trades they
// feed in and how they window the output afterward.
//
// prices may be nil; positions then carry no unrealized figures.
func Compute(trades []*domain.Trade, prices map[string]float64) *domain.PnLResult {
	processed := NormalizeTrades(trades)

	var positions []*domain.TokenPosition
	realized := 0.0

	for _, group := range groupByToken(processed) {
		lots := applyFIFO(group.trades)
		if pos := buildPosition(group.tokenAddress, group.chain, lots); pos != nil {
			positions = append(positions, pos)
		}
	}
	for _, p := range processed {
		realized += p.RealizedPnL
	}

	unrealized := applyPrices(positions, prices)

	return &domain.PnLResult{
		Positions:     positions,
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		TotalPnL:      realized + unrealized,
		Metrics:       ComputeMetrics(processed),
		TradeHistory:  processed,
	}
}
