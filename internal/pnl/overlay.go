package pnl

import "crew-pnl-service/internal/domain"

// PositionKeys lists the price-map keys of a result's open positions, in
// position order. Callers use it to know which prices to resolve before
// calling Reprice.
func PositionKeys(r *domain.PnLResult) []string {
	keys := make([]string, 0, len(r.Positions))
	for _, pos := range r.Positions {
		keys = append(keys, TokenKey(pos.TokenAddress, pos.Chain))
	}
	return keys
}

// Reprice overlays a price map onto a result computed without prices,
// filling unrealized figures and refreshing the totals. Positions without a
// usable price stay untouched.
func Reprice(r *domain.PnLResult, prices map[string]float64) {
	r.UnrealizedPnL = applyPrices(r.Positions, prices)
	r.TotalPnL = r.RealizedPnL + r.UnrealizedPnL
}
