package pnl

import (
	"math"

	"crew-pnl-service/internal/domain"
)

// applyPrices overlays an externally supplied current-price map, keyed by
// TokenKey, onto open positions and returns the aggregate unrealized PnL
// over positions with a usable price.
//
// A price must be finite and positive to be applied. Positions without a
// usable price are returned unchanged and contribute nothing to the
// aggregate: absence of a price is never treated as zero.
func applyPrices(positions []*domain.TokenPosition, prices map[string]float64) float64 {
	total := 0.0
	for _, pos := range positions {
		price, ok := prices[TokenKey(pos.TokenAddress, pos.Chain)]
		if !ok || price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
			continue
		}

		p := price
		value := pos.Quantity * p
		unrealized := value - pos.TotalCostBasis

		pos.CurrentPrice = &p
		pos.CurrentValue = &value
		pos.UnrealizedPnL = &unrealized
		total += unrealized
	}
	return total
}
