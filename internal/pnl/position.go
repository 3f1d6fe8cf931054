package pnl

import "crew-pnl-service/internal/domain"

// buildPosition summarizes a token's residual lots into an open-position
// record. Returns nil when nothing remains open.
func buildPosition(tokenAddress, chain string, lots []domain.CostLot) *domain.TokenPosition {
	var quantity, totalCost float64
	for _, lot := range lots {
		quantity += lot.Quantity
		totalCost += lot.Cost
	}

	if quantity <= 0 {
		return nil
	}

	return &domain.TokenPosition{
		TokenAddress:   tokenAddress,
		Chain:          chain,
		Quantity:       quantity,
		AvgCostBasis:   totalCost / quantity,
		TotalCostBasis: totalCost,
	}
}
