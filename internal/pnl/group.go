package pnl

import "crew-pnl-service/internal/domain"

// TokenKey builds the grouping/pricing key "<tokenAddress>_<chain>".
func TokenKey(tokenAddress, chain string) string {
	return tokenAddress + "_" + chain
}

// positionToken picks the token a trade's position is accounted under:
// token-out preferred, token-in as fallback. Empty when unresolvable.
func positionToken(p *domain.ProcessedTrade) string {
	if p.TokenOutAddress != "" {
		return p.TokenOutAddress
	}
	return p.TokenInAddress
}

// tokenGroup holds one token's chronological trade slice.
type tokenGroup struct {
	tokenAddress string
	chain        string
	trades       []*domain.ProcessedTrade
}

// groupByToken partitions processed trades by (tokenAddress, chain) so each
// token's position is accounted independently. Input order is preserved
// within each group; group order follows first appearance, keeping the
// engine's output deterministic. Trades with no resolvable token address are
// dropped from grouping (they still appear in the trade history and count
// toward volume/metrics, but contribute no position).
func groupByToken(processed []*domain.ProcessedTrade) []*tokenGroup {
	index := make(map[string]*tokenGroup)
	var groups []*tokenGroup

	for _, p := range processed {
		token := positionToken(p)
		if token == "" {
			continue
		}
		key := TokenKey(token, p.Chain)
		g, ok := index[key]
		if !ok {
			g = &tokenGroup{tokenAddress: token, chain: p.Chain}
			index[key] = g
			groups = append(groups, g)
		}
		g.trades = append(g.trades, p)
	}

	return groups
}
