// Package pnl implements the FIFO profit-and-loss accounting engine: a pure,
// deterministic transformation from a user's trade history plus an optional
// price map into realized/unrealized PnL, open positions and trading metrics.
package pnl

import (
	"encoding/json"
	"sort"

	"crew-pnl-service/internal/domain"
)

// rawPayload is the subset of the ingestion payload the normalizer probes.
// Historical payloads vary in shape; only these two fields are trusted.
type rawPayload struct {
	TokenInAddress  string `json:"token_in_address"`
	TokenOutAddress string `json:"token_out_address"`
}

// NormalizeTrades maps stored trades into their canonical processed form,
// sorted ascending by timestamp with ties broken by trade ID.
//
// Token address resolution prefers explicit addresses from the raw payload;
// otherwise addresses are derived from the base/quote pair and the direction
// (BUY: base=out, quote=in; SELL: base=in, quote=out). Malformed payload
// JSON is ignored and the derived mapping is used instead.
func NormalizeTrades(trades []*domain.Trade) []*domain.ProcessedTrade {
	processed := make([]*domain.ProcessedTrade, 0, len(trades))
	for _, t := range trades {
		processed = append(processed, normalizeTrade(t))
	}

	sort.Slice(processed, func(i, j int) bool {
		if processed[i].Timestamp != processed[j].Timestamp {
			return processed[i].Timestamp < processed[j].Timestamp
		}
		return processed[i].TradeID < processed[j].TradeID
	})

	return processed
}

func normalizeTrade(t *domain.Trade) *domain.ProcessedTrade {
	p := &domain.ProcessedTrade{
		TradeID:   t.ID,
		UserID:    t.UserID,
		Chain:     t.Chain,
		Direction: coerceDirection(t.Direction),
		USDValue:  t.USDValue,
		Timestamp: t.Timestamp,
	}

	p.TokenInAddress, p.TokenOutAddress, p.TokenSource = resolveTokens(t, p.Direction)

	// Prefer the out-side amount; fall back to the in-side.
	switch {
	case t.NormalizedAmountOut != nil:
		v := *t.NormalizedAmountOut
		p.Amount = &v
	case t.NormalizedAmountIn != nil:
		v := *t.NormalizedAmountIn
		p.Amount = &v
	}

	return p
}

// coerceDirection forces direction to exactly BUY or SELL. Anything other
// than SELL defaults to BUY. This default is a compatibility rule for
// historical stored data, not a validation gap.
func coerceDirection(d string) string {
	if d == domain.DirectionSell {
		return domain.DirectionSell
	}
	return domain.DirectionBuy
}

// resolveTokens picks token-in/token-out addresses for a trade.
func resolveTokens(t *domain.Trade, direction string) (in, out string, src domain.TokenSource) {
	if len(t.RawPayload) > 0 {
		var raw rawPayload
		// Malformed historical payloads are absorbed, not propagated.
		if err := json.Unmarshal(t.RawPayload, &raw); err == nil {
			if raw.TokenInAddress != "" || raw.TokenOutAddress != "" {
				return raw.TokenInAddress, raw.TokenOutAddress, domain.TokenSourceStructured
			}
		}
	}

	if t.BaseTokenAddress == "" && t.QuoteTokenAddress == "" {
		return "", "", domain.TokenSourceUnresolved
	}

	// Unknown direction was already coerced to BUY, so the BUY mapping is
	// also the default mapping.
	if direction == domain.DirectionSell {
		return t.BaseTokenAddress, t.QuoteTokenAddress, domain.TokenSourceDerived
	}
	return t.QuoteTokenAddress, t.BaseTokenAddress, domain.TokenSourceDerived
}
