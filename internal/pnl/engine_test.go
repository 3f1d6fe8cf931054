package pnl

import (
	"testing"

	"crew-pnl-service/internal/domain"
)

// makeStoredTrade leaves the quote address empty, the common shape for
// ingested swaps: grouping then lands on the base token for buys (token-out)
// and sells (token-in fallback) alike, so round trips match in the ledger.
func makeStoredTrade(id int64, direction string, amountOut, usdValue float64) *domain.Trade {
	return &domain.Trade{
		ID:                  id,
		UserID:              "u1",
		Chain:               "solana",
		Direction:           direction,
		BaseTokenAddress:    "TOKEN",
		NormalizedAmountOut: fptr(amountOut),
		USDValue:            usdValue,
		Timestamp:           id * 1000,
	}
}

func TestCompute_RoundTrip(t *testing.T) {
	// BUY 5 for $50, SELL 5 for $80: position fully closed, realized +30.
	trades := []*domain.Trade{
		makeStoredTrade(1, "BUY", 5, 50),
		makeStoredTrade(2, "SELL", 5, 80),
	}

	res := Compute(trades, nil)

	if !approxEqual(res.RealizedPnL, 30) {
		t.Errorf("RealizedPnL = %v, want 30", res.RealizedPnL)
	}
	if res.UnrealizedPnL != 0 {
		t.Errorf("UnrealizedPnL = %v, want 0 without prices", res.UnrealizedPnL)
	}
	if !approxEqual(res.TotalPnL, 30) {
		t.Errorf("TotalPnL = %v, want 30", res.TotalPnL)
	}
	if len(res.Positions) != 0 {
		t.Errorf("positions = %+v, want none after full close", res.Positions)
	}
	if !approxEqual(res.Metrics.WinRate, 0.5) {
		t.Errorf("WinRate = %v, want 0.5", res.Metrics.WinRate)
	}
	if !approxEqual(res.Metrics.Volume, 130) {
		t.Errorf("Volume = %v, want 130", res.Metrics.Volume)
	}
	if len(res.TradeHistory) != 2 {
		t.Errorf("TradeHistory length = %d, want 2", len(res.TradeHistory))
	}
}

func TestCompute_OpenPositionWithPrice(t *testing.T) {
	trades := []*domain.Trade{
		makeStoredTrade(1, "BUY", 10, 100),
	}
	prices := map[string]float64{
		TokenKey("TOKEN", "solana"): 15,
	}

	res := Compute(trades, prices)

	if len(res.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(res.Positions))
	}
	pos := res.Positions[0]
	if !approxEqual(pos.Quantity, 10) || !approxEqual(pos.AvgCostBasis, 10) {
		t.Errorf("position = %+v, want qty 10 avg 10", pos)
	}
	if pos.CurrentPrice == nil || *pos.CurrentPrice != 15 {
		t.Fatalf("CurrentPrice not applied: %v", pos.CurrentPrice)
	}
	if !approxEqual(*pos.UnrealizedPnL, 50) {
		t.Errorf("UnrealizedPnL = %v, want 50", *pos.UnrealizedPnL)
	}
	if !approxEqual(res.TotalPnL, 50) {
		t.Errorf("TotalPnL = %v, want 50", res.TotalPnL)
	}
}

func TestCompute_TokensAccountedIndependently(t *testing.T) {
	a := makeStoredTrade(1, "BUY", 10, 100)
	b := makeStoredTrade(2, "BUY", 10, 400)
	b.BaseTokenAddress = "OTHER"
	sellA := makeStoredTrade(3, "SELL", 10, 150)

	res := Compute([]*domain.Trade{a, b, sellA}, nil)

	// Selling token A must not consume token B's lot.
	if !approxEqual(res.RealizedPnL, 50) {
		t.Errorf("RealizedPnL = %v, want 50", res.RealizedPnL)
	}
	if len(res.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(res.Positions))
	}
	if res.Positions[0].TokenAddress != "OTHER" {
		t.Errorf("surviving position = %q, want OTHER", res.Positions[0].TokenAddress)
	}
}

func TestCompute_DeterministicPositionOrder(t *testing.T) {
	a := makeStoredTrade(1, "BUY", 1, 10)
	b := makeStoredTrade(2, "BUY", 1, 10)
	b.BaseTokenAddress = "BBB"
	c := makeStoredTrade(3, "BUY", 1, 10)
	c.BaseTokenAddress = "AAA"

	for run := 0; run < 5; run++ {
		res := Compute([]*domain.Trade{a, b, c}, nil)
		if len(res.Positions) != 3 {
			t.Fatalf("positions = %d, want 3", len(res.Positions))
		}
		want := []string{"TOKEN", "BBB", "AAA"} // first-appearance order
		for i, w := range want {
			if res.Positions[i].TokenAddress != w {
				t.Fatalf("run %d position %d = %q, want %q", run, i, res.Positions[i].TokenAddress, w)
			}
		}
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	res := Compute(nil, nil)

	if res.RealizedPnL != 0 || res.TotalPnL != 0 || len(res.Positions) != 0 {
		t.Errorf("empty input produced non-empty result: %+v", res)
	}
	if res.Metrics.TotalTrades != 0 {
		t.Errorf("TotalTrades = %d, want 0", res.Metrics.TotalTrades)
	}
}

func TestReprice_TwoPhase(t *testing.T) {
	res := Compute([]*domain.Trade{makeStoredTrade(1, "BUY", 10, 100)}, nil)

	keys := PositionKeys(res)
	if len(keys) != 1 || keys[0] != TokenKey("TOKEN", "solana") {
		t.Fatalf("PositionKeys = %v", keys)
	}

	Reprice(res, map[string]float64{keys[0]: 20})

	if !approxEqual(res.UnrealizedPnL, 100) {
		t.Errorf("UnrealizedPnL = %v, want 100", res.UnrealizedPnL)
	}
	if !approxEqual(res.TotalPnL, 100) {
		t.Errorf("TotalPnL = %v, want 100", res.TotalPnL)
	}
}
