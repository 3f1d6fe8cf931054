package domain

// CostLot is one FIFO ledger unit created by a BUY and consumed by later
// SELLs of the same token. Cost and quantity are always reduced together,
// proportionally, so Cost/Quantity stays the lot's average unit cost.
type CostLot struct {
	Quantity float64 // token units remaining
	Cost     float64 // USD cost remaining
}

// TokenPosition is the residual per-token summary after all lots are
// processed. Exists only when residual quantity > 0.
type TokenPosition struct {
	TokenAddress   string
	Chain          string
	Quantity       float64
	AvgCostBasis   float64 // TotalCostBasis / Quantity
	TotalCostBasis float64

	// Set by the pricing overlay only when a usable price was supplied.
	// A missing price is a normal state, never zero-guessed.
	CurrentPrice  *float64
	CurrentValue  *float64
	UnrealizedPnL *float64
}

// PnLMetrics is the trading-metrics block of a PnLResult.
type PnLMetrics struct {
	TotalTrades      int
	ProfitableTrades int // sells with realized PnL > 0
	LosingTrades     int // sells with realized PnL < 0
	WinRate          float64
	Volume           float64
	AvgWin           float64
	AvgLoss          float64
}

// PnLResult is the engine's sole output. Constructed fresh on every call and
// never mutated afterward.
type PnLResult struct {
	Positions     []*TokenPosition
	RealizedPnL   float64
	UnrealizedPnL float64
	TotalPnL      float64
	Metrics       PnLMetrics
	TradeHistory  []*ProcessedTrade
}
