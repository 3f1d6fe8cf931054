package domain

// Trade represents one executed on-chain swap as recorded by ingestion.
// Trades are immutable once recorded. Corresponds to the trades table.
type Trade struct {
	ID                  int64    // BIGSERIAL primary key
	UserID              string   // owner of the trade
	Chain               string   // chain identifier ("solana", "ethereum", ...)
	Direction           string   // "BUY" | "SELL" (dirty historical data possible)
	BaseTokenAddress    string   // base token of the pair
	QuoteTokenAddress   string   // quote token of the pair
	NormalizedAmountIn  *float64 // input amount in token units (nullable)
	NormalizedAmountOut *float64 // output amount in token units (nullable)
	USDValue            float64  // USD value of the trade
	RawPayload          []byte   // optional raw JSON from the ingestion source
	Timestamp           int64    // execution time, Unix ms
	CreatedAt           int64    // record creation time, Unix ms
}

// Trade direction constants.
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// TokenSource tags how a processed trade's token addresses were resolved.
type TokenSource int

const (
	// TokenSourceUnresolved means neither side carries a usable token address.
	TokenSourceUnresolved TokenSource = iota
	// TokenSourceStructured means addresses came from the raw payload's
	// token_in_address/token_out_address fields.
	TokenSourceStructured
	// TokenSourceDerived means addresses were derived from the base/quote
	// pair and the trade direction.
	TokenSourceDerived
)

// String returns a human-readable tag for logging.
func (s TokenSource) String() string {
	switch s {
	case TokenSourceStructured:
		return "structured"
	case TokenSourceDerived:
		return "derived"
	default:
		return "unresolved"
	}
}

// ProcessedTrade is the normalized, chain-scoped, direction-resolved form of
// a Trade, augmented by the ledger with realized PnL figures. One-to-one with
// the Trade it was built from.
type ProcessedTrade struct {
	TradeID         int64
	UserID          string
	Chain           string
	Direction       string // exactly "BUY" or "SELL" after coercion
	TokenInAddress  string
	TokenOutAddress string
	TokenSource     TokenSource
	Amount          *float64 // normalizedAmountOut, else normalizedAmountIn, else nil
	USDValue        float64
	Timestamp       int64 // Unix ms

	// Set by the FIFO ledger. Zero for buys.
	RealizedPnL   float64
	CostBasisUsed float64

	// OversoldQuantity is the sell quantity that found no matching lot and
	// was charged zero cost basis. Zero for well-formed histories.
	OversoldQuantity float64
}
