package domain

// Season is a fixed competition window. Corresponds to the seasons table.
type Season struct {
	ID        string // UUID
	Name      string
	StartAt   int64 // Unix ms
	EndAt     int64 // Unix ms
	CreatedAt int64 // Unix ms
}

// SeasonUserSnapshot is an immutable point-in-time PnL capture for one
// (season, user) pair. Created at most once and never updated; later code
// must treat existing snapshots as write-once.
type SeasonUserSnapshot struct {
	SeasonID    string
	UserID      string
	RealizedPnL float64
	TotalPnL    float64
	Volume      float64
	TotalTrades int
	CreatedAt   int64 // Unix ms
}
