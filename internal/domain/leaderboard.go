package domain

// Ranking metric names accepted by the cohort aggregators. Anything outside
// this whitelist is rejected before use.
const (
	MetricRealizedPnL = "realizedPnl"
	MetricTotalPnL    = "totalPnl"
	MetricVolume      = "volume"
	MetricWinRate     = "winRate"
	MetricAvgWinRate  = "avgWinRate" // crew leaderboards: mean of member win rates
)

// Timeframe names accepted by the cohort aggregators.
const (
	TimeframeAll = "all"
	Timeframe30d = "30d"
	Timeframe7d  = "7d"
)

// ValidUserMetric reports whether m is an accepted user-leaderboard metric.
func ValidUserMetric(m string) bool {
	switch m {
	case MetricRealizedPnL, MetricTotalPnL, MetricVolume, MetricWinRate:
		return true
	}
	return false
}

// ValidCrewMetric reports whether m is an accepted crew-leaderboard metric.
func ValidCrewMetric(m string) bool {
	switch m {
	case MetricRealizedPnL, MetricTotalPnL, MetricVolume, MetricAvgWinRate:
		return true
	}
	return false
}

// ValidTimeframe reports whether tf is an accepted timeframe.
func ValidTimeframe(tf string) bool {
	switch tf {
	case TimeframeAll, Timeframe30d, Timeframe7d:
		return true
	}
	return false
}

// LeaderboardEntry is one ranked user row. Derived per request, never stored.
type LeaderboardEntry struct {
	UserID      string
	Username    string
	RealizedPnL float64
	TotalPnL    float64
	Volume      float64
	WinRate     float64
	TotalTrades int
	Value       float64 // the selected ranking metric's value
}

// LeaderboardPage is a ranked, paginated slice of user entries.
type LeaderboardPage struct {
	Entries []*LeaderboardEntry
	Total   int
	Limit   int
	Offset  int
}

// CrewLeaderboardEntry is one ranked crew row.
type CrewLeaderboardEntry struct {
	CrewID      string
	Name        string
	MemberCount int
	RealizedPnL float64
	TotalPnL    float64
	Volume      float64
	AvgWinRate  float64
	TotalTrades int
	Value       float64
}

// CrewLeaderboardPage is a ranked, paginated slice of crew entries.
type CrewLeaderboardPage struct {
	Entries []*CrewLeaderboardEntry
	Total   int
	Limit   int
	Offset  int
}
