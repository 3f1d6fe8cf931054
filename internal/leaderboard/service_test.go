package leaderboard

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/pricing"
	"crew-pnl-service/internal/storage/memory"
)

var testNow = time.UnixMilli(100 * 24 * int64(time.Hour/time.Millisecond)) // day 100

func dayMs(day int) int64 {
	return int64(day) * 24 * int64(time.Hour/time.Millisecond)
}

type fixture struct {
	svc    *Service
	trades *memory.TradeStore
	users  *memory.UserStore
	crews  *memory.CrewStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		trades: memory.NewTradeStore(),
		users:  memory.NewUserStore(),
		crews:  memory.NewCrewStore(),
	}
	f.svc = New(Options{
		TradeStore: f.trades,
		UserStore:  f.users,
		CrewStore:  f.crews,
		Workers:    2,
	})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) addUser(t *testing.T, id string, crewID *string) {
	t.Helper()
	err := f.users.Insert(context.Background(), &domain.User{
		ID:       id,
		Username: "name-" + id,
		CrewID:   crewID,
	})
	if err != nil {
		t.Fatalf("insert user %s: %v", id, err)
	}
}

// addRoundTrip records a buy/sell pair on the given day that realizes
// exactly pnl dollars.
func (f *fixture) addRoundTrip(t *testing.T, userID string, day int, pnl float64) {
	t.Helper()
	amount := 1.0
	buy := &domain.Trade{
		UserID:              userID,
		Chain:               "solana",
		Direction:           "BUY",
		BaseTokenAddress:    "TOKEN",
		NormalizedAmountOut: &amount,
		USDValue:            100,
		Timestamp:           dayMs(day),
	}
	sellAmount := 1.0
	sell := &domain.Trade{
		UserID:              userID,
		Chain:               "solana",
		Direction:           "SELL",
		BaseTokenAddress:    "TOKEN",
		NormalizedAmountOut: &sellAmount,
		USDValue:            100 + pnl,
		Timestamp:           dayMs(day) + 1,
	}
	for _, tr := range []*domain.Trade{buy, sell} {
		if err := f.trades.Insert(context.Background(), tr); err != nil {
			t.Fatalf("insert trade: %v", err)
		}
	}
}

func TestUserLeaderboard_RankingAndStability(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a", nil)
	f.addUser(t, "b", nil)
	f.addUser(t, "c", nil)
	f.addRoundTrip(t, "a", 50, 10)
	f.addRoundTrip(t, "b", 50, -5)
	f.addRoundTrip(t, "c", 50, 10)

	page, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricRealizedPnL,
		Timeframe: domain.TimeframeAll,
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}

	if page.Total != 3 || len(page.Entries) != 3 {
		t.Fatalf("total=%d entries=%d, want 3/3", page.Total, len(page.Entries))
	}
	// Equal values keep input order (user IDs ascending), so a before c.
	wantOrder := []string{"a", "c", "b"}
	for i, want := range wantOrder {
		if page.Entries[i].UserID != want {
			t.Errorf("rank %d = %s, want %s", i+1, page.Entries[i].UserID, want)
		}
	}
	if math.Abs(page.Entries[0].Value-10) > 1e-9 {
		t.Errorf("top value = %v, want 10", page.Entries[0].Value)
	}
	if page.Entries[0].Username != "name-a" {
		t.Errorf("username = %q, want name-a", page.Entries[0].Username)
	}
}

func TestUserLeaderboard_Pagination(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		f.addUser(t, id, nil)
		f.addRoundTrip(t, id, 50, 1)
	}

	page, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricRealizedPnL,
		Timeframe: domain.TimeframeAll,
		Limit:     2,
		Offset:    2,
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}

	if page.Total != 4 {
		t.Errorf("Total = %d, want 4", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(page.Entries))
	}
	if page.Limit != 2 || page.Offset != 2 {
		t.Errorf("page meta = %d/%d, want 2/2", page.Limit, page.Offset)
	}

	// Offset past the end yields an empty page, not an error.
	empty, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricRealizedPnL,
		Timeframe: domain.TimeframeAll,
		Offset:    100,
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}
	if len(empty.Entries) != 0 || empty.Total != 4 {
		t.Errorf("past-end page: entries=%d total=%d", len(empty.Entries), empty.Total)
	}
}

func TestUserLeaderboard_RejectsUnknownMetricAndTimeframe(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UserLeaderboard(context.Background(), Query{Metric: "drop table", Timeframe: domain.TimeframeAll})
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("metric error = %v, want ErrInvalidMetric", err)
	}

	_, err = f.svc.UserLeaderboard(context.Background(), Query{Metric: domain.MetricVolume, Timeframe: "90d"})
	if !errors.Is(err, ErrInvalidTimeframe) {
		t.Errorf("timeframe error = %v, want ErrInvalidTimeframe", err)
	}

	// avgWinRate is a crew metric, not a user metric.
	_, err = f.svc.UserLeaderboard(context.Background(), Query{Metric: domain.MetricAvgWinRate, Timeframe: domain.TimeframeAll})
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("crew metric on user board = %v, want ErrInvalidMetric", err)
	}
}

func TestUserLeaderboard_WindowFiltersDisplayedMetric(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a", nil)
	// Old profit outside the 7d window, recent loss inside it.
	f.addRoundTrip(t, "a", 10, 100)
	f.addRoundTrip(t, "a", 99, -20)

	page, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricRealizedPnL,
		Timeframe: domain.Timeframe7d,
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(page.Entries))
	}

	// Only the recent round trip counts toward the displayed figure, even
	// though the ledger ran over the full history.
	e := page.Entries[0]
	if math.Abs(e.RealizedPnL-(-20)) > 1e-9 {
		t.Errorf("windowed RealizedPnL = %v, want -20", e.RealizedPnL)
	}
	if e.TotalTrades != 2 {
		t.Errorf("windowed TotalTrades = %d, want 2", e.TotalTrades)
	}
}

func TestUserLeaderboard_WindowExcludesInactiveUsers(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "active", nil)
	f.addUser(t, "dormant", nil)
	f.addRoundTrip(t, "active", 99, 5)
	f.addRoundTrip(t, "dormant", 10, 500)

	page, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricRealizedPnL,
		Timeframe: domain.Timeframe7d,
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}

	if len(page.Entries) != 1 || page.Entries[0].UserID != "active" {
		t.Errorf("entries = %+v, want only the active user", page.Entries)
	}
}

func TestUserPnL_AppliesPrices(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a", nil)

	amount := 10.0
	buy := &domain.Trade{
		UserID:              "a",
		Chain:               "solana",
		Direction:           "BUY",
		BaseTokenAddress:    "TOKEN",
		NormalizedAmountOut: &amount,
		USDValue:            100,
		Timestamp:           dayMs(99),
	}
	if err := f.trades.Insert(context.Background(), buy); err != nil {
		t.Fatalf("insert trade: %v", err)
	}
	f.svc.prices = pricing.StaticSource{"TOKEN_solana": 15}

	res, err := f.svc.UserPnL(context.Background(), "a")
	if err != nil {
		t.Fatalf("UserPnL failed: %v", err)
	}

	if len(res.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(res.Positions))
	}
	if math.Abs(res.UnrealizedPnL-50) > 1e-9 {
		t.Errorf("UnrealizedPnL = %v, want 50", res.UnrealizedPnL)
	}
	if math.Abs(res.TotalPnL-50) > 1e-9 {
		t.Errorf("TotalPnL = %v, want 50", res.TotalPnL)
	}
}

func TestCrewPnL_MergesMembers(t *testing.T) {
	f := newFixture(t)
	crewID := "crew-1"
	if err := f.crews.Insert(context.Background(), &domain.Crew{ID: crewID, Name: "The Crew"}); err != nil {
		t.Fatalf("insert crew: %v", err)
	}
	f.addUser(t, "a", &crewID)
	f.addUser(t, "b", &crewID)
	f.addRoundTrip(t, "a", 50, 10)
	f.addRoundTrip(t, "b", 50, 20)

	res, err := f.svc.CrewPnL(context.Background(), crewID)
	if err != nil {
		t.Fatalf("CrewPnL failed: %v", err)
	}

	if math.Abs(res.RealizedPnL-30) > 1e-9 {
		t.Errorf("RealizedPnL = %v, want 30", res.RealizedPnL)
	}
	if res.Metrics.TotalTrades != 4 {
		t.Errorf("TotalTrades = %d, want 4", res.Metrics.TotalTrades)
	}
}

func TestCrewPnL_UnknownCrew(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CrewPnL(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown crew")
	}
}

func TestCrewLeaderboard_AvgWinRate(t *testing.T) {
	f := newFixture(t)
	crewID := "crew-1"
	if err := f.crews.Insert(context.Background(), &domain.Crew{ID: crewID, Name: "The Crew"}); err != nil {
		t.Fatalf("insert crew: %v", err)
	}
	f.addUser(t, "a", &crewID)
	f.addUser(t, "b", &crewID)
	// a: 1 win over 2 trades (winRate 0.5); b: 1 loss over 2 trades (0).
	f.addRoundTrip(t, "a", 50, 10)
	f.addRoundTrip(t, "b", 50, -10)

	page, err := f.svc.CrewLeaderboard(context.Background(), Query{
		Metric:    domain.MetricAvgWinRate,
		Timeframe: domain.TimeframeAll,
	})
	if err != nil {
		t.Fatalf("CrewLeaderboard failed: %v", err)
	}

	if len(page.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(page.Entries))
	}
	e := page.Entries[0]
	if e.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", e.MemberCount)
	}
	if math.Abs(e.AvgWinRate-0.25) > 1e-9 {
		t.Errorf("AvgWinRate = %v, want 0.25 (mean of 0.5 and 0)", e.AvgWinRate)
	}
	if math.Abs(e.Value-0.25) > 1e-9 {
		t.Errorf("Value = %v, want the avgWinRate", e.Value)
	}
}

func TestCrewLeaderboard_RejectsUserOnlyMetric(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CrewLeaderboard(context.Background(), Query{Metric: domain.MetricWinRate, Timeframe: domain.TimeframeAll})
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("error = %v, want ErrInvalidMetric", err)
	}
}

func TestWindowedStats_ChainFilter(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "a", nil)
	f.addRoundTrip(t, "a", 50, 10)

	eth := &domain.Trade{
		UserID:            "a",
		Chain:             "ethereum",
		Direction:         "BUY",
		BaseTokenAddress:  "WETH",
		QuoteTokenAddress: "USDC",
		USDValue:          1000,
		Timestamp:         dayMs(50),
	}
	if err := f.trades.Insert(context.Background(), eth); err != nil {
		t.Fatalf("insert trade: %v", err)
	}

	page, err := f.svc.UserLeaderboard(context.Background(), Query{
		Metric:    domain.MetricVolume,
		Timeframe: domain.TimeframeAll,
		Chain:     "solana",
	})
	if err != nil {
		t.Fatalf("UserLeaderboard failed: %v", err)
	}

	if math.Abs(page.Entries[0].Volume-210) > 1e-9 {
		t.Errorf("chain-filtered Volume = %v, want 210", page.Entries[0].Volume)
	}
}
