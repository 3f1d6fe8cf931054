package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage/postgres"
)

func TestTradeStore_InsertAndGetByUserID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	userID := insertTestUser(t, pool, nil)

	trade := &domain.Trade{
		UserID:              userID,
		Chain:               "solana",
		Direction:           "BUY",
		BaseTokenAddress:    "TokenMint123",
		QuoteTokenAddress:   "USDC",
		NormalizedAmountIn:  ptr(100.0),
		NormalizedAmountOut: ptr(5.5),
		USDValue:            100.0,
		RawPayload:          []byte(`{"token_in_address":"USDC","token_out_address":"TokenMint123"}`),
		Timestamp:           1700000000000,
	}

	err := store.Insert(ctx, trade)
	require.NoError(t, err)
	assert.NotZero(t, trade.ID, "Insert must fill the generated ID")

	trades, err := store.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "solana", got.Chain)
	assert.Equal(t, "BUY", got.Direction)
	assert.Equal(t, "TokenMint123", got.BaseTokenAddress)
	assert.Equal(t, 5.5, *got.NormalizedAmountOut)
	assert.Equal(t, 100.0, got.USDValue)
	assert.JSONEq(t, string(trade.RawPayload), string(got.RawPayload))
	assert.Equal(t, int64(1700000000000), got.Timestamp)
	assert.NotZero(t, got.CreatedAt)
}

func TestTradeStore_OrderingByTimestampThenID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	userID := insertTestUser(t, pool, nil)

	// Same timestamp for the last two, so the ID breaks the tie.
	for _, ts := range []int64{3000, 1000, 3000} {
		err := store.Insert(ctx, &domain.Trade{
			UserID: userID, Chain: "solana", Direction: "BUY", Timestamp: ts,
		})
		require.NoError(t, err)
	}

	trades, err := store.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.Equal(t, int64(1000), trades[0].Timestamp)
	assert.Equal(t, int64(3000), trades[1].Timestamp)
	assert.Equal(t, int64(3000), trades[2].Timestamp)
	assert.Less(t, trades[1].ID, trades[2].ID)
}

func TestTradeStore_GetByUserIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	userA := insertTestUser(t, pool, nil)
	userB := insertTestUser(t, pool, nil)
	userC := insertTestUser(t, pool, nil)

	for _, uid := range []string{userA, userA, userB} {
		err := store.Insert(ctx, &domain.Trade{
			UserID: uid, Chain: "solana", Direction: "BUY", Timestamp: 1000,
		})
		require.NoError(t, err)
	}

	histories, err := store.GetByUserIDs(ctx, []string{userA, userB, userC})
	require.NoError(t, err)

	assert.Len(t, histories[userA], 2)
	assert.Len(t, histories[userB], 1)
	_, ok := histories[userC]
	assert.False(t, ok, "user without trades must be absent, not empty")

	empty, err := store.GetByUserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTradeStore_GetByUserIDsInRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	userID := insertTestUser(t, pool, nil)

	for _, ts := range []int64{500, 1500, 2500} {
		err := store.Insert(ctx, &domain.Trade{
			UserID: userID, Chain: "solana", Direction: "BUY", Timestamp: ts,
		})
		require.NoError(t, err)
	}

	histories, err := store.GetByUserIDsInRange(ctx, []string{userID}, 1000, 2000)
	require.NoError(t, err)
	require.Len(t, histories[userID], 1)
	assert.Equal(t, int64(1500), histories[userID][0].Timestamp)

	// Bounds are inclusive.
	histories, err = store.GetByUserIDsInRange(ctx, []string{userID}, 500, 2500)
	require.NoError(t, err)
	assert.Len(t, histories[userID], 3)
}

func TestTradeStore_GetUserIDsWithTrades(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	recent := insertTestUser(t, pool, nil)
	dormant := insertTestUser(t, pool, nil)

	require.NoError(t, store.Insert(ctx, &domain.Trade{
		UserID: recent, Chain: "solana", Direction: "BUY", Timestamp: 5000,
	}))
	require.NoError(t, store.Insert(ctx, &domain.Trade{
		UserID: dormant, Chain: "solana", Direction: "BUY", Timestamp: 100,
	}))

	all, err := store.GetUserIDsWithTrades(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	since, err := store.GetUserIDsWithTrades(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, recent, since[0])
}

func TestTradeStore_NullableAmounts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()
	userID := insertTestUser(t, pool, nil)

	err := store.Insert(ctx, &domain.Trade{
		UserID: userID, Chain: "solana", Direction: "SELL", Timestamp: 1000,
	})
	require.NoError(t, err)

	trades, err := store.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Nil(t, trades[0].NormalizedAmountIn)
	assert.Nil(t, trades[0].NormalizedAmountOut)
	assert.Nil(t, trades[0].RawPayload)
}
