package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
	"crew-pnl-service/internal/storage/postgres"
)

func TestSeasonStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSeasonStore(pool)
	ctx := context.Background()

	season := &domain.Season{
		ID:      uuid.NewString(),
		Name:    "Season One",
		StartAt: 1000,
		EndAt:   2000,
	}
	require.NoError(t, store.Insert(ctx, season))

	got, err := store.GetByID(ctx, season.ID)
	require.NoError(t, err)
	assert.Equal(t, "Season One", got.Name)
	assert.Equal(t, int64(1000), got.StartAt)
	assert.Equal(t, int64(2000), got.EndAt)

	_, err = store.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSeasonStore_GetActive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSeasonStore(pool)
	ctx := context.Background()

	past := &domain.Season{ID: uuid.NewString(), Name: "past", StartAt: 0, EndAt: 1000}
	current := &domain.Season{ID: uuid.NewString(), Name: "current", StartAt: 2000, EndAt: 9000}
	require.NoError(t, store.Insert(ctx, past))
	require.NoError(t, store.Insert(ctx, current))

	got, err := store.GetActive(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)

	// Boundaries are inclusive.
	got, err = store.GetActive(ctx, 2000)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)

	_, err = store.GetActive(ctx, 1500)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCrewStore_InsertAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewCrewStore(pool)
	ctx := context.Background()

	crew := &domain.Crew{ID: uuid.NewString(), Name: "Alpha"}
	require.NoError(t, store.Insert(ctx, crew))
	require.NoError(t, store.Insert(ctx, &domain.Crew{ID: uuid.NewString(), Name: "Beta"}))

	err := store.Insert(ctx, crew)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByID(ctx, crew.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = store.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
