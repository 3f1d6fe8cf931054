package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage/migrations"
	"crew-pnl-service/internal/storage/postgres"
)

// setupTestDB creates a PostgreSQL container, applies the embedded
// migrations and returns a cleanup function.
func setupTestDB(t *testing.T) (*postgres.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	err = migrations.RunPostgresMigrations(ctx, pool)
	require.NoError(t, err, "failed to run migrations")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// insertTestUser inserts a user (and optionally its crew membership) so
// foreign keys on trades and snapshots are satisfied.
func insertTestUser(t *testing.T, pool *postgres.Pool, crewID *string) string {
	t.Helper()

	store := postgres.NewUserStore(pool)
	id := uuid.NewString()
	err := store.Insert(context.Background(), &domain.User{
		ID:            id,
		Username:      "user-" + id[:8],
		WalletAddress: "wallet-" + id[:8],
		CrewID:        crewID,
	})
	require.NoError(t, err)
	return id
}

func insertTestCrew(t *testing.T, pool *postgres.Pool) string {
	t.Helper()

	store := postgres.NewCrewStore(pool)
	id := uuid.NewString()
	err := store.Insert(context.Background(), &domain.Crew{ID: id, Name: "crew-" + id[:8]})
	require.NoError(t, err)
	return id
}

// ptr is a helper to create pointers to values.
func ptr[T any](v T) *T {
	return &v
}
