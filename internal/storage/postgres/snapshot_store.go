package postgres

import (
	"context"
	"fmt"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
//
// The primary key on (season_id, user_id) is the write-once guard: a second
// insert for the same pair hits the unique violation and surfaces as
// ErrDuplicateKey, so concurrent snapshotters cannot overwrite each other.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a snapshot. Returns ErrDuplicateKey if the pair exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.SeasonUserSnapshot) error {
	query := `
		INSERT INTO season_user_snapshots (
			season_id, user_id, realized_pnl, total_pnl, volume, total_trades
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		snap.SeasonID,
		snap.UserID,
		snap.RealizedPnL,
		snap.TotalPnL,
		snap.Volume,
		snap.TotalTrades,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Get retrieves one snapshot. Returns ErrNotFound if not exists.
func (s *SnapshotStore) Get(ctx context.Context, seasonID, userID string) (*domain.SeasonUserSnapshot, error) {
	query := `
		SELECT season_id, user_id, realized_pnl, total_pnl, volume, total_trades, created_at
		FROM season_user_snapshots
		WHERE season_id = $1 AND user_id = $2
	`

	var snap domain.SeasonUserSnapshot
	err := s.pool.QueryRow(ctx, query, seasonID, userID).Scan(
		&snap.SeasonID,
		&snap.UserID,
		&snap.RealizedPnL,
		&snap.TotalPnL,
		&snap.Volume,
		&snap.TotalTrades,
		&snap.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// GetBySeasonID retrieves all snapshots of a season, ordered by user ID.
func (s *SnapshotStore) GetBySeasonID(ctx context.Context, seasonID string) ([]*domain.SeasonUserSnapshot, error) {
	query := `
		SELECT season_id, user_id, realized_pnl, total_pnl, volume, total_trades, created_at
		FROM season_user_snapshots
		WHERE season_id = $1
		ORDER BY user_id ASC
	`

	rows, err := s.pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by season id: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.SeasonUserSnapshot
	for rows.Next() {
		var snap domain.SeasonUserSnapshot
		err := rows.Scan(
			&snap.SeasonID,
			&snap.UserID,
			&snap.RealizedPnL,
			&snap.TotalPnL,
			&snap.Volume,
			&snap.TotalTrades,
			&snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}
