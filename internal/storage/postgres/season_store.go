package postgres

import (
	"context"
	"fmt"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// SeasonStore implements storage.SeasonStore using PostgreSQL.
type SeasonStore struct {
	pool *Pool
}

// NewSeasonStore creates a new SeasonStore.
func NewSeasonStore(pool *Pool) *SeasonStore {
	return &SeasonStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SeasonStore = (*SeasonStore)(nil)

// Insert adds a new season. Returns ErrDuplicateKey if the ID exists.
func (s *SeasonStore) Insert(ctx context.Context, season *domain.Season) error {
	query := `
		INSERT INTO seasons (id, name, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, season.ID, season.Name, season.StartAt, season.EndAt, season.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert season: %w", err)
	}
	return nil
}

// GetByID retrieves a season by ID. Returns ErrNotFound if not exists.
func (s *SeasonStore) GetByID(ctx context.Context, id string) (*domain.Season, error) {
	query := `SELECT id, name, start_at, end_at, created_at FROM seasons WHERE id = $1`

	var season domain.Season
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&season.ID, &season.Name, &season.StartAt, &season.EndAt, &season.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get season by id: %w", err)
	}
	return &season, nil
}

// GetActive retrieves the season containing nowMs. With overlapping seasons
// the earliest-starting one wins.
func (s *SeasonStore) GetActive(ctx context.Context, nowMs int64) (*domain.Season, error) {
	query := `
		SELECT id, name, start_at, end_at, created_at
		FROM seasons
		WHERE start_at <= $1 AND end_at >= $1
		ORDER BY start_at ASC, id ASC
		LIMIT 1
	`

	var season domain.Season
	err := s.pool.QueryRow(ctx, query, nowMs).
		Scan(&season.ID, &season.Name, &season.StartAt, &season.EndAt, &season.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get active season: %w", err)
	}
	return &season, nil
}
