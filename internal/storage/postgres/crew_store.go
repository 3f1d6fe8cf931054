package postgres

import (
	"context"
	"fmt"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// CrewStore implements storage.CrewStore using PostgreSQL.
type CrewStore struct {
	pool *Pool
}

// NewCrewStore creates a new CrewStore.
func NewCrewStore(pool *Pool) *CrewStore {
	return &CrewStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CrewStore = (*CrewStore)(nil)

// Insert adds a new crew. Returns ErrDuplicateKey if the ID exists.
func (s *CrewStore) Insert(ctx context.Context, c *domain.Crew) error {
	query := `INSERT INTO crews (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, query, c.ID, c.Name, c.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert crew: %w", err)
	}
	return nil
}

// GetByID retrieves a crew by ID. Returns ErrNotFound if not exists.
func (s *CrewStore) GetByID(ctx context.Context, id string) (*domain.Crew, error) {
	query := `SELECT id, name, created_at FROM crews WHERE id = $1`

	var c domain.Crew
	err := s.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get crew by id: %w", err)
	}
	return &c, nil
}

// GetAll retrieves all crews, ordered by ID.
func (s *CrewStore) GetAll(ctx context.Context) ([]*domain.Crew, error) {
	query := `SELECT id, name, created_at FROM crews ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all crews: %w", err)
	}
	defer rows.Close()

	var crews []*domain.Crew
	for rows.Next() {
		var c domain.Crew
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan crew row: %w", err)
		}
		crews = append(crews, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crew rows: %w", err)
	}
	return crews, nil
}
