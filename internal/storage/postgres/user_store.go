package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the ID exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, wallet_address, crew_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, u.ID, u.Username, u.WalletAddress, u.CrewID, u.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, username, wallet_address, crew_id, created_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := s.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.WalletAddress, &u.CrewID, &u.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

// GetByIDs retrieves many users keyed by ID; missing IDs are absent.
func (s *UserStore) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}

	query := `
		SELECT id, username, wallet_address, crew_id, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*domain.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return result, nil
}

// GetByCrewID retrieves all members of a crew, ordered by ID.
func (s *UserStore) GetByCrewID(ctx context.Context, crewID string) ([]*domain.User, error) {
	query := `
		SELECT id, username, wallet_address, crew_id, created_at
		FROM users
		WHERE crew_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, crewID)
	if err != nil {
		return nil, fmt.Errorf("get users by crew id: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func scanUser(rows pgx.Rows) (*domain.User, error) {
	var u domain.User
	if err := rows.Scan(&u.ID, &u.Username, &u.WalletAddress, &u.CrewID, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}
	return &u, nil
}
