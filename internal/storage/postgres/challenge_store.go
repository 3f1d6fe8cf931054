package postgres

import (
	"context"
	"fmt"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// ChallengeStore implements storage.ChallengeStore using PostgreSQL.
//
// The state-machine transitions are conditional UPDATEs on the current
// status; the row count tells a caller whether it won the transition. Two
// concurrent finalizers both observing an overdue challenge race on the
// same UPDATE and exactly one sees rows=1.
type ChallengeStore struct {
	pool *Pool
}

// NewChallengeStore creates a new ChallengeStore.
func NewChallengeStore(pool *Pool) *ChallengeStore {
	return &ChallengeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChallengeStore = (*ChallengeStore)(nil)

const challengeColumns = `id, challenger_id, opponent_id, status, duration_hours,
	start_at, end_at, winner_crew_id, created_at`

// Insert adds a new challenge. Returns ErrDuplicateKey if the ID exists.
func (s *ChallengeStore) Insert(ctx context.Context, c *domain.Challenge) error {
	query := `
		INSERT INTO challenges (
			id, challenger_id, opponent_id, status, duration_hours,
			start_at, end_at, winner_crew_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ID,
		c.ChallengerID,
		c.OpponentID,
		c.Status,
		c.DurationHours,
		c.StartAt,
		c.EndAt,
		c.WinnerCrewID,
		c.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by ID. Returns ErrNotFound if not exists.
func (s *ChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	var c domain.Challenge
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ChallengerID,
		&c.OpponentID,
		&c.Status,
		&c.DurationHours,
		&c.StartAt,
		&c.EndAt,
		&c.WinnerCrewID,
		&c.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get challenge by id: %w", err)
	}
	return &c, nil
}

// ActivateIfPending atomically moves pending -> active.
func (s *ChallengeStore) ActivateIfPending(ctx context.Context, id string, startAt, endAt int64) (bool, error) {
	query := `
		UPDATE challenges
		SET status = $2, start_at = $3, end_at = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := s.pool.Exec(ctx, query, id, domain.ChallengeStatusActive, startAt, endAt, domain.ChallengeStatusPending)
	if err != nil {
		return false, fmt.Errorf("activate challenge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeclineIfPending atomically moves pending -> declined.
func (s *ChallengeStore) DeclineIfPending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE challenges
		SET status = $2
		WHERE id = $1 AND status = $3
	`

	tag, err := s.pool.Exec(ctx, query, id, domain.ChallengeStatusDeclined, domain.ChallengeStatusPending)
	if err != nil {
		return false, fmt.Errorf("decline challenge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteIfActive atomically moves active -> completed with the winner.
func (s *ChallengeStore) CompleteIfActive(ctx context.Context, id string, winnerCrewID *string) (bool, error) {
	query := `
		UPDATE challenges
		SET status = $2, winner_crew_id = $3
		WHERE id = $1 AND status = $4
	`

	tag, err := s.pool.Exec(ctx, query, id, domain.ChallengeStatusCompleted, winnerCrewID, domain.ChallengeStatusActive)
	if err != nil {
		return false, fmt.Errorf("complete challenge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetOverdueActive retrieves active challenges with EndAt <= nowMs.
func (s *ChallengeStore) GetOverdueActive(ctx context.Context, nowMs int64) ([]*domain.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE status = $1 AND end_at IS NOT NULL AND end_at <= $2
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, domain.ChallengeStatusActive, nowMs)
	if err != nil {
		return nil, fmt.Errorf("get overdue challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*domain.Challenge
	for rows.Next() {
		var c domain.Challenge
		err := rows.Scan(
			&c.ID,
			&c.ChallengerID,
			&c.OpponentID,
			&c.Status,
			&c.DurationHours,
			&c.StartAt,
			&c.EndAt,
			&c.WinnerCrewID,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan challenge row: %w", err)
		}
		challenges = append(challenges, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenge rows: %w", err)
	}
	return challenges, nil
}
