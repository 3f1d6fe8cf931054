package storage

import (
	"context"

	"crew-pnl-service/internal/domain"
)

// TradeStore provides access to recorded trades. Trades are append-only;
// ordering is always (timestamp ASC, id ASC) for determinism.
type TradeStore interface {
	// Insert adds a new trade and fills in its generated ID.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByUserID retrieves a user's entire trade history, ordered.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Trade, error)

	// GetByUserIDs retrieves full histories for many users in one bulk
	// read, keyed by user ID. Users without trades are absent from the map.
	GetByUserIDs(ctx context.Context, userIDs []string) (map[string][]*domain.Trade, error)

	// GetByUserIDsInRange retrieves trades for many users restricted to
	// [start, end] (inclusive, Unix ms), keyed by user ID.
	GetByUserIDsInRange(ctx context.Context, userIDs []string, start, end int64) (map[string][]*domain.Trade, error)

	// GetUserIDsWithTrades lists users having at least one trade with
	// timestamp >= since (0 for everyone who ever traded).
	GetUserIDsWithTrades(ctx context.Context, since int64) ([]string, error)
}

// UserStore provides access to users.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByIDs retrieves many users keyed by ID; missing IDs are absent.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)

	// GetByCrewID retrieves all members of a crew.
	GetByCrewID(ctx context.Context, crewID string) ([]*domain.User, error)
}

// CrewStore provides access to crews.
type CrewStore interface {
	// Insert adds a new crew. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, c *domain.Crew) error

	// GetByID retrieves a crew by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Crew, error)

	// GetAll retrieves all crews.
	GetAll(ctx context.Context) ([]*domain.Crew, error)
}

// SeasonStore provides access to seasons.
type SeasonStore interface {
	// Insert adds a new season. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, s *domain.Season) error

	// GetByID retrieves a season by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Season, error)

	// GetActive retrieves the season whose [StartAt, EndAt] window contains
	// nowMs. Returns ErrNotFound when no season is running.
	GetActive(ctx context.Context, nowMs int64) (*domain.Season, error)
}

// SnapshotStore provides access to season user snapshots. Snapshots are
// write-once: Insert is the only mutation and it must fail on an existing
// (season_id, user_id) pair so that concurrent snapshotters cannot
// recompute an existing row.
type SnapshotStore interface {
	// Insert adds a snapshot. Returns ErrDuplicateKey if the pair exists.
	Insert(ctx context.Context, s *domain.SeasonUserSnapshot) error

	// Get retrieves one snapshot. Returns ErrNotFound if not exists.
	Get(ctx context.Context, seasonID, userID string) (*domain.SeasonUserSnapshot, error)

	// GetBySeasonID retrieves all snapshots of a season.
	GetBySeasonID(ctx context.Context, seasonID string) ([]*domain.SeasonUserSnapshot, error)
}

// ChallengeStore provides access to challenges. The conditional updates are
// the concurrency guard of the challenge state machine: only one writer can
// move a challenge out of a given status.
type ChallengeStore interface {
	// Insert adds a new challenge. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, c *domain.Challenge) error

	// GetByID retrieves a challenge by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)

	// ActivateIfPending atomically moves pending -> active, setting the
	// contest window. Returns false when the challenge was not pending.
	ActivateIfPending(ctx context.Context, id string, startAt, endAt int64) (bool, error)

	// DeclineIfPending atomically moves pending -> declined. Returns false
	// when the challenge was not pending.
	DeclineIfPending(ctx context.Context, id string) (bool, error)

	// CompleteIfActive atomically moves active -> completed with the given
	// winner (nil for a draw). Returns false when the challenge was not
	// active; the loser of a finalization race gets false, not an error.
	CompleteIfActive(ctx context.Context, id string, winnerCrewID *string) (bool, error)

	// GetOverdueActive retrieves active challenges with EndAt <= nowMs.
	GetOverdueActive(ctx context.Context, nowMs int64) ([]*domain.Challenge, error)
}

// ProcessedTradeArchive is an append-only analytics sink for ledger output,
// used for audit queries. Best effort: engines never read it back to
// compute PnL.
type ProcessedTradeArchive interface {
	// InsertBulk appends a batch of processed trades.
	InsertBulk(ctx context.Context, trades []*domain.ProcessedTrade) error

	// GetByUserID retrieves archived rows for a user, ordered by timestamp.
	GetByUserID(ctx context.Context, userID string) ([]*domain.ProcessedTrade, error)
}
