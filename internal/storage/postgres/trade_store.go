package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `id, user_id, chain, direction, base_token_address, quote_token_address,
	normalized_amount_in, normalized_amount_out, usd_value, raw_payload, timestamp, created_at`

// Insert adds a new trade and fills in its generated ID.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	query := `
		INSERT INTO trades (
			user_id, chain, direction, base_token_address, quote_token_address,
			normalized_amount_in, normalized_amount_out, usd_value, raw_payload, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		t.UserID,
		t.Chain,
		t.Direction,
		t.BaseTokenAddress,
		t.QuoteTokenAddress,
		t.NormalizedAmountIn,
		t.NormalizedAmountOut,
		t.USDValue,
		t.RawPayload,
		t.Timestamp,
	).Scan(&t.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's entire trade history, ordered by
// (timestamp ASC, id ASC).
func (s *TradeStore) GetByUserID(ctx context.Context, userID string) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get trades by user id: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByUserIDs retrieves full histories for many users in one bulk read.
func (s *TradeStore) GetByUserIDs(ctx context.Context, userIDs []string) (map[string][]*domain.Trade, error) {
	if len(userIDs) == 0 {
		return map[string][]*domain.Trade{}, nil
	}

	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = ANY($1)
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get trades by user ids: %w", err)
	}
	defer rows.Close()

	return groupScannedTrades(rows)
}

// GetByUserIDsInRange retrieves trades for many users within [start, end].
func (s *TradeStore) GetByUserIDsInRange(ctx context.Context, userIDs []string, start, end int64) (map[string][]*domain.Trade, error) {
	if len(userIDs) == 0 {
		return map[string][]*domain.Trade{}, nil
	}

	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE user_id = ANY($1) AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trades by user ids in range: %w", err)
	}
	defer rows.Close()

	return groupScannedTrades(rows)
}

// GetUserIDsWithTrades lists users having at least one trade since the
// given timestamp.
func (s *TradeStore) GetUserIDsWithTrades(ctx context.Context, since int64) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM trades
		WHERE timestamp >= $1
		ORDER BY user_id ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("get user ids with trades: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user id rows: %w", err)
	}
	return ids, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}

// groupScannedTrades scans rows and groups trades by user ID. Rows arrive
// ordered, so per-user slices stay ordered.
func groupScannedTrades(rows pgx.Rows) (map[string][]*domain.Trade, error) {
	result := make(map[string][]*domain.Trade)

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		result[t.UserID] = append(result[t.UserID], t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return result, nil
}

func scanTrade(rows pgx.Rows) (*domain.Trade, error) {
	var t domain.Trade

	err := rows.Scan(
		&t.ID,
		&t.UserID,
		&t.Chain,
		&t.Direction,
		&t.BaseTokenAddress,
		&t.QuoteTokenAddress,
		&t.NormalizedAmountIn,
		&t.NormalizedAmountOut,
		&t.USDValue,
		&t.RawPayload,
		&t.Timestamp,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan trade row: %w", err)
	}
	return &t, nil
}
