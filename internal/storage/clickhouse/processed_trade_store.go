package clickhouse

import (
	"context"
	"fmt"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// ProcessedTradeStore implements storage.ProcessedTradeArchive on
// ClickHouse. Rows are append-only; duplicates collapse via the table's
// ReplacingMergeTree key (user_id, trade_id).
type ProcessedTradeStore struct {
	conn *Conn
}

// NewProcessedTradeStore creates a new ProcessedTradeStore.
func NewProcessedTradeStore(conn *Conn) *ProcessedTradeStore {
	return &ProcessedTradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ProcessedTradeArchive = (*ProcessedTradeStore)(nil)

// InsertBulk appends a batch of processed trades.
func (s *ProcessedTradeStore) InsertBulk(ctx context.Context, trades []*domain.ProcessedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO processed_trades (
			trade_id, user_id, chain, direction, token_in_address, token_out_address,
			token_source, amount, usd_value, timestamp_ms,
			realized_pnl, cost_basis_used, oversold_quantity
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare processed trade batch: %w", err)
	}

	for _, t := range trades {
		amount := 0.0
		if t.Amount != nil {
			amount = *t.Amount
		}
		err := batch.Append(
			t.TradeID,
			t.UserID,
			t.Chain,
			t.Direction,
			t.TokenInAddress,
			t.TokenOutAddress,
			t.TokenSource.String(),
			amount,
			t.USDValue,
			t.Timestamp,
			t.RealizedPnL,
			t.CostBasisUsed,
			t.OversoldQuantity,
		)
		if err != nil {
			return fmt.Errorf("append processed trade: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send processed trade batch: %w", err)
	}
	return nil
}

// GetByUserID retrieves archived rows for a user, ordered by timestamp.
func (s *ProcessedTradeStore) GetByUserID(ctx context.Context, userID string) ([]*domain.ProcessedTrade, error) {
	query := `
		SELECT trade_id, user_id, chain, direction, token_in_address, token_out_address,
			amount, usd_value, timestamp_ms, realized_pnl, cost_basis_used, oversold_quantity
		FROM processed_trades FINAL
		WHERE user_id = ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get processed trades by user id: %w", err)
	}
	defer rows.Close()

	var trades []*domain.ProcessedTrade
	for rows.Next() {
		var t domain.ProcessedTrade
		var amount float64
		err := rows.Scan(
			&t.TradeID,
			&t.UserID,
			&t.Chain,
			&t.Direction,
			&t.TokenInAddress,
			&t.TokenOutAddress,
			&amount,
			&t.USDValue,
			&t.Timestamp,
			&t.RealizedPnL,
			&t.CostBasisUsed,
			&t.OversoldQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan processed trade row: %w", err)
		}
		t.Amount = &amount
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed trade rows: %w", err)
	}
	return trades, nil
}
