// Package memory provides in-memory storage implementations used by tests
// and single-node development runs. All stores copy records on read and
// write so callers can never alias internal state.
package memory

import (
	"context"
	"sort"
	"sync"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.Trade
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{nextID: 1}
}

// Insert adds a new trade and fills in its generated ID.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	cp.ID = s.nextID
	s.nextID++
	s.data = append(s.data, &cp)
	t.ID = cp.ID
	return nil
}

// GetByUserID retrieves a user's entire trade history, ordered.
func (s *TradeStore) GetByUserID(_ context.Context, userID string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.UserID == userID {
			cp := *t
			result = append(result, &cp)
		}
	}
	sortTrades(result)
	return result, nil
}

// GetByUserIDs retrieves full histories for many users in one bulk read.
func (s *TradeStore) GetByUserIDs(_ context.Context, userIDs []string) (map[string][]*domain.Trade, error) {
	return s.getBulk(userIDs, 0, maxTimestamp)
}

// GetByUserIDsInRange retrieves trades for many users within [start, end].
func (s *TradeStore) GetByUserIDsInRange(_ context.Context, userIDs []string, start, end int64) (map[string][]*domain.Trade, error) {
	return s.getBulk(userIDs, start, end)
}

// GetUserIDsWithTrades lists users having at least one trade since the
// given timestamp.
func (s *TradeStore) GetUserIDsWithTrades(_ context.Context, since int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, t := range s.data {
		if t.Timestamp < since {
			continue
		}
		if _, ok := seen[t.UserID]; !ok {
			seen[t.UserID] = struct{}{}
			ids = append(ids, t.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

const maxTimestamp = int64(1<<63 - 1)

func (s *TradeStore) getBulk(userIDs []string, start, end int64) (map[string][]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	result := make(map[string][]*domain.Trade)
	for _, t := range s.data {
		if _, ok := wanted[t.UserID]; !ok {
			continue
		}
		if t.Timestamp < start || t.Timestamp > end {
			continue
		}
		cp := *t
		result[t.UserID] = append(result[t.UserID], &cp)
	}
	for _, trades := range result {
		sortTrades(trades)
	}
	return result, nil
}

func sortTrades(trades []*domain.Trade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].ID < trades[j].ID
	})
}

var _ storage.TradeStore = (*TradeStore)(nil)
