package memory

import (
	"context"
	"sort"
	"sync"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// Snapshots are write-once: Insert under the lock is the atomic
// check-then-insert guard.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SeasonUserSnapshot // keyed by seasonID|userID
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{data: make(map[string]*domain.SeasonUserSnapshot)}
}

func snapshotKey(seasonID, userID string) string {
	return seasonID + "|" + userID
}

// Insert adds a snapshot. Returns ErrDuplicateKey if the pair exists.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.SeasonUserSnapshot) error {
	if snap == nil || snap.SeasonID == "" || snap.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey(snap.SeasonID, snap.UserID)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	cp := *snap
	s.data[key] = &cp
	return nil
}

// Get retrieves one snapshot. Returns ErrNotFound if not exists.
func (s *SnapshotStore) Get(_ context.Context, seasonID, userID string) (*domain.SeasonUserSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[snapshotKey(seasonID, userID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

// GetBySeasonID retrieves all snapshots of a season, ordered by user ID.
func (s *SnapshotStore) GetBySeasonID(_ context.Context, seasonID string) ([]*domain.SeasonUserSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SeasonUserSnapshot
	for _, snap := range s.data {
		if snap.SeasonID == seasonID {
			cp := *snap
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
