package memory

import (
	"context"
	"sort"
	"sync"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// SeasonStore is an in-memory implementation of storage.SeasonStore.
type SeasonStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Season
}

// NewSeasonStore creates a new in-memory season store.
func NewSeasonStore() *SeasonStore {
	return &SeasonStore{data: make(map[string]*domain.Season)}
}

// Insert adds a new season. Returns ErrDuplicateKey if the ID exists.
func (s *SeasonStore) Insert(_ context.Context, season *domain.Season) error {
	if season == nil || season.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[season.ID]; exists {
		return storage.ErrDuplicateKey
	}
	cp := *season
	s.data[season.ID] = &cp
	return nil
}

// GetByID retrieves a season by ID. Returns ErrNotFound if not exists.
func (s *SeasonStore) GetByID(_ context.Context, id string) (*domain.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	season, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *season
	return &cp, nil
}

// GetActive retrieves the season containing nowMs. With overlapping seasons
// the earliest-starting one wins, deterministically.
func (s *SeasonStore) GetActive(_ context.Context, nowMs int64) (*domain.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*domain.Season
	for _, season := range s.data {
		if season.StartAt <= nowMs && nowMs <= season.EndAt {
			candidates = append(candidates, season)
		}
	}
	if len(candidates) == 0 {
		return nil, storage.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].StartAt != candidates[j].StartAt {
			return candidates[i].StartAt < candidates[j].StartAt
		}
		return candidates[i].ID < candidates[j].ID
	})
	cp := *candidates[0]
	return &cp, nil
}

var _ storage.SeasonStore = (*SeasonStore)(nil)
