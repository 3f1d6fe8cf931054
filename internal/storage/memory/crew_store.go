package memory

import (
	"context"
	"sort"
	"sync"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// CrewStore is an in-memory implementation of storage.CrewStore.
type CrewStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Crew
}

// NewCrewStore creates a new in-memory crew store.
func NewCrewStore() *CrewStore {
	return &CrewStore{data: make(map[string]*domain.Crew)}
}

// Insert adds a new crew. Returns ErrDuplicateKey if the ID exists.
func (s *CrewStore) Insert(_ context.Context, c *domain.Crew) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ID]; exists {
		return storage.ErrDuplicateKey
	}
	cp := *c
	s.data[c.ID] = &cp
	return nil
}

// GetByID retrieves a crew by ID. Returns ErrNotFound if not exists.
func (s *CrewStore) GetByID(_ context.Context, id string) (*domain.Crew, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// GetAll retrieves all crews, ordered by ID.
func (s *CrewStore) GetAll(_ context.Context) ([]*domain.Crew, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Crew, 0, len(s.data))
	for _, c := range s.data {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ storage.CrewStore = (*CrewStore)(nil)
