package memory

import (
	"context"
	"sort"
	"sync"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/storage"
)

// ChallengeStore is an in-memory implementation of storage.ChallengeStore.
// The conditional transitions run under the write lock, matching the
// single-winner guarantee of the SQL conditional updates.
type ChallengeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Challenge
}

// NewChallengeStore creates a new in-memory challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{data: make(map[string]*domain.Challenge)}
}

// Insert adds a new challenge. Returns ErrDuplicateKey if the ID exists.
func (s *ChallengeStore) Insert(_ context.Context, c *domain.Challenge) error {
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

// GetByID retrieves a challenge by ID. Returns ErrNotFound if not exists.
func (s *ChallengeStore) GetByID(_ context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ActivateIfPending atomically moves pending -> active.
func (s *ChallengeStore) ActivateIfPending(_ context.Context, id string, startAt, endAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if c.Status != domain.ChallengeStatusPending {
		return false, nil
	}
	c.Status = domain.ChallengeStatusActive
	c.StartAt = &startAt
	c.EndAt = &endAt
	return true, nil
}

// DeclineIfPending atomically moves pending -> declined.
func (s *ChallengeStore) DeclineIfPending(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if c.Status != domain.ChallengeStatusPending {
		return false, nil
	}
	c.Status = domain.ChallengeStatusDeclined
	return true, nil
}

// CompleteIfActive atomically moves active -> completed. A finalization
// race's loser gets false, not an error.
func (s *ChallengeStore) CompleteIfActive(_ context.Context, id string, winnerCrewID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if c.Status != domain.ChallengeStatusActive {
		return false, nil
	}
	c.Status = domain.ChallengeStatusCompleted
	if winnerCrewID != nil {
		w := *winnerCrewID
		c.WinnerCrewID = &w
	} else {
		c.WinnerCrewID = nil
	}
	return true, nil
}

// GetOverdueActive retrieves active challenges with EndAt <= nowMs.
func (s *ChallengeStore) GetOverdueActive(_ context.Context, nowMs int64) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Challenge
	for _, c := range s.data {
		if c.Overdue(nowMs) {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ storage.ChallengeStore = (*ChallengeStore)(nil)
