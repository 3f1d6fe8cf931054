// Package challenge runs crew head-to-head contests: lifecycle transitions
// and realized-PnL winner determination.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crew-pnl-service/internal/domain"
	"crew-pnl-service/internal/pnl"
	"crew-pnl-service/internal/storage"
)

// Errors surfaced to callers.
var (
	// ErrNotPending is returned when accepting or declining a challenge
	// that already left the pending state.
	ErrNotPending = errors.New("challenge is not pending")

	// ErrMissingWindow is returned when an active challenge reaches
	// finalization without its contest window. This is a structural
	// precondition violation, never silently computed around.
	ErrMissingWindow = errors.New("challenge has no start/end time")

	// ErrSameCrew is returned when a crew challenges itself.
	ErrSameCrew = errors.New("challenger and opponent are the same crew")

	// ErrInvalidDuration is returned for a non-positive duration.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// SweepResult summarizes one overdue-challenge sweep.
type SweepResult struct {
	Finalized int
	Failed    int // per-challenge failures, sweep continued
}

// Service manages the challenge state machine.
type Service struct {
	challenges storage.ChallengeStore
	crews      storage.CrewStore
	users      storage.UserStore
	trades     storage.TradeStore
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a challenge service.
func New(challenges storage.ChallengeStore, crews storage.CrewStore, users storage.UserStore, trades storage.TradeStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		challenges: challenges,
		crews:      crews,
		users:      users,
		trades:     trades,
		logger:     logger,
		now:        time.Now,
	}
}

// Create issues a pending challenge from one crew to another.
func (s *Service) Create(ctx context.Context, challengerID, opponentID string, durationHours int) (*domain.Challenge, error) {
	if challengerID == opponentID {
		return nil, ErrSameCrew
	}
	if durationHours <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.crews.GetByID(ctx, challengerID); err != nil {
		return nil, fmt.Errorf("fetch challenger crew: %w", err)
	}
	if _, err := s.crews.GetByID(ctx, opponentID); err != nil {
		return nil, fmt.Errorf("fetch opponent crew: %w", err)
	}

	c := &domain.Challenge{
		ID:            uuid.NewString(),
		ChallengerID:  challengerID,
		OpponentID:    opponentID,
		Status:        domain.ChallengeStatusPending,
		DurationHours: durationHours,
		CreatedAt:     s.now().UnixMilli(),
	}
	if err := s.challenges.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("insert challenge: %w", err)
	}
	return c, nil
}

// Accept moves a pending challenge to active, opening the contest window
// [now, now + durationHours].
func (s *Service) Accept(ctx context.Context, id string) (*domain.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch challenge: %w", err)
	}

	startAt := s.now().UnixMilli()
	endAt := startAt + int64(c.DurationHours)*time.Hour.Milliseconds()

	ok, err := s.challenges.ActivateIfPending(ctx, id, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("activate challenge: %w", err)
	}
	if !ok {
		return nil, ErrNotPending
	}
	return s.challenges.GetByID(ctx, id)
}

// Decline moves a pending challenge to declined.
func (s *Service) Decline(ctx context.Context, id string) (*domain.Challenge, error) {
	ok, err := s.challenges.DeclineIfPending(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("decline challenge: %w", err)
	}
	if !ok {
		return nil, ErrNotPending
	}
	return s.challenges.GetByID(ctx, id)
}

// Get retrieves a challenge, finalizing it first when its window has
// elapsed. Reads are what usually notice an overdue contest; the cron
// sweep only catches the ones nobody looked at.
func (s *Service) Get(ctx context.Context, id string) (*domain.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch challenge: %w", err)
	}
	if c.Overdue(s.now().UnixMilli()) {
		return s.finalize(ctx, c)
	}
	return c, nil
}

// FinalizeOverdue sweeps all overdue active challenges. One challenge's
// failure is counted and logged; the sweep continues.
func (s *Service) FinalizeOverdue(ctx context.Context) (*SweepResult, error) {
	overdue, err := s.challenges.GetOverdueActive(ctx, s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list overdue challenges: %w", err)
	}

	result := &SweepResult{}
	for _, c := range overdue {
		if _, err := s.finalize(ctx, c); err != nil {
			result.Failed++
			s.logger.Warn("challenge finalization failed",
				zap.String("challenge_id", c.ID),
				zap.Error(err))
			continue
		}
		result.Finalized++
	}
	return result, nil
}

// finalize determines the winner and completes the challenge. The winner
// is the crew with strictly greater realized PnL — not total PnL — over
// its members' trades within [startAt, endAt]; equal realized PnL is a
// draw (nil winner). Idempotent: the conditional status update means only
// one concurrent finalizer wins, the loser just re-reads the result.
func (s *Service) finalize(ctx context.Context, c *domain.Challenge) (*domain.Challenge, error) {
	if c.StartAt == nil || c.EndAt == nil {
		return nil, fmt.Errorf("challenge %s: %w", c.ID, ErrMissingWindow)
	}

	challengerPnL, err := s.crewRealizedPnL(ctx, c.ChallengerID, *c.StartAt, *c.EndAt)
	if err != nil {
		return nil, fmt.Errorf("challenger realized pnl: %w", err)
	}
	opponentPnL, err := s.crewRealizedPnL(ctx, c.OpponentID, *c.StartAt, *c.EndAt)
	if err != nil {
		return nil, fmt.Errorf("opponent realized pnl: %w", err)
	}

	var winner *string
	switch {
	case challengerPnL > opponentPnL:
		winner = &c.ChallengerID
	case opponentPnL > challengerPnL:
		winner = &c.OpponentID
	}

	won, err := s.challenges.CompleteIfActive(ctx, c.ID, winner)
	if err != nil {
		return nil, fmt.Errorf("complete challenge: %w", err)
	}
	if won {
		s.logger.Info("challenge finalized",
			zap.String("challenge_id", c.ID),
			zap.Float64("challenger_realized_pnl", challengerPnL),
			zap.Float64("opponent_realized_pnl", opponentPnL))
	}

	// Lost races land here too; the stored row is authoritative either way.
	return s.challenges.GetByID(ctx, c.ID)
}

// crewRealizedPnL sums realized PnL over a crew's members' trades within
// the contest window.
func (s *Service) crewRealizedPnL(ctx context.Context, crewID string, startAt, endAt int64) (float64, error) {
	members, err := s.users.GetByCrewID(ctx, crewID)
	if err != nil {
		return 0, fmt.Errorf("fetch crew members: %w", err)
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	histories, err := s.trades.GetByUserIDsInRange(ctx, memberIDs, startAt, endAt)
	if err != nil {
		return 0, fmt.Errorf("bulk fetch member trades: %w", err)
	}

	total := 0.0
	for _, trades := range histories {
		res := pnl.Compute(trades, nil)
		total += res.RealizedPnL
	}
	return total, nil
}
