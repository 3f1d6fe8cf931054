package domain

// Challenge statuses. Lifecycle: pending -> active -> {completed, declined}.
const (
	ChallengeStatusPending   = "pending"
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusDeclined  = "declined"
)

// Challenge is a two-crew head-to-head contest. Once active it holds
// StartAt/EndAt; once completed it carries WinnerCrewID (nil means draw).
type Challenge struct {
	ID            string // UUID
	ChallengerID  string // crew that issued the challenge
	OpponentID    string // crew being challenged
	Status        string
	DurationHours int
	StartAt       *int64 // Unix ms, set on acceptance
	EndAt         *int64 // Unix ms, set on acceptance
	WinnerCrewID  *string
	CreatedAt     int64 // Unix ms
}

// Overdue reports whether an active challenge's window has ended.
func (c *Challenge) Overdue(nowMs int64) bool {
	return c.Status == ChallengeStatusActive && c.EndAt != nil && *c.EndAt <= nowMs
}
