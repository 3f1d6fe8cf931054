package domain

// User is a registered trader. Corresponds to the users table.
type User struct {
	ID            string  // UUID
	Username      string
	WalletAddress string
	CrewID        *string // nil when the user has not joined a crew
	CreatedAt     int64   // Unix ms
}

// Crew is a named group of users competing together.
type Crew struct {
	ID        string // UUID
	Name      string
	CreatedAt int64 // Unix ms
}
