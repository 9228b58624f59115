package domain

import "time"

// User represents a platform account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	Admin        bool
	Active       bool
	CreatedAt    time.Time
}

// RevokedToken records a JWT invalidated before its natural expiry. Rows are
// kept in the shared store so revocation survives restarts and is visible to
// every instance.
type RevokedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}
