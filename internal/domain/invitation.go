package domain

import "time"

// Invitation is an offer for a user to join a team, issued by the organizer.
// RespondedAt is nil while the invitation is pending; once set the invitation
// is terminal and Accepted becomes meaningful. At most one pending invitation
// exists per (team, user) pair at any time.
type Invitation struct {
	ID            string
	TeamID        string
	InvitedUserID string
	InvitedByID   string
	SentAt        time.Time
	RespondedAt   *time.Time
	Accepted      bool
}

// Pending reports whether the invitation still awaits a response.
func (i Invitation) Pending() bool {
	return i.RespondedAt == nil
}
