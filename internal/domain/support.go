package domain

import "time"

// Support ticket states.
const (
	SupportStatusOpen   = "open"
	SupportStatusClosed = "closed"
)

// SupportTicket is a request for help filed by a user and answered by an
// administrator.
type SupportTicket struct {
	ID            string
	UserID        string
	Subject       string
	Body          string
	Status        string
	Response      string
	RespondedByID string
	CreatedAt     time.Time
	RespondedAt   *time.Time
}
