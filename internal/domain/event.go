package domain

import "time"

// Event is a scheduled activity owned by a team.
type Event struct {
	ID          string
	TeamID      string
	CreatedByID string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
}
