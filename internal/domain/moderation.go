package domain

import "time"

// Announcement is a system-wide notice published by an administrator.
type Announcement struct {
	ID          string
	Title       string
	Body        string
	CreatedByID string
	CreatedAt   time.Time
}

// Warning is a moderation notice issued to a specific user.
type Warning struct {
	ID         string
	UserID     string
	IssuedByID string
	Reason     string
	CreatedAt  time.Time
}
