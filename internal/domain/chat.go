package domain

import "time"

// ChatMessage is a message posted to a team's chat room.
type ChatMessage struct {
	ID        string
	TeamID    string
	UserID    string
	Body      string
	CreatedAt time.Time
}
