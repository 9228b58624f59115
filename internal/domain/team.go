package domain

import "time"

// Role describes a member's standing within a team. The team's OrganizerID is
// the source of truth for who organizes; the membership role is a denormalized
// value rewritten whenever ownership moves.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleMember    Role = "member"
)

// Team represents a collaborative group of users. A team always has exactly
// one organizer, referenced by OrganizerID, who holds a membership.
type Team struct {
	ID          string
	Name        string
	Description string
	Open        bool
	OrganizerID string
	CreatedAt   time.Time
}

// TeamMember links a user to a team with a role. The (TeamID, UserID) pair is
// unique.
type TeamMember struct {
	TeamID    string
	UserID    string
	Role      Role
	CreatedAt time.Time
}
