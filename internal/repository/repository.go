package repository

import (
	"context"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// TeamRepository manages team records and the operations whose invariants
// span multiple rows. Multi-step writes run in a single transaction so a team
// is never observed without exactly one organizer.
type TeamRepository interface {
	// CreateTeamWithOrganizer inserts the team and the organizer's membership
	// as one unit.
	CreateTeamWithOrganizer(ctx context.Context, team *domain.Team) error
	GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error)
	ListTeamsByUser(ctx context.Context, userID string) ([]domain.Team, error)
	// TransferOwnership demotes the current organizer's membership, promotes
	// the target's, and updates the team's organizer reference atomically.
	// Returns ErrNotFound when the team or the target membership is absent.
	TransferOwnership(ctx context.Context, teamID, newOrganizerID string) error
	// DeleteTeam removes the team and fans out removal of its memberships,
	// invitations, events and chat history in one transaction.
	DeleteTeam(ctx context.Context, teamID string) error
}

// MembershipRepository is the source of truth for who belongs to which team.
type MembershipRepository interface {
	// AddMember inserts a membership; the uniqueness check and insert are one
	// atomic operation. Returns ErrDuplicateMembership when the pair exists.
	AddMember(ctx context.Context, member *domain.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
	SetMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error
}

// InvitationRepository records invitations and guards the at-most-one-pending
// invariant per (team, user) pair.
type InvitationRepository interface {
	// CreateInvitation inserts a pending invitation. Returns ErrAlreadyInvited
	// when a pending invitation for the pair exists; the check and insert are
	// atomic (partial unique index).
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	GetInvitationByID(ctx context.Context, id string) (*domain.Invitation, error)
	// RespondInvitation marks the invitation responded and, on accept, creates
	// the membership in the same transaction. A membership that already exists
	// is merged silently. Returns ErrNotFound or ErrAlreadyResponded.
	RespondInvitation(ctx context.Context, id string, accept bool, at time.Time) (*domain.Invitation, error)
	ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error)
	ListForTeam(ctx context.Context, teamID string) ([]domain.Invitation, error)
	// DeleteInvitation removes an invitation; reports whether a row existed.
	DeleteInvitation(ctx context.Context, id string) (bool, error)
}

// EventRepository persists team events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEventByID(ctx context.Context, id string) (*domain.Event, error)
	UpdateEvent(ctx context.Context, event *domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEventsByTeam(ctx context.Context, teamID string) ([]domain.Event, error)
}

// ChatRepository persists team chat history.
type ChatRepository interface {
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessagesByTeam(ctx context.Context, teamID string, limit, offset int) ([]domain.ChatMessage, error)
}

// SupportRepository persists support tickets.
type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *domain.SupportTicket) error
	GetTicketByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error)
	ListOpenTickets(ctx context.Context) ([]domain.SupportTicket, error)
	RespondTicket(ctx context.Context, id, response, respondedByID string, at time.Time) error
}

// ModerationRepository persists admin announcements and user warnings.
type ModerationRepository interface {
	CreateAnnouncement(ctx context.Context, a *domain.Announcement) error
	ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error)
	CreateWarning(ctx context.Context, w *domain.Warning) error
	ListWarningsByUser(ctx context.Context, userID string) ([]domain.Warning, error)
}

// TokenRepository stores revoked token identifiers until they expire.
type TokenRepository interface {
	RevokeToken(ctx context.Context, token *domain.RevokedToken) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpiredTokens(ctx context.Context, before time.Time) error
}
