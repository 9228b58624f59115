package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

// Service enforces the business rules that span team state and membership.
// The team's organizer reference is the single source of truth for who
// organizes; membership roles are display values it keeps in step.
type Service struct {
	teams   repository.TeamRepository
	members repository.MembershipRepository
	logger  *slog.Logger
}

// New constructs a Service.
func New(teams repository.TeamRepository, members repository.MembershipRepository, logger *slog.Logger) Service {
	return Service{teams: teams, members: members, logger: logger}
}

// Create registers a team together with the organizer's membership. The two
// inserts are one unit of work; a team is never observed without its
// organizer.
func (s Service) Create(ctx context.Context, organizerID, name, description string, open bool) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.E(domain.KindValidation, "team name is required")
	}
	team := &domain.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Open:        open,
		OrganizerID: organizerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.teams.CreateTeamWithOrganizer(ctx, team); err != nil {
		return nil, err
	}
	s.logger.Info("team created", "team_id", team.ID, "organizer_id", organizerID, "open", open)
	return team, nil
}

// Get returns a team by id.
func (s Service) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "team not found")
		}
		return nil, err
	}
	return team, nil
}

// ListForUser returns teams the user belongs to.
func (s Service) ListForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	return s.teams.ListTeamsByUser(ctx, userID)
}

// Members lists a team's memberships. Only current members may look.
func (s Service) Members(ctx context.Context, teamID, actorID string) ([]domain.TeamMember, error) {
	if _, err := s.Get(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	return s.members.ListMembers(ctx, teamID)
}

// Membership returns the member record for a (team, user) pair.
func (s Service) Membership(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	m, err := s.members.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return nil, err
	}
	return m, nil
}

// Join adds the user to an open team with the member role. Closed teams can
// only be entered through an accepted invitation, never by direct join.
func (s Service) Join(ctx context.Context, teamID, userID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.Open {
		return domain.E(domain.KindTeamClosed, "team is closed; ask the organizer for an invitation")
	}
	member := &domain.TeamMember{
		TeamID:    teamID,
		UserID:    userID,
		Role:      domain.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.members.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			return domain.E(domain.KindAlreadyMember, "user is already a member of this team")
		}
		return err
	}
	s.logger.Info("user joined team", "team_id", teamID, "user_id", userID)
	return nil
}

// Leave removes the caller's own membership. The organizer must transfer
// ownership first, or delete the team; this holds even when the organizer is
// the only member left.
func (s Service) Leave(ctx context.Context, teamID, userID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OrganizerID == userID {
		return domain.E(domain.KindOrganizerCannotLeave, "organizer must transfer ownership or delete the team")
	}
	if err := s.members.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return err
	}
	s.logger.Info("user left team", "team_id", teamID, "user_id", userID)
	return nil
}

// Kick removes another member. Only the organizer may kick, and the organizer
// cannot be the target; ownership transfer or team deletion are the only ways
// to unseat an organizer.
func (s Service) Kick(ctx context.Context, teamID, actorID, targetID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OrganizerID != actorID {
		return domain.E(domain.KindNotAuthorized, "only the organizer can remove members")
	}
	if team.OrganizerID == targetID {
		return domain.E(domain.KindOrganizerCannotLeave, "organizer cannot be kicked; transfer ownership first")
	}
	if err := s.members.RemoveMember(ctx, teamID, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return err
	}
	s.logger.Info("member kicked", "team_id", teamID, "user_id", targetID, "by", actorID)
	return nil
}

// SetMemberRole updates a membership's display role. The organizer role is
// not assignable here: it moves exclusively through TransferOwnership, which
// keeps the team's organizer reference and the roles consistent.
func (s Service) SetMemberRole(ctx context.Context, teamID, actorID, targetID string, role domain.Role) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OrganizerID != actorID {
		return domain.E(domain.KindNotAuthorized, "only the organizer can change member roles")
	}
	if role == domain.RoleOrganizer || team.OrganizerID == targetID {
		return domain.E(domain.KindValidation, "organizer role changes only through ownership transfer")
	}
	if role != domain.RoleMember {
		return domain.E(domain.KindValidation, "unknown role")
	}
	if err := s.members.SetMemberRole(ctx, teamID, targetID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return err
	}
	return nil
}

// TransferOwnership moves the organizer seat to an existing member. The
// demotion, promotion and organizer-reference update land atomically so the
// team never has zero or two organizers.
func (s Service) TransferOwnership(ctx context.Context, teamID, actorID, newOrganizerID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OrganizerID != actorID {
		return domain.E(domain.KindNotAuthorized, "only the organizer can transfer ownership")
	}
	if err := s.teams.TransferOwnership(ctx, teamID, newOrganizerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "new organizer must already be a member")
		}
		return err
	}
	s.logger.Info("ownership transferred", "team_id", teamID, "from", actorID, "to", newOrganizerID)
	return nil
}

// Delete removes the team and everything scoped to it. Organizer only.
func (s Service) Delete(ctx context.Context, teamID, actorID string) error {
	team, err := s.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OrganizerID != actorID {
		return domain.E(domain.KindNotAuthorized, "only the organizer can delete the team")
	}
	return s.forceDelete(ctx, teamID)
}

// ForceDelete removes a team without an organizer check. Reserved for
// administrator moderation.
func (s Service) ForceDelete(ctx context.Context, teamID string) error {
	if _, err := s.Get(ctx, teamID); err != nil {
		return err
	}
	return s.forceDelete(ctx, teamID)
}

func (s Service) forceDelete(ctx context.Context, teamID string) error {
	if err := s.teams.DeleteTeam(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "team not found")
		}
		return err
	}
	s.logger.Info("team deleted", "team_id", teamID)
	return nil
}

func (s Service) requireMember(ctx context.Context, teamID, userID string) error {
	_, err := s.Membership(ctx, teamID, userID)
	return err
}
