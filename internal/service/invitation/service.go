package invitation

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

// Service orchestrates the invitation life cycle: an organizer issues an
// invitation, the invited user answers it exactly once, and acceptance turns
// into a membership. Pending -> Accepted or Declined, both terminal.
type Service struct {
	invitations repository.InvitationRepository
	teams       repository.TeamRepository
	members     repository.MembershipRepository
	users       repository.UserRepository
	logger      *slog.Logger
}

// New constructs a Service.
func New(invitations repository.InvitationRepository, teams repository.TeamRepository, members repository.MembershipRepository, users repository.UserRepository, logger *slog.Logger) Service {
	return Service{invitations: invitations, teams: teams, members: members, users: users, logger: logger}
}

// Invite issues an invitation to a user, addressed by id or email. Only the
// team's organizer may invite, and inviting a current member is rejected
// outright. A pending invitation for the same pair surfaces as AlreadyInvited,
// which callers should treat as informational.
func (s Service) Invite(ctx context.Context, teamID, invitedUserRef, invitedByID string) (*domain.Invitation, error) {
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "team not found")
		}
		return nil, err
	}
	if team.OrganizerID != invitedByID {
		return nil, domain.E(domain.KindNotAuthorized, "only the organizer can invite users")
	}

	invited, err := s.resolveUser(ctx, invitedUserRef)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetMember(ctx, teamID, invited.ID); err == nil {
		return nil, domain.E(domain.KindAlreadyMember, "user is already a member of this team")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	inv := &domain.Invitation{
		ID:            uuid.NewString(),
		TeamID:        teamID,
		InvitedUserID: invited.ID,
		InvitedByID:   invitedByID,
		SentAt:        time.Now().UTC(),
	}
	if err := s.invitations.CreateInvitation(ctx, inv); err != nil {
		if errors.Is(err, repository.ErrAlreadyInvited) {
			return nil, domain.E(domain.KindAlreadyInvited, "user already has a pending invitation")
		}
		return nil, err
	}
	s.logger.Info("invitation sent", "invitation_id", inv.ID, "team_id", teamID, "invited_user_id", invited.ID)
	return inv, nil
}

// Respond resolves a pending invitation. Only the invited user may answer.
// Accepting creates the membership in the same unit of work; if the user
// joined the team through another path while the invitation was pending, the
// response is still recorded as accepted and the memberships merge.
func (s Service) Respond(ctx context.Context, invitationID, actorID string, accept bool) (*domain.Invitation, error) {
	inv, err := s.get(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.InvitedUserID != actorID {
		return nil, domain.E(domain.KindNotAuthorized, "only the invited user can respond")
	}
	resolved, err := s.invitations.RespondInvitation(ctx, invitationID, accept, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResponded) {
			return nil, domain.E(domain.KindAlreadyResponded, "invitation has already been responded to")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "invitation not found")
		}
		return nil, err
	}
	s.logger.Info("invitation responded", "invitation_id", invitationID, "accepted", accept)
	return resolved, nil
}

// Cancel retracts a pending invitation. Only the team's organizer may cancel,
// and responded invitations stay on record as history.
func (s Service) Cancel(ctx context.Context, invitationID, actorID string) error {
	inv, err := s.get(ctx, invitationID)
	if err != nil {
		return err
	}
	team, err := s.teams.GetTeamByID(ctx, inv.TeamID)
	if err != nil {
		return err
	}
	if team.OrganizerID != actorID {
		return domain.E(domain.KindNotAuthorized, "only the organizer can cancel invitations")
	}
	if !inv.Pending() {
		return domain.E(domain.KindAlreadyResponded, "invitation has already been responded to")
	}
	removed, err := s.invitations.DeleteInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if removed {
		s.logger.Info("invitation cancelled", "invitation_id", invitationID, "by", actorID)
	}
	return nil
}

// ListPendingForUser returns the caller's unanswered invitations.
func (s Service) ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error) {
	return s.invitations.ListPendingForUser(ctx, userID)
}

// ListForTeam returns a team's invitation history. Organizer only.
func (s Service) ListForTeam(ctx context.Context, teamID, actorID string) ([]domain.Invitation, error) {
	team, err := s.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "team not found")
		}
		return nil, err
	}
	if team.OrganizerID != actorID {
		return nil, domain.E(domain.KindNotAuthorized, "only the organizer can list invitations")
	}
	return s.invitations.ListForTeam(ctx, teamID)
}

func (s Service) get(ctx context.Context, invitationID string) (*domain.Invitation, error) {
	inv, err := s.invitations.GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "invitation not found")
		}
		return nil, err
	}
	return inv, nil
}

func (s Service) resolveUser(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.E(domain.KindValidation, "invited user is required")
	}
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(ref, "@") {
		user, err = s.users.GetUserByEmail(ctx, ref)
	} else {
		user, err = s.users.GetUserByID(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "invited user not found")
		}
		return nil, err
	}
	return user, nil
}
