package invitation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

type stubInvitationRepository struct {
	invitations map[string]domain.Invitation
	created     []domain.Invitation
	deleted     []string
	createErr   error
	respondErr  error
}

func (s *stubInvitationRepository) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *inv)
	return nil
}

func (s *stubInvitationRepository) GetInvitationByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := s.invitations[id]; ok {
		return &inv, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubInvitationRepository) RespondInvitation(ctx context.Context, id string, accept bool, at time.Time) (*domain.Invitation, error) {
	if s.respondErr != nil {
		return nil, s.respondErr
	}
	inv, ok := s.invitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if inv.RespondedAt != nil {
		return nil, repository.ErrAlreadyResponded
	}
	inv.RespondedAt = &at
	inv.Accepted = accept
	s.invitations[id] = inv
	return &inv, nil
}

func (s *stubInvitationRepository) ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range s.invitations {
		if inv.InvitedUserID == userID && inv.Pending() {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *stubInvitationRepository) ListForTeam(ctx context.Context, teamID string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for _, inv := range s.invitations {
		if inv.TeamID == teamID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *stubInvitationRepository) DeleteInvitation(ctx context.Context, id string) (bool, error) {
	if _, ok := s.invitations[id]; !ok {
		return false, nil
	}
	delete(s.invitations, id)
	s.deleted = append(s.deleted, id)
	return true, nil
}

type stubTeamRepository struct {
	teams map[string]domain.Team
}

func (s *stubTeamRepository) CreateTeamWithOrganizer(ctx context.Context, team *domain.Team) error {
	return nil
}

func (s *stubTeamRepository) GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	if team, ok := s.teams[teamID]; ok {
		return &team, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubTeamRepository) ListTeamsByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	return nil, nil
}

func (s *stubTeamRepository) TransferOwnership(ctx context.Context, teamID, newOrganizerID string) error {
	return nil
}

func (s *stubTeamRepository) DeleteTeam(ctx context.Context, teamID string) error { return nil }

type stubMembershipRepository struct {
	members map[string]domain.TeamMember
}

func memberKey(teamID, userID string) string { return teamID + "/" + userID }

func (s *stubMembershipRepository) AddMember(ctx context.Context, member *domain.TeamMember) error {
	return nil
}

func (s *stubMembershipRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	return nil
}

func (s *stubMembershipRepository) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	if m, ok := s.members[memberKey(teamID, userID)]; ok {
		return &m, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubMembershipRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	return nil, nil
}

func (s *stubMembershipRepository) SetMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	return nil
}

type stubUserRepository struct {
	byID    map[string]domain.User
	byEmail map[string]domain.User
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *domain.User) error { return nil }

func (s *stubUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := s.byID[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepository) SetUserActive(ctx context.Context, id string, active bool) error {
	return nil
}

func (s *stubUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) { return nil, nil }

type fixture struct {
	invitations *stubInvitationRepository
	teams       *stubTeamRepository
	members     *stubMembershipRepository
	users       *stubUserRepository
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		invitations: &stubInvitationRepository{invitations: map[string]domain.Invitation{}},
		teams:       &stubTeamRepository{teams: map[string]domain.Team{}},
		members:     &stubMembershipRepository{members: map[string]domain.TeamMember{}},
		users:       &stubUserRepository{byID: map[string]domain.User{}, byEmail: map[string]domain.User{}},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.invitations, f.teams, f.members, f.users, log)
	return f
}

func (f *fixture) addTeam(id, organizerID string) {
	f.teams.teams[id] = domain.Team{ID: id, Name: "squad", OrganizerID: organizerID}
}

func (f *fixture) addUser(id, email string) {
	u := domain.User{ID: id, Email: email, Active: true}
	f.users.byID[id] = u
	f.users.byEmail[email] = u
}

func TestInviteRequiresOrganizer(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addUser("user-2", "two@example.com")

	_, err := f.svc.Invite(context.Background(), "team-1", "user-2", "user-2")
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestInviteResolvesEmail(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addUser("user-2", "two@example.com")

	inv, err := f.svc.Invite(context.Background(), "team-1", "two@example.com", "user-1")
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if inv.InvitedUserID != "user-2" {
		t.Fatalf("expected invited user user-2, got %s", inv.InvitedUserID)
	}
	if !inv.Pending() {
		t.Fatalf("fresh invitation must be pending")
	}
}

func TestInviteUnknownUser(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")

	_, err := f.svc.Invite(context.Background(), "team-1", "ghost@example.com", "user-1")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestInviteCurrentMemberRejected(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addUser("user-2", "two@example.com")
	f.members.members[memberKey("team-1", "user-2")] = domain.TeamMember{TeamID: "team-1", UserID: "user-2"}

	_, err := f.svc.Invite(context.Background(), "team-1", "user-2", "user-1")
	if domain.KindOf(err) != domain.KindAlreadyMember {
		t.Fatalf("expected already member error, got %v", err)
	}
	if len(f.invitations.created) != 0 {
		t.Fatalf("no invitation should be created")
	}
}

func TestInvitePendingDuplicate(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addUser("user-2", "two@example.com")
	f.invitations.createErr = repository.ErrAlreadyInvited

	_, err := f.svc.Invite(context.Background(), "team-1", "user-2", "user-1")
	if domain.KindOf(err) != domain.KindAlreadyInvited {
		t.Fatalf("expected already invited error, got %v", err)
	}
}

func TestRespondOnlyInvitedUser(t *testing.T) {
	f := newFixture()
	f.invitations.invitations["inv-1"] = domain.Invitation{ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2"}

	_, err := f.svc.Respond(context.Background(), "inv-1", "user-3", true)
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestRespondAccept(t *testing.T) {
	f := newFixture()
	f.invitations.invitations["inv-1"] = domain.Invitation{ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2"}

	inv, err := f.svc.Respond(context.Background(), "inv-1", "user-2", true)
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if !inv.Accepted || inv.RespondedAt == nil {
		t.Fatalf("expected accepted invitation with response timestamp, got %+v", inv)
	}
}

func TestRespondTwiceRejected(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.invitations.invitations["inv-1"] = domain.Invitation{
		ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2", RespondedAt: &now, Accepted: false,
	}

	_, err := f.svc.Respond(context.Background(), "inv-1", "user-2", true)
	if domain.KindOf(err) != domain.KindAlreadyResponded {
		t.Fatalf("expected already responded error, got %v", err)
	}
}

func TestRespondUnknownInvitation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Respond(context.Background(), "inv-9", "user-2", true)
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCancelRequiresOrganizer(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.invitations.invitations["inv-1"] = domain.Invitation{ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2"}

	err := f.svc.Cancel(context.Background(), "inv-1", "user-2")
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestCancelRespondedInvitation(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	now := time.Now()
	f.invitations.invitations["inv-1"] = domain.Invitation{
		ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2", RespondedAt: &now, Accepted: true,
	}

	err := f.svc.Cancel(context.Background(), "inv-1", "user-1")
	if domain.KindOf(err) != domain.KindAlreadyResponded {
		t.Fatalf("expected already responded error, got %v", err)
	}
	if len(f.invitations.deleted) != 0 {
		t.Fatalf("responded invitation must stay on record")
	}
}

func TestCancelPendingInvitation(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.invitations.invitations["inv-1"] = domain.Invitation{ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2"}

	if err := f.svc.Cancel(context.Background(), "inv-1", "user-1"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if len(f.invitations.deleted) != 1 {
		t.Fatalf("expected one deleted invitation, got %d", len(f.invitations.deleted))
	}
}

func TestListForTeamOrganizerOnly(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")

	_, err := f.svc.ListForTeam(context.Background(), "team-1", "user-2")
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestListPendingForUserFiltersResponded(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.invitations.invitations["inv-1"] = domain.Invitation{ID: "inv-1", TeamID: "team-1", InvitedUserID: "user-2"}
	f.invitations.invitations["inv-2"] = domain.Invitation{
		ID: "inv-2", TeamID: "team-2", InvitedUserID: "user-2", RespondedAt: &now, Accepted: true,
	}

	pending, err := f.svc.ListPendingForUser(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListPendingForUser returned error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "inv-1" {
		t.Fatalf("expected only inv-1 pending, got %+v", pending)
	}
}
