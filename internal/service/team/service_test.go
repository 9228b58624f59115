package team

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

type stubTeamRepository struct {
	teams       map[string]domain.Team
	created     []domain.Team
	transferred []string
	deleted     []string
	transferErr error
}

func (s *stubTeamRepository) CreateTeamWithOrganizer(ctx context.Context, team *domain.Team) error {
	s.created = append(s.created, *team)
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
	if s.transferErr != nil {
		return s.transferErr
	}
	s.transferred = append(s.transferred, newOrganizerID)
	return nil
}

func (s *stubTeamRepository) DeleteTeam(ctx context.Context, teamID string) error {
	s.deleted = append(s.deleted, teamID)
	return nil
}

type stubMembershipRepository struct {
	members map[string]domain.TeamMember
	added   []domain.TeamMember
	removed []string
	addErr  error
}

func memberKey(teamID, userID string) string { return teamID + "/" + userID }

func (s *stubMembershipRepository) AddMember(ctx context.Context, member *domain.TeamMember) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, *member)
	return nil
}

func (s *stubMembershipRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	if _, ok := s.members[memberKey(teamID, userID)]; !ok {
		return repository.ErrNotFound
	}
	s.removed = append(s.removed, userID)
	return nil
}

func (s *stubMembershipRepository) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	if m, ok := s.members[memberKey(teamID, userID)]; ok {
		return &m, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubMembershipRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	var out []domain.TeamMember
	for _, m := range s.members {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMembershipRepository) SetMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	key := memberKey(teamID, userID)
	m, ok := s.members[key]
	if !ok {
		return repository.ErrNotFound
	}
	m.Role = role
	s.members[key] = m
	return nil
}

func newTestService(teams *stubTeamRepository, members *stubMembershipRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(teams, members, log)
}

func openTeam(id, organizerID string) domain.Team {
	return domain.Team{ID: id, Name: "squad", Open: true, OrganizerID: organizerID, CreatedAt: time.Now()}
}

func closedTeam(id, organizerID string) domain.Team {
	t := openTeam(id, organizerID)
	t.Open = false
	return t
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(&stubTeamRepository{}, &stubMembershipRepository{})
	if _, err := svc.Create(context.Background(), "user-1", "  ", "", true); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSetsOrganizer(t *testing.T) {
	teams := &stubTeamRepository{}
	svc := newTestService(teams, &stubMembershipRepository{})

	team, err := svc.Create(context.Background(), "user-1", "squad", "weekend project", true)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if team.OrganizerID != "user-1" {
		t.Fatalf("expected organizer user-1, got %s", team.OrganizerID)
	}
	if len(teams.created) != 1 {
		t.Fatalf("expected one created team, got %d", len(teams.created))
	}
}

func TestJoinClosedTeamRejected(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": closedTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.Join(context.Background(), "team-1", "user-2"); domain.KindOf(err) != domain.KindTeamClosed {
		t.Fatalf("expected team closed error, got %v", err)
	}
}

func TestJoinDuplicateMembership(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	members := &stubMembershipRepository{addErr: repository.ErrDuplicateMembership}
	svc := newTestService(teams, members)

	if err := svc.Join(context.Background(), "team-1", "user-2"); domain.KindOf(err) != domain.KindAlreadyMember {
		t.Fatalf("expected already member error, got %v", err)
	}
}

func TestJoinOpenTeamAddsMemberRole(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	members := &stubMembershipRepository{}
	svc := newTestService(teams, members)

	if err := svc.Join(context.Background(), "team-1", "user-2"); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}
	if len(members.added) != 1 || members.added[0].Role != domain.RoleMember {
		t.Fatalf("expected one member-role addition, got %+v", members.added)
	}
}

func TestLeaveOrganizerBlocked(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	members := &stubMembershipRepository{members: map[string]domain.TeamMember{
		memberKey("team-1", "user-1"): {TeamID: "team-1", UserID: "user-1", Role: domain.RoleOrganizer},
	}}
	svc := newTestService(teams, members)

	if err := svc.Leave(context.Background(), "team-1", "user-1"); domain.KindOf(err) != domain.KindOrganizerCannotLeave {
		t.Fatalf("expected organizer cannot leave error, got %v", err)
	}
	if len(members.removed) != 0 {
		t.Fatalf("organizer membership must not be removed")
	}
}

func TestLeaveNonMember(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.Leave(context.Background(), "team-1", "user-3"); domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}

func TestKickRequiresOrganizer(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	members := &stubMembershipRepository{members: map[string]domain.TeamMember{
		memberKey("team-1", "user-2"): {TeamID: "team-1", UserID: "user-2", Role: domain.RoleMember},
		memberKey("team-1", "user-3"): {TeamID: "team-1", UserID: "user-3", Role: domain.RoleMember},
	}}
	svc := newTestService(teams, members)

	if err := svc.Kick(context.Background(), "team-1", "user-2", "user-3"); domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestKickOrganizerTargetRejected(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.Kick(context.Background(), "team-1", "user-1", "user-1"); domain.KindOf(err) != domain.KindOrganizerCannotLeave {
		t.Fatalf("expected organizer cannot leave error, got %v", err)
	}
}

func TestKickRemovesMember(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	members := &stubMembershipRepository{members: map[string]domain.TeamMember{
		memberKey("team-1", "user-2"): {TeamID: "team-1", UserID: "user-2", Role: domain.RoleMember},
	}}
	svc := newTestService(teams, members)

	if err := svc.Kick(context.Background(), "team-1", "user-1", "user-2"); err != nil {
		t.Fatalf("Kick returned error: %v", err)
	}
	if len(members.removed) != 1 || members.removed[0] != "user-2" {
		t.Fatalf("expected user-2 removed, got %v", members.removed)
	}
}

func TestSetMemberRoleRefusesOrganizerRole(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	err := svc.SetMemberRole(context.Background(), "team-1", "user-1", "user-2", domain.RoleOrganizer)
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransferOwnershipRequiresOrganizer(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	err := svc.TransferOwnership(context.Background(), "team-1", "user-2", "user-3")
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestTransferOwnershipToNonMember(t *testing.T) {
	teams := &stubTeamRepository{
		teams:       map[string]domain.Team{"team-1": openTeam("team-1", "user-1")},
		transferErr: repository.ErrNotFound,
	}
	svc := newTestService(teams, &stubMembershipRepository{})

	err := svc.TransferOwnership(context.Background(), "team-1", "user-1", "user-9")
	if domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}

func TestTransferOwnershipDelegatesToRepository(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.TransferOwnership(context.Background(), "team-1", "user-1", "user-2"); err != nil {
		t.Fatalf("TransferOwnership returned error: %v", err)
	}
	if len(teams.transferred) != 1 || teams.transferred[0] != "user-2" {
		t.Fatalf("expected transfer to user-2, got %v", teams.transferred)
	}
}

func TestDeleteRequiresOrganizer(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.Delete(context.Background(), "team-1", "user-2"); domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
	if len(teams.deleted) != 0 {
		t.Fatalf("team must not be deleted")
	}
}

func TestForceDeleteSkipsOrganizerCheck(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if err := svc.ForceDelete(context.Background(), "team-1"); err != nil {
		t.Fatalf("ForceDelete returned error: %v", err)
	}
	if len(teams.deleted) != 1 {
		t.Fatalf("expected one deletion, got %d", len(teams.deleted))
	}
}

func TestMembersRequiresMembership(t *testing.T) {
	teams := &stubTeamRepository{teams: map[string]domain.Team{"team-1": openTeam("team-1", "user-1")}}
	svc := newTestService(teams, &stubMembershipRepository{})

	if _, err := svc.Members(context.Background(), "team-1", "user-9"); domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}

func TestGetUnknownTeam(t *testing.T) {
	svc := newTestService(&stubTeamRepository{}, &stubMembershipRepository{})
	if _, err := svc.Get(context.Background(), "team-9"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
