package event

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

type stubEventRepository struct {
	events  map[string]domain.Event
	created []domain.Event
	updated []domain.Event
	deleted []string
}

func (s *stubEventRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	s.created = append(s.created, *event)
	return nil
}

func (s *stubEventRepository) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := s.events[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubEventRepository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	s.updated = append(s.updated, *event)
	return nil
}

func (s *stubEventRepository) DeleteEvent(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubEventRepository) ListEventsByTeam(ctx context.Context, teamID string) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range s.events {
		if e.TeamID == teamID {
			out = append(out, e)
		}
	}
	return out, nil
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

type fixture struct {
	events  *stubEventRepository
	teams   *stubTeamRepository
	members *stubMembershipRepository
	svc     Service
}

func newFixture() *fixture {
	f := &fixture{
		events:  &stubEventRepository{events: map[string]domain.Event{}},
		teams:   &stubTeamRepository{teams: map[string]domain.Team{}},
		members: &stubMembershipRepository{members: map[string]domain.TeamMember{}},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.events, f.teams, f.members, log)
	return f
}

func (f *fixture) addTeam(id, organizerID string) {
	f.teams.teams[id] = domain.Team{ID: id, Name: "squad", OrganizerID: organizerID}
}

func (f *fixture) addMember(teamID, userID string) {
	f.members.members[memberKey(teamID, userID)] = domain.TeamMember{TeamID: teamID, UserID: userID, Role: domain.RoleMember}
}

func validInput() CreateInput {
	starts := time.Now().Add(time.Hour)
	return CreateInput{Title: "standup", StartsAt: starts, EndsAt: starts.Add(30 * time.Minute)}
}

func TestCreateValidatesTimes(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addMember("team-1", "user-1")

	input := validInput()
	input.EndsAt = input.StartsAt.Add(-time.Hour)
	if _, err := f.svc.Create(context.Background(), "team-1", "user-1", input); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	input = validInput()
	input.Title = " "
	if _, err := f.svc.Create(context.Background(), "team-1", "user-1", input); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresMembership(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")

	if _, err := f.svc.Create(context.Background(), "team-1", "user-9", validInput()); domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}

func TestCreateStoresEvent(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.addMember("team-1", "user-2")

	event, err := f.svc.Create(context.Background(), "team-1", "user-2", validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if event.CreatedByID != "user-2" {
		t.Fatalf("expected creator user-2, got %s", event.CreatedByID)
	}
	if len(f.events.created) != 1 {
		t.Fatalf("expected one stored event, got %d", len(f.events.created))
	}
}

func TestUpdateByUnrelatedMemberRejected(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.events.events["event-1"] = domain.Event{ID: "event-1", TeamID: "team-1", CreatedByID: "user-2", Title: "standup"}

	_, err := f.svc.Update(context.Background(), "event-1", "user-3", validInput())
	if domain.KindOf(err) != domain.KindNotAuthorized {
		t.Fatalf("expected not authorized error, got %v", err)
	}
}

func TestUpdateByOrganizerAllowed(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.events.events["event-1"] = domain.Event{ID: "event-1", TeamID: "team-1", CreatedByID: "user-2", Title: "standup"}

	input := validInput()
	input.Title = "retro"
	updated, err := f.svc.Update(context.Background(), "event-1", "user-1", input)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "retro" {
		t.Fatalf("expected updated title, got %s", updated.Title)
	}
}

func TestDeleteByCreatorAllowed(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")
	f.events.events["event-1"] = domain.Event{ID: "event-1", TeamID: "team-1", CreatedByID: "user-2", Title: "standup"}

	if err := f.svc.Delete(context.Background(), "event-1", "user-2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(f.events.deleted) != 1 || f.events.deleted[0] != "event-1" {
		t.Fatalf("expected event-1 deleted, got %v", f.events.deleted)
	}
}

func TestDeleteUnknownEvent(t *testing.T) {
	f := newFixture()
	if err := f.svc.Delete(context.Background(), "event-9", "user-1"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListByTeamRequiresMembership(t *testing.T) {
	f := newFixture()
	f.addTeam("team-1", "user-1")

	if _, err := f.svc.ListByTeam(context.Background(), "team-1", "user-9"); domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}
