package event

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

// Service handles team event scheduling. Members create and see events; only
// the event's creator or the team organizer may change or remove one.
type Service struct {
	events  repository.EventRepository
	teams   repository.TeamRepository
	members repository.MembershipRepository
	logger  *slog.Logger
}

// New constructs a Service.
func New(events repository.EventRepository, teams repository.TeamRepository, members repository.MembershipRepository, logger *slog.Logger) Service {
	return Service{events: events, teams: teams, members: members, logger: logger}
}

// CreateInput carries the fields of a new event.
type CreateInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// Create schedules an event on a team's calendar.
func (s Service) Create(ctx context.Context, teamID, actorID string, input CreateInput) (*domain.Event, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.E(domain.KindValidation, "event title is required")
	}
	if input.StartsAt.IsZero() {
		return nil, domain.E(domain.KindValidation, "event start time is required")
	}
	if !input.EndsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		return nil, domain.E(domain.KindValidation, "event cannot end before it starts")
	}
	if err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	event := &domain.Event{
		ID:          uuid.NewString(),
		TeamID:      teamID,
		CreatedByID: actorID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("event created", "event_id", event.ID, "team_id", teamID, "by", actorID)
	return event, nil
}

// ListByTeam returns a team's events. Member only.
func (s Service) ListByTeam(ctx context.Context, teamID, actorID string) ([]domain.Event, error) {
	if err := s.requireMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	return s.events.ListEventsByTeam(ctx, teamID)
}

// Update rewrites an event's details.
func (s Service) Update(ctx context.Context, eventID, actorID string, input CreateInput) (*domain.Event, error) {
	event, err := s.getForWrite(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.E(domain.KindValidation, "event title is required")
	}
	if !input.EndsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		return nil, domain.E(domain.KindValidation, "event cannot end before it starts")
	}
	event.Title = input.Title
	event.Description = strings.TrimSpace(input.Description)
	event.Location = strings.TrimSpace(input.Location)
	event.StartsAt = input.StartsAt.UTC()
	event.EndsAt = input.EndsAt.UTC()
	if err := s.events.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "event not found")
		}
		return nil, err
	}
	return event, nil
}

// Delete removes an event.
func (s Service) Delete(ctx context.Context, eventID, actorID string) error {
	if _, err := s.getForWrite(ctx, eventID, actorID); err != nil {
		return err
	}
	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "event not found")
		}
		return err
	}
	s.logger.Info("event deleted", "event_id", eventID, "by", actorID)
	return nil
}

func (s Service) getForWrite(ctx context.Context, eventID, actorID string) (*domain.Event, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "event not found")
		}
		return nil, err
	}
	team, err := s.teams.GetTeamByID(ctx, event.TeamID)
	if err != nil {
		return nil, err
	}
	if event.CreatedByID != actorID && team.OrganizerID != actorID {
		return nil, domain.E(domain.KindNotAuthorized, "only the event creator or the organizer can modify this event")
	}
	return event, nil
}

func (s Service) requireMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.teams.GetTeamByID(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "team not found")
		}
		return err
	}
	if _, err := s.members.GetMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return err
	}
	return nil
}
