package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
	"github.com/FTLPetrov/team-builder-sub000/internal/service/team"
)

// Service covers administrator moderation: announcements, warnings, removing
// teams and deactivating accounts.
type Service struct {
	moderation repository.ModerationRepository
	users      repository.UserRepository
	teams      team.Service
	logger     *slog.Logger
}

// New constructs a Service.
func New(moderation repository.ModerationRepository, users repository.UserRepository, teams team.Service, logger *slog.Logger) Service {
	return Service{moderation: moderation, users: users, teams: teams, logger: logger}
}

// Announce publishes a system-wide notice.
func (s Service) Announce(ctx context.Context, adminID, title, body string) (*domain.Announcement, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, domain.E(domain.KindValidation, "title and body are required")
	}
	a := &domain.Announcement{
		ID:          uuid.NewString(),
		Title:       title,
		Body:        body,
		CreatedByID: adminID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.moderation.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("announcement published", "announcement_id", a.ID, "admin_id", adminID)
	return a, nil
}

// Announcements returns recent announcements for any signed-in user.
func (s Service) Announcements(ctx context.Context, limit int) ([]domain.Announcement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.moderation.ListAnnouncements(ctx, limit)
}

// Warn issues a moderation warning to a user.
func (s Service) Warn(ctx context.Context, adminID, userID, reason string) (*domain.Warning, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.E(domain.KindValidation, "a reason is required")
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user not found")
		}
		return nil, err
	}
	w := &domain.Warning{
		ID:         uuid.NewString(),
		UserID:     userID,
		IssuedByID: adminID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.moderation.CreateWarning(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info("warning issued", "warning_id", w.ID, "user_id", userID, "admin_id", adminID)
	return w, nil
}

// WarningsFor lists warnings issued to a user.
func (s Service) WarningsFor(ctx context.Context, userID string) ([]domain.Warning, error) {
	return s.moderation.ListWarningsByUser(ctx, userID)
}

// Users lists every account for the moderation console.
func (s Service) Users(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// RemoveTeam force-deletes a team and everything scoped to it.
func (s Service) RemoveTeam(ctx context.Context, adminID, teamID string) error {
	if err := s.teams.ForceDelete(ctx, teamID); err != nil {
		return err
	}
	s.logger.Info("team removed by admin", "team_id", teamID, "admin_id", adminID)
	return nil
}

// DeactivateUser locks an account out; existing tokens fail authorization on
// the next request.
func (s Service) DeactivateUser(ctx context.Context, adminID, userID string) error {
	if err := s.users.SetUserActive(ctx, userID, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "user not found")
		}
		return err
	}
	s.logger.Info("user deactivated", "user_id", userID, "admin_id", adminID)
	return nil
}

// ReactivateUser restores a deactivated account.
func (s Service) ReactivateUser(ctx context.Context, adminID, userID string) error {
	if err := s.users.SetUserActive(ctx, userID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "user not found")
		}
		return err
	}
	s.logger.Info("user reactivated", "user_id", userID, "admin_id", adminID)
	return nil
}
