package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
	"github.com/FTLPetrov/team-builder-sub000/internal/ws"
	"github.com/FTLPetrov/team-builder-sub000/pkg/config"
)

// Service persists team chat and fans messages out to connected subscribers.
type Service struct {
	messages     repository.ChatRepository
	members      repository.MembershipRepository
	hub          *ws.Hub
	logger       *slog.Logger
	historyLimit int
}

// New constructs a chat service.
func New(messages repository.ChatRepository, members repository.MembershipRepository, hub *ws.Hub, logger *slog.Logger, cfg config.APIConfig) Service {
	limit := cfg.ChatHistoryLimit
	if limit <= 0 {
		limit = 100
	}
	return Service{messages: messages, members: members, hub: hub, logger: logger, historyLimit: limit}
}

// Post stores a message and broadcasts it to the team's room. Member only.
func (s Service) Post(ctx context.Context, teamID, userID, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.E(domain.KindValidation, "message body is required")
	}
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	msg := &domain.ChatMessage{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.broadcast(msg)
	return msg, nil
}

// History returns recent messages for a team, newest first. Member only.
func (s Service) History(ctx context.Context, teamID, userID string, limit, offset int) ([]domain.ChatMessage, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.messages.ListMessagesByTeam(ctx, teamID, limit, offset)
}

// Authorize reports whether the user may subscribe to a team's stream.
func (s Service) Authorize(ctx context.Context, teamID, userID string) error {
	return s.requireMember(ctx, teamID, userID)
}

// Hub returns the stream hub (useful for HTTP handlers).
func (s Service) Hub() *ws.Hub {
	return s.hub
}

func (s Service) broadcast(msg *domain.ChatMessage) {
	data, err := MarshalMessage(msg)
	if err != nil {
		s.logger.Warn("failed to marshal chat payload", "error", err)
		return
	}
	s.hub.Broadcast(msg.TeamID, data)
}

func (s Service) requireMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.members.GetMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotMember, "user is not a member of this team")
		}
		return err
	}
	return nil
}

// MarshalMessage formats a chat message for streaming payloads.
func MarshalMessage(msg *domain.ChatMessage) ([]byte, error) {
	payload := map[string]any{
		"id":         msg.ID,
		"team_id":    msg.TeamID,
		"user_id":    msg.UserID,
		"body":       msg.Body,
		"created_at": msg.CreatedAt.Format(time.RFC3339Nano),
	}
	return json.Marshal(payload)
}
