package chat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
	"github.com/FTLPetrov/team-builder-sub000/internal/ws"
	"github.com/FTLPetrov/team-builder-sub000/pkg/config"
)

type stubChatRepository struct {
	messages  []domain.ChatMessage
	lastLimit int
}

func (s *stubChatRepository) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *stubChatRepository) ListMessagesByTeam(ctx context.Context, teamID string, limit, offset int) ([]domain.ChatMessage, error) {
	s.lastLimit = limit
	var out []domain.ChatMessage
	for _, m := range s.messages {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

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

type captureSubscriber struct {
	received chan []byte
}

func (c *captureSubscriber) Send(payload []byte) error {
	c.received <- payload
	return nil
}

func (c *captureSubscriber) Close() {}

func newTestService(messages *stubChatRepository, members *stubMembershipRepository, hub *ws.Hub) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(messages, members, hub, log, config.APIConfig{ChatHistoryLimit: 50})
}

func TestPostRequiresMembership(t *testing.T) {
	svc := newTestService(&stubChatRepository{}, &stubMembershipRepository{members: map[string]domain.TeamMember{}}, ws.NewHub())

	_, err := svc.Post(context.Background(), "team-1", "user-9", "hello")
	if domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}

func TestPostRejectsEmptyBody(t *testing.T) {
	svc := newTestService(&stubChatRepository{}, &stubMembershipRepository{members: map[string]domain.TeamMember{}}, ws.NewHub())

	_, err := svc.Post(context.Background(), "team-1", "user-1", "   ")
	if domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPostPersistsAndBroadcasts(t *testing.T) {
	messages := &stubChatRepository{}
	members := &stubMembershipRepository{members: map[string]domain.TeamMember{
		memberKey("team-1", "user-1"): {TeamID: "team-1", UserID: "user-1"},
	}}
	hub := ws.NewHub()
	svc := newTestService(messages, members, hub)

	sub := &captureSubscriber{received: make(chan []byte, 1)}
	hub.Register("team-1", sub)

	msg, err := svc.Post(context.Background(), "team-1", "user-1", "hello")
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if len(messages.messages) != 1 {
		t.Fatalf("expected one persisted message, got %d", len(messages.messages))
	}

	select {
	case payload := <-sub.received:
		var decoded map[string]any
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("unmarshal broadcast payload: %v", err)
		}
		if decoded["id"] != msg.ID || decoded["body"] != "hello" {
			t.Fatalf("unexpected broadcast payload: %v", decoded)
		}
	case <-time.After(time.Second):
		t.Fatalf("broadcast payload never arrived")
	}
}

func TestHistoryClampsLimit(t *testing.T) {
	messages := &stubChatRepository{}
	members := &stubMembershipRepository{members: map[string]domain.TeamMember{
		memberKey("team-1", "user-1"): {TeamID: "team-1", UserID: "user-1"},
	}}
	svc := newTestService(messages, members, ws.NewHub())

	if _, err := svc.History(context.Background(), "team-1", "user-1", 10_000, 0); err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if messages.lastLimit != 50 {
		t.Fatalf("expected limit clamped to 50, got %d", messages.lastLimit)
	}

	if _, err := svc.History(context.Background(), "team-1", "user-1", 0, -5); err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if messages.lastLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", messages.lastLimit)
	}
}

func TestAuthorizeNonMember(t *testing.T) {
	svc := newTestService(&stubChatRepository{}, &stubMembershipRepository{members: map[string]domain.TeamMember{}}, ws.NewHub())

	if err := svc.Authorize(context.Background(), "team-1", "user-9"); domain.KindOf(err) != domain.KindNotMember {
		t.Fatalf("expected not member error, got %v", err)
	}
}
