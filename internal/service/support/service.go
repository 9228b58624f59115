package support

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

// Service handles support tickets: users file them, administrators answer.
type Service struct {
	tickets repository.SupportRepository
	logger  *slog.Logger
}

// New constructs a Service.
func New(tickets repository.SupportRepository, logger *slog.Logger) Service {
	return Service{tickets: tickets, logger: logger}
}

// Create files a new ticket.
func (s Service) Create(ctx context.Context, userID, subject, body string) (*domain.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if subject == "" || body == "" {
		return nil, domain.E(domain.KindValidation, "subject and body are required")
	}
	ticket := &domain.SupportTicket{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		Status:    domain.SupportStatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("support ticket filed", "ticket_id", ticket.ID, "user_id", userID)
	return ticket, nil
}

// ListForUser returns the caller's own tickets.
func (s Service) ListForUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	return s.tickets.ListTicketsByUser(ctx, userID)
}

// ListOpen returns the admin queue of unanswered tickets.
func (s Service) ListOpen(ctx context.Context) ([]domain.SupportTicket, error) {
	return s.tickets.ListOpenTickets(ctx)
}

// Respond records an admin answer and closes the ticket. Responding twice
// fails: a closed ticket is terminal.
func (s Service) Respond(ctx context.Context, ticketID, adminID, response string) (*domain.SupportTicket, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, domain.E(domain.KindValidation, "response is required")
	}
	if err := s.tickets.RespondTicket(ctx, ticketID, response, adminID, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "open ticket not found")
		}
		return nil, err
	}
	ticket, err := s.tickets.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("support ticket answered", "ticket_id", ticketID, "admin_id", adminID)
	return ticket, nil
}
