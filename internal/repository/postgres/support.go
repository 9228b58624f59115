package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

// CreateTicket inserts a support ticket.
func (r *Repository) CreateTicket(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `INSERT INTO support_tickets (id, user_id, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, ticket.ID, ticket.UserID, ticket.Subject, ticket.Body, ticket.Status, ticket.CreatedAt)
	return err
}

// GetTicketByID fetches a support ticket.
func (r *Repository) GetTicketByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	const query = `SELECT id, user_id, subject, body, status, response, responded_by_id, created_at, responded_at
		FROM support_tickets WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var t domain.SupportTicket
	var response, respondedBy *string
	if err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Body, &t.Status, &response, &respondedBy, &t.CreatedAt, &t.RespondedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if response != nil {
		t.Response = *response
	}
	if respondedBy != nil {
		t.RespondedByID = *respondedBy
	}
	return &t, nil
}

// ListTicketsByUser returns a user's tickets, newest first.
func (r *Repository) ListTicketsByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	const query = `SELECT id, user_id, subject, body, status, response, responded_by_id, created_at, responded_at
		FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryTickets(ctx, query, userID)
}

// ListOpenTickets returns unanswered tickets for the admin queue.
func (r *Repository) ListOpenTickets(ctx context.Context) ([]domain.SupportTicket, error) {
	const query = `SELECT id, user_id, subject, body, status, response, responded_by_id, created_at, responded_at
		FROM support_tickets WHERE status = 'open' ORDER BY created_at`
	return r.queryTickets(ctx, query)
}

// RespondTicket records an admin response and closes the ticket.
func (r *Repository) RespondTicket(ctx context.Context, id, response, respondedByID string, at time.Time) error {
	const query = `UPDATE support_tickets
		SET response = $2, responded_by_id = $3, responded_at = $4, status = 'closed'
		WHERE id = $1 AND status = 'open'`
	tag, err := r.pool.Exec(ctx, query, id, response, respondedByID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) queryTickets(ctx context.Context, query string, args ...any) ([]domain.SupportTicket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.SupportTicket, 0)
	for rows.Next() {
		var t domain.SupportTicket
		var response, respondedBy *string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Body, &t.Status, &response, &respondedBy, &t.CreatedAt, &t.RespondedAt); err != nil {
			return nil, err
		}
		if response != nil {
			t.Response = *response
		}
		if respondedBy != nil {
			t.RespondedByID = *respondedBy
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CreateAnnouncement inserts a system-wide notice.
func (r *Repository) CreateAnnouncement(ctx context.Context, a *domain.Announcement) error {
	const query = `INSERT INTO announcements (id, title, body, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, a.ID, a.Title, a.Body, a.CreatedByID, a.CreatedAt)
	return err
}

// ListAnnouncements returns recent announcements, newest first.
func (r *Repository) ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error) {
	const query = `SELECT id, title, body, created_by_id, created_at
		FROM announcements ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := make([]domain.Announcement, 0)
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.CreatedByID, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// CreateWarning inserts a moderation warning.
func (r *Repository) CreateWarning(ctx context.Context, w *domain.Warning) error {
	const query = `INSERT INTO warnings (id, user_id, issued_by_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, w.ID, w.UserID, w.IssuedByID, w.Reason, w.CreatedAt)
	return err
}

// ListWarningsByUser returns warnings issued to a user, newest first.
func (r *Repository) ListWarningsByUser(ctx context.Context, userID string) ([]domain.Warning, error) {
	const query = `SELECT id, user_id, issued_by_id, reason, created_at
		FROM warnings WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warnings := make([]domain.Warning, 0)
	for rows.Next() {
		var w domain.Warning
		if err := rows.Scan(&w.ID, &w.UserID, &w.IssuedByID, &w.Reason, &w.CreatedAt); err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}
