package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

// CreateEvent inserts an event.
func (r *Repository) CreateEvent(ctx context.Context, event *domain.Event) error {
	const query = `INSERT INTO events (id, team_id, created_by_id, title, description, location, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query, event.ID, event.TeamID, event.CreatedByID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt, event.CreatedAt)
	return err
}

// GetEventByID fetches an event.
func (r *Repository) GetEventByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT id, team_id, created_by_id, title, description, location, starts_at, ends_at, created_at
		FROM events WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var e domain.Event
	if err := row.Scan(&e.ID, &e.TeamID, &e.CreatedByID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEvent rewrites an event's mutable fields.
func (r *Repository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	const query = `UPDATE events
		SET title = $2, description = $3, location = $4, starts_at = $5, ends_at = $6
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, event.ID, event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListEventsByTeam returns a team's events ordered by start time.
func (r *Repository) ListEventsByTeam(ctx context.Context, teamID string) ([]domain.Event, error) {
	const query = `SELECT id, team_id, created_by_id, title, description, location, starts_at, ends_at, created_at
		FROM events WHERE team_id = $1 ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TeamID, &e.CreatedByID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AppendMessage stores a chat message.
func (r *Repository) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `INSERT INTO chat_messages (id, team_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, msg.ID, msg.TeamID, msg.UserID, msg.Body, msg.CreatedAt)
	return err
}

// ListMessagesByTeam returns chat history, newest first.
func (r *Repository) ListMessagesByTeam(ctx context.Context, teamID string, limit, offset int) ([]domain.ChatMessage, error) {
	const query = `SELECT id, team_id, user_id, body, created_at
		FROM chat_messages WHERE team_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, teamID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
