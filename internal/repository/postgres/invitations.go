package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

// CreateInvitation inserts a pending invitation. The partial unique index on
// (team_id, invited_user_id) WHERE responded_at IS NULL makes concurrent
// invites for the same pair resolve to exactly one winner.
func (r *Repository) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	const query = `INSERT INTO invitations (id, team_id, invited_user_id, invited_by_id, sent_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, inv.ID, inv.TeamID, inv.InvitedUserID, inv.InvitedByID, inv.SentAt)
	if isUniqueViolation(err, "invitations_pending_pair_idx") {
		return repository.ErrAlreadyInvited
	}
	return err
}

// GetInvitationByID fetches an invitation.
func (r *Repository) GetInvitationByID(ctx context.Context, id string) (*domain.Invitation, error) {
	const query = `SELECT id, team_id, invited_user_id, invited_by_id, sent_at, responded_at, accepted
		FROM invitations WHERE id = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, id))
}

// RespondInvitation resolves a pending invitation. The guarded UPDATE only
// matches rows with responded_at IS NULL, so a second response loses the race
// inside the database rather than in application code. On accept the
// membership insert happens in the same transaction; an existing membership
// (the user joined through another path meanwhile) is merged, not an error.
func (r *Repository) RespondInvitation(ctx context.Context, id string, accept bool, at time.Time) (*domain.Invitation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const respondQuery = `UPDATE invitations
		SET responded_at = $2, accepted = $3
		WHERE id = $1 AND responded_at IS NULL
		RETURNING id, team_id, invited_user_id, invited_by_id, sent_at, responded_at, accepted`
	inv, err := scanInvitation(tx.QueryRow(ctx, respondQuery, id, at, accept))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// Distinguish a missing invitation from an already-responded one.
		existing, getErr := r.getInvitationTx(ctx, tx, id)
		if getErr != nil {
			return nil, getErr
		}
		return existing, repository.ErrAlreadyResponded
	}

	if accept {
		const memberQuery = `INSERT INTO team_members (team_id, user_id, role, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (team_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, memberQuery, inv.TeamID, inv.InvitedUserID, domain.RoleMember, at); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *Repository) getInvitationTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Invitation, error) {
	const query = `SELECT id, team_id, invited_user_id, invited_by_id, sent_at, responded_at, accepted
		FROM invitations WHERE id = $1`
	return scanInvitation(tx.QueryRow(ctx, query, id))
}

// ListPendingForUser returns a user's unanswered invitations, newest first.
func (r *Repository) ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error) {
	const query = `SELECT id, team_id, invited_user_id, invited_by_id, sent_at, responded_at, accepted
		FROM invitations
		WHERE invited_user_id = $1 AND responded_at IS NULL
		ORDER BY sent_at DESC`
	return r.queryInvitations(ctx, query, userID)
}

// ListForTeam returns every invitation for a team, newest first. Responded
// invitations are retained as history.
func (r *Repository) ListForTeam(ctx context.Context, teamID string) ([]domain.Invitation, error) {
	const query = `SELECT id, team_id, invited_user_id, invited_by_id, sent_at, responded_at, accepted
		FROM invitations
		WHERE team_id = $1
		ORDER BY sent_at DESC`
	return r.queryInvitations(ctx, query, teamID)
}

// DeleteInvitation removes an invitation and reports whether a row existed.
func (r *Repository) DeleteInvitation(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM invitations WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) queryInvitations(ctx context.Context, query string, args ...any) ([]domain.Invitation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]domain.Invitation, 0)
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.InvitedUserID, &inv.InvitedByID, &inv.SentAt, &inv.RespondedAt, &inv.Accepted); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var inv domain.Invitation
	if err := row.Scan(&inv.ID, &inv.TeamID, &inv.InvitedUserID, &inv.InvitedByID, &inv.SentAt, &inv.RespondedAt, &inv.Accepted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
