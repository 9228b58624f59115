package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FTLPetrov/team-builder-sub000/internal/domain"
	"github.com/FTLPetrov/team-builder-sub000/internal/repository"
)

// CreateTeamWithOrganizer inserts the team and its organizer membership in a
// single transaction so the team is never observed without an organizer.
func (r *Repository) CreateTeamWithOrganizer(ctx context.Context, team *domain.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const teamQuery = `INSERT INTO teams (id, name, description, is_open, organizer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, teamQuery, team.ID, team.Name, team.Description, team.Open, team.OrganizerID, team.CreatedAt); err != nil {
		return err
	}
	const memberQuery = `INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, memberQuery, team.ID, team.OrganizerID, domain.RoleOrganizer, team.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetTeamByID returns a team by identifier.
func (r *Repository) GetTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	const query = `SELECT id, name, description, is_open, organizer_id, created_at FROM teams WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, teamID)
	var team domain.Team
	if err := row.Scan(&team.ID, &team.Name, &team.Description, &team.Open, &team.OrganizerID, &team.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// ListTeamsByUser returns teams the user belongs to.
func (r *Repository) ListTeamsByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	const query = `SELECT t.id, t.name, t.description, t.is_open, t.organizer_id, t.created_at
		FROM teams t
		INNER JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = $1
		ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.Open, &team.OrganizerID, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// TransferOwnership rewrites both membership roles and the team's organizer
// reference in one transaction, so a reader never sees zero or two organizers.
func (r *Repository) TransferOwnership(ctx context.Context, teamID, newOrganizerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const lockQuery = `SELECT organizer_id FROM teams WHERE id = $1 FOR UPDATE`
	var currentOrganizerID string
	if err := tx.QueryRow(ctx, lockQuery, teamID).Scan(&currentOrganizerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	if currentOrganizerID == newOrganizerID {
		return tx.Commit(ctx)
	}

	const promoteQuery = `UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`
	tag, err := tx.Exec(ctx, promoteQuery, teamID, newOrganizerID, domain.RoleOrganizer)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx, promoteQuery, teamID, currentOrganizerID, domain.RoleMember); err != nil {
		return err
	}
	const teamQuery = `UPDATE teams SET organizer_id = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, teamQuery, teamID, newOrganizerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteTeam removes the team and everything scoped to it. The fan-out is an
// explicit transactional delete rather than an FK cascade, so no orphaned
// membership, invitation, event or chat row can survive the team.
func (r *Repository) DeleteTeam(ctx context.Context, teamID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	children := []string{
		`DELETE FROM chat_messages WHERE team_id = $1`,
		`DELETE FROM events WHERE team_id = $1`,
		`DELETE FROM invitations WHERE team_id = $1`,
		`DELETE FROM team_members WHERE team_id = $1`,
	}
	for _, query := range children {
		if _, err := tx.Exec(ctx, query, teamID); err != nil {
			return fmt.Errorf("delete team children: %w", err)
		}
	}
	tag, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

// AddMember inserts a membership. The unique constraint on (team_id, user_id)
// makes the existence check and insert a single atomic operation.
func (r *Repository) AddMember(ctx context.Context, member *domain.TeamMember) error {
	const query = `INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, member.TeamID, member.UserID, member.Role, member.CreatedAt)
	if isUniqueViolation(err, "team_members_pkey") {
		return repository.ErrDuplicateMembership
	}
	return err
}

// RemoveMember deletes a membership.
func (r *Repository) RemoveMember(ctx context.Context, teamID, userID string) error {
	const query = `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, teamID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetMember returns the membership for a (team, user) pair.
func (r *Repository) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	const query = `SELECT team_id, user_id, role, created_at FROM team_members WHERE team_id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, teamID, userID)
	var m domain.TeamMember
	if err := row.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListMembers returns a team's memberships.
func (r *Repository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	const query = `SELECT team_id, user_id, role, created_at FROM team_members WHERE team_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// SetMemberRole updates a membership's denormalized role.
func (r *Repository) SetMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	const query = `UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, teamID, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
