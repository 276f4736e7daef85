package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dairy-herd-service/internal/domain/members"
)

type MembersRepo struct {
	db *sql.DB
}

func NewMembersRepo(db *sql.DB) *MembersRepo {
	return &MembersRepo{db: db}
}

func (r *MembersRepo) Create(ctx context.Context, m members.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farm_memberships (
			id, farm_id,
			inviter_user_id, member_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.FarmID,
		m.InviterUserID,
		m.MemberUserID,
		joinScopes(m.Scopes),
		string(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
		toNullDate(m.RevokedAt),
	)
	return err
}

func (r *MembersRepo) Update(ctx context.Context, m members.Membership) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE farm_memberships
		SET
			scopes = $2,
			status = $3,
			updated_at = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		m.ID,
		joinScopes(m.Scopes),
		string(m.Status),
		m.UpdatedAt,
		toNullDate(m.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembersRepo) GetByID(ctx context.Context, id string) (members.Membership, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return members.Membership{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id,
			inviter_user_id, member_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM farm_memberships
		WHERE id = $1
	`, id)

	m, err := scanMembership(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return members.Membership{}, ErrNotFound
		}
		return members.Membership{}, err
	}
	return m, nil
}

func (r *MembersRepo) ListByFarm(ctx context.Context, farmID string) ([]members.Membership, error) {
	return r.list(ctx, "farm_id", farmID)
}

func (r *MembersRepo) ListByMember(ctx context.Context, memberUserID string) ([]members.Membership, error) {
	return r.list(ctx, "member_user_id", memberUserID)
}

func (r *MembersRepo) list(ctx context.Context, column, value string) ([]members.Membership, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id,
			inviter_user_id, member_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM farm_memberships
		WHERE `+column+` = $1
		ORDER BY created_at ASC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]members.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembersRepo) GetActiveMembership(ctx context.Context, farmID, memberUserID string) (members.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id,
			inviter_user_id, member_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM farm_memberships
		WHERE farm_id = $1 AND member_user_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, farmID, memberUserID, string(members.StatusActive))

	m, err := scanMembership(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return members.Membership{}, ErrNotFound
		}
		return members.Membership{}, err
	}
	return m, nil
}

func scanMembership(row rowScanner) (members.Membership, error) {
	var m members.Membership
	var scopes, status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&m.ID,
		&m.FarmID,
		&m.InviterUserID,
		&m.MemberUserID,
		&scopes,
		&status,
		&m.CreatedAt,
		&m.UpdatedAt,
		&revokedAt,
	); err != nil {
		return members.Membership{}, err
	}

	m.Scopes = splitScopes(scopes)
	m.Status = members.Status(status)
	m.RevokedAt = fromNullDate(revokedAt)

	return m, nil
}

// scopes se guardan como CSV; el servicio ya los normaliza a valores conocidos.
func joinScopes(ss []members.Scope) string {
	parts := make([]string, 0, len(ss))
	for _, s := range ss {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

func splitScopes(raw string) []members.Scope {
	out := make([]members.Scope, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, members.Scope(p))
		}
	}
	return out
}
