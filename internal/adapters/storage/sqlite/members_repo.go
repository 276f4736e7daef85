package sqlite

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

const membershipColumns = `
	id, farm_id,
	inviter_user_id, member_user_id,
	scopes, status,
	created_at, updated_at, revoked_at
`

func (r *MembersRepo) Create(ctx context.Context, m members.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO farm_memberships (`+membershipColumns+`
		) VALUES (?,?,?,?,?,?,?,?,?)
	`,
		m.ID,
		m.FarmID,
		m.InviterUserID,
		m.MemberUserID,
		joinScopes(m.Scopes),
		string(m.Status),
		fmtTime(m.CreatedAt),
		fmtTime(m.UpdatedAt),
		fmtTimePtr(m.RevokedAt),
	)
	return err
}

func (r *MembersRepo) Update(ctx context.Context, m members.Membership) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE farm_memberships
		SET
			scopes = ?,
			status = ?,
			updated_at = ?,
			revoked_at = ?
		WHERE id = ?
	`,
		joinScopes(m.Scopes),
		string(m.Status),
		fmtTime(m.UpdatedAt),
		fmtTimePtr(m.RevokedAt),
		m.ID,
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
		SELECT `+membershipColumns+`
		FROM farm_memberships
		WHERE id = ?
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
		SELECT `+membershipColumns+`
		FROM farm_memberships
		WHERE `+column+` = ?
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
		SELECT `+membershipColumns+`
		FROM farm_memberships
		WHERE farm_id = ? AND member_user_id = ? AND status = ?
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
	var scopes, status, createdAt, updatedAt string
	var revokedAt sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.FarmID,
		&m.InviterUserID,
		&m.MemberUserID,
		&scopes,
		&status,
		&createdAt,
		&updatedAt,
		&revokedAt,
	); err != nil {
		return members.Membership{}, err
	}

	m.Status = members.Status(status)
	for _, p := range strings.Split(scopes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			m.Scopes = append(m.Scopes, members.Scope(p))
		}
	}

	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return members.Membership{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return members.Membership{}, err
	}
	if m.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return members.Membership{}, err
	}

	return m, nil
}

func joinScopes(ss []members.Scope) string {
	parts := make([]string, 0, len(ss))
	for _, s := range ss {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}
