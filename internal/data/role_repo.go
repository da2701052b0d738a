package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuscore/portal-api/internal/data/pgxutil"
	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	apperrors "github.com/campuscore/portal-api/internal/errors"
)

// RoleRepo provides database operations for role assignments.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

const (
	rolesForUserQuery = `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
		ORDER BY role`

	roleAssignQuery = `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING`

	roleRevokeQuery = `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role = $2`
)

// RolesFor returns the roles assigned to an account. No rows is a valid
// outcome and yields an empty slice, not an error. Rows holding names outside
// the known role set are dropped rather than surfaced.
func (r *RoleRepo) RolesFor(ctx context.Context, userID string) ([]domainauth.Role, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	var names []string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, rolesForUserQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	roles := make([]domainauth.Role, 0, len(names))
	for _, name := range names {
		role := domainauth.Role(name)
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// Assign grants a role to an account. Assigning a role the account already
// holds is a no-op.
func (r *RoleRepo) Assign(ctx context.Context, userID string, role domainauth.Role) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user ID is required")
	}
	if !role.Valid() {
		return apperrors.ValidationField("role", "unknown role "+string(role))
	}

	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, roleAssignQuery, strings.TrimSpace(userID), string(role))
		return err
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Revoke removes a role from an account. Reports whether a row was removed.
func (r *RoleRepo) Revoke(ctx context.Context, userID string, role domainauth.Role) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, errors.New("user ID is required")
	}

	var removed int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, roleRevokeQuery, strings.TrimSpace(userID), string(role))
		if err != nil {
			return err
		}
		removed = ct.RowsAffected()
		return nil
	}); err != nil {
		return false, apperrors.MapDBError(err)
	}
	return removed > 0, nil
}
