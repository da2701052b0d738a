package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuscore/portal-api/internal/data/pgxutil"
	"github.com/campuscore/portal-api/internal/domain/model"
	apperrors "github.com/campuscore/portal-api/internal/errors"
)

// ProfileRepo provides database operations for profiles.
type ProfileRepo struct {
	DB *sql.DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db}
}

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	profileGetByUserIDQuery = `
		SELECT user_id, display_name, email, matric_number, staff_id,
		       department, faculty, level, phone, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	profileGetByMatricQuery = `
		SELECT user_id, display_name, email, matric_number, staff_id,
		       department, faculty, level, phone, created_at, updated_at
		FROM profiles
		WHERE matric_number = $1`

	profileGetByStaffIDQuery = `
		SELECT user_id, display_name, email, matric_number, staff_id,
		       department, faculty, level, phone, created_at, updated_at
		FROM profiles
		WHERE staff_id = $1`

	profileUpsertQuery = `
		INSERT INTO profiles (
			user_id, display_name, email, matric_number, staff_id,
			department, faculty, level, phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name  = EXCLUDED.display_name,
			email         = EXCLUDED.email,
			matric_number = EXCLUDED.matric_number,
			staff_id      = EXCLUDED.staff_id,
			department    = EXCLUDED.department,
			faculty       = EXCLUDED.faculty,
			level         = EXCLUDED.level,
			phone         = EXCLUDED.phone,
			updated_at    = now()
		RETURNING user_id, display_name, email, matric_number, staff_id,
		          department, faculty, level, phone, created_at, updated_at`
)

// GetByUserID retrieves a profile by its account ID.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return r.getByQuery(ctx, profileGetByUserIDQuery, userID)
}

// GetByMatricNumber retrieves the profile holding the given matric number.
func (r *ProfileRepo) GetByMatricNumber(ctx context.Context, matric string) (*model.Profile, error) {
	return r.getByQuery(ctx, profileGetByMatricQuery, strings.TrimSpace(matric))
}

// GetByStaffID retrieves the profile holding the given staff ID.
func (r *ProfileRepo) GetByStaffID(ctx context.Context, staffID string) (*model.Profile, error) {
	return r.getByQuery(ctx, profileGetByStaffIDQuery, strings.TrimSpace(staffID))
}

// Upsert inserts a profile or refreshes an existing one by user ID. Used by
// seeding and bulk import paths; the auth core only reads.
func (r *ProfileRepo) Upsert(ctx context.Context, req *model.CreateProfileRequest) (*model.Profile, error) {
	if req == nil {
		return nil, errors.New("create profile request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Profile
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileUpsertQuery,
			strings.TrimSpace(req.UserID),
			strings.TrimSpace(req.DisplayName),
			strings.ToLower(strings.TrimSpace(req.Email)),
			req.MatricNumber,
			req.StaffID,
			req.Department,
			req.Faculty,
			req.Level,
			req.Phone,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// getByQuery executes a single-row profile query.
func (r *ProfileRepo) getByQuery(ctx context.Context, q string, arg string) (*model.Profile, error) {
	if arg == "" {
		return nil, apperrors.NotFound("profile not found")
	}

	var profile model.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		profile, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile not found")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &profile, nil
}
