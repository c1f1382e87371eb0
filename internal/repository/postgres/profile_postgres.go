package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"launchpad/internal/model"
	"launchpad/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

// Create inserts a new profile row and returns the stored record.
// A primary-key collision is reported as repository.ErrDuplicate so callers
// never inspect driver error codes.
func (r *ProfilePostgres) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	const q = `
		INSERT INTO profiles (user_id, display_name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING user_id, display_name, bio, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, p.UserID, p.DisplayName, p.Bio)
	var out model.Profile
	if err := row.Scan(&out.UserID, &out.DisplayName, &out.Bio, &out.CreatedAt, &out.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &out, nil
}

// FindByUser fetches the profile owned by userID.
func (r *ProfilePostgres) FindByUser(ctx context.Context, userID string) (*model.Profile, error) {
	const q = `
		SELECT user_id, display_name, bio, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	row := r.db.QueryRowContext(ctx, q, userID)
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.Bio, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies the non-nil fields via COALESCE and returns the stored row.
// Nil pointers arrive as SQL NULL, so untouched columns keep their value.
func (r *ProfilePostgres) Update(ctx context.Context, userID string, up repository.ProfileUpdate) (*model.Profile, error) {
	const q = `
		UPDATE profiles
		SET display_name = COALESCE($2, display_name),
		    bio          = COALESCE($3, bio),
		    updated_at   = now()
		WHERE user_id = $1
		RETURNING user_id, display_name, bio, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, userID, up.DisplayName, up.Bio)
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.Bio, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the user's profile. Zero affected rows surfaces as
// sql.ErrNoRows so the service can translate it to a not-found error.
func (r *ProfilePostgres) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM profiles WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
