package postgres

import (
	"context"
	"database/sql"

	"launchpad/internal/model"
	"launchpad/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// Every lookup binds the owning user_id; rows of other users are invisible.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, user_id, filename, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, filename, storage_path, size, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.UserID,
		f.Filename,
		f.StoragePath,
		f.Size,
		f.ContentType,
		f.CreatedAt,
	)
	var out model.File
	if err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single file owned by userID.
func (r *FilePostgres) FindByID(ctx context.Context, userID, id string) (*model.File, error) {
	const q = `
		SELECT id, user_id, filename, storage_path, size, content_type, created_at
		FROM files
		WHERE id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, id, userID)
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Filename,
		&f.StoragePath,
		&f.Size,
		&f.ContentType,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns the user's files using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const qCount = `SELECT COUNT(*) FROM files WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, user_id, filename, storage_path, size, content_type, created_at
		FROM files
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.Filename,
			&f.StoragePath,
			&f.Size,
			&f.ContentType,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a file owned by userID. It does not return an error if the
// row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// StorageKeysByUser returns every storage key owned by userID.
func (r *FilePostgres) StorageKeysByUser(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT storage_path FROM files WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
