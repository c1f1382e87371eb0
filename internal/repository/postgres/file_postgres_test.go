package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"launchpad/internal/model"
	"launchpad/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	id := uuid.NewString()
	f := &model.File{
		ID:          id,
		UserID:      "user_2abc",
		Filename:    "notes.pdf",
		StoragePath: "user_2abc/" + id + ".pdf",
		Size:        2048,
		ContentType: "application/pdf",
		CreatedAt:   time.Now().UTC(),
	}

	rows := sqlmock.NewRows([]string{"id", "user_id", "filename", "storage_path", "size", "content_type", "created_at"}).
		AddRow(f.ID, f.UserID, f.Filename, f.StoragePath, f.Size, f.ContentType, f.CreatedAt)

	mock.ExpectQuery("INSERT INTO files").
		WithArgs(f.ID, f.UserID, f.Filename, f.StoragePath, f.Size, f.ContentType, f.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, f.StoragePath, result.StoragePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	id := uuid.NewString()

	t.Run("found for owner", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "filename", "storage_path", "size", "content_type", "created_at"}).
			AddRow(id, "user_2abc", "notes.pdf", "user_2abc/"+id+".pdf", int64(2048), "application/pdf", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(id, "user_2abc").
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "user_2abc", id)

		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, "user_2abc", f.UserID)
	})

	// A row owned by someone else must be indistinguishable from a missing row.
	t.Run("foreign row looks missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(id, "user_other").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByID(ctx, "user_other", id)

		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, f)
	})
}

func TestFilePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("returns page scoped to owner", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE user_id = ?").
			WithArgs("user_2abc").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		idA, idB := uuid.NewString(), uuid.NewString()
		rows := sqlmock.NewRows([]string{"id", "user_id", "filename", "storage_path", "size", "content_type", "created_at"}).
			AddRow(idA, "user_2abc", "b.png", "user_2abc/"+idA+".png", int64(100), "image/png", time.Now()).
			AddRow(idB, "user_2abc", "a.png", "user_2abc/"+idB+".png", int64(200), "image/png", time.Now().Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM files WHERE user_id = (.+) ORDER BY created_at DESC").
			WithArgs("user_2abc", 2, 0).
			WillReturnRows(rows)

		page, err := repo.List(ctx, "user_2abc", repository.PageQuery{Limit: 2, Offset: 0})

		assert.NoError(t, err)
		assert.NotNil(t, page)
		assert.Equal(t, 3, page.Total)
		assert.Len(t, page.Items, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM files WHERE user_id = ?").
			WithArgs("user_2abc").
			WillReturnError(errors.New("connection refused"))

		page, err := repo.List(ctx, "user_2abc", repository.PageQuery{Limit: 10, Offset: 0})

		assert.Error(t, err)
		assert.Nil(t, page)
	})
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	id := uuid.NewString()

	t.Run("delete binds owner", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(id, "user_2abc").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "user_2abc", id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign or missing row is a no-op", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE id = (.+) AND user_id = ?").
			WithArgs(id, "user_other").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "user_other", id))
	})
}

func TestFilePostgres_StorageKeysByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"storage_path"}).
		AddRow("user_2abc/aaa.png").
		AddRow("user_2abc/bbb.pdf")

	mock.ExpectQuery("SELECT storage_path FROM files WHERE user_id = ?").
		WithArgs("user_2abc").
		WillReturnRows(rows)

	keys, err := repo.StorageKeysByUser(ctx, "user_2abc")

	assert.NoError(t, err)
	assert.Equal(t, []string{"user_2abc/aaa.png", "user_2abc/bbb.pdf"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}
