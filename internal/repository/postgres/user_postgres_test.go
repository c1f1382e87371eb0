package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"launchpad/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestUserPostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	u := &model.User{
		ID:        "user_2abc",
		Email:     "ada@example.com",
		UpdatedAt: now,
	}

	rows := sqlmock.NewRows([]string{"id", "email", "created_at", "updated_at"}).
		AddRow(u.ID, u.Email, now, now)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.UpdatedAt).
		WillReturnRows(rows)

	result, err := repo.Upsert(ctx, u)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, u.ID, result.ID)
	assert.Equal(t, u.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email", "created_at", "updated_at"}).
			AddRow("user_2abc", "ada@example.com", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs("user_2abc").
			WillReturnRows(rows)

		u, err := repo.FindByID(ctx, "user_2abc")

		assert.NoError(t, err)
		assert.NotNil(t, u)
		assert.Equal(t, "user_2abc", u.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs("user_missing").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByID(ctx, "user_missing")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, u)
	})
}

func TestUserPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("deletes existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs("user_2abc").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "user_2abc"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM users WHERE id = ?").
			WithArgs("user_missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "user_missing"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
