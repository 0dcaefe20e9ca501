package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (sqlmock.Sqlmock, *UserRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewUserRepo(db)
}

func TestUserRepo_CreateNormalizesEmail(t *testing.T) {
	mock, repo := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "User Test", "tester@test.com", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("user-1", "User Test", "tester@test.com", "hash", now, now))

	u, err := repo.Create(context.Background(), "User Test", "  TESTER@Test.Com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "tester@test.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	mock, repo := newMockDB(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'tester@test.com' for key 'uq_users_email'"))

	_, err := repo.Create(context.Background(), "User Test", "tester@test.com", "hash")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateOtherErrorsPassThrough(t *testing.T) {
	mock, repo := newMockDB(t)

	dbErr := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO users").WillReturnError(dbErr)

	_, err := repo.Create(context.Background(), "User Test", "tester@test.com", "hash")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_GetByEmailFoldsCase(t *testing.T) {
	mock, repo := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("tester@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow("user-1", "User Test", "tester@test.com", "hash", now, now))

	u, err := repo.GetByEmail(context.Background(), "TESTER@TEST.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
