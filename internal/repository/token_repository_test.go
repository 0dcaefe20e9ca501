package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenMock(t *testing.T) (sqlmock.Sqlmock, *TokenRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewTokenRepo(db)
}

func refreshRow(userID string, expiresAt time.Time, revokedAt any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
		AddRow(userID, expiresAt, revokedAt)
}

func TestTokenRepo_ValidateRefresh(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("hash-1").
		WillReturnRows(refreshRow("user-1", time.Now().UTC().Add(time.Hour), nil))

	userID, err := repo.ValidateRefresh(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Revoked and expired rows must be indistinguishable from missing ones.
func TestTokenRepo_ValidateRefreshRejections(t *testing.T) {
	cases := []struct {
		name string
		rows func() *sqlmock.Rows
	}{
		{"revoked", func() *sqlmock.Rows {
			return refreshRow("user-1", time.Now().UTC().Add(time.Hour), time.Now().UTC())
		}},
		{"expired", func() *sqlmock.Rows {
			return refreshRow("user-1", time.Now().UTC().Add(-time.Minute), nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock, repo := newTokenMock(t)
			mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
				WithArgs("hash-1").
				WillReturnRows(tc.rows())

			_, err := repo.ValidateRefresh(context.Background(), "hash-1")
			assert.ErrorIs(t, err, sql.ErrNoRows)
		})
	}
}

func TestTokenRepo_ValidateRefreshUnknownHash(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("no-such-hash").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ValidateRefresh(context.Background(), "no-such-hash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTokenRepo_RevokeByHash(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeByHash(context.Background(), "hash-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_RevokeAllForUser(t *testing.T) {
	mock, repo := newTokenMock(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeAllForUser(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
