package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/repository"
	"github.com/tickethub/helpdesk-api/internal/utils"
)

const testAccessSecret = "test-access-secret"

// newIdentityApp builds an echo app with the identity middleware over a
// mocked user store and a probe route that reports what got attached.
func newIdentityApp(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	e.HTTPErrorHandler = apierr.HTTPErrorHandler
	e.Use(WithIdentity(testAccessSecret, repository.NewUserRepo(db)))
	e.GET("/probe", func(c echo.Context) error {
		if id := CurrentIdentity(c); id != nil {
			return c.JSON(http.StatusOK, echo.Map{"id": id.ID, "email": id.Email})
		}
		return c.JSON(http.StatusOK, echo.Map{"anonymous": true})
	})
	return e, mock
}

func userRows(id, name, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(id, name, email, "$2a$04$hash", now, now)
}

func TestWithIdentity_NoCredentialIsAnonymous(t *testing.T) {
	e, _ := newIdentityApp(t)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"anonymous":true}`, rec.Body.String())
}

func TestWithIdentity_ValidTokenAttachesUser(t *testing.T) {
	e, mock := newIdentityApp(t)

	tok, err := utils.NewAccessToken(testAccessSecret, "user-1", "tester@test.com", 60)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs("user-1").
		WillReturnRows(userRows("user-1", "User Test", "tester@test.com"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"user-1","email":"tester@test.com"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Presence of an invalid credential is an error, unlike absence.
func TestWithIdentity_InvalidTokenIsRejected(t *testing.T) {
	e, _ := newIdentityApp(t)

	for _, header := range []string{
		"Bearer not-a-jwt",
		"Bearer ",
		"Basic dXNlcjpwYXNz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	}
}

func TestWithIdentity_ExpiredTokenIsRejected(t *testing.T) {
	e, _ := newIdentityApp(t)

	tok, err := utils.NewAccessToken(testAccessSecret, "user-1", "tester@test.com", -60)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A valid token for a user deleted after issuance degrades to anonymous on
// the middleware path; the chain is never blocked.
func TestWithIdentity_DeletedUserDegradesToAnonymous(t *testing.T) {
	e, mock := newIdentityApp(t)

	tok, err := utils.NewAccessToken(testAccessSecret, "ghost", "ghost@test.com", 60)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"anonymous":true}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Identity must not leak between requests on the same app instance.
func TestWithIdentity_NoLeakBetweenRequests(t *testing.T) {
	e, mock := newIdentityApp(t)

	tok, err := utils.NewAccessToken(testAccessSecret, "user-1", "tester@test.com", 60)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs("user-1").
		WillReturnRows(userRows("user-1", "User Test", "tester@test.com"))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Follow-up request without credentials must be anonymous.
	req2 := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)
	assert.JSONEq(t, `{"anonymous":true}`, rec2.Body.String())
}
