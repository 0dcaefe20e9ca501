package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/config"
	"github.com/tickethub/helpdesk-api/internal/repository"
	"github.com/tickethub/helpdesk-api/internal/utils"
)

// refreshCookieName is the http-only cookie carrying the refresh token.
// The access token never travels in a cookie; it is returned in the login
// response body and presented back as a bearer header.
const refreshCookieName = "refresh_token"

const minPasswordLen = 8

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler bundles dependencies for the credential lifecycle endpoints:
// signup, login, logout and refresh.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenResp struct {
	AccessToken string `json:"accessToken"`
}

// Signup creates a new account and returns the public-safe user. The
// duplicate check is not done here: the unique index on users.email is the
// only authority, and its violation maps to a 409.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return apierr.NewValidation(map[string]string{"details": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "Name is required"
	}
	if !emailRe.MatchString(req.Email) {
		fields["email"] = "A valid email is required"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "Password must be at least 8 characters"
	}
	if len(fields) > 0 {
		return apierr.NewValidation(fields)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	u, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return &apierr.Conflict{Field: "email", Message: "Account with this email already exists"}
		}
		return err
	}
	return c.JSON(http.StatusCreated, u.Public())
}

// Login verifies credentials and, on success, returns an access token in
// the body and sets the refresh token as an http-only cookie. Unknown
// email and wrong password produce byte-identical failures on purpose.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return apierr.ErrBadLogin
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apierr.ErrBadLogin
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrBadLogin
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apierr.ErrBadLogin
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, h.Cfg.AccessTTLSec)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return err
	}

	c.SetCookie(h.refreshCookie(refresh.Token, refresh.Exp))
	return c.JSON(http.StatusOK, accessTokenResp{AccessToken: access.Token})
}

// Logout clears the refresh cookie and, when one is present, revokes the
// stored token hash so a copied cookie cannot be replayed afterwards. It
// succeeds regardless of whether a valid token was supplied.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		// Best effort: a revocation failure must not fail logout.
		_ = h.Tokens.RevokeByHash(c.Request().Context(), utils.HashRefreshRaw(cookie.Value))
	}
	c.SetCookie(h.refreshCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Refresh exchanges a valid refresh cookie for a new access token. The
// refresh token itself is left unchanged; it is never usable to authorize
// resource access directly.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return apierr.ErrMissingCredentials
	}

	claims, err := utils.VerifyToken(cookie.Value, h.Cfg.RefreshSecret)
	if err != nil {
		return apierr.ErrInvalidToken
	}

	ctx := c.Request().Context()
	userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(cookie.Value))
	if err != nil || userID != claims.UserID {
		return apierr.ErrInvalidToken
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrInvalidToken
		}
		return err
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Email, h.Cfg.AccessTTLSec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessTokenResp{AccessToken: access.Token})
}

// refreshCookie builds the refresh cookie. Secure is set in production so
// the token only travels over TLS; HttpOnly keeps it away from scripts.
func (h *AuthHandler) refreshCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Expires:  exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}
