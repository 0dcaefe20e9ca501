package utils // package utils provides helpers for token creation, verification and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by VerifyToken for any token that fails
// verification: malformed, bad signature or expired. Callers do not need
// to distinguish the three; what matters upstream is whether a token was
// supplied at all.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken bundles a serialized JWT with its expiration time. Access
// tokens are short-lived and travel in the Authorization header; refresh
// tokens are long-lived, travel in an http-only cookie and are mirrored
// (hashed) into the database so they can be rotated and revoked.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the minimal identity payload carried by both token classes:
// just enough to re-resolve the user. Passwords and hashes never appear in
// a token.
type Claims struct {
	UserID string
	Email  string
}

// NewAccessToken builds and signs an HS256 JWT for a user with a TTL in
// seconds. The JWT includes the subject (sub), email, expiration (exp) and
// issued-at (iat) claims. Each token class is signed with its own secret;
// the caller passes the access secret here.
func NewAccessToken(secret, userID, email string, ttlSec int) (SignedToken, error) {
	return signToken(secret, userID, email, time.Duration(ttlSec)*time.Second)
}

// NewRefreshToken signs a long-lived JWT with the refresh secret and a TTL
// in days. Possession of a refresh token never authorizes resource access
// directly; it is only exchanged for a new access token.
func NewRefreshToken(secret, userID, email string, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, email, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret, userID, email string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken checks the signature and expiry of raw against the provided
// secret and returns the decoded identity claims. A token signed with the
// access secret fails verification against the refresh secret and vice
// versa, because the secrets differ.
func VerifyToken(raw, secret string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	return Claims{UserID: sub, Email: email}, nil
}

// HashRefreshRaw returns the SHA-256 hash of a signed refresh token as a
// hex string. Only the hash is stored server-side, so a leaked database
// row is not a usable credential.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
