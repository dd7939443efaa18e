// Package auth provides JWT sessions, the request-context principal, and
// the GitHub OAuth and password utilities behind the login endpoints.
//
// AUTHENTICATION FLOW:
//  1. User registers/logs in (password) or completes the GitHub OAuth dance
//  2. Server issues a JWT access token in an HttpOnly cookie
//  3. On API calls, middleware reads the cookie, validates the JWT, and
//     stores the userID in the request context
//  4. Handlers read the userID via UserIDFromContext
//
// WHY JWT?
// JWT is stateless — no session table, no DB lookup per request. The signed
// token carries the userID and expiry; the signature (HMAC-SHA256 with a
// server-side secret) makes it tamper-proof.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "snipvault"

// accessTokenTTL is how long an issued session lasts. After expiry the
// client must log in again.
const accessTokenTTL = 24 * time.Hour

// TokenService handles JWT creation and validation. It holds the HMAC
// secret used to sign and verify tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Use at least 32 bytes of random data in production:
// JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. We use the standard "sub" (Subject) claim for
// the internal user ID and need nothing custom beyond the registered set.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given userID.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, accessTokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Exported for
// tests that need an already-expired token.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the userID from the
// "sub" claim.
//
// The jwt library checks signature, expiry, and issuer. Passing
// WithValidMethods pins the algorithm to HS256 — without it, an attacker
// could attempt an algorithm-confusion attack with an unsigned token.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
