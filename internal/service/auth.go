// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) / PasswordService (bcrypt)
//
// Two login methods are supported and end in the same place — a JWT access
// token for the user's internal ID:
//   - GitHub OAuth (LoginOrRegisterGitHub): upsert keyed on the GitHub ID
//   - Email + password (Register / Login): bcrypt-hashed credentials
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the HTTP handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new email/password account and issues a token.
//
// The email uniqueness check lives in the repository (UNIQUE index), not
// here — a SELECT-then-INSERT in the service would race with concurrent
// registrations. A duplicate comes back as apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, login, email, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	email = strings.ToLower(strings.TrimSpace(email))

	if login == "" {
		return nil, apperror.ValidationFailed("login", "login name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates an email/password account and issues a token.
//
// UNIFORM FAILURE:
// Unknown email and wrong password both return the same Unauthorized error.
// Distinguishing them would tell an attacker which emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if user.PasswordHash == "" {
		// OAuth-only account — it has no password to check against.
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: upsert the user
// (create on first login, refresh profile on subsequent logins) and issue a
// token. GitHub's ID is stable and unique, so upserting on it is safe.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     strings.ToLower(ghUser.Email),
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by /api/me
// after the middleware has validated the JWT.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	return s.users.GetUserByID(ctx, id)
}
