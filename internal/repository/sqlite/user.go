package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new password-based account.
//
// The partial unique index on users(email) turns a duplicate registration
// into a constraint error, which we translate to apperror.Conflict so the
// handler can answer 409 instead of a generic 500.
func (db *DB) Create(ctx context.Context, u *model.User) error {
	now := time.Now()
	u.ID = xid.New().String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, email, password_hash, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.GitHubID,
		u.Login,
		u.Email,
		u.PasswordHash,
		u.AvatarURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		// modernc.org/sqlite surfaces constraint failures as plain errors
		// with "UNIQUE constraint failed" in the message. Matching on the
		// message is crude but the driver exposes nothing more structured.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict(fmt.Sprintf("email %s is already registered", u.Email))
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", u.Email, err)
	}
	return nil
}

// Upsert inserts or updates a user based on their GitHub ID.
//
// We look up by github_id first: if the user exists we KEEP their internal
// ID (snippets and collections reference it) and refresh the profile fields
// that may have changed on GitHub. Otherwise we insert a fresh row.
func (db *DB) Upsert(ctx context.Context, u *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, u.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", u.GitHubID, err)
	}

	if existingID != "" {
		u.ID = existingID
		u.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			u.Login,
			u.Email,
			u.AvatarURL,
			u.UpdatedAt,
			u.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", u.ID, err)
		}
		return nil
	}

	now := time.Now()
	u.ID = xid.New().String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, email, password_hash, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', ?, ?, ?)`,
		u.ID,
		u.GitHubID,
		u.Login,
		u.Email,
		u.AvatarURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", u.GitHubID, err)
	}
	return nil
}

// GetUserByID fetches a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail fetches a user by email. Used by password login.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

// getUser is the shared single-row fetch. The where fragment is a fixed
// string chosen by the two exported wrappers, never caller input.
func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, email, password_hash, avatar_url, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(
		&u.ID,
		&u.GitHubID,
		&u.Login,
		&u.Email,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user (%v): %w", arg, err)
	}
	return &u, nil
}
