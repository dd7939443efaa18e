// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Two login methods share this one table:
//   - GitHub OAuth: GitHubID is set, PasswordHash is empty.
//   - Email + password: GitHubID is 0, PasswordHash holds the bcrypt hash.
//
// We always generate our own internal string ID (xid) so that snippets and
// collections never reference a third-party's numbering scheme.
//
// WHY GitHubID int64?
// GitHub user IDs are integers. int64 avoids overflow for large account
// numbers. The UNIQUE index on github_id (for non-zero values) ensures one
// GitHub account maps to exactly one app account.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. Tagging it "-" means encoding/json
// skips the field entirely, so even a careless handler that serializes the
// whole User can't leak it.
type User struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"githubId,omitempty"` // 0 for password accounts
	Login        string    `json:"login"`              // display name / GitHub username
	Email        string    `json:"email"`              // may be empty for OAuth users who hide it
	PasswordHash string    `json:"-"`                  // bcrypt hash, empty for OAuth accounts
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
