// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
//
// THE OWNER-SCOPED FETCH PATTERN:
// Every Get method here takes the caller's userID alongside the resource ID
// and returns apperror.ErrNotFound when the row is missing OR belongs to a
// different user. Implementations do this with a single equality filter
// (WHERE id = ? AND user_id = ?) so ownership checks cost nothing extra and
// can never be forgotten by a caller.
package repository

import (
	"context"

	"github.com/sakif/snipvault/internal/model"
)

// ListOptions carries LIMIT/OFFSET pagination for list queries.
// Implementations clamp Limit to 1–100 (default 20) and Offset to ≥0.
type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetFilter narrows a snippet listing. The owner filter is NOT part of
// this struct — it's a mandatory argument, never optional.
type SnippetFilter struct {
	CollectionID    string // restrict to one collection; empty = all
	IncludeArchived bool   // archived rows are excluded unless true
}

type CollectionRepository interface {
	// Create inserts the collection, generating ID and timestamps. When
	// c.IsDefault is set, the user's other collections lose their default
	// flag in the same transaction.
	Create(ctx context.Context, c *model.Collection) error

	// GetByIDForUser returns the collection only if it belongs to userID.
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Collection, error)

	// ListByUser returns the user's collections, newest created first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Collection, error)

	// Update writes the full row back (the service applies partial updates
	// in memory first). Same transactional default-clearing as Create.
	Update(ctx context.Context, c *model.Collection) error
}

type SnippetRepository interface {
	Create(ctx context.Context, s *model.Snippet) error
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Snippet, error)

	// ListByUser returns the user's snippets, most recently updated first.
	ListByUser(ctx context.Context, userID string, filter SnippetFilter, opts ListOptions) ([]model.Snippet, error)

	Update(ctx context.Context, s *model.Snippet) error

	// Archive sets is_archived on an owned snippet. Idempotent: archiving an
	// already-archived snippet succeeds.
	Archive(ctx context.Context, id, userID string) error
}

type UserRepository interface {
	// Create inserts a new password-based account. Fails with
	// apperror.ErrConflict when the email is already registered.
	Create(ctx context.Context, u *model.User) error

	// Upsert inserts or updates a user keyed on GitHubID (OAuth login).
	Upsert(ctx context.Context, u *model.User) error

	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}
