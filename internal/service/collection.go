// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces ownership, orchestrates
//	Repository (data layer)  → reads/writes to the database
//
// Services accept plain Go values and return domain errors from the apperror
// package — they know nothing about HTTP. Handlers translate both ways.
//
// THE OWNERSHIP GUARD:
// Every operation that touches an existing resource starts with a single
// owner-scoped fetch (repo.GetByIDForUser). That call is the trust boundary:
// it returns the row only when it belongs to the calling user, and reports
// the identical not-found error whether the row is missing or owned by
// someone else. Handlers never pass data past that check unverified.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// Validation constants, shared by both entity services.
const (
	MaxNameLength    = 100    // collection name / snippet title
	MaxTextLength    = 500    // description, icon, tags
	MaxContentLength = 100000 // ~100KB of snippet content
	DefaultPageSize  = 20
	MaxPageSize      = 100
)

// CollectionService handles business logic for snippet collections.
type CollectionService struct {
	repo   repository.CollectionRepository
	logger *slog.Logger
}

// NewCollectionService creates a CollectionService. The caller decides which
// repository implementation to inject (SQLite in production, a mock in tests).
func NewCollectionService(repo repository.CollectionRepository, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		repo:   repo,
		logger: logger,
	}
}

// CreateCollectionInput is the payload for creating a collection.
// All fields except Name are optional and default to their zero values.
type CreateCollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsDefault   bool   `json:"isDefault"`
}

// UpdateCollectionInput is the payload for a partial update.
//
// WHY POINTER FIELDS?
// A partial update must distinguish "field not given" from "field given as
// its zero value". With plain strings, {"name":""} and {} both decode to "".
// With *string, an absent field decodes to nil and a present field to a
// non-nil pointer — nil means "leave unchanged".
type UpdateCollectionInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsDefault   *bool   `json:"isDefault"`
}

// Create validates and saves a new collection for userID.
//
// If IsDefault is set, the repository clears the default flag on the user's
// other collections in the same transaction as the insert, keeping the
// at-most-one-default invariant.
func (s *CollectionService) Create(ctx context.Context, userID string, in CreateCollectionInput) (*model.Collection, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "collection name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("collection name must be %d characters or less", MaxNameLength))
	}
	if len(in.Description) > MaxTextLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxTextLength))
	}

	c := &model.Collection{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
		IsDefault:   in.IsDefault,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create collection",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	s.logger.Info("collection created",
		slog.String("id", c.ID),
		slog.String("userID", userID),
		slog.Bool("isDefault", c.IsDefault),
	)

	return c, nil
}

// Update applies a partial update to an owned collection and returns the
// row RE-FETCHED from the store — not the in-memory copy — so the result
// reflects the actual persisted state, including the updated_at bump that
// default-clearing applies to sibling rows.
//
// FIELD SEMANTICS:
//   - Name: nil = unchanged; present must be non-empty.
//   - Description, Icon: nil = unchanged; present-and-empty is also treated
//     as unchanged — these fields can be set but never cleared to empty
//     through this operation.
//   - IsDefault: nil = unchanged; true clears the user's other defaults in
//     the same transaction.
func (s *CollectionService) Update(ctx context.Context, userID, id string, in UpdateCollectionInput) (*model.Collection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "collection ID is required")
	}

	// Ownership guard: missing and not-owned both surface as NotFound here.
	c, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "collection name must not be empty")
		}
		if len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("collection name must be %d characters or less", MaxNameLength))
		}
		c.Name = name
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		if len(*in.Description) > MaxTextLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxTextLength))
		}
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil && strings.TrimSpace(*in.Icon) != "" {
		c.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.IsDefault != nil {
		c.IsDefault = *in.IsDefault
	}

	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("failed to update collection",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating collection: %w", err)
	}

	// Re-fetch so the caller sees the persisted row, not our in-memory copy.
	updated, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("re-fetching collection after update: %w", err)
	}

	s.logger.Info("collection updated", slog.String("id", id))
	return updated, nil
}

// List returns one page of the user's collections, newest created first.
//
// page starts at 1; pageSize is 1–100. Pass 0 for either to get the default
// (page 1, 20 per page). Out-of-range values are validation errors, not
// silently clamped.
func (s *CollectionService) List(ctx context.Context, userID string, page, pageSize int) ([]model.Collection, error) {
	page, pageSize, err := normalizePagination(page, pageSize)
	if err != nil {
		return nil, err
	}

	collections, err := s.repo.ListByUser(ctx, userID, repository.ListOptions{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		s.logger.Error("failed to list collections",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	return collections, nil
}

// normalizePagination applies defaults for unset (zero) values and rejects
// out-of-range ones.
func normalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, apperror.ValidationFailed("page", "page must be 1 or greater")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, apperror.ValidationFailed("pageSize",
			fmt.Sprintf("pageSize must be between 1 and %d", MaxPageSize))
	}
	return page, pageSize, nil
}
