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

// SnippetService handles business logic for snippets.
//
// It depends on BOTH repositories: snippets for the entity itself, and
// collections for verifying that a collectionId the caller supplies
// actually belongs to them. That cross-check is what stops a user from
// creating a snippet in — or moving one into — someone else's collection.
type SnippetService struct {
	snippets    repository.SnippetRepository
	collections repository.CollectionRepository
	logger      *slog.Logger
}

// NewSnippetService creates a SnippetService with its dependencies.
func NewSnippetService(
	snippets repository.SnippetRepository,
	collections repository.CollectionRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:    snippets,
		collections: collections,
		logger:      logger,
	}
}

// CreateSnippetInput is the payload for creating a snippet.
type CreateSnippetInput struct {
	CollectionID string `json:"collectionId"`
	Title        string `json:"title"`
	Language     string `json:"language"`
	Content      string `json:"content"`
	Description  string `json:"description"`
	Tags         string `json:"tags"`
	IsFavorite   bool   `json:"isFavorite"`
}

// UpdateSnippetInput is the payload for a partial snippet update.
// Pointer fields: nil means "leave unchanged" (see UpdateCollectionInput
// for why pointers and not plain values).
type UpdateSnippetInput struct {
	Title        *string `json:"title"`
	Language     *string `json:"language"`
	Content      *string `json:"content"`
	Description  *string `json:"description"`
	Tags         *string `json:"tags"`
	IsFavorite   *bool   `json:"isFavorite"`
	IsArchived   *bool   `json:"isArchived"`
	CollectionID *string `json:"collectionId"`
}

// ListSnippetsInput carries the optional filters for a snippet listing.
type ListSnippetsInput struct {
	CollectionID    string
	IncludeArchived bool
	Page            int
	PageSize        int
}

// Create validates input, verifies the target collection is owned by the
// caller, and inserts the snippet.
//
// ORDER MATTERS: the collection ownership check runs BEFORE any insert. A
// collectionId that is missing or belongs to another user fails with
// NotFound and no row is ever written.
func (s *SnippetService) Create(ctx context.Context, userID string, in CreateSnippetInput) (*model.Snippet, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxNameLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxNameLength))
	}
	if in.Content == "" {
		return nil, apperror.ValidationFailed("content", "snippet content is required")
	}
	if len(in.Content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	if strings.TrimSpace(in.CollectionID) == "" {
		return nil, apperror.ValidationFailed("collectionId", "collectionId is required")
	}

	// Ownership guard on the target collection.
	if _, err := s.collections.GetByIDForUser(ctx, in.CollectionID, userID); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		CollectionID: in.CollectionID,
		UserID:       userID,
		Title:        title,
		Language:     strings.TrimSpace(in.Language),
		Description:  strings.TrimSpace(in.Description),
		Tags:         strings.TrimSpace(in.Tags),
		Content:      in.Content,
		IsFavorite:   in.IsFavorite,
		IsArchived:   false,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userID", userID),
			slog.String("collectionID", in.CollectionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("collectionID", snippet.CollectionID),
	)

	return snippet, nil
}

// Update applies a partial update to an owned snippet and returns the row
// re-fetched from the store.
//
// MOVING BETWEEN COLLECTIONS:
// When CollectionID is present and differs from the current one, the TARGET
// collection goes through the same ownership guard before the reassignment
// is applied. Pointing a snippet at another user's collection fails with
// NotFound and leaves the original row untouched.
func (s *SnippetService) Update(ctx context.Context, userID, id string, in UpdateSnippetInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "snippet title must not be empty")
		}
		if len(title) > MaxNameLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("snippet title must be %d characters or less", MaxNameLength))
		}
		snippet.Title = title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, apperror.ValidationFailed("content", "snippet content must not be empty")
		}
		if len(*in.Content) > MaxContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxContentLength))
		}
		snippet.Content = *in.Content
	}
	if in.Language != nil {
		snippet.Language = strings.TrimSpace(*in.Language)
	}
	if in.Description != nil {
		snippet.Description = strings.TrimSpace(*in.Description)
	}
	if in.Tags != nil {
		snippet.Tags = strings.TrimSpace(*in.Tags)
	}
	if in.IsFavorite != nil {
		snippet.IsFavorite = *in.IsFavorite
	}
	if in.IsArchived != nil {
		snippet.IsArchived = *in.IsArchived
	}
	if in.CollectionID != nil && *in.CollectionID != snippet.CollectionID {
		if strings.TrimSpace(*in.CollectionID) == "" {
			return nil, apperror.ValidationFailed("collectionId", "collectionId must not be empty")
		}
		// Re-verify ownership of the NEW collection before reassigning.
		if _, err := s.collections.GetByIDForUser(ctx, *in.CollectionID, userID); err != nil {
			return nil, err
		}
		snippet.CollectionID = *in.CollectionID
	}

	snippet.UpdatedAt = time.Now()

	if err := s.snippets.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	updated, err := s.snippets.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("re-fetching snippet after update: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", id))
	return updated, nil
}

// Archive marks an owned snippet as archived. This is the one-way soft
// delete: there is no unarchive operation, and the handler returns only the
// id, not the row. Archiving twice succeeds both times.
func (s *SnippetService) Archive(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	if err := s.snippets.Archive(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("snippet archived", slog.String("id", id))
	return nil
}

// List returns one page of the user's snippets, most recently updated first.
//
// If CollectionID is given, its ownership is verified FIRST — strictly
// speaking redundant (the owner filter already scopes results), but without
// it an invalid collectionId would silently return an empty page instead of
// failing fast with NotFound.
//
// Archived snippets are excluded unless IncludeArchived is set.
func (s *SnippetService) List(ctx context.Context, userID string, in ListSnippetsInput) ([]model.Snippet, error) {
	page, pageSize, err := normalizePagination(in.Page, in.PageSize)
	if err != nil {
		return nil, err
	}

	if in.CollectionID != "" {
		if _, err := s.collections.GetByIDForUser(ctx, in.CollectionID, userID); err != nil {
			return nil, err
		}
	}

	snippets, err := s.snippets.ListByUser(ctx, userID,
		repository.SnippetFilter{
			CollectionID:    in.CollectionID,
			IncludeArchived: in.IncludeArchived,
		},
		repository.ListOptions{
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		},
	)
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// GetByID returns an owned snippet, or NotFound.
func (s *SnippetService) GetByID(ctx context.Context, userID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.snippets.GetByIDForUser(ctx, id, userID)
}
