package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// Compile-time check that *DB implements repository.SnippetRepository.
var _ repository.SnippetRepository = (*DB)(nil)

// Create inserts a new snippet, generating its ID and timestamps.
//
// The caller (service layer) has already verified that s.CollectionID
// belongs to s.UserID — by the time we get here, the pair is consistent.
// ID generation uses xid: 20 URL-safe chars, sortable by creation time.
func (db *DB) Create(ctx context.Context, s *model.Snippet) error {
	s.ID = xid.New().String()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, collection_id, user_id, title, language, description,
		                       tags, content, is_favorite, is_archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.CollectionID,
		s.UserID,
		s.Title,
		s.Language,
		s.Description,
		s.Tags,
		s.Content,
		s.IsFavorite,
		s.IsArchived,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}
	return nil
}

// GetByIDForUser fetches a snippet scoped to its owner. Missing and
// not-owned rows are indistinguishable — both come back as NotFound.
func (db *DB) GetByIDForUser(ctx context.Context, id, userID string) (*model.Snippet, error) {
	var s model.Snippet
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, collection_id, user_id, title, language, description,
		        tags, content, is_favorite, is_archived, created_at, updated_at
		 FROM snippets
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&s.ID,
		&s.CollectionID,
		&s.UserID,
		&s.Title,
		&s.Language,
		&s.Description,
		&s.Tags,
		&s.Content,
		&s.IsFavorite,
		&s.IsArchived,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	return &s, nil
}

// ListByUser returns the user's snippets, most recently updated first.
//
// DYNAMIC WHERE CLAUSE:
// The base query always filters by user_id. The optional filters append
// AND-conditions with matching placeholder args. This stays well clear of
// SQL injection because only the placeholders vary — the SQL fragments are
// fixed strings.
func (db *DB) ListByUser(ctx context.Context, userID string, filter repository.SnippetFilter, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampListOptions(opts)

	query := `SELECT id, collection_id, user_id, title, language, description,
	                 tags, content, is_favorite, is_archived, created_at, updated_at
	          FROM snippets
	          WHERE user_id = ?`
	args := []any{userID}

	if filter.CollectionID != "" {
		query += ` AND collection_id = ?`
		args = append(args, filter.CollectionID)
	}
	if !filter.IncludeArchived {
		query += ` AND is_archived = 0`
	}

	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.CollectionID, &s.UserID, &s.Title, &s.Language,
			&s.Description, &s.Tags, &s.Content, &s.IsFavorite, &s.IsArchived,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// Update writes the full snippet row back. ID, user_id, and created_at are
// immutable and never appear in the SET list. The user_id in the WHERE
// clause means an unowned row matches nothing and reports not-found.
func (db *DB) Update(ctx context.Context, s *model.Snippet) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET collection_id = ?, title = ?, language = ?, description = ?,
		     tags = ?, content = ?, is_favorite = ?, is_archived = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		s.CollectionID,
		s.Title,
		s.Language,
		s.Description,
		s.Tags,
		s.Content,
		s.IsFavorite,
		s.IsArchived,
		s.UpdatedAt,
		s.ID,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", s.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", s.ID)
	}
	return nil
}

// Archive flips is_archived on an owned snippet and bumps updated_at.
//
// IDEMPOTENCY:
// The WHERE clause deliberately does NOT include "AND is_archived = 0".
// Archiving an already-archived snippet matches the row, rewrites the same
// flag, and succeeds — calling archive twice is not an error. Only a
// missing or unowned id reports not-found.
func (db *DB) Archive(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET is_archived = 1, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		time.Now(), id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: archiving snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}
