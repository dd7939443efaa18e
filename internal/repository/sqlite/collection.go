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

// Compile-time check that *DB implements repository.CollectionRepository.
var _ repository.CollectionRepository = (*DB)(nil)

// Create inserts a new collection, generating its ID and timestamps.
//
// THE DEFAULT-FLAG TRANSACTION:
// "At most one default collection per user" cannot be kept with two
// independent statements — a concurrent request could interleave between
// "clear the others" and "insert this one", leaving two defaults (or zero).
// So when c.IsDefault is set, the clear and the insert run inside a single
// transaction. The partial unique index idx_collections_user_default is the
// backstop: even a bug here would surface as a constraint error, not silent
// corruption.
func (db *DB) Create(ctx context.Context, c *model.Collection) error {
	c.ID = xid.New().String()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit, so deferring it is the
	// standard way to ensure cleanup on every error path.
	defer tx.Rollback()

	if c.IsDefault {
		if err := clearDefaults(ctx, tx, c.UserID, ""); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (id, user_id, name, description, icon, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.Name,
		c.Description,
		c.Icon,
		c.IsDefault,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing collection insert: %w", err)
	}
	return nil
}

// GetByIDForUser fetches a collection scoped to its owner.
//
// The WHERE clause filters on BOTH id and user_id, so a collection that
// exists but belongs to someone else produces sql.ErrNoRows — exactly the
// same outcome as a collection that doesn't exist. Callers (and attackers)
// cannot tell the two cases apart.
func (db *DB) GetByIDForUser(ctx context.Context, id, userID string) (*model.Collection, error) {
	var c model.Collection
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, icon, is_default, created_at, updated_at
		 FROM collections
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.Icon,
		&c.IsDefault,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("collection", id)
		}
		return nil, fmt.Errorf("sqlite: getting collection %s: %w", id, err)
	}
	return &c, nil
}

// ListByUser returns the user's collections, newest created first.
func (db *DB) ListByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Collection, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, description, icon, is_default, created_at, updated_at
		 FROM collections
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collections: %w", err)
	}
	defer rows.Close()

	collections := make([]model.Collection, 0, limit)
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Description, &c.Icon,
			&c.IsDefault, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collections: %w", err)
	}

	return collections, nil
}

// Update writes the full collection row back. The service layer has already
// applied the partial update in memory and bumped UpdatedAt; here we persist
// it, clearing other defaults in the same transaction when needed.
//
// The WHERE clause includes user_id as a second line of defence: even if a
// service bug passed through an unowned collection, the update would match
// zero rows and report not-found instead of touching another user's data.
func (db *DB) Update(ctx context.Context, c *model.Collection) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if c.IsDefault {
		// Clear every OTHER collection's default flag; the row being
		// updated keeps (or gains) it below.
		if err := clearDefaults(ctx, tx, c.UserID, c.ID); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE collections
		 SET name = ?, description = ?, icon = ?, is_default = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		c.Name,
		c.Description,
		c.Icon,
		c.IsDefault,
		c.UpdatedAt,
		c.ID,
		c.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating collection %s: %w", c.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("collection", c.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing collection update: %w", err)
	}
	return nil
}

// clearDefaults removes the default flag from all of userID's collections
// except exceptID (pass "" to clear all). Runs inside the caller's
// transaction so the clear and the subsequent write commit atomically.
func clearDefaults(ctx context.Context, tx *sql.Tx, userID, exceptID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE collections
		 SET is_default = 0, updated_at = ?
		 WHERE user_id = ? AND is_default = 1 AND id != ?`,
		time.Now(), userID, exceptID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing default collections: %w", err)
	}
	return nil
}

// clampListOptions applies the shared pagination bounds: limit 1–100 with a
// default of 20, offset ≥ 0.
func clampListOptions(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
