package model

import "time"

// Snippet is a stored code/text payload with metadata, belonging to exactly
// one Collection and (transitively) one owner.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize
// this struct. We use camelCase keys to match what a JS frontend expects.
//
// WHY IS UserID STORED HERE TOO?
// The owner is already reachable through CollectionID → Collection.UserID,
// but we denormalize it onto the snippet so that every snippet query can be
// scoped by a single equality filter (WHERE user_id = ?) without joining
// collections. The two must always agree: a snippet's CollectionID must
// resolve to a collection with the same UserID, and moving a snippet to a
// new collection re-verifies that the target has the same owner.
//
// WHY Tags AS A PLAIN STRING?
// Tags is a free-text field ("sql, backend, wip"), not a parsed set. The
// backend never filters or splits on it, so a string column is simpler than
// a join table we'd never query.
//
// ARCHIVAL:
// IsArchived is a one-way flag: active → archived, no way back through the
// API. Archived snippets are hidden from listings unless the caller asks
// for them. There is no hard delete.
type Snippet struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Language     string    `json:"language"`
	Description  string    `json:"description"`
	Tags         string    `json:"tags"`
	Content      string    `json:"content"`
	IsFavorite   bool      `json:"isFavorite"`
	IsArchived   bool      `json:"isArchived"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
