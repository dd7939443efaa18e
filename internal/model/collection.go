// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Collection is a named grouping of snippets owned by one user.
//
// OWNERSHIP MODEL:
// UserID is set at creation and never changes. Every read and write of a
// collection is filtered by UserID, so one user can never see or touch
// another user's collections. There is no sharing — a collection belongs
// to exactly one owner.
//
// THE DEFAULT COLLECTION:
// IsDefault marks the collection a UI would pre-select when saving a new
// snippet. The invariant is: at most ONE collection per user has
// IsDefault = true at any time. The repository enforces this by clearing
// the flag on all of the user's other collections inside the same
// transaction that sets it (see sqlite/collection.go).
//
// WHY NO DeletedAt / no delete at all?
// Collections cannot be deleted through the API. Snippets reference their
// collection by ID, and we'd rather keep a stale-but-valid reference than
// deal with cascading deletes or orphaned snippets. Archiving happens at
// the snippet level instead.
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
