package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// newTestDB creates a fresh in-memory database for one test. t.Cleanup
// closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user row. Collections and snippets have foreign
// keys to users, so nearly every test needs one.
func createTestUser(t *testing.T, db *DB, login string) *model.User {
	t.Helper()
	u := &model.User{
		Login:        login,
		Email:        fmt.Sprintf("%s@example.com", login),
		PasswordHash: "irrelevant",
	}
	if err := db.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestCollection(t *testing.T, db *DB, userID, name string, isDefault bool) *model.Collection {
	t.Helper()
	c := &model.Collection{
		UserID:    userID,
		Name:      name,
		IsDefault: isDefault,
	}
	if err := db.Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create test collection: %v", err)
	}
	return c
}

// countDefaults returns how many of the user's collections carry the
// default flag — the invariant under test is that it never exceeds one.
func countDefaults(t *testing.T, db *DB, userID string) int {
	t.Helper()
	all, err := db.ListByUser(context.Background(), userID, repository.ListOptions{Limit: 100})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	n := 0
	for _, c := range all {
		if c.IsDefault {
			n++
		}
	}
	return n
}

func TestCollectionCreate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	c := &model.Collection{
		UserID:      user.ID,
		Name:        "SQL",
		Description: "handy queries",
		Icon:        "database",
	}
	if err := db.Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.ID == "" {
		t.Error("Create() did not set collection.ID")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}

	found, err := db.GetByIDForUser(context.Background(), c.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser() error = %v", err)
	}
	if found.Name != "SQL" || found.Description != "handy queries" || found.Icon != "database" {
		t.Errorf("persisted collection = %+v, fields don't match", found)
	}
	if found.IsDefault {
		t.Error("IsDefault should be false when not requested")
	}
}

func TestCollectionCreate_DefaultClearsOthers(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	first := createTestCollection(t, db, user.ID, "first", true)
	second := createTestCollection(t, db, user.ID, "second", true)

	// The first collection must have lost its default flag.
	refetched, err := db.GetByIDForUser(context.Background(), first.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if refetched.IsDefault {
		t.Error("first collection should no longer be default")
	}

	refetched2, err := db.GetByIDForUser(context.Background(), second.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if !refetched2.IsDefault {
		t.Error("second collection should be default")
	}

	if n := countDefaults(t, db, user.ID); n != 1 {
		t.Errorf("user has %d default collections, want 1", n)
	}
}

func TestCollectionCreate_DefaultScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestCollection(t, db, alice.ID, "alice-default", true)
	createTestCollection(t, db, bob.ID, "bob-default", true)

	// One default each — bob's create must not clear alice's flag.
	if n := countDefaults(t, db, alice.ID); n != 1 {
		t.Errorf("alice has %d defaults, want 1", n)
	}
	if n := countDefaults(t, db, bob.ID); n != 1 {
		t.Errorf("bob has %d defaults, want 1", n)
	}
}

func TestCollectionGetByIDForUser_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	_, err := db.GetByIDForUser(context.Background(), "nonexistent-id", user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByIDForUser() error = %v, want ErrNotFound", err)
	}
}

func TestCollectionGetByIDForUser_OtherUsersCollection(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	c := createTestCollection(t, db, alice.ID, "private", false)

	// Bob asking for alice's collection gets the exact same error as for a
	// collection that doesn't exist.
	_, err := db.GetByIDForUser(context.Background(), c.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByIDForUser() error = %v, want ErrNotFound", err)
	}
}

func TestCollectionListByUser_ScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestCollection(t, db, alice.ID, "oldest", false)
	time.Sleep(2 * time.Millisecond)
	createTestCollection(t, db, alice.ID, "middle", false)
	time.Sleep(2 * time.Millisecond)
	createTestCollection(t, db, alice.ID, "newest", false)
	createTestCollection(t, db, bob.ID, "bobs", false)

	got, err := db.ListByUser(context.Background(), alice.ID, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("ListByUser() returned %d collections, want 3 (bob's must be excluded)", len(got))
	}
	// Newest created first.
	if got[0].Name != "newest" || got[2].Name != "oldest" {
		t.Errorf("order = [%s %s %s], want newest→oldest", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestCollectionListByUser_Pagination(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	for i := 0; i < 5; i++ {
		createTestCollection(t, db, user.ID, fmt.Sprintf("c%d", i), false)
	}

	page1, err := db.ListByUser(context.Background(), user.ID, repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page3, err := db.ListByUser(context.Background(), user.ID, repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}

	if len(page1) != 2 {
		t.Errorf("page 1: got %d items, want 2", len(page1))
	}
	if len(page3) != 1 {
		t.Errorf("page 3: got %d items, want 1", len(page3))
	}
}

func TestCollectionUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")
	c := createTestCollection(t, db, user.ID, "before", false)

	c.Name = "after"
	c.Description = "now with a description"
	c.UpdatedAt = time.Now()
	if err := db.Update(context.Background(), c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByIDForUser(context.Background(), c.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if found.Name != "after" || found.Description != "now with a description" {
		t.Errorf("persisted collection = %+v after update", found)
	}
}

func TestCollectionUpdate_SwitchDefault(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	a := createTestCollection(t, db, user.ID, "a", true)
	b := createTestCollection(t, db, user.ID, "b", false)

	b.IsDefault = true
	b.UpdatedAt = time.Now()
	if err := db.Update(context.Background(), b); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	refetchedA, err := db.GetByIDForUser(context.Background(), a.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if refetchedA.IsDefault {
		t.Error("collection a should have lost its default flag")
	}
	if n := countDefaults(t, db, user.ID); n != 1 {
		t.Errorf("user has %d default collections, want 1", n)
	}
}

func TestCollectionUpdate_NotOwned(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	c := createTestCollection(t, db, alice.ID, "alices", false)

	// Forge an update carrying bob's user ID — the WHERE clause must match
	// zero rows.
	forged := *c
	forged.UserID = bob.ID
	forged.Name = "stolen"
	forged.UpdatedAt = time.Now()

	err := db.Update(context.Background(), &forged)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}

	// Alice's row is untouched.
	found, err := db.GetByIDForUser(context.Background(), c.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if found.Name != "alices" {
		t.Errorf("Name = %q, original row was modified", found.Name)
	}
}
