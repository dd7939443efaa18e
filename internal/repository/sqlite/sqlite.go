// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single
// file. No separate database server to install, configure, or manage. Perfect
// for a single-server personal tool like this one, and ":memory:" gives every
// test its own throwaway database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite" in its init() function.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// One struct implements all three repository interfaces — they share the
// connection pool and the snippets/collections tables reference each other.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must be
	// pinned to one connection or each query may see a different, empty
	// database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open doesn't actually connect — Ping forces the first connection
	// so a bad path or permissions problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We turn them on so
	// snippets.collection_id can never point at a deleted collection row.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; for anything fancier we'd reach for golang-migrate.
func (db *DB) migrate() error {
	// Users first — collections and snippets reference it.
	// github_id uses a partial unique index so that password accounts
	// (github_id = 0) don't collide with each other.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			github_id     INTEGER NOT NULL DEFAULT 0,
			login         TEXT NOT NULL,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email) WHERE email != '';
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Collections: the partial index on (user_id, is_default) backs the
	// "at most one default per user" invariant the repository maintains.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon        TEXT NOT NULL DEFAULT '',
			is_default  INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_collections_user_created
			ON collections(user_id, created_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_collections_user_default
			ON collections(user_id) WHERE is_default = 1;
	`)
	if err != nil {
		return fmt.Errorf("creating collections table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id            TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL REFERENCES collections(id),
			user_id       TEXT NOT NULL REFERENCES users(id),
			title         TEXT NOT NULL,
			language      TEXT NOT NULL DEFAULT '',
			description   TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '',
			content       TEXT NOT NULL,
			is_favorite   INTEGER NOT NULL DEFAULT 0,
			is_archived   INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_user_updated
			ON snippets(user_id, updated_at);
		CREATE INDEX IF NOT EXISTS idx_snippets_collection
			ON snippets(collection_id);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	return nil
}
