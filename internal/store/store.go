// Package store persists client-local auth state in SQLite: the
// credential (the browser build kept this in localStorage with its own
// expiry key) and the session-scoped values carrying a pending PKCE
// handshake across the authorization redirect.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/foxtrapper121/timewarp/internal/auth"
)

// DB wraps the SQLite database holding auth state.
type DB struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at dbPath.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps in-memory databases consistent and is
	// plenty for this access pattern.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credential (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expires_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// SaveCredential stores the single credential, replacing any prior one.
// Expiry is kept in epoch milliseconds alongside the token, mirroring
// the web build's separate timeout key.
func (d *DB) SaveCredential(cred auth.Credential) error {
	_, err := d.db.Exec(`
		INSERT INTO credential (id, access_token, refresh_token, expires_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at
	`, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// LoadCredential returns the stored credential, or nil when none exists.
// A credential found past its expiry is evicted on the spot and reported
// as absent.
func (d *DB) LoadCredential() (*auth.Credential, error) {
	row := d.db.QueryRow(`SELECT access_token, refresh_token, expires_at FROM credential WHERE id = 1`)

	var accessToken string
	var refreshToken sql.NullString
	var expiresAtMilli int64
	if err := row.Scan(&accessToken, &refreshToken, &expiresAtMilli); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	cred := auth.Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.String,
		ExpiresAt:    time.UnixMilli(expiresAtMilli),
	}

	if cred.Expired(time.Now()) {
		if err := d.DeleteCredential(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &cred, nil
}

// DeleteCredential drops the stored credential. Deleting when none is
// stored is a no-op.
func (d *DB) DeleteCredential() error {
	if _, err := d.db.Exec(`DELETE FROM credential WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// Session key-value operations. DB implements auth.SessionStore.

// Get returns the session value for key.
func (d *DB) Get(key string) (string, bool, error) {
	row := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session key: %w", err)
	}
	return value, true, nil
}

// Set stores a session value.
func (d *DB) Set(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write session key: %w", err)
	}
	return nil
}

// Delete removes a session value. Missing keys are a no-op.
func (d *DB) Delete(key string) error {
	if _, err := d.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}

// ClearSession drops every session value. Used when starting a fresh
// authorization session so stale handshakes cannot leak across runs.
func (d *DB) ClearSession() error {
	if _, err := d.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}
