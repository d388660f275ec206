// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"filippo.io/age"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/promptkeep/promptkeep/lib/secret"
)

const schema = `
CREATE TABLE IF NOT EXISTS folders (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS entries (
	folder   TEXT NOT NULL,
	digest   TEXT NOT NULL,
	envelope TEXT NOT NULL,
	PRIMARY KEY (folder, digest)
);
`

// Config holds the parameters for opening a vault.
type Config struct {
	// Path is the SQLite database file. The parent directory is
	// created if missing; the database is created on first open.
	Path string

	// KeyPath is the age identity file. Must exist with mode 0600
	// (see GenerateKeyFile).
	KeyPath string

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Vault is an encrypted credential store on a single SQLite
// connection. It implements wallet.Wallet.
//
// Vault is not safe for concurrent use. The askpass flow is strictly
// sequential — one classification, at most one read/write round trip
// per process — so one connection is all there is.
type Vault struct {
	conn      *sqlite.Conn
	identity  *secret.Buffer
	recipient *age.X25519Recipient
	logger    *slog.Logger
	folder    string
}

// Open loads the vault key and opens the database, creating the
// schema on first use. The caller must Close the vault. Callers
// treat failure as "no store available", not as a fatal condition.
func Open(cfg Config) (*Vault, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("vault: Path is required")
	}
	if cfg.KeyPath == "" {
		return nil, fmt.Errorf("vault: KeyPath is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	identity, err := secret.ReadKeyFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("vault: loading key: %w", err)
	}

	// Parse once to validate and derive the recipient; the durable
	// copy of the key stays in the protected buffer.
	parsed, err := age.ParseX25519Identity(identity.String())
	if err != nil {
		identity.Close()
		return nil, fmt.Errorf("vault: parsing key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		identity.Close()
		return nil, fmt.Errorf("vault: creating database directory: %w", err)
	}

	conn, err := sqlite.OpenConn(cfg.Path, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL)
	if err != nil {
		identity.Close()
		return nil, fmt.Errorf("vault: opening %s: %w", cfg.Path, err)
	}

	for _, pragma := range []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			conn.Close()
			identity.Close()
			return nil, fmt.Errorf("vault: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		identity.Close()
		return nil, fmt.Errorf("vault: creating schema: %w", err)
	}

	logger.Debug("vault opened", "path", cfg.Path)

	return &Vault{
		conn:      conn,
		identity:  identity,
		recipient: parsed.Recipient(),
		logger:    logger,
	}, nil
}

// Close releases the database connection and the key material.
func (v *Vault) Close() error {
	var firstErr error
	if v.conn != nil {
		firstErr = v.conn.Close()
		v.conn = nil
	}
	if v.identity != nil {
		if err := v.identity.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		v.identity = nil
	}
	return firstErr
}

// HasFolder implements wallet.Wallet.
func (v *Vault) HasFolder(name string) bool {
	var found bool
	err := sqlitex.Execute(v.conn, "SELECT 1 FROM folders WHERE name = ?", &sqlitex.ExecOptions{
		Args: []any{name},
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		v.logger.Warn("folder query failed", "folder", name, "error", err)
		return false
	}
	return found
}

// CreateFolder implements wallet.Wallet.
func (v *Vault) CreateFolder(name string) error {
	return sqlitex.Execute(v.conn, "INSERT OR IGNORE INTO folders (name) VALUES (?)", &sqlitex.ExecOptions{
		Args: []any{name},
	})
}

// SetFolder implements wallet.Wallet.
func (v *Vault) SetFolder(name string) error {
	if !v.HasFolder(name) {
		return fmt.Errorf("vault: no folder %q", name)
	}
	v.folder = name
	return nil
}

// Read implements wallet.Wallet. A missing entry is (nil, nil).
func (v *Vault) Read(key string) (*secret.Buffer, error) {
	record, err := v.readRecord(key)
	if err != nil || record == nil {
		return nil, err
	}
	if len(record.Value) == 0 {
		return nil, nil
	}
	// NewFromBytes zeroes the heap copy of the value.
	return secret.NewFromBytes(record.Value)
}

// readRecord fetches and unseals the entry for key in the selected
// folder, or nil when there is none.
func (v *Vault) readRecord(key string) (*entryRecord, error) {
	var envelope string
	err := sqlitex.Execute(v.conn,
		"SELECT envelope FROM entries WHERE folder = ? AND digest = ?",
		&sqlitex.ExecOptions{
			Args: []any{v.folder, entryDigest(v.folder, key)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				envelope = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("vault: reading entry: %w", err)
	}
	if envelope == "" {
		return nil, nil
	}

	record, err := v.unseal(envelope)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return record, nil
}

// Write implements wallet.Wallet. An existing entry is replaced; its
// creation timestamp is preserved when the old envelope is readable.
func (v *Vault) Write(key string, value *secret.Buffer) error {
	now := time.Now().Unix()
	created := now
	if existing, err := v.readRecord(key); err == nil && existing != nil {
		created = existing.CreatedAt
		secret.Zero(existing.Value)
	}

	record := &entryRecord{
		Identifier: key,
		Value:      value.Bytes(),
		CreatedAt:  created,
		UpdatedAt:  now,
	}
	envelope, err := v.seal(record)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	return v.putEnvelope(key, envelope)
}

// putEnvelope upserts an envelope under key's digest in the selected
// folder.
func (v *Vault) putEnvelope(key, envelope string) error {
	err := sqlitex.Execute(v.conn,
		"INSERT OR REPLACE INTO entries (folder, digest, envelope) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{v.folder, entryDigest(v.folder, key), envelope},
		})
	if err != nil {
		return fmt.Errorf("vault: writing entry: %w", err)
	}
	return nil
}

// Rename implements wallet.Wallet. The entry moves to newKey in one
// transaction — the old key stops resolving, and any entry already
// at newKey is replaced. The envelope is rebuilt so the identifier
// inside it matches the new key.
func (v *Vault) Rename(oldKey, newKey string) (err error) {
	record, err := v.readRecord(oldKey)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("vault: no entry %q", oldKey)
	}
	defer secret.Zero(record.Value)

	record.Identifier = newKey
	record.UpdatedAt = time.Now().Unix()
	envelope, err := v.seal(record)
	if err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	release := sqlitex.Save(v.conn)
	defer release(&err)

	if err = v.putEnvelope(newKey, envelope); err != nil {
		return err
	}
	err = sqlitex.Execute(v.conn,
		"DELETE FROM entries WHERE folder = ? AND digest = ?",
		&sqlitex.ExecOptions{
			Args: []any{v.folder, entryDigest(v.folder, oldKey)},
		})
	if err != nil {
		return fmt.Errorf("vault: removing old entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key in the selected folder. Removing
// a missing entry is not an error.
func (v *Vault) Delete(key string) error {
	err := sqlitex.Execute(v.conn,
		"DELETE FROM entries WHERE folder = ? AND digest = ?",
		&sqlitex.ExecOptions{
			Args: []any{v.folder, entryDigest(v.folder, key)},
		})
	if err != nil {
		return fmt.Errorf("vault: deleting entry: %w", err)
	}
	return nil
}

// Entry describes one stored credential for listing. The value is
// not included.
type Entry struct {
	Identifier string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// List returns the entries in the selected folder, sorted by
// identifier. Each envelope is decrypted to recover its identifier;
// an envelope that fails to decrypt is reported and skipped.
func (v *Vault) List() ([]Entry, error) {
	var envelopes []string
	err := sqlitex.Execute(v.conn,
		"SELECT envelope FROM entries WHERE folder = ?",
		&sqlitex.ExecOptions{
			Args: []any{v.folder},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				envelopes = append(envelopes, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("vault: listing entries: %w", err)
	}

	entries := make([]Entry, 0, len(envelopes))
	for _, envelope := range envelopes {
		record, err := v.unseal(envelope)
		if err != nil {
			v.logger.Warn("skipping unreadable entry", "error", err)
			continue
		}
		secret.Zero(record.Value)
		entries = append(entries, Entry{
			Identifier: record.Identifier,
			CreatedAt:  time.Unix(record.CreatedAt, 0),
			UpdatedAt:  time.Unix(record.UpdatedAt, 0),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Identifier < entries[j].Identifier
	})
	return entries, nil
}

// Folders returns all folder names, sorted.
func (v *Vault) Folders() ([]string, error) {
	var names []string
	err := sqlitex.Execute(v.conn, "SELECT name FROM folders ORDER BY name", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			names = append(names, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vault: listing folders: %w", err)
	}
	return names, nil
}
