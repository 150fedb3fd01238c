// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: textindex/textindex.go
// Summary: SQLite FTS5 trigram index for viewport content.
//
// Implements viewport.SearchIndexer so large collections answer
// substring queries from the index instead of a linear scan. Writes
// are synchronous: the viewport requires read-your-writes so an item
// indexed during a mutation is searchable immediately after.

package textindex

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelview/viewport"
)

// Config holds configuration for the text index.
type Config struct {
	// DBPath is the path to the SQLite database file. ":memory:" keeps
	// the index in RAM.
	DBPath string
}

// DefaultConfig returns a config for the given database path.
func DefaultConfig(dbPath string) Config {
	return Config{DBPath: dbPath}
}

// Increment when schema changes require reindexing.
const schemaVersion = 1

const baseSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- Main content table. seq is the item's last known logical position,
-- used only to return results in a stable order.
CREATE TABLE IF NOT EXISTS items (
    rowid INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL UNIQUE,
    seq INTEGER NOT NULL,
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_seq ON items(seq);
`

const ftsSchema = `
-- FTS5 virtual table with trigram tokenizer for substring matching.
CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
    content,
    content='items',
    content_rowid='rowid',
    tokenize='trigram'
);

-- Triggers keep FTS5 in sync with the content table.
CREATE TRIGGER IF NOT EXISTS items_ai AFTER INSERT ON items BEGIN
    INSERT INTO items_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS items_au AFTER UPDATE ON items BEGIN
    INSERT INTO items_fts(items_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
    INSERT INTO items_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS items_ad AFTER DELETE ON items BEGIN
    INSERT INTO items_fts(items_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
END;
`

// Index is a SQLite-backed trigram text index.
type Index struct {
	config Config
	db     *sql.DB
	mu     sync.RWMutex
}

// Open creates or opens the index database at the configured path.
func Open(config Config) (*Index, error) {
	if config.DBPath != ":memory:" {
		dir := filepath.Dir(config.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := config.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=cache_size(-8000)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(baseSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	needsReindex, err := checkAndMigrateSchema(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	if _, err := db.Exec(ftsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create FTS schema: %w", err)
	}

	if needsReindex {
		log.Printf("[TEXT_INDEX] Schema version changed, rebuilding FTS index...")
		if _, err := db.Exec("INSERT INTO items_fts(rowid, content) SELECT rowid, content FROM items"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to rebuild FTS index: %w", err)
		}
	}

	return &Index{config: config, db: db}, nil
}

// checkAndMigrateSchema returns true when the FTS table was dropped
// and must be repopulated.
func checkAndMigrateSchema(db *sql.DB) (bool, error) {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&currentVersion)
	if err != nil {
		currentVersion = 0
	}
	if currentVersion == schemaVersion {
		return false, nil
	}

	log.Printf("[TEXT_INDEX] Migrating schema from version %d to %d", currentVersion, schemaVersion)
	drops := []string{
		"DROP TRIGGER IF EXISTS items_ai",
		"DROP TRIGGER IF EXISTS items_au",
		"DROP TRIGGER IF EXISTS items_ad",
		"DROP TABLE IF EXISTS items_fts",
	}
	for _, stmt := range drops {
		if _, err := db.Exec(stmt); err != nil {
			return false, fmt.Errorf("migration failed on %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return false, fmt.Errorf("failed to update schema version: %w", err)
	}
	return currentVersion != 0, nil
}

// IndexItem records (or replaces) an item's content.
func (x *Index) IndexItem(index int, id, content string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, err := x.db.Exec(`
		INSERT INTO items (item_id, seq, content) VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET seq = excluded.seq, content = excluded.content
	`, id, index, content)
	return err
}

// RemoveItem drops an item from the index.
func (x *Index) RemoveItem(id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, err := x.db.Exec("DELETE FROM items WHERE item_id = ?", id)
	return err
}

// Query returns the ids of items whose content contains the query as a
// substring, case-insensitively up to SQLite's ASCII folding. The
// trigram tokenizer needs at least 3 characters; shorter queries fall
// back to LIKE.
func (x *Index) Query(query string, limit int) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if len(query) < 3 {
		likePattern := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", `\%`), "_", `\_`) + "%"
		rows, err = x.db.Query(`
			SELECT item_id FROM items
			WHERE content LIKE ? ESCAPE '\'
			ORDER BY seq
			LIMIT ?
		`, likePattern, limit)
	} else {
		// Double quotes make the trigram match a literal substring, so
		// queries containing FTS operators stay plain text.
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = x.db.Query(`
			SELECT i.item_id
			FROM items_fts
			JOIN items i ON i.rowid = items_fts.rowid
			WHERE items_fts MATCH ?
			ORDER BY i.seq
			LIMIT ?
		`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear empties the index.
func (x *Index) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, err := x.db.Exec("DELETE FROM items")
	return err
}

// Count returns the number of indexed items.
func (x *Index) Count() (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var n int64
	err := x.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n)
	return n, err
}

// Close closes the database.
func (x *Index) Close() error {
	return x.db.Close()
}

// Compile-time interface check
var _ viewport.SearchIndexer = (*Index)(nil)
