// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/sqlite.go
// Summary: Read-only SQLite-backed content source: one item per row of
// a configured table, fetched on demand.

package source

import (
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelview/viewport"
)

// SQLiteConfig describes the table a SQLiteSource reads from. Table
// and column names are interpolated into SQL and therefore restricted
// to identifier characters.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Table is the table (or view) to expose.
	Table string

	// IDColumn is the column used as the stable item id. Values are
	// read as text.
	IDColumn string

	// ContentColumn is the column exposed as item content.
	ContentColumn string

	// OrderBy is the ORDER BY expression defining item order.
	// Defaults to the id column.
	OrderBy string
}

// DefaultSQLiteConfig returns a config reading id/content columns
// named "id" and "content".
func DefaultSQLiteConfig(path, table string) SQLiteConfig {
	return SQLiteConfig{
		Path:          path,
		Table:         table,
		IDColumn:      "id",
		ContentColumn: "content",
	}
}

var (
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	orderByRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*( (?i:ASC|DESC))?$`)
)

func (c *SQLiteConfig) validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite source: path is required")
	}
	for _, ident := range []string{c.Table, c.IDColumn, c.ContentColumn} {
		if !identRe.MatchString(ident) {
			return fmt.Errorf("sqlite source: invalid identifier %q", ident)
		}
	}
	if c.OrderBy == "" {
		c.OrderBy = c.IDColumn
	} else if !orderByRe.MatchString(c.OrderBy) {
		return fmt.Errorf("sqlite source: invalid order-by %q", c.OrderBy)
	}
	return nil
}

// SQLiteSource exposes the rows of a SQLite table as viewport items.
// Row count is cached; Refresh re-reads it after external writes.
//
// The source is read-only from the viewport's perspective; writes go
// through the application's own database layer.
type SQLiteSource struct {
	config SQLiteConfig
	db     *sql.DB

	mu    sync.RWMutex
	count int
}

// OpenSQLite opens the database and counts the table's rows.
func OpenSQLite(config SQLiteConfig) (*SQLiteSource, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	dsn := config.Path +
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

	s := &SQLiteSource{config: config, db: db}
	if err := s.Refresh(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Refresh re-reads the row count.
func (s *SQLiteSource) Refresh() error {
	var count int
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.config.Table)
	if err := s.db.QueryRow(q).Scan(&count); err != nil {
		return fmt.Errorf("count %s: %w", s.config.Table, err)
	}
	s.mu.Lock()
	s.count = count
	s.mu.Unlock()
	return nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// TotalCount returns the row count as of the last Refresh.
func (s *SQLiteSource) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Fetch reads the row at the given position in the configured order.
func (s *SQLiteSource) Fetch(index int) (viewport.Item, error) {
	if index < 0 {
		return viewport.Item{}, fmt.Errorf("sqlite fetch %d: negative index", index)
	}

	q := fmt.Sprintf(
		"SELECT CAST(%s AS TEXT), %s FROM %s ORDER BY %s LIMIT 1 OFFSET ?",
		s.config.IDColumn, s.config.ContentColumn, s.config.Table, s.config.OrderBy,
	)
	var id, content string
	err := s.db.QueryRow(q, index).Scan(&id, &content)
	if err == sql.ErrNoRows {
		return viewport.Item{}, fmt.Errorf("sqlite fetch %d: out of range", index)
	}
	if err != nil {
		return viewport.Item{}, fmt.Errorf("sqlite fetch %d: %w", index, err)
	}
	return viewport.Item{ID: id, Content: content, Selectable: true}, nil
}

// IDAt resolves a position to its row id, or "".
func (s *SQLiteSource) IDAt(index int) string {
	if index < 0 {
		return ""
	}
	q := fmt.Sprintf(
		"SELECT CAST(%s AS TEXT) FROM %s ORDER BY %s LIMIT 1 OFFSET ?",
		s.config.IDColumn, s.config.Table, s.config.OrderBy,
	)
	var id string
	if err := s.db.QueryRow(q, index).Scan(&id); err != nil {
		return ""
	}
	return id
}

// IndexOf resolves a row id to its position in the configured order.
func (s *SQLiteSource) IndexOf(id string) (int, bool) {
	q := fmt.Sprintf(
		`SELECT rn FROM (
			SELECT CAST(%s AS TEXT) AS rid, ROW_NUMBER() OVER (ORDER BY %s) - 1 AS rn FROM %s
		) WHERE rid = ?`,
		s.config.IDColumn, s.config.OrderBy, s.config.Table,
	)
	var idx int
	err := s.db.QueryRow(q, id).Scan(&idx)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// Interface checks.
var (
	_ viewport.Source   = (*SQLiteSource)(nil)
	_ viewport.IDSource = (*SQLiteSource)(nil)
)
