// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/sqlite_test.go
// Summary: Tests for the SQLite-backed source against a temp database.

package source

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func createTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY, content TEXT NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	for i, content := range []string{"row alpha", "row beta", "row gamma"} {
		if _, err := db.Exec(`INSERT INTO entries (id, content) VALUES (?, ?)`, i+1, content); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestSQLiteSource_FetchAndCount(t *testing.T) {
	path := createTestDB(t)
	s, err := OpenSQLite(DefaultSQLiteConfig(path, "entries"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.TotalCount() != 3 {
		t.Fatalf("count = %d, want 3", s.TotalCount())
	}
	it, err := s.Fetch(1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if it.Content != "row beta" || it.ID != "2" {
		t.Errorf("item = %+v", it)
	}
	if _, err := s.Fetch(10); err == nil {
		t.Error("out-of-range fetch should fail")
	}
}

func TestSQLiteSource_IDResolution(t *testing.T) {
	path := createTestDB(t)
	s, err := OpenSQLite(DefaultSQLiteConfig(path, "entries"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if id := s.IDAt(2); id != "3" {
		t.Errorf("IDAt(2) = %q, want 3", id)
	}
	if idx, ok := s.IndexOf("3"); !ok || idx != 2 {
		t.Errorf("IndexOf(3) = (%d, %v)", idx, ok)
	}
	if _, ok := s.IndexOf("999"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestSQLiteSource_RefreshSeesNewRows(t *testing.T) {
	path := createTestDB(t)
	s, err := OpenSQLite(DefaultSQLiteConfig(path, "entries"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO entries (id, content) VALUES (4, "row delta")`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if s.TotalCount() != 3 {
		t.Fatalf("stale count = %d, want 3", s.TotalCount())
	}
	if err := s.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.TotalCount() != 4 {
		t.Errorf("count after refresh = %d, want 4", s.TotalCount())
	}
}

func TestSQLiteSource_ConfigValidation(t *testing.T) {
	bad := DefaultSQLiteConfig("/tmp/x.db", "entries; DROP TABLE entries")
	if _, err := OpenSQLite(bad); err == nil {
		t.Error("injection-shaped table name must be rejected")
	}

	bad = DefaultSQLiteConfig("/tmp/x.db", "entries")
	bad.OrderBy = "id; DELETE FROM entries"
	if _, err := OpenSQLite(bad); err == nil {
		t.Error("injection-shaped order-by must be rejected")
	}
}
