// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: textindex/textindex_test.go
// Summary: Tests for the FTS5 trigram index.

package textindex

import (
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "index.db")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { x.Close() })
	return x
}

func seed(t *testing.T, x *Index) {
	t.Helper()
	entries := []struct {
		id      string
		content string
	}{
		{"a", "error: disk full on /var"},
		{"b", "request served in 12ms"},
		{"c", "ERROR: connection refused"},
		{"d", "all systems nominal"},
	}
	for i, e := range entries {
		if err := x.IndexItem(i, e.id, e.content); err != nil {
			t.Fatalf("IndexItem(%s): %v", e.id, err)
		}
	}
}

func TestIndex_SubstringQuery(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	ids, err := x.Query("error", -1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("ids = %v, want [a c]", ids)
	}

	// Substrings across word boundaries match (trigram, not terms).
	ids, err = x.Query("disk ful", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("ids = %v, want [a]", ids)
	}
}

func TestIndex_ShortQueryLikeFallback(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	// Two characters cannot form a trigram; LIKE answers instead.
	ids, err := x.Query("ms", -1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want the 12ms and systems rows", ids)
	}
}

func TestIndex_QuoteAndOperatorSafety(t *testing.T) {
	x := openTestIndex(t)
	if err := x.IndexItem(0, "q", `say "hello" AND goodbye`); err != nil {
		t.Fatal(err)
	}

	// FTS operators inside the query are literal text.
	ids, err := x.Query(`"hello" AND`, -1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(ids) != 1 || ids[0] != "q" {
		t.Errorf("ids = %v, want [q]", ids)
	}
}

func TestIndex_ReplaceAndRemove(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	// Re-indexing an id replaces its content.
	if err := x.IndexItem(1, "b", "now matches error too"); err != nil {
		t.Fatal(err)
	}
	ids, err := x.Query("error", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Errorf("ids after replace = %v, want 3 matches", ids)
	}

	if err := x.RemoveItem("a"); err != nil {
		t.Fatal(err)
	}
	ids, err = x.Query("error", -1)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range ids {
		if id == "a" {
			t.Error("removed id still matches")
		}
	}
}

func TestIndex_Limit(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	ids, err := x.Query("error", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("limit ignored: got %d ids", len(ids))
	}
}

func TestIndex_Clear(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	if err := x.Clear(); err != nil {
		t.Fatal(err)
	}
	n, err := x.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count after clear = %d, want 0", n)
	}
	ids, err := x.Query("error", -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("cleared index still matches %v", ids)
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	x := openTestIndex(t)
	seed(t, x)

	ids, err := x.Query("", -1)
	if err != nil {
		t.Fatal(err)
	}
	if ids != nil {
		t.Errorf("empty query returned %v", ids)
	}
}
