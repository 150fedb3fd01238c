// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/buffer_test.go
// Summary: Tests for the in-memory buffer source.

package source

import (
	"testing"

	"github.com/framegrace/texelview/viewport"
)

func TestBuffer_AppendAndFetch(t *testing.T) {
	b := NewBufferFromLines([]string{"alpha", "beta", "gamma"})

	if b.TotalCount() != 3 {
		t.Fatalf("count = %d, want 3", b.TotalCount())
	}
	it, err := b.Fetch(1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if it.Content != "beta" || !it.Selectable {
		t.Errorf("item = %+v", it)
	}
	if _, err := b.Fetch(3); err == nil {
		t.Error("out-of-range fetch should fail")
	}
}

func TestBuffer_IDResolution(t *testing.T) {
	b := NewBuffer()
	id0 := b.AppendLine("first")
	id1 := b.AppendLine("second")

	if b.IDAt(0) != id0 || b.IDAt(1) != id1 {
		t.Errorf("IDAt mismatch: %q %q", b.IDAt(0), b.IDAt(1))
	}
	if idx, ok := b.IndexOf(id1); !ok || idx != 1 {
		t.Errorf("IndexOf(%q) = (%d, %v)", id1, idx, ok)
	}
	if _, ok := b.IndexOf("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestBuffer_InsertRemoveShiftsIndices(t *testing.T) {
	b := NewBufferFromLines([]string{"a", "b", "c"})
	idC := b.IDAt(2)

	b.Insert(1, viewport.Item{ID: "new", Content: "inserted"})
	if idx, _ := b.IndexOf("new"); idx != 1 {
		t.Errorf("inserted item at %d, want 1", idx)
	}
	if idx, _ := b.IndexOf(idC); idx != 3 {
		t.Errorf("c shifted to %d, want 3", idx)
	}

	removed, ok := b.Remove(1)
	if !ok || removed.ID != "new" {
		t.Fatalf("Remove returned (%+v, %v)", removed, ok)
	}
	if idx, _ := b.IndexOf(idC); idx != 2 {
		t.Errorf("c shifted back to %d, want 2", idx)
	}
	if _, ok := b.IndexOf("new"); ok {
		t.Error("removed id must not resolve")
	}
}

func TestBuffer_Replace(t *testing.T) {
	b := NewBufferFromLines([]string{"old"})
	b.Replace([]viewport.Item{
		{ID: "x", Content: "one"},
		{ID: "y", Content: "two", Height: 2},
	})

	if b.TotalCount() != 2 {
		t.Fatalf("count = %d, want 2", b.TotalCount())
	}
	if idx, ok := b.IndexOf("y"); !ok || idx != 1 {
		t.Errorf("IndexOf(y) = (%d, %v)", idx, ok)
	}
	if b.HeightOf(1) != 2 || b.HeightOf(0) != 1 {
		t.Errorf("heights = (%d, %d), want (1, 2)", b.HeightOf(0), b.HeightOf(1))
	}
}

func TestBuffer_WithViewport(t *testing.T) {
	b := NewBufferFromLines([]string{"log line one", "log line two"})
	opts := viewport.DefaultOptions()
	opts.FollowTail = true
	opts.Height = 5
	v := viewport.New(b, opts)

	v.AppendItem(viewport.Item{ID: "tail", Content: "log line three", Selectable: true})
	if v.TotalItems() != 3 || b.TotalCount() != 3 {
		t.Errorf("counts = (%d, %d), want (3, 3)", v.TotalItems(), b.TotalCount())
	}

	f, err := v.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if f.Items[2].Item.Content != "log line three" {
		t.Errorf("tail item = %q", f.Items[2].Item.Content)
	}
}
