// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/buffer.go
// Summary: In-memory mutable content source backing the viewport.
// Usage: Default source for log tails and other append-heavy feeds.

package source

import (
	"fmt"
	"sync"

	"github.com/framegrace/texelview/viewport"
)

// Buffer is an in-memory ordered collection implementing the full
// optional source interface set (heights, stable ids, mutation).
// Safe for concurrent use.
type Buffer struct {
	mu    sync.RWMutex
	items []viewport.Item
	byID  map[string]int
	seq   uint64
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{byID: make(map[string]int)}
}

// NewBufferFromLines builds a buffer of selectable height-1 items, one
// per line, with generated ids.
func NewBufferFromLines(lines []string) *Buffer {
	b := NewBuffer()
	for _, line := range lines {
		b.AppendLine(line)
	}
	return b
}

// AppendLine appends a selectable item with a generated id and returns
// that id.
func (b *Buffer) AppendLine(content string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := fmt.Sprintf("b-%d", b.seq)
	b.items = append(b.items, viewport.Item{
		ID:         id,
		Content:    content,
		Selectable: true,
	})
	b.byID[id] = len(b.items) - 1
	return id
}

// TotalCount returns the number of items.
func (b *Buffer) TotalCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Fetch returns the item at index.
func (b *Buffer) Fetch(index int) (viewport.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.items) {
		return viewport.Item{}, fmt.Errorf("buffer fetch %d: out of range [0, %d)", index, len(b.items))
	}
	return b.items[index], nil
}

// HeightOf returns the item's height in rendering units.
func (b *Buffer) HeightOf(index int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.items) {
		return 0
	}
	return b.items[index].HeightOrDefault(viewport.DefaultItemHeight)
}

// IDAt returns the id of the item at index, or "".
func (b *Buffer) IDAt(index int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if index < 0 || index >= len(b.items) {
		return ""
	}
	return b.items[index].ID
}

// IndexOf resolves an id to its current index.
func (b *Buffer) IndexOf(id string) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	idx, ok := b.byID[id]
	return idx, ok
}

// Insert places it at index; later items shift up. Indices outside
// [0, len] clamp.
func (b *Buffer) Insert(index int, it viewport.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(b.items) {
		index = len(b.items)
	}
	b.items = append(b.items, viewport.Item{})
	copy(b.items[index+1:], b.items[index:])
	b.items[index] = it
	b.reindexFrom(index)
}

// Remove deletes the item at index and returns it.
func (b *Buffer) Remove(index int) (viewport.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.items) {
		return viewport.Item{}, false
	}
	it := b.items[index]
	delete(b.byID, it.ID)
	b.items = append(b.items[:index], b.items[index+1:]...)
	b.reindexFrom(index)
	return it, true
}

// Replace swaps the whole collection.
func (b *Buffer) Replace(items []viewport.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items[:0:0], items...)
	b.byID = make(map[string]int, len(b.items))
	b.reindexFrom(0)
}

// reindexFrom refreshes the id map for items at or past index. Caller
// holds the write lock.
func (b *Buffer) reindexFrom(index int) {
	for i := index; i < len(b.items); i++ {
		b.byID[b.items[i].ID] = i
	}
}

// Interface checks.
var (
	_ viewport.Source        = (*Buffer)(nil)
	_ viewport.HeightSource  = (*Buffer)(nil)
	_ viewport.IDSource      = (*Buffer)(nil)
	_ viewport.MutableSource = (*Buffer)(nil)
)
