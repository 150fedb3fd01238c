// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/item.go
// Summary: Core data model: Item and the Source interfaces consumed
// by the viewport engine.

package viewport

// DefaultItemHeight is the per-item height used when neither the item
// nor the source supplies one.
const DefaultItemHeight = 1

// Item is a single entry in the logical collection. Identity is the ID;
// Content is produced by the Source and treated as immutable once
// cached (replace-on-update, never mutate-in-place).
type Item struct {
	// ID uniquely identifies the item across scrolling and mutation.
	ID string

	// Content is the materialized text of the item.
	Content string

	// Height is the item's height in rendering units. Zero means
	// "use the viewport's default item height".
	Height int

	// Selectable controls whether selection operations apply to this
	// item. The zero value is false; sources that want selectable
	// items must set it.
	Selectable bool

	// Metadata carries optional renderer hints (language, severity,
	// timestamps). The engine never interprets it.
	Metadata map[string]string
}

// HeightOrDefault returns the item's height, substituting def when the
// item does not carry one.
func (it Item) HeightOrDefault(def int) int {
	if it.Height > 0 {
		return it.Height
	}
	if def > 0 {
		return def
	}
	return DefaultItemHeight
}

// Source supplies the logical item collection. The engine treats reads
// as synchronous and side-effect-free; it never assumes a Source is
// cheap, so repeated reads go through the content cache.
//
// Fetch errors are surfaced to the caller unmodified and are never
// retried by the engine. Retry policy belongs to the Source's owner.
type Source interface {
	// TotalCount returns the number of items in the collection.
	TotalCount() int

	// Fetch returns the item at the given logical index.
	Fetch(index int) (Item, error)
}

// HeightSource is an optional Source extension for collections with
// non-uniform item heights. When implemented, HeightOf must be cheap:
// the engine calls it while building its cumulative-height index.
type HeightSource interface {
	// HeightOf returns the height of the item at index, or 0 to use
	// the viewport default.
	HeightOf(index int) int
}

// IDSource is an optional Source extension for collections that can
// resolve ids without materializing content. Sources that implement it
// let the engine answer id lookups without a Fetch.
type IDSource interface {
	// IDAt returns the id of the item at index without fetching its
	// content. Must agree with Fetch(index).ID.
	IDAt(index int) string

	// IndexOf returns the current logical index of the given id.
	IndexOf(id string) (int, bool)
}

// MutableSource is an optional Source extension for collections the
// engine is allowed to mutate. The controller's AddItem/RemoveItem/
// SetItems delegate here; on a read-only Source they are no-ops.
type MutableSource interface {
	// Insert places the item at the given index, shifting subsequent
	// items. index is clamped to [0, TotalCount()].
	Insert(index int, it Item)

	// Remove deletes the item at index and returns it. Returns
	// ok=false when index is out of range.
	Remove(index int) (Item, bool)

	// Replace swaps the entire collection. This is the bulk-reload
	// path and the only mutation allowed to cost O(n).
	Replace(items []Item)
}
