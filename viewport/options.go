// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/options.go
// Summary: Viewport configuration and caller-facing callbacks.
// Injected rather than read from global state, enabling testability.

package viewport

// Options configures a Viewport. The zero value is unusable; start
// from DefaultOptions and override.
type Options struct {
	// Width and Height are the viewport extent in rendering units.
	Width  int
	Height int

	// VirtualScrolling enables windowed fetch/cache. When false the
	// viewport naively materializes the full collection each frame
	// (only sensible for small collections and tests).
	VirtualScrolling bool

	// SelectionMode selects none/single/multi selection semantics.
	SelectionMode SelectionMode

	// ShowScrollbar controls whether frames carry scrollbar metrics.
	ShowScrollbar bool

	// ScrollbarPosition is a presentation hint passed through to the
	// renderer untouched.
	ScrollbarPosition ScrollbarPosition

	// ItemHeight is the default per-item height when neither the item
	// nor the Source supplies one.
	ItemHeight int

	// CacheSize is the content cache capacity in entries.
	CacheSize int

	// ScrollMode selects line-aligned or free (pixel) offsets.
	ScrollMode ScrollMode

	// FollowTail keeps the viewport pinned to the bottom while it is
	// already there and new items are appended (live log viewers).
	FollowTail bool
}

// DefaultOptions returns the configuration used by the demo apps:
// a standard terminal extent with virtual scrolling on.
func DefaultOptions() Options {
	return Options{
		Width:             80,
		Height:            24,
		VirtualScrolling:  true,
		SelectionMode:     SelectionNone,
		ShowScrollbar:     true,
		ScrollbarPosition: ScrollbarRight,
		ItemHeight:        DefaultItemHeight,
		CacheSize:         DefaultCacheSize,
		ScrollMode:        ScrollModeLine,
	}
}

// sanitize applies defaults for zero/invalid values, in place.
func (o *Options) sanitize() {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 24
	}
	if o.ItemHeight <= 0 {
		o.ItemHeight = DefaultItemHeight
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
}

// Callbacks are invoked synchronously at the end of the operation
// that caused the corresponding state change. No-op operations never
// fire a callback. All callbacks are optional.
type Callbacks struct {
	// OnScroll fires when the scroll offset changes, with the new
	// offset in rendering units.
	OnScroll func(offset int64)

	// OnSelectionChange fires when the selected id set changes, with
	// the new selection in insertion order.
	OnSelectionChange func(ids []string)

	// OnItemActivate fires when the caller activates an item
	// (Viewport.Activate), with the resolved item.
	OnItemActivate func(id string, item Item)
}
