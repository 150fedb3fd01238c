// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/frame.go
// Summary: Render payload types: the visible slice plus selection,
// match-highlight and scrollbar metadata. The engine emits frames;
// widgets turn them into cells.

package viewport

// VisibleItem is one item of the current window, annotated with the
// render metadata the engine owns.
type VisibleItem struct {
	// Index is the item's logical index at frame time.
	Index int

	// Item is the materialized item (from cache or source).
	Item Item

	// Selected reports membership in the current selection.
	Selected bool

	// MatchSpans are the byte ranges of the active query within
	// Item.Content, ascending, empty when there is no query or no
	// occurrence.
	MatchSpans []Span

	// CurrentMatch marks the item search navigation currently points
	// at.
	CurrentMatch bool
}

// Frame is the render-ready output of a Viewport: which items, in what
// order, with what highlight/selection metadata. Never cells.
type Frame struct {
	// Items are the visible items, top to bottom.
	Items []VisibleItem

	// Start and End are the half-open logical index range of Items.
	Start int
	End   int

	// OffsetWithinFirst is the number of rendering units of the first
	// item already scrolled above the viewport top (pixel scroll mode;
	// always 0 in line mode).
	OffsetWithinFirst int

	// Offset is the absolute scroll offset in rendering units.
	Offset int64

	// TotalItems and TotalHeight describe the whole collection.
	TotalItems  int
	TotalHeight int64

	// Scrollbar carries thumb geometry when the viewport is
	// configured with ShowScrollbar; zero otherwise.
	Scrollbar ScrollbarMetrics

	// ScrollbarPosition passes the configured presentation hint
	// through to the renderer.
	ScrollbarPosition ScrollbarPosition
}
