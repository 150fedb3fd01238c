// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/window.go
// Summary: Window calculator: maps scroll offset and viewport extent
// to the slice of logical indices that must be visible.
//
// Two paths:
//
//	uniform heights:     pure arithmetic, no index structure at all
//	non-uniform heights: heightIndex (Fenwick tree) for O(log n)
//	                     offset-to-index search and prefix sums
//
// All scroll movement clamps into [0, maxOffset]; out-of-range targets
// are never an error.

package viewport

// ScrollMode selects the scroll offset semantics.
type ScrollMode int

const (
	// ScrollModeLine keeps the scroll offset aligned to item starts:
	// the first visible item is never partially scrolled off.
	ScrollModeLine ScrollMode = iota

	// ScrollModePixel allows the offset to land inside an item; the
	// window reports the sub-item offset for the renderer to clip.
	ScrollModePixel
)

// window tracks scroll state and performs visible-range calculations.
// Offsets are top-anchored rendering units (rows for terminal UIs).
//
// heights is nil while every item has the uniform default height; the
// controller promotes the window to indexed mode the first time a
// non-default height appears.
type window struct {
	offset     int64
	viewportH  int
	itemHeight int
	count      int
	mode       ScrollMode
	heights    *heightIndex // nil => uniform itemHeight per item

	// line is the anchor item index. scrollToLine keeps the clamped
	// target even when the offset hits maxOffset before reaching it;
	// relative scrolls re-derive it from the offset.
	line int
}

func newWindow(viewportH, itemHeight int, mode ScrollMode) *window {
	if viewportH <= 0 {
		viewportH = 1
	}
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	return &window{
		viewportH:  viewportH,
		itemHeight: itemHeight,
		mode:       mode,
	}
}

// uniform reports whether the window is in the arithmetic fast path.
func (w *window) uniform() bool {
	return w.heights == nil
}

// totalHeight returns the cumulative height of all items.
func (w *window) totalHeight() int64 {
	if w.uniform() {
		return int64(w.count) * int64(w.itemHeight)
	}
	return w.heights.Total()
}

// maxOffset returns the largest valid scroll offset:
// max(0, totalHeight - viewportHeight).
func (w *window) maxOffset() int64 {
	m := w.totalHeight() - int64(w.viewportH)
	if m < 0 {
		return 0
	}
	return m
}

// clampOffset forces the current offset back into the valid range and
// applies line-mode alignment. Returns true if the offset moved.
func (w *window) clampOffset() bool {
	old := w.offset
	if w.offset < 0 {
		w.offset = 0
	}
	if m := w.maxOffset(); w.offset > m {
		w.offset = m
	}
	if w.mode == ScrollModeLine && w.offset > 0 {
		// Snap down to the start of the item containing the offset.
		idx, within := w.indexAtOffset(w.offset)
		if within > 0 {
			// Snapping to the item start must not violate maxOffset;
			// prefer the next item start when it does.
			start := w.offsetOfLine(idx)
			next := w.offsetOfLine(idx + 1)
			if next <= w.maxOffset() && w.offset-start > next-w.offset {
				w.offset = next
			} else if start <= w.maxOffset() {
				w.offset = start
			}
		}
	}
	return w.offset != old
}

// indexAtOffset returns the item index containing the given vertical
// offset plus the remaining offset within it.
func (w *window) indexAtOffset(offset int64) (int, int64) {
	if w.count == 0 {
		return 0, 0
	}
	if w.uniform() {
		idx := int(offset / int64(w.itemHeight))
		if idx >= w.count {
			idx = w.count - 1
		}
		return idx, offset - int64(idx)*int64(w.itemHeight)
	}
	return w.heights.FindOffset(offset)
}

// offsetOfLine returns the cumulative height preceding item n.
func (w *window) offsetOfLine(n int) int64 {
	if n <= 0 {
		return 0
	}
	if n > w.count {
		n = w.count
	}
	if w.uniform() {
		return int64(n) * int64(w.itemHeight)
	}
	return w.heights.PrefixSum(n)
}

// visibleRange returns the half-open index range [start, end) that
// must be materialized to fill the viewport, and the sub-item offset
// within the first visible item.
//
// Empty collections return (0, 0, 0); a viewport taller than the
// content returns the whole collection.
func (w *window) visibleRange() (start, end int, within int) {
	if w.count == 0 || w.viewportH <= 0 {
		return 0, 0, 0
	}
	startIdx, sub := w.indexAtOffset(w.offset)
	start = startIdx
	within = int(sub)

	if w.uniform() {
		// The first item contributes (itemHeight - within) rows; the
		// rest of the viewport is filled with whole or clipped items.
		remaining := w.viewportH - (w.itemHeight - within)
		n := 1
		if remaining > 0 {
			n += (remaining + w.itemHeight - 1) / w.itemHeight
		}
		end = start + n
		if end > w.count {
			end = w.count
		}
		return start, end, within
	}

	// Accumulate heights until the viewport is covered.
	covered := int64(w.heights.HeightAt(start)) - sub
	end = start + 1
	for end < w.count && covered < int64(w.viewportH) {
		covered += int64(w.heights.HeightAt(end))
		end++
	}
	return start, end, within
}

// --- Scroll operations (all clamp, none error) ---

// scrollToLine sets the offset to the cumulative height preceding item
// n, clamping n into [0, count-1]. center=true positions the item in
// the middle of the viewport instead (used by search navigation).
// Returns true if the offset changed.
func (w *window) scrollToLine(n int, center bool) bool {
	if w.count == 0 {
		return false
	}
	if n < 0 {
		n = 0
	}
	if n >= w.count {
		n = w.count - 1
	}
	target := w.offsetOfLine(n)
	if center {
		itemH := int64(w.itemHeight)
		if !w.uniform() {
			itemH = int64(w.heights.HeightAt(n))
		}
		target -= (int64(w.viewportH) - itemH) / 2
	}
	old := w.offset
	w.offset = target
	w.clampOffset()
	w.line = n
	return w.offset != old
}

// scrollBy moves the offset by delta rendering units, clamped.
func (w *window) scrollBy(delta int64) bool {
	old := w.offset
	w.offset += delta
	w.clampOffset()
	w.syncLine()
	return w.offset != old
}

// pageDown/pageUp advance or retreat by one viewport height.
func (w *window) pageDown() bool { return w.scrollBy(int64(w.viewportH)) }
func (w *window) pageUp() bool   { return w.scrollBy(-int64(w.viewportH)) }

// scrollToTop and scrollToBottom jump to the offset extremes.
func (w *window) scrollToTop() bool {
	old := w.offset
	w.offset = 0
	w.line = 0
	return old != 0
}

func (w *window) scrollToBottom() bool {
	old := w.offset
	w.offset = w.maxOffset()
	w.syncLine()
	return w.offset != old
}

// atBottom reports whether the viewport shows the tail of the content.
func (w *window) atBottom() bool {
	return w.offset >= w.maxOffset()
}

// currentLine returns the anchor item index, clamped to the live
// count. After scrollToLine this is the clamped target even when the
// offset stopped at maxOffset short of it.
func (w *window) currentLine() int {
	if w.count == 0 {
		return 0
	}
	if w.line >= w.count {
		return w.count - 1
	}
	if w.line < 0 {
		return 0
	}
	return w.line
}

// syncLine re-derives the anchor from the offset. Used by relative
// scrolls and mutations, where no explicit target exists.
func (w *window) syncLine() {
	w.line, _ = w.indexAtOffset(w.offset)
}

// --- Mutation hooks (called by the controller) ---

// setCount updates the item count in uniform mode.
func (w *window) setCount(n int) {
	w.count = n
	w.clampOffset()
}

// promote switches the window to indexed mode using the given per-item
// heights. O(n), performed once when the first non-default height
// appears or on SetItems.
func (w *window) promote(heights []int) {
	w.heights = newHeightIndex(heights)
	w.count = len(heights)
	w.clampOffset()
}

// demote returns to the uniform fast path (all heights default).
func (w *window) demote(count int) {
	w.heights = nil
	w.count = count
	w.clampOffset()
}

// insertAt registers a new item of the given height at index i.
func (w *window) insertAt(i, height int) {
	if w.heights != nil {
		if i >= w.count {
			w.heights.Append(height)
		} else {
			w.heights.InsertAt(i, height)
		}
	}
	w.count++
	w.clampOffset()
}

// removeAt unregisters the item at index i.
func (w *window) removeAt(i int) {
	if w.heights != nil {
		w.heights.RemoveAt(i)
	}
	if w.count > 0 {
		w.count--
	}
	w.clampOffset()
}

// resize updates the viewport height.
func (w *window) resize(viewportH int) {
	if viewportH > 0 {
		w.viewportH = viewportH
	}
	w.clampOffset()
}

// setItemHeight updates the uniform default height.
func (w *window) setItemHeight(h int) {
	if h > 0 {
		w.itemHeight = h
	}
	w.clampOffset()
}
