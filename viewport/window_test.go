// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/window_test.go
// Summary: Tests for the window calculator: visible ranges under
// uniform and non-uniform heights, clamping, paging.

package viewport

import "testing"

func TestWindow_UniformVisibleRangeLength(t *testing.T) {
	// For height-1 items: len(visible) == min(H, N-S) for every valid
	// scroll offset.
	cases := []struct {
		n, h int
	}{
		{0, 10},
		{5, 10},
		{10, 10},
		{100, 10},
		{100, 1},
		{1000, 24},
	}
	for _, tc := range cases {
		w := newWindow(tc.h, 1, ScrollModeLine)
		w.setCount(tc.n)

		maxS := tc.n - tc.h
		if maxS < 0 {
			maxS = 0
		}
		for s := 0; s <= maxS; s++ {
			w.offset = int64(s)
			start, end, within := w.visibleRange()
			want := tc.h
			if tc.n-s < want {
				want = tc.n - s
			}
			if got := end - start; got != want {
				t.Fatalf("N=%d H=%d S=%d: visible length %d, want %d",
					tc.n, tc.h, s, got, want)
			}
			if within != 0 {
				t.Fatalf("N=%d H=%d S=%d: within=%d, want 0", tc.n, tc.h, s, within)
			}
			if start != s {
				t.Fatalf("N=%d H=%d S=%d: start=%d", tc.n, tc.h, s, start)
			}
		}
	}
}

func TestWindow_EmptyCollection(t *testing.T) {
	w := newWindow(24, 1, ScrollModeLine)
	start, end, within := w.visibleRange()
	if start != 0 || end != 0 || within != 0 {
		t.Errorf("empty collection: got (%d, %d, %d), want (0, 0, 0)", start, end, within)
	}
	if w.scrollToLine(5, false) {
		t.Error("scrolling an empty collection should be a no-op")
	}
}

func TestWindow_ViewportLargerThanContent(t *testing.T) {
	w := newWindow(50, 1, ScrollModeLine)
	w.setCount(7)

	start, end, _ := w.visibleRange()
	if start != 0 || end != 7 {
		t.Errorf("oversized viewport: range (%d, %d), want (0, 7)", start, end)
	}
	if w.maxOffset() != 0 {
		t.Errorf("maxOffset = %d, want 0", w.maxOffset())
	}
}

func TestWindow_ScrollClamping(t *testing.T) {
	w := newWindow(24, 1, ScrollModeLine)
	w.setCount(10000)

	w.scrollToLine(5000, false)
	if got := w.currentLine(); got != 5000 {
		t.Errorf("currentLine after scrollToLine(5000) = %d, want 5000", got)
	}

	w.scrollToLine(999999, false)
	if got := w.currentLine(); got != 9999 {
		t.Errorf("currentLine after scrollToLine(999999) = %d, want 9999", got)
	}

	w.scrollToLine(-5, false)
	if got := w.currentLine(); got != 0 {
		t.Errorf("currentLine after scrollToLine(-5) = %d, want 0", got)
	}
}

func TestWindow_PageUpDown(t *testing.T) {
	w := newWindow(10, 1, ScrollModeLine)
	w.setCount(100)

	if !w.pageDown() {
		t.Fatal("pageDown from top should move")
	}
	if w.offset != 10 {
		t.Errorf("offset after pageDown = %d, want 10", w.offset)
	}

	w.scrollToBottom()
	if w.offset != 90 {
		t.Errorf("offset at bottom = %d, want 90", w.offset)
	}
	if w.pageDown() {
		t.Error("pageDown at bottom should be a no-op")
	}

	if !w.pageUp() {
		t.Fatal("pageUp from bottom should move")
	}
	if w.offset != 80 {
		t.Errorf("offset after pageUp = %d, want 80", w.offset)
	}

	w.scrollToTop()
	if w.pageUp() {
		t.Error("pageUp at top should be a no-op")
	}
}

func TestWindow_NonUniformVisibleRange(t *testing.T) {
	w := newWindow(6, 1, ScrollModePixel)
	w.promote([]int{2, 3, 1, 4, 2, 5}) // total 17

	// Offset 0: items until >= 6 rows covered: 2+3+1 = 6 -> [0, 3).
	start, end, within := w.visibleRange()
	if start != 0 || end != 3 || within != 0 {
		t.Errorf("offset 0: got (%d, %d, %d), want (0, 3, 0)", start, end, within)
	}

	// Offset 4: inside item 1 (rows 2..4). First visible is item 1
	// with 2 rows already hidden.
	w.offset = 4
	start, end, within = w.visibleRange()
	if start != 1 || within != 2 {
		t.Errorf("offset 4: start=%d within=%d, want start=1 within=2", start, within)
	}
	// Covered: (3-2)+1+4 = 6 -> end after item 3.
	if end != 4 {
		t.Errorf("offset 4: end=%d, want 4", end)
	}
}

func TestWindow_ScrollToLineNonUniform(t *testing.T) {
	w := newWindow(5, 1, ScrollModePixel)
	w.promote([]int{2, 3, 1, 4, 2}) // prefix: 0,2,5,6,10,12

	w.scrollToLine(3, false)
	if w.offset != 6 {
		t.Errorf("offset after scrollToLine(3) = %d, want 6", w.offset)
	}

	// Centering item 2 (height 1) in a 5-row viewport puts two rows
	// above it: offset = 5 - 2 = 3.
	w.scrollToLine(2, true)
	if w.offset != 3 {
		t.Errorf("offset after centered scrollToLine(2) = %d, want 3", w.offset)
	}
}

func TestWindow_LineModeSnapsToItemStart(t *testing.T) {
	w := newWindow(4, 1, ScrollModeLine)
	w.promote([]int{3, 3, 3, 3}) // total 12, maxOffset 8

	w.scrollBy(4) // lands inside item 1 (rows 3..5)
	_, within := w.indexAtOffset(w.offset)
	if within != 0 {
		t.Errorf("line mode offset %d is not item-aligned (within=%d)", w.offset, within)
	}
}

func TestWindow_UniformTallItems(t *testing.T) {
	// itemHeight 3, viewport 7: a partially scrolled first item needs
	// one extra item to fill the bottom.
	w := newWindow(7, 3, ScrollModePixel)
	w.setCount(100)

	w.offset = 4 // item 1, one row hidden
	start, end, within := w.visibleRange()
	if start != 1 || within != 1 {
		t.Fatalf("start=%d within=%d, want 1, 1", start, within)
	}
	// First contributes 2 rows, need 5 more -> ceil(5/3)=2 items.
	if end != 4 {
		t.Errorf("end=%d, want 4", end)
	}
}

func TestWindow_ResizeClampsOffset(t *testing.T) {
	w := newWindow(10, 1, ScrollModeLine)
	w.setCount(30)
	w.scrollToBottom()
	if w.offset != 20 {
		t.Fatalf("offset = %d, want 20", w.offset)
	}

	w.resize(25)
	if w.offset != 5 {
		t.Errorf("offset after growing viewport = %d, want 5", w.offset)
	}

	w.resize(40)
	if w.offset != 0 {
		t.Errorf("offset with oversized viewport = %d, want 0", w.offset)
	}
}
