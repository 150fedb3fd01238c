// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/scrollbar_test.go
// Summary: Tests for scrollbar thumb geometry.

package viewport

import "testing"

func TestComputeScrollbar_NothingToScroll(t *testing.T) {
	m := computeScrollbar(0, 10, 24, 24)
	if m.ThumbSize != 24 || m.ThumbStart != 0 {
		t.Errorf("thumb = (%d, %d), want full track", m.ThumbStart, m.ThumbSize)
	}
	if m.CanScrollUp || m.CanScrollDown {
		t.Error("no scroll indicators expected")
	}
}

func TestComputeScrollbar_Proportional(t *testing.T) {
	// 1000 rows of content, 100-row viewport, 100-row track: thumb
	// covers a tenth of the track.
	m := computeScrollbar(0, 1000, 100, 100)
	if m.ThumbSize != 10 {
		t.Errorf("thumb size = %d, want 10", m.ThumbSize)
	}
	if m.ThumbStart != 0 || m.CanScrollUp {
		t.Error("thumb must start at the top at offset 0")
	}
	if !m.CanScrollDown {
		t.Error("content below must be indicated")
	}

	// At max offset the thumb sits at the bottom of the track.
	m = computeScrollbar(900, 1000, 100, 100)
	if m.ThumbStart+m.ThumbSize != 100 {
		t.Errorf("thumb (%d, %d) not flush with track end", m.ThumbStart, m.ThumbSize)
	}
	if m.CanScrollDown {
		t.Error("no content below at max offset")
	}
	if !m.CanScrollUp {
		t.Error("content above must be indicated")
	}
}

func TestComputeScrollbar_MinimumThumb(t *testing.T) {
	// Huge content keeps the thumb visible at one row minimum.
	m := computeScrollbar(0, 1_000_000, 24, 24)
	if m.ThumbSize != 1 {
		t.Errorf("thumb size = %d, want 1", m.ThumbSize)
	}
}

func TestComputeScrollbar_ThumbStaysOnTrack(t *testing.T) {
	total := int64(5000)
	for offset := int64(0); offset <= total-24; offset += 97 {
		m := computeScrollbar(offset, total, 24, 24)
		if m.ThumbStart < 0 || m.ThumbStart+m.ThumbSize > m.TrackSize {
			t.Fatalf("offset %d: thumb (%d, %d) escapes track %d",
				offset, m.ThumbStart, m.ThumbSize, m.TrackSize)
		}
	}
}

func TestComputeScrollbar_EmptyTrack(t *testing.T) {
	m := computeScrollbar(0, 100, 24, 0)
	if m.ThumbSize != 0 || m.TrackSize != 0 {
		t.Errorf("degenerate track produced %+v", m)
	}
}
