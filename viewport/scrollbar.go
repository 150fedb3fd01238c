// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/scrollbar.go
// Summary: Scrollbar metrics: proportional thumb position and size
// computed from scroll offset, total height and viewport extent.
// Presentation only; the engine never draws.

package viewport

// ScrollbarPosition is a presentation hint for where the owning
// widget should render the scrollbar track.
type ScrollbarPosition int

const (
	// ScrollbarRight places the track at the right edge (default).
	ScrollbarRight ScrollbarPosition = iota
	// ScrollbarLeft places the track at the left edge.
	ScrollbarLeft
)

// ScrollbarMetrics describes the scrollbar for the current frame.
// Thumb coordinates are rows within a track of TrackSize rows.
type ScrollbarMetrics struct {
	// TrackSize is the scrollbar track height (the viewport height).
	TrackSize int

	// ThumbStart is the first track row covered by the thumb.
	ThumbStart int

	// ThumbSize is the thumb height in track rows; at least 1 when
	// the track is non-empty, TrackSize when nothing can scroll.
	ThumbSize int

	// CanScrollUp / CanScrollDown are indicator hints: content exists
	// above / below the current window.
	CanScrollUp   bool
	CanScrollDown bool
}

// computeScrollbar derives thumb geometry from scroll state. The
// thumb size is proportional to viewport/total and its position to
// offset/maxOffset, clamped so the thumb always stays on the track.
func computeScrollbar(offset, totalHeight int64, viewportH, trackSize int) ScrollbarMetrics {
	m := ScrollbarMetrics{TrackSize: trackSize}
	if trackSize <= 0 {
		return m
	}

	if totalHeight <= int64(viewportH) {
		// Nothing to scroll: thumb fills the track.
		m.ThumbSize = trackSize
		return m
	}

	thumb := int(int64(trackSize) * int64(viewportH) / totalHeight)
	if thumb < 1 {
		thumb = 1
	}
	if thumb > trackSize {
		thumb = trackSize
	}

	maxScroll := totalHeight - int64(viewportH)
	top := int(int64(trackSize-thumb) * offset / maxScroll)
	if top < 0 {
		top = 0
	}
	if top > trackSize-thumb {
		top = trackSize - thumb
	}

	m.ThumbStart = top
	m.ThumbSize = thumb
	m.CanScrollUp = offset > 0
	m.CanScrollDown = offset < maxScroll
	return m
}
