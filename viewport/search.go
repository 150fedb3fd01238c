// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/search.go
// Summary: Incremental search over the full logical collection:
// case-insensitive substring scan, match positions, cyclic next/prev
// navigation, and per-item match spans for highlighting.

package viewport

import "unicode"

// Span is a half-open byte range [Start, End) within an item's
// content, marking one occurrence of the active query. The engine
// only locates matches; rendering them is the widget's job.
type Span struct {
	Start int
	End   int
}

// SearchIndexer is an optional accelerated search backend. When
// attached to a Viewport, non-trivial queries are answered from the
// index instead of a full scan. The linear scan remains the semantic
// reference; an indexer only has to return the same ids faster.
type SearchIndexer interface {
	// IndexItem records (or replaces) an item's content.
	IndexItem(index int, id, content string) error

	// RemoveItem drops an item from the index.
	RemoveItem(id string) error

	// Query returns the ids of items whose content contains the
	// query, in any order. limit <= 0 means unlimited.
	Query(query string, limit int) ([]string, error)

	// Clear empties the index (bulk replace path).
	Clear() error
}

// searchState tracks the active query and its matches.
// matches holds item indices in ascending order; current is the
// position within matches (-1 when there are none).
type searchState struct {
	query   string
	folded  []rune // case-folded query runes, cached for span scans
	matches []int
	current int

	// generation invalidates in-flight scans: a scan only commits its
	// results while its generation is still the latest.
	generation uint64
}

func newSearchState() *searchState {
	return &searchState{current: -1}
}

// clear resets the query and matches. Returns true if there was an
// active query or any match.
func (s *searchState) clear() bool {
	changed := s.query != "" || len(s.matches) > 0 || s.current != -1
	s.query = ""
	s.folded = nil
	s.matches = nil
	s.current = -1
	s.generation++
	return changed
}

// begin installs a new query and invalidates any in-flight scan.
func (s *searchState) begin(query string) uint64 {
	s.query = query
	s.folded = foldRunes(query)
	s.matches = nil
	s.current = -1
	s.generation++
	return s.generation
}

// commit installs scan results if gen is still current.
func (s *searchState) commit(gen uint64, matches []int) bool {
	if gen != s.generation {
		return false
	}
	s.matches = matches
	if len(matches) > 0 {
		s.current = 0
	} else {
		s.current = -1
	}
	return true
}

// next advances cyclically through the matches. Returns the new match
// index and true, or (-1, false) when there is nothing to navigate.
func (s *searchState) next() (int, bool) {
	if len(s.matches) == 0 {
		return -1, false
	}
	s.current = (s.current + 1) % len(s.matches)
	return s.matches[s.current], true
}

// prev retreats cyclically through the matches.
func (s *searchState) prev() (int, bool) {
	if len(s.matches) == 0 {
		return -1, false
	}
	s.current--
	if s.current < 0 {
		s.current = len(s.matches) - 1
	}
	return s.matches[s.current], true
}

// currentMatch returns the item index of the current match, or -1.
func (s *searchState) currentMatch() int {
	if s.current < 0 || s.current >= len(s.matches) {
		return -1
	}
	return s.matches[s.current]
}

// pruneRemoved fixes up matches after the item at removed was deleted:
// the match on that index is dropped and later matches shift down.
func (s *searchState) pruneRemoved(removed int) {
	if len(s.matches) == 0 {
		return
	}
	kept := s.matches[:0]
	for _, m := range s.matches {
		switch {
		case m == removed:
			continue
		case m > removed:
			kept = append(kept, m-1)
		default:
			kept = append(kept, m)
		}
	}
	s.matches = kept
	if s.current >= len(s.matches) {
		s.current = len(s.matches) - 1
	}
	if len(s.matches) == 0 {
		s.current = -1
	}
}

// shiftInserted fixes up matches after an item was inserted at idx:
// matches at or past idx shift up. The controller scans the new item
// separately and registers it via insertMatch when it matches.
func (s *searchState) shiftInserted(idx int) {
	for i, m := range s.matches {
		if m >= idx {
			s.matches[i] = m + 1
		}
	}
}

// insertMatch registers idx as a match, keeping matches ascending.
// The current match is preserved (its position may shift by one).
func (s *searchState) insertMatch(idx int) {
	pos := len(s.matches)
	for i, m := range s.matches {
		if m >= idx {
			pos = i
			break
		}
	}
	s.matches = append(s.matches, 0)
	copy(s.matches[pos+1:], s.matches[pos:])
	s.matches[pos] = idx
	if s.current >= pos {
		s.current++
	}
	if s.current < 0 {
		s.current = 0
	}
}

// --- Matching primitives ---

// foldRunes lowercases a string into a rune slice for per-rune
// comparison. Folding rune-by-rune keeps indices alignable with the
// original string, which byte-oriented ToLower does not guarantee.
func foldRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// containsFold reports whether content contains the folded query.
// Fast path: for pure-ASCII queries strings.Contains on a lowered
// copy would allocate; the rune scan avoids that and stays correct
// for multi-byte content.
func containsFold(content string, folded []rune) bool {
	if len(folded) == 0 {
		return false
	}
	return len(matchSpansLimit(content, folded, 1)) > 0
}

// matchSpans returns every occurrence of the folded query within
// content as byte spans, in ascending order. Overlapping occurrences
// are not reported; scanning resumes after each match.
func matchSpans(content string, folded []rune) []Span {
	return matchSpansLimit(content, folded, -1)
}

func matchSpansLimit(content string, folded []rune, limit int) []Span {
	if len(folded) == 0 || content == "" {
		return nil
	}
	// Decode once: runes plus the byte offset of each rune.
	runes := make([]rune, 0, len(content))
	offs := make([]int, 0, len(content)+1)
	for i, r := range content {
		runes = append(runes, unicode.ToLower(r))
		offs = append(offs, i)
	}
	offs = append(offs, len(content))

	var spans []Span
	n := len(runes)
	m := len(folded)
	for i := 0; i+m <= n; {
		match := true
		for j := 0; j < m; j++ {
			if runes[i+j] != folded[j] {
				match = false
				break
			}
		}
		if match {
			spans = append(spans, Span{Start: offs[i], End: offs[i+m]})
			i += m
			if limit > 0 && len(spans) >= limit {
				return spans
			}
		} else {
			i++
		}
	}
	return spans
}

// tooShortToMatch is a cheap pre-filter used by the scan loop: a
// content line with fewer bytes than the query has runes can never
// contain it, so the span scan can be skipped entirely.
func tooShortToMatch(content string, folded []rune) bool {
	return len(content) < len(folded)
}
