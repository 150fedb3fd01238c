// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/selection.go
// Summary: Selection manager: tracks selected item ids independent of
// what is currently windowed. None/Single/Multi modes.

package viewport

// SelectionMode controls how many items may be selected at once.
type SelectionMode int

const (
	// SelectionNone disables selection; all operations are no-ops.
	SelectionNone SelectionMode = iota
	// SelectionSingle allows at most one selected item.
	SelectionSingle
	// SelectionMulti allows any number of selected items.
	SelectionMulti
)

// String returns the config-file name of the mode.
func (m SelectionMode) String() string {
	switch m {
	case SelectionSingle:
		return "single"
	case SelectionMulti:
		return "multi"
	default:
		return "none"
	}
}

// selectionManager holds the selected id set in insertion order.
// Existence and selectability checks happen in the controller; the
// manager only enforces mode semantics.
type selectionManager struct {
	mode SelectionMode
	ids  []string
	set  map[string]struct{}
}

func newSelectionManager(mode SelectionMode) *selectionManager {
	return &selectionManager{
		mode: mode,
		set:  make(map[string]struct{}),
	}
}

// has reports whether id is currently selected.
func (s *selectionManager) has(id string) bool {
	_, ok := s.set[id]
	return ok
}

// count returns the number of selected ids.
func (s *selectionManager) count() int {
	return len(s.ids)
}

// selected returns the selected ids in insertion order. The returned
// slice is a copy; callers may retain it.
func (s *selectionManager) selected() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// selectID adds id to the selection. In Single mode it replaces any
// existing selection. Returns true if the selection changed.
func (s *selectionManager) selectID(id string) bool {
	switch s.mode {
	case SelectionNone:
		return false
	case SelectionSingle:
		if s.has(id) && len(s.ids) == 1 {
			return false
		}
		s.replaceAll([]string{id})
		return true
	default:
		if s.has(id) {
			return false
		}
		s.add(id)
		return true
	}
}

// toggle flips id's membership. In Single mode toggling a selected id
// clears the selection; toggling anything else selects it.
func (s *selectionManager) toggle(id string) bool {
	switch s.mode {
	case SelectionNone:
		return false
	case SelectionSingle:
		if s.has(id) {
			s.clear()
			return true
		}
		s.replaceAll([]string{id})
		return true
	default:
		if s.has(id) {
			s.remove(id)
			return true
		}
		s.add(id)
		return true
	}
}

// selectAll replaces the selection with every given id (Multi only).
func (s *selectionManager) selectAll(ids []string) bool {
	if s.mode != SelectionMulti {
		return false
	}
	if len(ids) == len(s.ids) {
		same := true
		for _, id := range ids {
			if !s.has(id) {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	s.replaceAll(ids)
	return true
}

// clear empties the selection. Returns true if anything was selected.
func (s *selectionManager) clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = s.ids[:0]
	s.set = make(map[string]struct{})
	return true
}

// prune drops every selected id for which exists returns false.
// Called after content-source mutation so no dangling id ever
// surfaces to callers. Returns true if anything was dropped.
func (s *selectionManager) prune(exists func(id string) bool) bool {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if exists(id) {
			kept = append(kept, id)
		} else {
			delete(s.set, id)
		}
	}
	changed := len(kept) != len(s.ids)
	s.ids = kept
	return changed
}

func (s *selectionManager) add(id string) {
	s.ids = append(s.ids, id)
	s.set[id] = struct{}{}
}

func (s *selectionManager) remove(id string) {
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

func (s *selectionManager) replaceAll(ids []string) {
	s.ids = s.ids[:0]
	s.set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := s.set[id]; dup {
			continue
		}
		s.ids = append(s.ids, id)
		s.set[id] = struct{}{}
	}
}
