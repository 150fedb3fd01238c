// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: widgets/listview_test.go
// Summary: Tests for the list view widget using tcell's simulation
// screen.

package widgets

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelview/highlight"
	"github.com/framegrace/texelview/source"
	"github.com/framegrace/texelview/viewport"
)

func newTestView(t *testing.T, lines []string) (*ListView, *viewport.Viewport, tcell.SimulationScreen) {
	t.Helper()
	buf := source.NewBufferFromLines(lines)
	opts := viewport.DefaultOptions()
	opts.SelectionMode = viewport.SelectionMulti
	vp := viewport.New(buf, opts)

	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(40, 12)
	t.Cleanup(s.Fini)

	lv := NewListView(vp)
	lv.SetRect(0, 0, 40, 12)
	return lv, vp, s
}

func rowText(s tcell.SimulationScreen, row, width int) string {
	out := make([]rune, 0, width)
	for col := 0; col < width; col++ {
		ch, _, _, _ := s.GetContent(col, row)
		out = append(out, ch)
	}
	return string(out)
}

func TestListView_DrawsContent(t *testing.T) {
	lv, _, s := newTestView(t, []string{"first line", "second line", "third line"})

	if err := lv.Draw(s); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := rowText(s, 0, 10); got != "first line" {
		t.Errorf("row 0 = %q", got)
	}
	if got := rowText(s, 1, 11); got != "second line" {
		t.Errorf("row 1 = %q", got)
	}
}

func TestListView_CursorNavigation(t *testing.T) {
	lv, vp, _ := newTestView(t, manyLines(100))

	for i := 0; i < 3; i++ {
		lv.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	}
	if lv.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", lv.Cursor())
	}
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if lv.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", lv.Cursor())
	}

	// Moving the cursor below the window scrolls it into view.
	for i := 0; i < 30; i++ {
		lv.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	}
	f, err := vp.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if lv.Cursor() < f.Start || lv.Cursor() >= f.End {
		t.Errorf("cursor %d outside window [%d, %d)", lv.Cursor(), f.Start, f.End)
	}
}

func TestListView_PagingKeys(t *testing.T) {
	lv, vp, _ := newTestView(t, manyLines(200))

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	if vp.Offset() == 0 {
		t.Error("PgDn should scroll")
	}
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	if !vp.AtBottom() {
		t.Error("End should reach the bottom")
	}
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	if vp.Offset() != 0 {
		t.Error("Home should reach the top")
	}
}

func TestListView_SearchInput(t *testing.T) {
	lv, vp, _ := newTestView(t, []string{"alpha", "beta", "alphabet"})

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone))
	if !lv.Editing() {
		t.Fatal("slash should open search input")
	}
	for _, r := range "alpha" {
		lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	if lv.Editing() {
		t.Error("enter should leave search input")
	}
	if vp.MatchCount() != 2 {
		t.Errorf("match count = %d, want 2", vp.MatchCount())
	}
	if vp.SearchQuery() != "alpha" {
		t.Errorf("query = %q", vp.SearchQuery())
	}
}

func TestListView_SearchInputBackspaceAndCancel(t *testing.T) {
	lv, vp, _ := newTestView(t, []string{"alpha"})

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone))
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))

	if lv.Editing() {
		t.Error("escape should cancel search input")
	}
	if vp.SearchQuery() != "" {
		t.Errorf("cancelled input ran a search: %q", vp.SearchQuery())
	}
}

func TestListView_SelectionKeys(t *testing.T) {
	lv, vp, _ := newTestView(t, []string{"a", "b", "c"})

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if len(vp.Selected()) != 1 {
		t.Fatalf("selected = %v, want cursor item", vp.Selected())
	}
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if len(vp.Selected()) != 0 {
		t.Errorf("double toggle left %v selected", vp.Selected())
	}

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlA, 0, tcell.ModNone))
	if len(vp.Selected()) != 3 {
		t.Errorf("select-all selected %v", vp.Selected())
	}
}

func TestListView_ActivateEnter(t *testing.T) {
	lv, vp, _ := newTestView(t, []string{"a", "b"})

	var activated string
	vp.SetCallbacks(viewport.Callbacks{
		OnItemActivate: func(id string, _ viewport.Item) { activated = id },
	})

	lv.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	lv.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if activated == "" {
		t.Fatal("enter did not activate the cursor item")
	}
	if idx, _ := vpIndexOf(vp, activated); idx != 1 {
		t.Errorf("activated item at %d, want 1", idx)
	}
}

func TestListView_MouseWheel(t *testing.T) {
	lv, vp, _ := newTestView(t, manyLines(100))

	lv.HandleEvent(tcell.NewEventMouse(5, 5, tcell.WheelDown, tcell.ModNone))
	if vp.Offset() != 3 {
		t.Errorf("offset after wheel = %d, want 3", vp.Offset())
	}
	lv.HandleEvent(tcell.NewEventMouse(5, 5, tcell.WheelUp, tcell.ModNone))
	if vp.Offset() != 0 {
		t.Errorf("offset after wheel up = %d, want 0", vp.Offset())
	}
}

func TestSpanAt(t *testing.T) {
	st := tcell.StyleDefault.Bold(true)
	spans := []highlight.TokenSpan{{Start: 2, End: 5, Style: st}, {Start: 8, End: 9, Style: st}}

	if _, ok := spanAt(spans, 1); ok {
		t.Error("offset 1 is uncovered")
	}
	if got, ok := spanAt(spans, 4); !ok || got != st {
		t.Error("offset 4 should hit the first span")
	}
	if _, ok := spanAt(spans, 5); ok {
		t.Error("span end is exclusive")
	}
	if _, ok := spanAt(spans, 20); ok {
		t.Error("offset past all spans")
	}
}

func manyLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "content line"
	}
	return lines
}

func vpIndexOf(vp *viewport.Viewport, id string) (int, bool) {
	f, err := vp.Frame()
	if err != nil {
		return 0, false
	}
	for _, vi := range f.Items {
		if vi.Item.ID == id {
			return vi.Index, true
		}
	}
	return 0, false
}
