// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: widgets/listview.go
// Summary: tcell list widget rendering viewport frames: rune-width
// aware line drawing, match/selection styling, cursor navigation,
// incremental search input, scrollbar track.

package widgets

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelview/highlight"
	"github.com/framegrace/texelview/viewport"
)

// Styles groups the tcell styles used by the list view.
type Styles struct {
	Item           tcell.Style
	Cursor         tcell.Style
	Selected       tcell.Style
	Match          tcell.Style
	CurrentMatch   tcell.Style
	ScrollbarTrack tcell.Style
	ScrollbarThumb tcell.Style
	Status         tcell.Style
}

// DefaultStyles returns a neutral dark-terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Item:           tcell.StyleDefault,
		Cursor:         tcell.StyleDefault.Reverse(true),
		Selected:       tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow),
		Match:          tcell.StyleDefault.Background(tcell.ColorDarkBlue),
		CurrentMatch:   tcell.StyleDefault.Background(tcell.ColorDarkGoldenrod).Foreground(tcell.ColorBlack),
		ScrollbarTrack: tcell.StyleDefault.Foreground(tcell.ColorGray),
		ScrollbarThumb: tcell.StyleDefault.Foreground(tcell.ColorWhite),
		Status:         tcell.StyleDefault.Reverse(true),
	}
}

// ListView renders a Viewport onto a tcell screen region and maps key
// and mouse events to viewport operations.
//
// The widget reserves the bottom row for a status line (search input,
// match position) and one column for the scrollbar when the viewport
// is configured to show one.
type ListView struct {
	vp     *viewport.Viewport
	styles Styles
	hl     *highlight.Highlighter

	x, y, w, h int

	// cursor is the focused item index for keyboard interaction.
	cursor int

	// Search input state. While editing, printable keys append to
	// input instead of being treated as commands.
	editing bool
	input   []rune
}

// NewListView wraps a viewport. Call SetRect before drawing.
func NewListView(vp *viewport.Viewport) *ListView {
	return &ListView{vp: vp, styles: DefaultStyles()}
}

// SetStyles replaces the widget palette.
func (l *ListView) SetStyles(s Styles) { l.styles = s }

// SetHighlighter attaches an optional syntax highlighter.
func (l *ListView) SetHighlighter(h *highlight.Highlighter) { l.hl = h }

// Cursor returns the focused item index.
func (l *ListView) Cursor() int { return l.cursor }

// Editing reports whether the search input line is active.
func (l *ListView) Editing() bool { return l.editing }

// SetRect positions the widget and resizes the viewport to the content
// area (rect minus status line and scrollbar column).
func (l *ListView) SetRect(x, y, w, h int) {
	l.x, l.y, l.w, l.h = x, y, w, h
	l.vp.Resize(l.contentWidth(), l.contentHeight())
}

func (l *ListView) contentHeight() int {
	h := l.h - 1 // status line
	if h < 1 {
		h = 1
	}
	return h
}

func (l *ListView) contentWidth() int {
	w := l.w - 1 // scrollbar column
	if w < 1 {
		w = 1
	}
	return w
}

// Draw renders the current frame. Fetch errors surface to the caller;
// a partial draw is never left on screen.
func (l *ListView) Draw(s tcell.Screen) error {
	frame, err := l.vp.Frame()
	if err != nil {
		return err
	}

	width := l.contentWidth()
	height := l.contentHeight()

	row := 0
	for vi := range frame.Items {
		item := &frame.Items[vi]
		lines := strings.Split(item.Item.Content, "\n")
		itemRows := item.Item.HeightOrDefault(viewport.DefaultItemHeight)

		skip := 0
		if vi == 0 {
			skip = frame.OffsetWithinFirst
		}
		byteBase := 0
		for r := 0; r < itemRows && row < height; r++ {
			var text string
			if r < len(lines) {
				text = lines[r]
			}
			if r >= skip {
				l.drawItemRow(s, row, width, text, byteBase, item)
				row++
			}
			byteBase += len(text) + 1 // the split \n
		}
	}
	// Blank remaining rows.
	for ; row < height; row++ {
		l.fillRow(s, row, width, ' ', l.styles.Item)
	}

	l.drawScrollbar(s, frame)
	l.drawStatus(s, frame)
	return nil
}

// drawItemRow renders one visual row of an item with selection, cursor
// and match styling.
func (l *ListView) drawItemRow(s tcell.Screen, row, width int, text string, byteBase int, item *viewport.VisibleItem) {
	base := l.styles.Item
	switch {
	case item.Index == l.cursor:
		base = l.styles.Cursor
	case item.Selected:
		base = l.styles.Selected
	}

	matchStyle := l.styles.Match
	if item.CurrentMatch {
		matchStyle = l.styles.CurrentMatch
	}

	var tokens []highlight.TokenSpan
	if l.hl != nil {
		for _, t := range l.hl.Line(text) {
			tokens = append(tokens, highlight.TokenSpan{Start: t.Start + byteBase, End: t.End + byteBase, Style: t.Style})
		}
	}
	spans := highlight.MergeMatches(tokens, item.MatchSpans, matchStyle)

	col := 0
	for off, r := range text {
		if col >= width {
			break
		}
		st := base
		if sp, ok := spanAt(spans, byteBase+off); ok {
			st = sp
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		s.SetContent(l.x+col, l.y+row, r, nil, st)
		for k := 1; k < rw; k++ {
			s.SetContent(l.x+col+k, l.y+row, ' ', nil, st)
		}
		col += rw
	}
	for ; col < width; col++ {
		s.SetContent(l.x+col, l.y+row, ' ', nil, base)
	}
}

func (l *ListView) fillRow(s tcell.Screen, row, width int, r rune, st tcell.Style) {
	for col := 0; col < width; col++ {
		s.SetContent(l.x+col, l.y+row, r, nil, st)
	}
}

// drawScrollbar renders the track and thumb in the last column.
func (l *ListView) drawScrollbar(s tcell.Screen, frame viewport.Frame) {
	if frame.Scrollbar.TrackSize == 0 {
		return
	}
	col := l.x + l.w - 1
	for row := 0; row < frame.Scrollbar.TrackSize && row < l.contentHeight(); row++ {
		r, st := '│', l.styles.ScrollbarTrack
		if row >= frame.Scrollbar.ThumbStart && row < frame.Scrollbar.ThumbStart+frame.Scrollbar.ThumbSize {
			r, st = '█', l.styles.ScrollbarThumb
		}
		s.SetContent(col, l.y+row, r, nil, st)
	}
}

// drawStatus renders the bottom status line: active search input or
// match position plus scroll position.
func (l *ListView) drawStatus(s tcell.Screen, frame viewport.Frame) {
	var left string
	switch {
	case l.editing:
		left = "/" + string(l.input)
	case l.vp.SearchQuery() != "":
		left = fmt.Sprintf("/%s  [%d/%d]", l.vp.SearchQuery(), l.vp.CurrentMatchIndex()+1, l.vp.MatchCount())
	default:
		left = fmt.Sprintf("%d items", frame.TotalItems)
	}
	right := fmt.Sprintf("line %d/%d", l.vp.CurrentLine()+1, frame.TotalItems)

	row := l.y + l.h - 1
	col := 0
	for _, r := range left {
		if col >= l.w {
			break
		}
		s.SetContent(l.x+col, row, r, nil, l.styles.Status)
		col += runewidth.RuneWidth(r)
	}
	for ; col < l.w-runewidth.StringWidth(right); col++ {
		s.SetContent(l.x+col, row, ' ', nil, l.styles.Status)
	}
	for _, r := range right {
		if col >= l.w {
			break
		}
		s.SetContent(l.x+col, row, r, nil, l.styles.Status)
		col += runewidth.RuneWidth(r)
	}
}

// spanAt returns the style covering the given byte offset.
func spanAt(spans []highlight.TokenSpan, off int) (tcell.Style, bool) {
	for _, sp := range spans {
		if off >= sp.Start && off < sp.End {
			return sp.Style, true
		}
		if sp.Start > off {
			break
		}
	}
	return tcell.StyleDefault, false
}

// HandleEvent maps tcell events to viewport operations. Returns true
// when the event was consumed.
func (l *ListView) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if l.editing {
			return l.handleSearchKey(e)
		}
		return l.handleKey(e)
	case *tcell.EventMouse:
		return l.handleMouse(e)
	}
	return false
}

func (l *ListView) handleKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyUp:
		l.moveCursor(-1)
	case tcell.KeyDown:
		l.moveCursor(1)
	case tcell.KeyPgUp:
		l.vp.PageUp()
		l.cursor = l.vp.CurrentLine()
	case tcell.KeyPgDn:
		l.vp.PageDown()
		l.cursor = l.vp.CurrentLine()
	case tcell.KeyHome:
		l.vp.ScrollToTop()
		l.cursor = 0
	case tcell.KeyEnd:
		l.vp.ScrollToBottom()
		l.cursor = l.vp.TotalItems() - 1
	case tcell.KeyEnter:
		l.activateCursor()
	case tcell.KeyEscape:
		l.vp.ClearSearch()
	case tcell.KeyCtrlA:
		l.vp.SelectAll()
	case tcell.KeyRune:
		switch e.Rune() {
		case '/':
			l.editing = true
			l.input = l.input[:0]
		case 'n':
			l.vp.NextMatch()
			l.cursor = l.vp.CurrentLine()
		case 'N':
			l.vp.PrevMatch()
			l.cursor = l.vp.CurrentLine()
		case ' ':
			l.toggleCursor()
		case 'g':
			l.vp.ScrollToTop()
			l.cursor = 0
		case 'G':
			l.vp.ScrollToBottom()
			l.cursor = l.vp.TotalItems() - 1
		default:
			return false
		}
	default:
		return false
	}
	return true
}

func (l *ListView) handleSearchKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEnter:
		l.editing = false
		l.vp.Search(string(l.input))
	case tcell.KeyEscape:
		l.editing = false
		l.input = l.input[:0]
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(l.input) > 0 {
			l.input = l.input[:len(l.input)-1]
		}
	case tcell.KeyRune:
		l.input = append(l.input, e.Rune())
	default:
		return false
	}
	return true
}

func (l *ListView) handleMouse(e *tcell.EventMouse) bool {
	switch {
	case e.Buttons()&tcell.WheelUp != 0:
		l.vp.ScrollBy(-3)
	case e.Buttons()&tcell.WheelDown != 0:
		l.vp.ScrollBy(3)
	case e.Buttons()&tcell.Button1 != 0:
		_, my := e.Position()
		row := my - l.y
		if row < 0 || row >= l.contentHeight() {
			return false
		}
		if idx, ok := l.itemAtRow(row); ok {
			l.cursor = idx
			l.toggleCursor()
		}
	default:
		return false
	}
	return true
}

// itemAtRow maps a content row back to an item index using the current
// frame geometry.
func (l *ListView) itemAtRow(row int) (int, bool) {
	frame, err := l.vp.Frame()
	if err != nil {
		return 0, false
	}
	remaining := row + frame.OffsetWithinFirst
	for _, vi := range frame.Items {
		h := vi.Item.HeightOrDefault(viewport.DefaultItemHeight)
		if remaining < h {
			return vi.Index, true
		}
		remaining -= h
	}
	return 0, false
}

// moveCursor shifts the focused item and keeps it in view.
func (l *ListView) moveCursor(delta int) {
	total := l.vp.TotalItems()
	if total == 0 {
		return
	}
	l.cursor += delta
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor >= total {
		l.cursor = total - 1
	}
	l.ensureCursorVisible()
}

func (l *ListView) ensureCursorVisible() {
	frame, err := l.vp.Frame()
	if err != nil {
		return
	}
	if l.cursor < frame.Start || l.cursor >= frame.End {
		l.vp.ScrollToLine(l.cursor)
	}
}

func (l *ListView) activateCursor() {
	frame, err := l.vp.Frame()
	if err != nil {
		return
	}
	for _, vi := range frame.Items {
		if vi.Index == l.cursor {
			l.vp.Activate(vi.Item.ID)
			return
		}
	}
}

func (l *ListView) toggleCursor() {
	frame, err := l.vp.Frame()
	if err != nil {
		return
	}
	for _, vi := range frame.Items {
		if vi.Index == l.cursor {
			l.vp.ToggleSelect(vi.Item.ID)
			return
		}
	}
}
