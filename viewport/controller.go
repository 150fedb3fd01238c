// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/controller.go
// Summary: Viewport controller: orchestrates window calculator,
// content cache, search engine and selection manager; accepts
// scroll/search/select/mutate commands and emits render frames.
//
// Architecture:
//
//	Viewport is the single logical owner of all engine state. Every
//	operation is synchronous and non-blocking; a coarse mutex makes
//	embedding in a multi-threaded host safe, and callbacks fire after
//	the mutex is released so handlers may call back into the engine.
//
// Thread-safety:
//
//	All public methods are safe for concurrent use. None of the
//	internal structures are; the single mutex is the only guard.

package viewport

import (
	"context"
	"log"
	"sort"
	"sync"
)

// minIndexedQueryLen is the minimum query length routed to an attached
// SearchIndexer. Shorter queries scan linearly; trigram-style indexes
// cannot answer them anyway.
const minIndexedQueryLen = 3

// scanCheckInterval is how many items a search scan processes between
// context cancellation checks.
const scanCheckInterval = 1024

// Viewport displays an arbitrarily large ordered collection while only
// materializing the slice currently visible.
type Viewport struct {
	mu sync.Mutex

	opts      Options
	callbacks Callbacks

	src     Source
	cache   *ContentCache
	win     *window
	sel     *selectionManager
	search  *searchState
	indexer SearchIndexer

	// idMemo maps index -> id for sources that cannot answer IDAt.
	// Cleared on any mutation; nil when the source is an IDSource.
	idMemo map[int]string

	// lastOffset is the offset last reported through OnScroll, so
	// mutation paths only fire the callback on real movement.
	lastOffset int64
}

// New creates a viewport over the given source. opts is sanitized:
// zero/invalid values fall back to DefaultOptions equivalents.
func New(src Source, opts Options) *Viewport {
	opts.sanitize()
	v := &Viewport{
		opts:   opts,
		src:    src,
		cache:  NewContentCache(opts.CacheSize),
		win:    newWindow(opts.Height, opts.ItemHeight, opts.ScrollMode),
		sel:    newSelectionManager(opts.SelectionMode),
		search: newSearchState(),
	}
	if _, ok := src.(IDSource); !ok {
		v.idMemo = make(map[int]string)
	}
	v.rebuildHeightsLocked()
	return v
}

// SetCallbacks installs the caller-facing callbacks.
func (v *Viewport) SetCallbacks(cb Callbacks) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.callbacks = cb
}

// SetSearchIndexer attaches (or detaches, with nil) an accelerated
// search backend. Existing content is not re-indexed here; callers
// populate the index themselves or rely on subsequent mutations.
func (v *Viewport) SetSearchIndexer(idx SearchIndexer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.indexer = idx
}

// Close releases engine-owned state. The source is caller-owned and
// untouched.
func (v *Viewport) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache.Clear()
	v.search.clear()
	v.sel.clear()
	v.indexer = nil
}

// --- Geometry ---

// Resize updates the viewport extent.
func (v *Viewport) Resize(width, height int) {
	v.mu.Lock()
	if width > 0 {
		v.opts.Width = width
	}
	old := v.win.offset
	v.win.resize(height)
	if height > 0 {
		v.opts.Height = height
	}
	moved := v.win.offset != old
	offset := v.win.offset
	v.lastOffset = offset
	onScroll := v.callbacks.OnScroll
	v.mu.Unlock()

	if moved && onScroll != nil {
		onScroll(offset)
	}
}

// Size returns the configured viewport extent.
func (v *Viewport) Size() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts.Width, v.opts.Height
}

// --- Scrolling ---

// Offset returns the current scroll offset in rendering units.
func (v *Viewport) Offset() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.offset
}

// CurrentLine returns the logical index of the anchor item: the
// clamped target of the last absolute scroll, or the first visible
// item after relative movement.
func (v *Viewport) CurrentLine() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.currentLine()
}

// TotalItems returns the collection size as last observed.
func (v *Viewport) TotalItems() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.count
}

// ScrollToLine scrolls so item n is at the top of the viewport,
// clamping n into the valid range. Out-of-range is never an error.
func (v *Viewport) ScrollToLine(n int) {
	v.scrollOp(func() bool { return v.win.scrollToLine(n, false) })
}

// ScrollBy moves the offset by delta rendering units, clamped.
func (v *Viewport) ScrollBy(delta int) {
	v.scrollOp(func() bool { return v.win.scrollBy(int64(delta)) })
}

// PageDown and PageUp advance or retreat by one viewport height.
func (v *Viewport) PageDown() { v.scrollOp(v.win.pageDown) }
func (v *Viewport) PageUp()   { v.scrollOp(v.win.pageUp) }

// ScrollToTop and ScrollToBottom jump to the offset extremes.
func (v *Viewport) ScrollToTop()    { v.scrollOp(v.win.scrollToTop) }
func (v *Viewport) ScrollToBottom() { v.scrollOp(v.win.scrollToBottom) }

// AtBottom reports whether the viewport shows the tail of the content.
func (v *Viewport) AtBottom() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.atBottom()
}

// scrollOp runs a window mutation under lock and fires OnScroll only
// when the offset actually moved.
func (v *Viewport) scrollOp(op func() bool) {
	v.mu.Lock()
	moved := op()
	offset := v.win.offset
	v.lastOffset = offset
	onScroll := v.callbacks.OnScroll
	v.mu.Unlock()

	if moved && onScroll != nil {
		onScroll(offset)
	}
}

// --- Search ---

// Search scans the full logical collection for a case-insensitive
// substring and primes match navigation. It does not scroll; use
// NextMatch/PrevMatch for that. Returns the match count.
//
// An empty query clears the search (and returns 0) rather than
// matching everything.
func (v *Viewport) Search(query string) (int, error) {
	return v.SearchContext(context.Background(), query)
}

// SearchContext is Search with cancellation. Starting a new search
// invalidates any in-flight previous one: a cancelled or superseded
// scan discards its results instead of racing to completion.
func (v *Viewport) SearchContext(ctx context.Context, query string) (int, error) {
	v.mu.Lock()
	if query == "" {
		v.search.clear()
		v.mu.Unlock()
		return 0, nil
	}
	gen := v.search.begin(query)
	folded := v.search.folded
	count := v.win.count
	indexer := v.indexer
	v.mu.Unlock()

	var matches []int
	var err error
	if indexer != nil && len([]rune(query)) >= minIndexedQueryLen {
		matches, err = v.queryIndexer(indexer, query)
		if err != nil {
			log.Printf("[VIEWPORT] search index failed, falling back to scan: %v", err)
			matches, err = v.scanMatches(ctx, folded, count)
		}
	} else {
		matches, err = v.scanMatches(ctx, folded, count)
	}
	if err != nil {
		return 0, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.search.commit(gen, matches) {
		// Superseded by a newer search; report nothing.
		return 0, nil
	}
	return len(v.search.matches), nil
}

// scanMatches walks the whole collection through the Source directly.
// Bypassing the content cache here is deliberate: pulling hundreds of
// thousands of items through a small LRU would evict the visible
// window for no benefit.
func (v *Viewport) scanMatches(ctx context.Context, folded []rune, count int) ([]int, error) {
	var matches []int
	for i := 0; i < count; i++ {
		if i%scanCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		it, err := v.src.Fetch(i)
		if err != nil {
			return nil, err
		}
		if tooShortToMatch(it.Content, folded) {
			continue
		}
		if containsFold(it.Content, folded) {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// queryIndexer resolves indexer ids to current logical indices. The
// index query itself runs unlocked; id resolution touches the memo
// and cache, so it re-acquires the mutex.
func (v *Viewport) queryIndexer(indexer SearchIndexer, query string) ([]int, error) {
	ids, err := indexer.Query(query, -1)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	matches := make([]int, 0, len(ids))
	for _, id := range ids {
		if idx, ok := v.indexOf(id); ok {
			matches = append(matches, idx)
		}
	}
	sort.Ints(matches)
	return matches, nil
}

// MatchCount returns the number of matches of the active query.
func (v *Viewport) MatchCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.search.matches)
}

// CurrentMatchIndex returns the position within the match list
// (-1 when there is no current match).
func (v *Viewport) CurrentMatchIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search.current
}

// SearchQuery returns the active query string.
func (v *Viewport) SearchQuery() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search.query
}

// NextMatch advances to the next match cyclically and centers it in
// the viewport. Returns false when there is nothing to navigate.
func (v *Viewport) NextMatch() bool { return v.navigateMatch(true) }

// PrevMatch retreats to the previous match cyclically and centers it.
func (v *Viewport) PrevMatch() bool { return v.navigateMatch(false) }

func (v *Viewport) navigateMatch(forward bool) bool {
	v.mu.Lock()
	var target int
	var ok bool
	if forward {
		target, ok = v.search.next()
	} else {
		target, ok = v.search.prev()
	}
	if !ok {
		v.mu.Unlock()
		return false
	}
	moved := v.win.scrollToLine(target, true)
	offset := v.win.offset
	v.lastOffset = offset
	onScroll := v.callbacks.OnScroll
	v.mu.Unlock()

	if moved && onScroll != nil {
		onScroll(offset)
	}
	return true
}

// ClearSearch drops the active query and all match state.
func (v *Viewport) ClearSearch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search.clear()
}

// --- Selection ---

// Select selects the item with the given id. Unknown ids and items
// with Selectable=false are no-ops, not errors.
func (v *Viewport) Select(id string) {
	v.selectionOp(func() bool {
		if !v.selectableLocked(id) {
			return false
		}
		return v.sel.selectID(id)
	})
}

// ToggleSelect flips the selection state of the given id.
func (v *Viewport) ToggleSelect(id string) {
	v.selectionOp(func() bool {
		if !v.selectableLocked(id) {
			return false
		}
		return v.sel.toggle(id)
	})
}

// SelectAll selects every currently existing selectable item in the
// whole collection, not only the visible window. Multi mode only.
func (v *Viewport) SelectAll() {
	v.selectionOp(func() bool {
		if v.opts.SelectionMode != SelectionMulti {
			return false
		}
		ids := make([]string, 0, v.win.count)
		for i := 0; i < v.win.count; i++ {
			it, err := v.fetchLocked(i)
			if err != nil {
				log.Printf("[VIEWPORT] select-all fetch %d: %v", i, err)
				continue
			}
			if it.Selectable {
				ids = append(ids, it.ID)
			}
		}
		return v.sel.selectAll(ids)
	})
}

// ClearSelection empties the selection.
func (v *Viewport) ClearSelection() {
	v.selectionOp(v.sel.clear)
}

// Selected returns the selected ids in insertion order.
func (v *Viewport) Selected() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.selected()
}

// IsSelected reports whether the given id is selected.
func (v *Viewport) IsSelected(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.has(id)
}

// Activate fires OnItemActivate for the given id. Unknown ids are a
// no-op.
func (v *Viewport) Activate(id string) {
	v.mu.Lock()
	idx, ok := v.indexOf(id)
	if !ok {
		v.mu.Unlock()
		return
	}
	it, err := v.fetchLocked(idx)
	cb := v.callbacks.OnItemActivate
	v.mu.Unlock()

	if err != nil {
		log.Printf("[VIEWPORT] activate fetch %q: %v", id, err)
		return
	}
	if cb != nil {
		cb(id, it)
	}
}

// selectionOp runs a selection mutation under lock and fires
// OnSelectionChange only when the set actually changed.
func (v *Viewport) selectionOp(op func() bool) {
	v.mu.Lock()
	changed := op()
	var ids []string
	cb := v.callbacks.OnSelectionChange
	if changed {
		ids = v.sel.selected()
	}
	v.mu.Unlock()

	if changed && cb != nil {
		cb(ids)
	}
}

// selectableLocked reports whether id names an existing, selectable
// item. Deselection of an already-selected id must keep working even
// if the item became unfetchable, hence the selection-set short cut.
func (v *Viewport) selectableLocked(id string) bool {
	idx, ok := v.indexOf(id)
	if !ok {
		return false
	}
	if v.sel.has(id) {
		return true
	}
	it, err := v.fetchLocked(idx)
	if err != nil {
		log.Printf("[VIEWPORT] selectable fetch %q: %v", id, err)
		return false
	}
	return it.Selectable
}

// --- Mutation ---

// AppendItem adds an item at the tail. With FollowTail enabled and
// the viewport at the bottom, the offset advances to keep the new
// item in view.
func (v *Viewport) AppendItem(it Item) {
	v.mu.Lock()
	v.insertLocked(v.win.count, it)
	v.finishMutation()
}

// PrependItem adds an item at the head.
func (v *Viewport) PrependItem(it Item) {
	v.mu.Lock()
	v.insertLocked(0, it)
	v.finishMutation()
}

// InsertItemAt adds an item at the given index, clamped to
// [0, TotalItems].
func (v *Viewport) InsertItemAt(index int, it Item) {
	v.mu.Lock()
	if index < 0 {
		index = 0
	}
	if index > v.win.count {
		index = v.win.count
	}
	v.insertLocked(index, it)
	v.finishMutation()
}

// insertLocked performs the shared insert path. Caller holds the lock.
func (v *Viewport) insertLocked(index int, it Item) {
	ms, ok := v.src.(MutableSource)
	if !ok {
		log.Printf("[VIEWPORT] insert ignored: source is read-only")
		return
	}

	atTail := index == v.win.count
	wasAtBottom := v.win.atBottom()

	ms.Insert(index, it)
	v.invalidateIDMemo()

	h := it.HeightOrDefault(v.opts.ItemHeight)
	if v.win.uniform() && h != v.win.itemHeight {
		v.promoteUniformLocked()
	}
	v.win.insertAt(index, h)
	v.search.shiftInserted(index)
	if len(v.search.folded) > 0 && containsFold(it.Content, v.search.folded) {
		v.search.insertMatch(index)
	}
	v.cache.Put(it.ID, it)

	if v.indexer != nil {
		if err := v.indexer.IndexItem(index, it.ID, it.Content); err != nil {
			log.Printf("[VIEWPORT] index item %q: %v", it.ID, err)
		}
	}

	if v.opts.FollowTail && atTail && wasAtBottom {
		v.win.scrollToBottom()
	}
}

// RemoveItem removes the item with the given id. Cached entries for
// shifted ids stay valid (the cache is keyed by id, not position);
// only the removed id is invalidated. Selection and search matches
// referencing the id are pruned before the next read. Returns false
// for unknown ids.
func (v *Viewport) RemoveItem(id string) bool {
	v.mu.Lock()
	ms, ok := v.src.(MutableSource)
	if !ok {
		v.mu.Unlock()
		log.Printf("[VIEWPORT] remove ignored: source is read-only")
		return false
	}
	idx, found := v.indexOf(id)
	if !found {
		v.mu.Unlock()
		return false
	}

	wasAtBottom := v.win.atBottom()
	if _, removed := ms.Remove(idx); !removed {
		v.mu.Unlock()
		return false
	}
	v.invalidateIDMemo()
	v.win.removeAt(idx)
	v.cache.Invalidate(id)
	v.search.pruneRemoved(idx)
	selChanged := v.sel.prune(func(sid string) bool { return sid != id })
	if v.indexer != nil {
		if err := v.indexer.RemoveItem(id); err != nil {
			log.Printf("[VIEWPORT] unindex item %q: %v", id, err)
		}
	}
	if v.opts.FollowTail && wasAtBottom {
		v.win.scrollToBottom()
	}

	v.finishMutationSelection(selChanged)
	return true
}

// SetItems replaces the whole collection: the cache is cleared, the
// selection pruned against the new ids, the cumulative-height index
// rebuilt from scratch, and the active query re-scanned. This is the
// only operation allowed to cost O(n).
func (v *Viewport) SetItems(items []Item) {
	v.mu.Lock()
	if ms, ok := v.src.(MutableSource); ok {
		ms.Replace(items)
	} else {
		log.Printf("[VIEWPORT] set-items ignored: source is read-only")
		v.mu.Unlock()
		return
	}
	v.invalidateIDMemo()
	v.cache.Clear()

	exists := make(map[string]bool, len(items))
	heights := make([]int, len(items))
	uniform := true
	for i, it := range items {
		if it.Selectable {
			exists[it.ID] = true
		}
		h := it.HeightOrDefault(v.opts.ItemHeight)
		heights[i] = h
		if h != v.win.itemHeight {
			uniform = false
		}
	}
	if uniform {
		v.win.demote(len(items))
	} else {
		v.win.promote(heights)
	}

	selChanged := v.sel.prune(func(id string) bool { return exists[id] })

	if v.indexer != nil {
		if err := v.indexer.Clear(); err != nil {
			log.Printf("[VIEWPORT] clear index: %v", err)
		} else {
			for i, it := range items {
				if err := v.indexer.IndexItem(i, it.ID, it.Content); err != nil {
					log.Printf("[VIEWPORT] index item %q: %v", it.ID, err)
					break
				}
			}
		}
	}

	// Re-scan the active query against the new content; SetItems is
	// the O(n) path, so a fresh scan is within budget.
	query := v.search.query
	v.finishMutationSelection(selChanged)

	if query != "" {
		if _, err := v.Search(query); err != nil {
			log.Printf("[VIEWPORT] re-scan after set-items: %v", err)
		}
	}
}

// finishMutation unlocks and fires scroll callbacks when the offset
// was moved by clamping or follow-tail. Caller holds the lock.
func (v *Viewport) finishMutation() {
	v.finishMutationSelection(false)
}

func (v *Viewport) finishMutationSelection(selChanged bool) {
	offset := v.win.offset
	onScroll := v.callbacks.OnScroll
	onSel := v.callbacks.OnSelectionChange
	var ids []string
	if selChanged {
		ids = v.sel.selected()
	}
	moved := offset != v.lastOffset
	v.lastOffset = offset
	v.mu.Unlock()

	if moved && onScroll != nil {
		onScroll(offset)
	}
	if selChanged && onSel != nil {
		onSel(ids)
	}
}

// --- Frame assembly ---

// Frame materializes the current window through the content cache and
// returns the render payload. The only errors are Source fetch
// failures, surfaced unmodified.
func (v *Viewport) Frame() (Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var start, end, within int
	if v.opts.VirtualScrolling {
		start, end, within = v.win.visibleRange()
	} else {
		start, end, within = 0, v.win.count, 0
	}

	f := Frame{
		Start:             start,
		End:               end,
		OffsetWithinFirst: within,
		Offset:            v.win.offset,
		TotalItems:        v.win.count,
		TotalHeight:       v.win.totalHeight(),
		ScrollbarPosition: v.opts.ScrollbarPosition,
	}
	if end > start {
		f.Items = make([]VisibleItem, 0, end-start)
	}

	current := v.search.currentMatch()
	for i := start; i < end; i++ {
		it, err := v.fetchLocked(i)
		if err != nil {
			return Frame{}, err
		}
		vi := VisibleItem{
			Index:        i,
			Item:         it,
			Selected:     v.sel.has(it.ID),
			CurrentMatch: i == current,
		}
		if len(v.search.folded) > 0 && !tooShortToMatch(it.Content, v.search.folded) {
			vi.MatchSpans = matchSpans(it.Content, v.search.folded)
		}
		f.Items = append(f.Items, vi)
	}

	if v.opts.ShowScrollbar {
		f.Scrollbar = computeScrollbar(v.win.offset, v.win.totalHeight(), v.win.viewportH, v.win.viewportH)
	}
	return f, nil
}

// CacheStats returns a snapshot of content-cache effectiveness.
func (v *Viewport) CacheStats() CacheStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cache.Stats()
}

// Refresh re-reads collection geometry from the source after external
// mutation: item count, heights, selection and match pruning. The
// active query is re-scanned. Intended for sources the caller mutates
// directly (file reloads); costs O(n) like SetItems.
func (v *Viewport) Refresh() error {
	v.mu.Lock()
	v.invalidateIDMemo()
	v.cache.Clear()
	v.rebuildHeightsLocked()

	exists := make(map[string]bool, v.win.count)
	if ids, ok := v.src.(IDSource); ok {
		for i := 0; i < v.win.count; i++ {
			exists[ids.IDAt(i)] = true
		}
	} else {
		for i := 0; i < v.win.count; i++ {
			it, err := v.fetchLocked(i)
			if err != nil {
				v.mu.Unlock()
				return err
			}
			exists[it.ID] = true
		}
	}
	selChanged := v.sel.prune(func(id string) bool { return exists[id] })
	query := v.search.query
	v.finishMutationSelection(selChanged)

	if query != "" {
		if _, err := v.Search(query); err != nil {
			return err
		}
	}
	return nil
}

// --- Internal helpers (callers hold the lock) ---

// fetchLocked returns the item at index, via the cache when possible.
// Cache misses fetch from the Source and populate the cache; the
// cache never fabricates content.
func (v *Viewport) fetchLocked(index int) (Item, error) {
	if id, ok := v.idAt(index); ok {
		if it, hit := v.cache.Get(id); hit {
			return it, nil
		}
	}
	it, err := v.src.Fetch(index)
	if err != nil {
		return Item{}, err
	}
	v.cache.Put(it.ID, it)
	if v.idMemo != nil {
		v.idMemo[index] = it.ID
	}
	return it, nil
}

// idAt resolves index -> id without fetching when possible.
func (v *Viewport) idAt(index int) (string, bool) {
	if ids, ok := v.src.(IDSource); ok {
		return ids.IDAt(index), true
	}
	id, ok := v.idMemo[index]
	return id, ok
}

// indexOf resolves id -> current index.
func (v *Viewport) indexOf(id string) (int, bool) {
	if ids, ok := v.src.(IDSource); ok {
		return ids.IndexOf(id)
	}
	for idx, memo := range v.idMemo {
		if memo == id {
			return idx, true
		}
	}
	// Fall back to a scan; unavoidable for opaque sources.
	for i := 0; i < v.win.count; i++ {
		it, err := v.fetchLocked(i)
		if err != nil {
			return 0, false
		}
		if it.ID == id {
			return i, true
		}
	}
	return 0, false
}

// invalidateIDMemo drops the index->id memo after index-shifting
// mutations.
func (v *Viewport) invalidateIDMemo() {
	if v.idMemo != nil {
		v.idMemo = make(map[int]string)
	}
}

// promoteUniformLocked switches the window to indexed heights,
// seeding every existing item with the uniform default.
func (v *Viewport) promoteUniformLocked() {
	heights := make([]int, v.win.count)
	for i := range heights {
		heights[i] = v.win.itemHeight
	}
	v.win.promote(heights)
}

// rebuildHeightsLocked derives the height structure from the source.
func (v *Viewport) rebuildHeightsLocked() {
	count := v.src.TotalCount()
	hs, ok := v.src.(HeightSource)
	if !ok {
		v.win.demote(count)
		return
	}
	heights := make([]int, count)
	uniform := true
	for i := 0; i < count; i++ {
		h := hs.HeightOf(i)
		if h <= 0 {
			h = v.win.itemHeight
		}
		heights[i] = h
		if h != v.win.itemHeight {
			uniform = false
		}
	}
	if uniform {
		v.win.demote(count)
	} else {
		v.win.promote(heights)
	}
}
