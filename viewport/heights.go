// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: viewport/heights.go
// Summary: Fenwick-tree cumulative-height index over logical item
// positions. Gives O(log n) height updates, O(log n) prefix sums and
// O(log n) offset-to-index search for non-uniform item heights.

package viewport

// heightIndex maintains per-item heights and their prefix sums using a
// Fenwick (binary indexed) tree keyed by logical index.
//
// Single-item updates and appends are O(log n); offset lookups descend
// the tree in O(log n). Arbitrary insert/remove must shift the suffix
// and rebuild its tree nodes, which is O(n - index); append remains
// the cheap, common path for live-log workloads.
type heightIndex struct {
	heights []int32
	tree    []int64 // 1-based Fenwick tree over heights
	total   int64
}

// newHeightIndex builds an index from the given heights in O(n).
func newHeightIndex(heights []int) *heightIndex {
	h := &heightIndex{
		heights: make([]int32, 0, len(heights)),
		tree:    make([]int64, 1, len(heights)+1),
	}
	for _, v := range heights {
		h.Append(v)
	}
	return h
}

// Len returns the number of tracked items.
func (h *heightIndex) Len() int {
	return len(h.heights)
}

// Total returns the cumulative height of all items in O(1).
func (h *heightIndex) Total() int64 {
	return h.total
}

// HeightAt returns the height of the item at index i.
func (h *heightIndex) HeightAt(i int) int {
	if i < 0 || i >= len(h.heights) {
		return 0
	}
	return int(h.heights[i])
}

// PrefixSum returns the cumulative height of items [0, i) in O(log n).
func (h *heightIndex) PrefixSum(i int) int64 {
	if i <= 0 {
		return 0
	}
	if i > len(h.heights) {
		i = len(h.heights)
	}
	var sum int64
	for ; i > 0; i -= i & (-i) {
		sum += h.tree[i]
	}
	return sum
}

// SetHeight resizes the item at index i in O(log n).
func (h *heightIndex) SetHeight(i, height int) {
	if i < 0 || i >= len(h.heights) {
		return
	}
	delta := int64(height) - int64(h.heights[i])
	if delta == 0 {
		return
	}
	h.heights[i] = int32(height)
	h.total += delta
	for j := i + 1; j <= len(h.heights); j += j & (-j) {
		h.tree[j] += delta
	}
}

// Append adds an item of the given height at the tail in O(log n).
// The new tree node covers heights[i-lowbit(i)..i), all of which are
// already final, so it can be derived from existing prefix sums.
func (h *heightIndex) Append(height int) {
	h.heights = append(h.heights, int32(height))
	i := len(h.heights) // 1-based position of the new node
	low := i - (i & (-i))
	node := int64(height)
	// Sum of heights (low, i-1] via existing prefix sums.
	node += h.PrefixSum(i-1) - h.PrefixSum(low)
	h.tree = append(h.tree, node)
	h.total += int64(height)
}

// InsertAt places an item of the given height at index i, shifting
// subsequent items. Costs O(n - i): the suffix of the tree must be
// rebuilt. Tail inserts degrade to Append.
func (h *heightIndex) InsertAt(i, height int) {
	if i < 0 {
		i = 0
	}
	if i >= len(h.heights) {
		h.Append(height)
		return
	}
	h.heights = append(h.heights, 0)
	copy(h.heights[i+1:], h.heights[i:])
	h.heights[i] = int32(height)
	h.total += int64(height)
	h.rebuildFrom(i)
}

// RemoveAt deletes the item at index i, shifting subsequent items.
// Costs O(n - i).
func (h *heightIndex) RemoveAt(i int) {
	if i < 0 || i >= len(h.heights) {
		return
	}
	h.total -= int64(h.heights[i])
	copy(h.heights[i:], h.heights[i+1:])
	h.heights = h.heights[:len(h.heights)-1]
	h.tree = h.tree[:len(h.heights)+1]
	h.rebuildFrom(i)
}

// rebuildFrom recomputes tree nodes whose covered range includes any
// index >= i. Node j (1-based) covers (j-lowbit(j), j], so every node
// at position > i needs a rebuild; nodes at or below i are untouched.
func (h *heightIndex) rebuildFrom(i int) {
	n := len(h.heights)
	if len(h.tree) < n+1 {
		h.tree = append(h.tree, make([]int64, n+1-len(h.tree))...)
	}
	if i < 0 {
		i = 0
	}
	for j := i + 1; j <= n; j++ {
		low := j - (j & (-j))
		var node int64
		for k := low; k < j; k++ {
			node += int64(h.heights[k])
		}
		h.tree[j] = node
	}
}

// FindOffset returns the index of the item containing the given
// vertical offset, plus the remaining offset within that item.
// Descends the Fenwick tree directly in O(log n).
//
// Offsets at or past Total() resolve to the last item; an empty index
// returns (0, 0).
func (h *heightIndex) FindOffset(offset int64) (index int, within int64) {
	n := len(h.heights)
	if n == 0 {
		return 0, 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= h.total {
		last := n - 1
		return last, int64(h.heights[last]) - 1
	}
	// Find the largest pos with PrefixSum(pos) <= offset by walking
	// tree levels top-down.
	pos := 0
	var acc int64
	mask := 1
	for mask<<1 <= n {
		mask <<= 1
	}
	for ; mask > 0; mask >>= 1 {
		next := pos + mask
		if next <= n && acc+h.tree[next] <= offset {
			pos = next
			acc += h.tree[next]
		}
	}
	// pos items precede the offset; the containing item is heights[pos].
	if pos >= n {
		pos = n - 1
		acc = h.PrefixSum(pos)
	}
	return pos, offset - acc
}
