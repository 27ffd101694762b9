package alloc

import "github.com/joshuapare/parmalloc/internal/format"

// The ledger below keeps free cells in singly-linked lists sorted by ascending
// address. A list is named by a pointer to its head slot inside the allocator,
// so a new head is visible to every later caller. All functions require a.mu.

// insert links c into the list and merges it with any address-adjacent
// neighbour. The list never holds two mergeable cells before or after the call,
// so only the predecessor and successor of c need checking.
func (a *ParAllocator) insert(head *format.Cell, c format.Cell) {
	c.SetMagic(format.MagicFree)

	var prev format.Cell
	next := *head
	for !next.Nil() && next < c {
		prev, next = next, next.Next()
	}

	c.SetNext(next)
	if prev.Nil() {
		*head = c
	} else {
		prev.SetNext(c)
	}

	if c.Adjacent(next) {
		c.SetSize(c.Size() + next.Size())
		c.SetNext(next.Next())
		a.stats.coalesces.Add(1)
	}
	if !prev.Nil() && prev.Adjacent(c) {
		prev.SetSize(prev.Size() + c.Size())
		prev.SetNext(c.Next())
		a.stats.coalesces.Add(1)
	}
}

// extractFirstFit unlinks and returns the first cell of at least need bytes,
// or the nil cell when none qualifies.
func (a *ParAllocator) extractFirstFit(head *format.Cell, need int) format.Cell {
	var prev format.Cell
	for c := *head; !c.Nil(); prev, c = c, c.Next() {
		if c.Size() < need {
			continue
		}
		if prev.Nil() {
			*head = c.Next()
		} else {
			prev.SetNext(c.Next())
		}
		c.SetNext(0)
		return c
	}
	return 0
}

// drain moves every cell from one list into another and empties the source.
// Both lists are sorted, so they are merged in a single pass; each cell is
// coalesced with the cell linked before it when the two touch.
func (a *ParAllocator) drain(from, to *format.Cell) int {
	src := *from
	if src.Nil() {
		return 0
	}
	*from = 0

	n := 0
	dst := *to
	var head, tail format.Cell
	for !src.Nil() || !dst.Nil() {
		var c format.Cell
		if dst.Nil() || (!src.Nil() && src < dst) {
			c, src = src, src.Next()
			c.SetMagic(format.MagicFree)
			n++
		} else {
			c, dst = dst, dst.Next()
		}

		if !tail.Nil() && tail.Adjacent(c) {
			tail.SetSize(tail.Size() + c.Size())
			a.stats.coalesces.Add(1)
			continue
		}
		if tail.Nil() {
			head = c
		} else {
			tail.SetNext(c)
		}
		tail = c
	}
	tail.SetNext(0)
	*to = head
	return n
}

// walk calls fn for each cell until fn returns false.
func walk(head format.Cell, fn func(format.Cell) bool) {
	for c := head; !c.Nil(); c = c.Next() {
		if !fn(c) {
			return
		}
	}
}
