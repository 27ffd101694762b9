package alloc

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/joshuapare/parmalloc/internal/format"
)

// GlobalList is the List value reported for cells on the global free list.
const GlobalList = -1

// FreeSpan describes one free cell.
type FreeSpan struct {
	Addr uintptr // Address of the cell header
	Size int     // Size including header
	List int     // GlobalList or the slot index of the hand-back list
}

// End returns the address one past the span.
func (s FreeSpan) End() uintptr { return s.Addr + uintptr(s.Size) }

// heads returns the global list followed by every slot list. Requires a.mu.
func (a *ParAllocator) heads() []*format.Cell {
	out := make([]*format.Cell, 0, len(a.lists)+1)
	out = append(out, &a.global)
	for i := range a.lists {
		out = append(out, &a.lists[i])
	}
	return out
}

// listIndex maps a position in heads() to a FreeSpan.List value.
func listIndex(i int) int {
	return i - 1
}

// FreeCells returns a snapshot of every free cell, list by list, in list order.
func (a *ParAllocator) FreeCells() []FreeSpan {
	a.mu.Lock()
	defer a.mu.Unlock()

	var spans []FreeSpan
	for i, head := range a.heads() {
		walk(*head, func(c format.Cell) bool {
			spans = append(spans, FreeSpan{Addr: c.Addr(), Size: c.Size(), List: listIndex(i)})
			return true
		})
	}
	return spans
}

// CheckInvariants walks every free list and verifies that cells are well
// formed, strictly address-ordered, never mergeable with their successor, and
// that no two free cells anywhere overlap.
func (a *ParAllocator) CheckInvariants() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var all []FreeSpan
	for i, head := range a.heads() {
		var err error
		var prev format.Cell
		walk(*head, func(c format.Cell) bool {
			switch {
			case c.Magic() != format.MagicFree:
				err = fmt.Errorf("%w: list %d: %v not tagged free", ErrCorrupt, listIndex(i), c)
			case c.Size() < format.MinCellSize || !format.Aligned(c.Size()):
				err = fmt.Errorf("%w: list %d: %v has bad size", ErrCorrupt, listIndex(i), c)
			case !prev.Nil() && prev >= c:
				err = fmt.Errorf("%w: list %d: %v not after %v", ErrCorrupt, listIndex(i), c, prev)
			case !prev.Nil() && prev.Adjacent(c):
				err = fmt.Errorf("%w: list %d: %v mergeable with %v", ErrCorrupt, listIndex(i), prev, c)
			}
			if err != nil {
				return false
			}
			all = append(all, FreeSpan{Addr: c.Addr(), Size: c.Size(), List: listIndex(i)})
			prev = c
			return true
		})
		if err != nil {
			return err
		}
	}

	slices.SortFunc(all, func(x, y FreeSpan) int { return cmp.Compare(x.Addr, y.Addr) })
	for i := 1; i < len(all); i++ {
		if all[i-1].End() > all[i].Addr {
			return fmt.Errorf("%w: free cells %#x (list %d) and %#x (list %d) overlap",
				ErrCorrupt, all[i-1].Addr, all[i-1].List, all[i].Addr, all[i].List)
		}
	}
	return nil
}
