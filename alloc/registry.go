package alloc

import (
	"fmt"

	"github.com/joshuapare/parmalloc/internal/format"
)

// register claims a slot for t on its first allocation. The index is cached in
// the Thread so later calls never touch the shared table.
func (t *Thread) register() error {
	if t.slot >= 0 {
		return nil
	}
	a := t.a
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, id := range a.slots {
		if id == 0 {
			a.slots[i] = t.id
			t.slot = i
			a.log.Debug("thread registered", "thread", t.id, "slot", i)
			return nil
		}
	}
	a.log.Error("thread slot table exhausted", "thread", t.id, "slots", len(a.slots))
	return fmt.Errorf("%w: %d slots in use", ErrSlotsExhausted, len(a.slots))
}

// lookup returns the slot held by thread id. Requires a.mu.
func (a *ParAllocator) lookup(id uint32) (int, bool) {
	if id == 0 {
		return 0, false
	}
	for i, owner := range a.slots {
		if owner == id {
			return i, true
		}
	}
	return 0, false
}

// owns reports whether the cell header names t as its owner.
func (t *Thread) owns(c format.Cell) bool {
	return c.Owner() == t.id
}
