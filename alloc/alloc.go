package alloc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/parmalloc/internal/buf"
	"github.com/joshuapare/parmalloc/internal/format"
)

// ParAllocator is the shared state behind every Thread: the global free list,
// one hand-back list per thread slot, and the slot table itself. A single
// mutex guards all of it; memory is mapped without holding the mutex.
type ParAllocator struct {
	cfg Config
	src ChunkSource
	log *slog.Logger

	// smallLimit is the exclusive upper bound on a live small cell's size.
	smallLimit int

	mu     sync.Mutex
	global format.Cell   // free cells released by their owner
	lists  []format.Cell // per-slot free cells handed back by other threads
	slots  []uint32      // slot -> thread id, 0 = unused

	nextID atomic.Uint32
	stats  counters
}

// Thread is one caller's handle on a ParAllocator. It carries the caller's
// identity and its cached slot index. A Thread must be used by one goroutine
// at a time; create one per worker goroutine.
type Thread struct {
	a    *ParAllocator
	id   uint32
	slot int // -1 until the first Alloc
}

// NewPar creates a thread-aware allocator.
//
// Parameters:
//   - cfg: capacity limits and memory source (use nil for DefaultConfig)
func NewPar(cfg *Config) (*ParAllocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg
	src := c.Source
	if src == nil {
		src = OSSource
	}
	return &ParAllocator{
		cfg:        c,
		src:        src,
		log:        c.logger(),
		smallLimit: c.ChunkSize + format.MinCellSize,
		lists:      make([]format.Cell, c.MaxThreads),
		slots:      make([]uint32, c.MaxThreads),
	}, nil
}

// NewThread returns a new caller identity. No slot is claimed until the
// thread's first allocation.
func (a *ParAllocator) NewThread() *Thread {
	return &Thread{a: a, id: a.nextID.Add(1), slot: -1}
}

// Config returns a copy of the configuration in use.
func (a *ParAllocator) Config() Config {
	return a.cfg
}

// ID returns the thread's identity as recorded in cell headers.
func (t *Thread) ID() uint32 { return t.id }

// Slot returns the thread's slot index, or -1 before its first allocation.
func (t *Thread) Slot() int { return t.slot }

// Allocator returns the allocator the thread belongs to.
func (t *Thread) Allocator() *ParAllocator { return t.a }

// needed converts a payload size into a cell size.
func (a *ParAllocator) needed(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	sum, ok := buf.AddOverflowSafe(n, format.HeaderSize)
	if !ok {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	need, ok := buf.AlignUp(sum, format.Alignment)
	if !ok {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	return max(need, format.MinCellSize), nil
}

// Alloc returns a pointer to at least n bytes. The memory is not zeroed
// unless it comes straight from the OS.
func (t *Thread) Alloc(n int) (unsafe.Pointer, error) {
	a := t.a
	need, err := a.needed(n)
	if err != nil {
		return nil, err
	}
	if err := t.register(); err != nil {
		return nil, err
	}
	if need >= a.cfg.ChunkSize {
		c, err := a.acquireRegion(need, t.id)
		if err != nil {
			return nil, err
		}
		a.stats.allocs.Add(1)
		return c.Payload(), nil
	}

	a.mu.Lock()
	c := a.extractFirstFit(&a.global, need)
	if c.Nil() {
		c = a.extractFirstFit(&a.lists[t.slot], need)
	}
	a.mu.Unlock()

	if c.Nil() {
		if c, err = a.acquireChunk(t.id); err != nil {
			return nil, err
		}
	}

	if rem := c.Size() - need; rem >= format.MinCellSize {
		tail := c.Offset(need)
		tail.Init(rem, t.id, format.MagicFree)
		a.mu.Lock()
		a.insert(&a.global, tail)
		a.mu.Unlock()
		a.stats.splits.Add(1)
	} else {
		// Absorb the sliver; it could never hold a free-list link.
		need = c.Size()
	}
	c.Init(need, t.id, format.MagicSmall)
	a.stats.allocs.Add(1)
	return c.Payload(), nil
}

// cellOf recovers and validates the header behind a caller pointer.
func (a *ParAllocator) cellOf(p unsafe.Pointer) (format.Cell, error) {
	c, err := format.FromPayload(p)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadPointer, err)
	}
	if err := c.Check(a.smallLimit); err != nil {
		if errors.Is(err, format.ErrFreeCell) {
			return 0, fmt.Errorf("%w: %p", ErrDoubleFree, p)
		}
		return 0, fmt.Errorf("%w: %w", ErrBadPointer, err)
	}
	return c, nil
}

// Free releases memory returned by Alloc or Realloc. Freeing nil is a no-op.
//
// Large blocks go straight back to the OS. Small blocks freed by their owner
// join the global list; blocks owned by another thread are handed back to that
// thread's slot list. Either way the caller's own slot list is drained into
// the global list so memory handed back to it becomes reusable.
func (t *Thread) Free(p unsafe.Pointer) error {
	if p == nil {
		return nil
	}
	a := t.a
	c, err := a.cellOf(p)
	if err != nil {
		return err
	}
	if c.Magic() == format.MagicLarge {
		if err := a.releaseRegion(c); err != nil {
			return err
		}
		a.stats.frees.Add(1)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.frees.Add(1)

	switch {
	case t.owns(c):
		a.insert(&a.global, c)
	default:
		owner := c.Owner()
		if slot, ok := a.lookup(owner); ok {
			a.insert(&a.lists[slot], c)
			a.stats.handBacks.Add(1)
			a.log.Debug("cell handed back", "addr", fmt.Sprintf("%#x", c.Addr()), "owner", owner, "by", t.id)
		} else {
			a.insert(&a.global, c)
		}
	}

	if t.slot >= 0 && !a.lists[t.slot].Nil() {
		n := a.drain(&a.lists[t.slot], &a.global)
		a.stats.drained.Add(int64(n))
	}
	return nil
}

// Realloc moves the allocation at p to a new block of n bytes, copying the
// smaller of the old payload and n. A nil p behaves like Alloc. The block is
// always relocated. When releasing the old block fails, the new pointer is
// still returned alongside the error.
func (t *Thread) Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	if p == nil {
		return t.Alloc(n)
	}
	a := t.a
	old, err := a.cellOf(p)
	if err != nil {
		return nil, err
	}
	np, err := t.Alloc(n)
	if err != nil {
		return nil, err
	}
	a.stats.reallocs.Add(1)

	keep := min(old.PayloadSize(), n)
	copy(unsafe.Slice((*byte)(np), keep), old.Bytes(keep))

	if err := t.Free(p); err != nil {
		return np, err
	}
	return np, nil
}

// UsableSize returns the number of bytes available behind p, which may exceed
// the size originally requested.
func (a *ParAllocator) UsableSize(p unsafe.Pointer) (int, error) {
	c, err := a.cellOf(p)
	if err != nil {
		return 0, err
	}
	return c.PayloadSize(), nil
}
