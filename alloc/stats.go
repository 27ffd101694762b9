package alloc

import (
	"sync/atomic"

	"github.com/joshuapare/parmalloc/internal/format"
)

// counters are updated with atomics so Stats never needs the list lock for them.
type counters struct {
	chunks      atomic.Int64
	largeMaps   atomic.Int64
	largeUnmaps atomic.Int64
	mapped      atomic.Int64
	allocs      atomic.Int64
	frees       atomic.Int64
	reallocs    atomic.Int64
	splits      atomic.Int64
	coalesces   atomic.Int64
	handBacks   atomic.Int64
	drained     atomic.Int64
}

// Stats is a point-in-time snapshot of allocator activity.
type Stats struct {
	Chunks      int64 // Chunks mapped for the free lists (never unmapped)
	LargeMaps   int64 // Dedicated regions mapped for large allocations
	LargeUnmaps int64 // Dedicated regions returned to the OS
	MappedBytes int64 // Bytes currently mapped from the OS

	Allocs    int64 // Successful Alloc calls (including those made by Realloc)
	Frees     int64 // Successful Free calls
	Reallocs  int64 // Successful Realloc relocations
	Splits    int64 // Cells split to return a leftover to the global list
	Coalesces int64 // Adjacent free cells merged
	HandBacks int64 // Cells freed by a thread other than their owner
	Drained   int64 // Handed-back cells moved onto the global list

	Slots     int   // Thread slots claimed
	FreeCells int   // Cells on all free lists
	FreeBytes int64 // Bytes on all free lists
}

// Stats returns a snapshot of the allocator's counters and free lists.
func (a *ParAllocator) Stats() Stats {
	s := Stats{
		Chunks:      a.stats.chunks.Load(),
		LargeMaps:   a.stats.largeMaps.Load(),
		LargeUnmaps: a.stats.largeUnmaps.Load(),
		MappedBytes: a.stats.mapped.Load(),
		Allocs:      a.stats.allocs.Load(),
		Frees:       a.stats.frees.Load(),
		Reallocs:    a.stats.reallocs.Load(),
		Splits:      a.stats.splits.Load(),
		Coalesces:   a.stats.coalesces.Load(),
		HandBacks:   a.stats.handBacks.Load(),
		Drained:     a.stats.drained.Load(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.slots {
		if id != 0 {
			s.Slots++
		}
	}
	for _, head := range a.heads() {
		walk(*head, func(c format.Cell) bool {
			s.FreeCells++
			s.FreeBytes += int64(c.Size())
			return true
		})
	}
	return s
}
