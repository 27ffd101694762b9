package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/parmalloc/internal/format"
	"github.com/joshuapare/parmalloc/internal/mmap"
)

// ChunkSource supplies raw memory to the allocator.
//
// Implementations:
//   - OSSource: anonymous mmap (heap-backed where mmap is unavailable)
//
// Map must return memory aligned to at least 16 bytes. Unmap receives the
// exact length that was passed to Map.
type ChunkSource interface {
	Map(n int) (unsafe.Pointer, error)
	Unmap(p unsafe.Pointer, n int) error
}

type osSource struct{}

func (osSource) Map(n int) (unsafe.Pointer, error)   { return mmap.Map(n) }
func (osSource) Unmap(p unsafe.Pointer, n int) error { return mmap.Unmap(p, n) }

// OSSource maps memory directly from the operating system.
var OSSource ChunkSource = osSource{}

// acquireChunk maps one chunk and returns it as a single free cell tagged with
// the requesting thread. Must not be called with a.mu held.
func (a *ParAllocator) acquireChunk(owner uint32) (format.Cell, error) {
	p, err := a.src.Map(a.cfg.ChunkSize)
	if err != nil {
		a.log.Error("chunk mapping failed", "size", a.cfg.ChunkSize, "err", err)
		return 0, fmt.Errorf("%w: chunk of %d bytes: %w", ErrNoMemory, a.cfg.ChunkSize, err)
	}
	c := format.CellAt(p)
	c.Init(a.cfg.ChunkSize, owner, format.MagicFree)
	c.SetNext(0)

	a.stats.chunks.Add(1)
	a.stats.mapped.Add(int64(a.cfg.ChunkSize))
	a.log.Debug("chunk acquired", "addr", fmt.Sprintf("%#x", c.Addr()), "owner", owner)
	return c, nil
}

// acquireRegion maps a dedicated region for a single large allocation.
func (a *ParAllocator) acquireRegion(size int, owner uint32) (format.Cell, error) {
	p, err := a.src.Map(size)
	if err != nil {
		a.log.Error("region mapping failed", "size", size, "err", err)
		return 0, fmt.Errorf("%w: region of %d bytes: %w", ErrNoMemory, size, err)
	}
	c := format.CellAt(p)
	c.Init(size, owner, format.MagicLarge)

	a.stats.largeMaps.Add(1)
	a.stats.mapped.Add(int64(size))
	a.log.Debug("region acquired", "addr", fmt.Sprintf("%#x", c.Addr()), "size", size, "owner", owner)
	return c, nil
}

// releaseRegion unmaps a dedicated large region. Sub-chunk cells never come
// through here; chunks are not returned to the OS once subdivided.
func (a *ParAllocator) releaseRegion(c format.Cell) error {
	size := c.Size()
	addr := c.Addr()
	if err := a.src.Unmap(c.Pointer(), size); err != nil {
		return fmt.Errorf("alloc: release region %#x (%d bytes): %w", addr, size, err)
	}
	a.stats.largeUnmaps.Add(1)
	a.stats.mapped.Add(-int64(size))
	a.log.Debug("region released", "addr", fmt.Sprintf("%#x", addr), "size", size)
	return nil
}
