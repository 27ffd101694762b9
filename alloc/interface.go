package alloc

import "unsafe"

// Allocator defines the three operations every allocator front end exposes.
//
// Implementations:
//   - *Thread: one caller's handle on a thread-aware ParAllocator
//   - *SerialAllocator: a single global list behind one lock, safe for any goroutine
type Allocator interface {
	// Alloc returns a pointer to at least n usable bytes.
	Alloc(n int) (unsafe.Pointer, error)

	// Free releases a pointer returned by Alloc or Realloc.
	Free(p unsafe.Pointer) error

	// Realloc relocates an allocation to a block of n bytes, preserving the
	// common prefix of its contents. The old pointer is invalid afterwards.
	Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error)
}

var (
	_ Allocator = (*Thread)(nil)
	_ Allocator = (*SerialAllocator)(nil)
)
