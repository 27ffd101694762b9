package alloc

import "errors"

var (
	// ErrNoMemory indicates the OS refused to map a chunk or a dedicated region.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrSlotsExhausted indicates more distinct threads allocated than the slot table holds.
	ErrSlotsExhausted = errors.New("alloc: thread slot table exhausted")

	// ErrTooLarge indicates the requested size overflows once the header is added.
	ErrTooLarge = errors.New("alloc: requested size too large")

	// ErrBadSize indicates a negative allocation size.
	ErrBadSize = errors.New("alloc: invalid allocation size")

	// ErrBadPointer indicates a pointer whose header is not a live allocation.
	ErrBadPointer = errors.New("alloc: pointer was not returned by this allocator")

	// ErrDoubleFree indicates a pointer whose header is already marked free.
	ErrDoubleFree = errors.New("alloc: pointer already released")

	// ErrBadConfig indicates an invalid Config.
	ErrBadConfig = errors.New("alloc: invalid config")

	// ErrCorrupt indicates a free-list invariant violation found by CheckInvariants.
	ErrCorrupt = errors.New("alloc: free list corrupted")
)
