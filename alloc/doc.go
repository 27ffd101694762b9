// Package alloc provides a thread-aware, off-heap memory allocator.
//
// # Overview
//
// Memory is mapped directly from the operating system in fixed-size chunks
// (64 KiB by default) and carved into cells. Freed cells are kept in
// address-ordered free lists where adjacent cells are merged on insertion.
// None of the managed memory lives on the Go heap, so the garbage collector
// never scans or moves it.
//
// # Threads
//
// Go has no stable thread identity, so callers name themselves explicitly: each
// worker goroutine obtains a *Thread from a ParAllocator and performs every
// allocation through it.
//
//	pa, err := alloc.NewPar(nil)
//	if err != nil {
//	    return err
//	}
//	t := pa.NewThread()
//
//	p, err := t.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	buf := unsafe.Slice((*byte)(p), 256)
//	copy(buf, payload)
//
//	err = t.Free(p)
//
// A thread claims a slot in a bounded table (Config.MaxThreads) on its first
// allocation. Slots are never recycled.
//
// # Free Lists
//
// The allocator keeps one global free list and one hand-back list per slot:
//
//   - Alloc takes the first fitting cell from the global list, then from the
//     caller's hand-back list, then maps a new chunk.
//   - Free by the owning thread puts the cell on the global list.
//   - Free by any other thread hands the cell back to the owner's slot list.
//     Each Free also drains the caller's own hand-back list into the global
//     list, which is how handed-back memory becomes reusable.
//
// Requests whose cell size reaches Config.ChunkSize get a dedicated mapping
// that goes straight back to the OS on Free.
//
// # Cell Layout
//
// Every pointer handed out is preceded by a 16-byte header (size, owner id,
// magic tag) described in internal/format. Pointers are 16-byte aligned.
// Free validates the header first, so releasing a foreign pointer usually
// yields ErrBadPointer and releasing twice yields ErrDoubleFree. Neither is
// guaranteed: misuse remains undefined behaviour.
//
// # Thread Safety
//
// ParAllocator is safe for concurrent use through distinct Thread handles.
// A single Thread must not be shared between goroutines without external
// synchronization; SerialAllocator does exactly that for callers that do not
// want to manage handles.
//
// # Related Packages
//
//   - github.com/joshuapare/parmalloc/pkg/xmalloc: process-wide Malloc/Free/Realloc
//   - github.com/joshuapare/parmalloc/internal/format: cell header layout
//   - github.com/joshuapare/parmalloc/internal/mmap: OS mapping primitive
package alloc
