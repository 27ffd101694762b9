package xmalloc

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/joshuapare/parmalloc/alloc"
	"github.com/joshuapare/parmalloc/internal/buf"
)

var (
	mu     sync.Mutex
	par    *alloc.ParAllocator
	serial *alloc.SerialAllocator
)

// ErrInitialized is returned by Init once the default allocator exists.
var ErrInitialized = errors.New("xmalloc: default allocator already initialized")

// Init creates the default allocator from cfg (nil means alloc.DefaultConfig).
func Init(cfg *alloc.Config) error {
	mu.Lock()
	defer mu.Unlock()
	if par != nil {
		return ErrInitialized
	}
	return initLocked(cfg)
}

func initLocked(cfg *alloc.Config) error {
	pa, err := alloc.NewPar(cfg)
	if err != nil {
		return err
	}
	par = pa
	serial = pa.Serial()
	return nil
}

func get() (*alloc.ParAllocator, *alloc.SerialAllocator) {
	mu.Lock()
	defer mu.Unlock()
	if par == nil {
		if err := initLocked(nil); err != nil {
			fatal("init", err)
		}
	}
	return par, serial
}

// Default returns the process-wide allocator, creating it on first use.
func Default() *alloc.ParAllocator {
	pa, _ := get()
	return pa
}

// NewThread returns a handle on the default allocator for one goroutine.
func NewThread() *alloc.Thread {
	return Default().NewThread()
}

// Malloc returns a pointer to at least n bytes. It never returns nil.
func Malloc(n int) unsafe.Pointer {
	_, s := get()
	p, err := s.Alloc(n)
	if err != nil {
		fatal("malloc", err)
	}
	return p
}

// Calloc returns zeroed memory for count elements of size bytes each.
func Calloc(count, size int) unsafe.Pointer {
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		fatal("calloc", fmt.Errorf("%w: %d x %d bytes", alloc.ErrTooLarge, count, size))
	}
	p := Malloc(n)
	clear(Bytes(p, n))
	return p
}

// Free releases p. Free(nil) is a no-op.
func Free(p unsafe.Pointer) {
	_, s := get()
	if err := s.Free(p); err != nil {
		fatal("free", err)
	}
}

// Realloc moves p to a block of n bytes, preserving the common prefix. The
// old pointer is invalid afterwards.
func Realloc(p unsafe.Pointer, n int) unsafe.Pointer {
	_, s := get()
	np, err := s.Realloc(p, n)
	if err != nil {
		fatal("realloc", err)
	}
	return np
}

// Bytes returns n bytes at p as a slice. The slice aliases allocator memory
// and must not be used after p is released.
func Bytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

func fatal(op string, err error) {
	panic(fmt.Errorf("xmalloc: %s: %w", op, err))
}
