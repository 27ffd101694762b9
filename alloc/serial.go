package alloc

import (
	"sync"
	"unsafe"
)

// SerialAllocator is the single-lock baseline: every caller shares one
// identity, so every block lands on the global free list and there is no
// hand-back traffic. Safe for concurrent use.
type SerialAllocator struct {
	mu sync.Mutex
	t  *Thread
}

// NewSerial creates a serial allocator (use nil for DefaultConfig).
func NewSerial(cfg *Config) (*SerialAllocator, error) {
	a, err := NewPar(cfg)
	if err != nil {
		return nil, err
	}
	return a.Serial(), nil
}

// Serial returns a SerialAllocator sharing a's free lists under a fresh
// thread identity.
func (a *ParAllocator) Serial() *SerialAllocator {
	return &SerialAllocator{t: a.NewThread()}
}

// Alloc implements Allocator.
func (s *SerialAllocator) Alloc(n int) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Alloc(n)
}

// Free implements Allocator.
func (s *SerialAllocator) Free(p unsafe.Pointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Free(p)
}

// Realloc implements Allocator.
func (s *SerialAllocator) Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.Realloc(p, n)
}

// Par returns the underlying allocator for introspection.
func (s *SerialAllocator) Par() *ParAllocator {
	return s.t.a
}
