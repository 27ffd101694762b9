//go:build !unix

// Package mmap provides platform-specific helpers for mapping anonymous memory
// regions outside the Go heap.
package mmap

import (
	"fmt"
	"sync"
	"unsafe"
)

// PageSize is the page size assumed when the OS primitive is unavailable.
var PageSize = 4096

// regions keeps heap-backed mappings reachable until Unmap.
var (
	mu      sync.Mutex
	regions = map[uintptr][]byte{}
)

// Map allocates n bytes from the Go heap when anonymous mmap is not available.
func Map(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mmap: invalid length %d", n)
	}
	data := make([]byte, n)
	p := unsafe.Pointer(unsafe.SliceData(data))
	mu.Lock()
	regions[uintptr(p)] = data
	mu.Unlock()
	return p, nil
}

// Unmap drops the heap-backed region so the GC can reclaim it.
func Unmap(p unsafe.Pointer, n int) error {
	if p == nil || n <= 0 {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	data, ok := regions[uintptr(p)]
	if !ok || len(data) != n {
		return fmt.Errorf("mmap: unmap %d bytes at %p: not a mapped region", n, p)
	}
	delete(regions, uintptr(p))
	return nil
}
