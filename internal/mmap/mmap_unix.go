//go:build unix

// Package mmap provides platform-specific helpers for mapping anonymous memory
// regions outside the Go heap.
package mmap

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageSize is the operating system page size.
var PageSize = unix.Getpagesize()

// Map maps n bytes of private, anonymous, read/write memory and returns the
// base address. The contents are whatever the OS provides (zeroed on Linux).
func Map(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mmap: invalid length %d", n)
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %d bytes: %w", n, err)
	}
	return unsafe.Pointer(unsafe.SliceData(data)), nil
}

// Unmap releases a region previously returned by Map. n must be the length
// passed to Map.
func Unmap(p unsafe.Pointer, n int) error {
	if p == nil || n <= 0 {
		return nil
	}
	// x/sys tracks mappings by their last byte, so the rebuilt slice must have
	// exactly the original length.
	err := unix.Munmap(unsafe.Slice((*byte)(p), n))
	if errors.Is(err, unix.EINVAL) {
		return fmt.Errorf("mmap: unmap %d bytes at %p: not a mapped region: %w", n, p, err)
	}
	return err
}
