/*
Package xmalloc provides process-wide Malloc, Free and Realloc entry points on
top of the thread-aware allocator in package alloc.

# Quick Start

	p := xmalloc.Malloc(128)
	buf := xmalloc.Bytes(p, 128)
	copy(buf, "hello")
	p = xmalloc.Realloc(p, 4096)
	xmalloc.Free(p)

The package-level functions share one identity behind a mutex, so any
goroutine may call them. Hot paths should take their own handle:

	t := xmalloc.NewThread()
	p, err := t.Alloc(128)

Handles and the package-level functions draw from the same free lists, so a
pointer obtained from one may be released through the other.

# Failure Semantics

There is no allocator beneath this one. Malloc, Calloc, Free and Realloc panic when
the OS refuses memory, the thread slot table is full, or a pointer is not a
live allocation. Use the alloc package directly to receive errors instead.

# Configuration

The default allocator uses alloc.DefaultConfig. Call Init before first use to
choose another configuration; Init after first use returns an error.
*/
package xmalloc
