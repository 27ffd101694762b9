//go:build linux || darwin

package alloc

import (
	"cmp"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

// countingSource wraps OSSource and records every mapping. failAfter > 0 makes
// the Nth and later Map calls fail; failUnmap makes every Unmap fail and leak.
type countingSource struct {
	maps      atomic.Int64
	unmaps    atomic.Int64
	failAfter int64
	failUnmap bool
}

var errInjected = errors.New("injected mapping failure")

func (s *countingSource) Map(n int) (unsafe.Pointer, error) {
	count := s.maps.Add(1)
	if s.failAfter > 0 && count >= s.failAfter {
		return nil, errInjected
	}
	return OSSource.Map(n)
}

func (s *countingSource) Unmap(p unsafe.Pointer, n int) error {
	s.unmaps.Add(1)
	if s.failUnmap {
		return errInjected
	}
	return OSSource.Unmap(p, n)
}

// newTestPar returns an allocator over a counting source. cfg may be nil.
func newTestPar(t testing.TB, cfg *Config) (*ParAllocator, *countingSource) {
	t.Helper()
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	src := &countingSource{}
	c.Source = src
	pa, err := NewPar(&c)
	require.NoError(t, err)
	return pa, src
}

// mustAlloc allocates n bytes or fails the test.
func mustAlloc(t testing.TB, th Allocator, n int) unsafe.Pointer {
	t.Helper()
	p, err := th.Alloc(n)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

// payload returns n bytes at p.
func payload(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

// fill writes a pattern derived from seed over n bytes at p.
func fill(p unsafe.Pointer, n int, seed byte) {
	b := payload(p, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

// verify checks the pattern written by fill.
func verify(t testing.TB, p unsafe.Pointer, n int, seed byte) {
	t.Helper()
	b := payload(p, n)
	for i := range b {
		if b[i] != seed+byte(i*7) {
			t.Fatalf("payload %p corrupted at byte %d: got 0x%x want 0x%x", p, i, b[i], seed+byte(i*7))
		}
	}
}

// liveRange is a [start, end) byte range backing a live allocation.
type liveRange struct {
	start, end uintptr
}

// requireDisjoint fails if any two ranges overlap.
func requireDisjoint(t testing.TB, ranges []liveRange) {
	t.Helper()
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b liveRange) int { return cmp.Compare(a.start, b.start) })
	for i := 1; i < len(sorted); i++ {
		require.LessOrEqual(t, sorted[i-1].end, sorted[i].start,
			"live ranges [%#x,%#x) and [%#x,%#x) overlap",
			sorted[i-1].start, sorted[i-1].end, sorted[i].start, sorted[i].end)
	}
}

// rangeOf returns the usable range behind p.
func rangeOf(t testing.TB, pa *ParAllocator, p unsafe.Pointer) liveRange {
	t.Helper()
	n, err := pa.UsableSize(p)
	require.NoError(t, err)
	return liveRange{start: uintptr(p), end: uintptr(p) + uintptr(n)}
}

// within reports whether q lies in [p, p+n).
func within(q, p unsafe.Pointer, n int) bool {
	return uintptr(q) >= uintptr(p) && uintptr(q) < uintptr(p)+uintptr(n)
}

var errCorruptPayload = errors.New("payload corrupted")

// stamp writes the pattern for ta.
func stamp(ta testalloc) {
	fill(ta.ptr, ta.size, ta.seed)
}

// patternOK reports whether ta still holds its pattern. Safe to call from
// goroutines other than the test goroutine.
func patternOK(ta testalloc) bool {
	b := payload(ta.ptr, ta.size)
	for i := range b {
		if b[i] != ta.seed+byte(i*7) {
			return false
		}
	}
	return true
}
