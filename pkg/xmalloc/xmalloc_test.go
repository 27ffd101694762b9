//go:build linux || darwin

package xmalloc

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/parmalloc/alloc"
)

func TestMallocFreeRealloc(t *testing.T) {
	p := Malloc(100)
	b := Bytes(p, 100)
	for i := range b {
		b[i] = byte(i)
	}

	p = Realloc(p, 10000)
	b = Bytes(p, 100)
	for i := range b {
		require.Equal(t, byte(i), b[i])
	}
	Free(p)
	Free(nil)
	require.NoError(t, Default().CheckInvariants())
}

func TestInitAfterUse(t *testing.T) {
	_ = Default()
	require.ErrorIs(t, Init(nil), ErrInitialized)
}

func TestDoubleFreePanics(t *testing.T) {
	p := Malloc(32)
	Free(p)
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, alloc.ErrDoubleFree), "got %v", err)
	}()
	Free(p)
}

func TestThreadAndPackageFunctionsInteroperate(t *testing.T) {
	th := NewThread()
	p, err := th.Alloc(64)
	require.NoError(t, err)
	Free(p) // handed back to th's slot

	q := Malloc(64)
	require.NoError(t, th.Free(q))
	require.NoError(t, Default().CheckInvariants())
}

func TestConcurrentMalloc(t *testing.T) {
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 500 {
				n := 2 + (g*97+i)%1500
				p := Malloc(n)
				b := Bytes(p, n)
				b[0], b[n-1] = byte(g), byte(i)
				if b[0] != byte(g) || b[n-1] != byte(i) {
					t.Errorf("payload corrupted")
				}
				Free(p)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, Default().CheckInvariants())
}

func TestBytesNil(t *testing.T) {
	require.Nil(t, Bytes(nil, 10))
	require.Nil(t, Bytes(Malloc(1), 0))
}

func TestCallocZeroes(t *testing.T) {
	// Dirty a block first so reuse would show stale bytes.
	p := Malloc(400)
	dirty := Bytes(p, 400)
	for i := range dirty {
		dirty[i] = 0xAA
	}
	Free(p)

	q := Calloc(50, 8)
	for i, v := range Bytes(q, 400) {
		require.Zero(t, v, "byte %d not zeroed", i)
	}
	Free(q)
}

func TestCallocOverflowPanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, alloc.ErrTooLarge)
	}()
	Calloc(math.MaxInt/2, 3)
}
