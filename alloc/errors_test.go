//go:build linux || darwin

package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestFree_Nil(t *testing.T) {
	pa, _ := newTestPar(t, nil)
	require.NoError(t, pa.NewThread().Free(nil))
	require.Zero(t, pa.Stats().Frees)
}

func TestFree_DoubleFree(t *testing.T) {
	pa, _ := newTestPar(t, nil)
	th := pa.NewThread()

	p := mustAlloc(t, th, 64)
	require.NoError(t, th.Free(p))
	require.ErrorIs(t, th.Free(p), ErrDoubleFree)

	_, err := th.Realloc(p, 128)
	require.ErrorIs(t, err, ErrDoubleFree)

	_, err = pa.UsableSize(p)
	require.ErrorIs(t, err, ErrDoubleFree)
}

func TestFree_BadPointer(t *testing.T) {
	pa, _ := newTestPar(t, nil)
	th := pa.NewThread()

	p := mustAlloc(t, th, 256)
	clear(payload(p, 256))

	// An aligned pointer into the middle of a zeroed payload has no header.
	require.ErrorIs(t, th.Free(unsafe.Add(p, 64)), ErrBadPointer)
	// A misaligned pointer is rejected before its header is read.
	require.ErrorIs(t, th.Free(unsafe.Add(p, 3)), ErrBadPointer)

	require.NoError(t, th.Free(p))
	require.NoError(t, pa.CheckInvariants())
}

func TestCell_HeaderSurvivesPayloadWrites(t *testing.T) {
	pa, _ := newTestPar(t, nil)
	th := pa.NewThread()

	p := mustAlloc(t, th, 100)
	n, err := pa.UsableSize(p)
	require.NoError(t, err)
	fill(p, n, 0xEE) // the whole usable area, not just the request

	got, err := pa.UsableSize(p)
	require.NoError(t, err)
	require.Equal(t, n, got)
	require.NoError(t, th.Free(p))
}
