//go:build linux || darwin

package alloc

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func newTestSerial(t testing.TB) *SerialAllocator {
	t.Helper()
	cfg := DefaultConfig
	cfg.Source = &countingSource{}
	s, err := NewSerial(&cfg)
	require.NoError(t, err)
	return s
}

// TestSerialAllocator_SharedAcrossGoroutines uses one SerialAllocator from many
// goroutines; everything lands on the global list, nothing is handed back.
func TestSerialAllocator_SharedAcrossGoroutines(t *testing.T) {
	s := newTestSerial(t)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ptrs := make([]unsafe.Pointer, 0, 200)
			for i := range 200 {
				size := 1 + (g*131+i*17)%2048
				p, err := s.Alloc(size)
				if err != nil {
					t.Errorf("alloc: %v", err)
					return
				}
				fill(p, size, byte(g))
				if !patternOK(testalloc{seed: byte(g), size: size, ptr: p}) {
					t.Errorf("payload corrupted")
					return
				}
				ptrs = append(ptrs, p)
			}
			for _, p := range ptrs {
				if err := s.Free(p); err != nil {
					t.Errorf("free: %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	pa := s.Par()
	st := pa.Stats()
	require.Zero(t, st.HandBacks)
	require.Equal(t, 1, st.Slots)
	require.Equal(t, st.Chunks*int64(pa.Config().ChunkSize), st.FreeBytes)
	require.NoError(t, pa.CheckInvariants())
}

func TestSerialAllocator_Realloc(t *testing.T) {
	s := newTestSerial(t)

	p := mustAlloc(t, s, 10)
	fill(p, 10, 3)
	p, err := s.Realloc(p, 5000)
	require.NoError(t, err)
	verify(t, p, 10, 3)
	require.NoError(t, s.Free(p))
}

func TestNewSerial_BadConfig(t *testing.T) {
	_, err := NewSerial(&Config{ChunkSize: 1, MaxThreads: 1})
	require.ErrorIs(t, err, ErrBadConfig)
}
