//go:build linux || darwin

package alloc

import (
	"strconv"
	"sync/atomic"
	"testing"
	"unsafe"
)

// Benchmarks are named Benchmark<Op>/<impl>/<size> with impl "par" or
// "serial" so scripts/benchmark_parser.go can pair them up.

var benchSizes = []int{16, 128, 1024, 8192}

// newBenchImpl builds a fresh allocator and returns a function that hands out
// the Allocator one goroutine should use. For par every call gets its own
// Thread; for serial every call shares the one instance.
func newBenchImpl(b *testing.B, impl string) func() Allocator {
	if impl == "serial" {
		s := newTestSerial(b)
		return func() Allocator { return s }
	}
	cfg := ConfigWide
	pa, _ := newTestPar(b, &cfg)
	return func() Allocator { return pa.NewThread() }
}

// BenchmarkAllocFree measures the uncontended alloc/free round trip.
func BenchmarkAllocFree(b *testing.B) {
	for _, impl := range []string{"par", "serial"} {
		for _, size := range benchSizes {
			b.Run(impl+"/"+sizeName(size), func(b *testing.B) {
				a := newBenchImpl(b, impl)()
				b.ReportAllocs()
				for b.Loop() {
					p, err := a.Alloc(size)
					if err != nil {
						b.Fatal(err)
					}
					if err := a.Free(p); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkLiveSet keeps a rolling window of live blocks so the free list
// holds fragments of varied size.
func BenchmarkLiveSet(b *testing.B) {
	for _, impl := range []string{"par", "serial"} {
		b.Run(impl+"/window1024", func(b *testing.B) {
			a := newBenchImpl(b, impl)()
			const window = 1024
			ring := make([]unsafe.Pointer, window)
			i := 0
			for b.Loop() {
				slot := i % window
				if ring[slot] != nil {
					if err := a.Free(ring[slot]); err != nil {
						b.Fatal(err)
					}
				}
				p, err := a.Alloc(16 + (i*37)%2000)
				if err != nil {
					b.Fatal(err)
				}
				ring[slot] = p
				i++
			}
		})
	}
}

// BenchmarkParallel runs alloc/free from GOMAXPROCS goroutines at once.
func BenchmarkParallel(b *testing.B) {
	for _, impl := range []string{"par", "serial"} {
		for _, size := range benchSizes {
			b.Run(impl+"/"+sizeName(size), func(b *testing.B) {
				handle := newBenchImpl(b, impl)
				var failed atomic.Bool
				b.RunParallel(func(pb *testing.PB) {
					a := handle()
					for pb.Next() {
						p, err := a.Alloc(size)
						if err != nil {
							failed.Store(true)
							return
						}
						if err := a.Free(p); err != nil {
							failed.Store(true)
							return
						}
					}
				})
				if failed.Load() {
					b.Fatal(impl + " allocator failed")
				}
			})
		}
	}
}

func sizeName(n int) string {
	if n >= 1<<10 {
		return strconv.Itoa(n>>10) + "KB"
	}
	return strconv.Itoa(n) + "B"
}
