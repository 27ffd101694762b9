package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleOutput = `goos: linux
goarch: amd64
pkg: github.com/joshuapare/parmalloc/alloc
BenchmarkAllocFree/par/16B-8         	41029387	        28.90 ns/op	       0 B/op	       0 allocs/op
BenchmarkAllocFree/serial/16B-8      	30120944	        39.70 ns/op	       0 B/op	       0 allocs/op
BenchmarkParallel/par/8KB-8          	 9012345	       131.0 ns/op
BenchmarkParallel/serial/8KB-8       	 3012345	       393.0 ns/op
BenchmarkParallel/par/128B-8         	 9012345	       100.0 ns/op
BenchmarkLiveSet/par/window1024-8    	12000000	        95.20 ns/op
{"Action":"output","Output":"BenchmarkLiveSet/serial/window1024-8    \t10000000\t       190.4 ns/op\n"}
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	require.Len(t, results, 7)

	first := results[0]
	require.Equal(t, "AllocFree", first.Operation)
	require.Equal(t, "par", first.Impl)
	require.Equal(t, "16B", first.Size)
	require.Equal(t, 8, first.Procs)
	require.InDelta(t, 28.9, first.NsPerOp, 1e-9)

	last := results[6]
	require.Equal(t, "serial", last.Impl)
	require.Equal(t, "window1024", last.Size)
}

func TestParseNameWithoutProcs(t *testing.T) {
	r, ok := parseName("BenchmarkParallel/par/1KB")
	require.True(t, ok)
	require.Equal(t, 1, r.Procs)
	require.Equal(t, "1KB", r.Size)

	_, ok = parseName("BenchmarkSomething-8")
	require.False(t, ok)
}

func TestGenerateComparisons(t *testing.T) {
	results := parseBenchmarks(bufio.NewScanner(strings.NewReader(sampleOutput)))
	comps := generateComparisons(results)
	require.Len(t, comps, 4)

	// Sorted by operation, then procs, then size.
	require.Equal(t, "AllocFree", comps[0].Operation)
	require.Equal(t, "LiveSet", comps[1].Operation)
	require.Equal(t, "128B", comps[2].Size)
	require.True(t, comps[2].ParOnly)
	require.Equal(t, "8KB", comps[3].Size)
	require.InDelta(t, 3.0, comps[3].Speedup, 1e-9)

	report := generateMarkdownReport(comps)
	require.Contains(t, report, "| Parallel | 8KB | 8 | 131.0 | 393.0 | **3.00x** ✓ |")
	require.Contains(t, report, "*par only*")
	require.Contains(t, report, "- **Comparable** (par and serial): 3")
}

func TestSizeBytes(t *testing.T) {
	require.Equal(t, 16, sizeBytes("16B"))
	require.Equal(t, 8192, sizeBytes("8KB"))
	require.Equal(t, 0, sizeBytes("window1024"))
}
