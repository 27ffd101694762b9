package main

import (
	"bufio"
	"cmp"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string // "par" or "serial"
	Procs       int
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the per-thread allocator with the serial baseline
// for one operation and size.
type ComparisonResult struct {
	Operation string
	Size      string
	Procs     int
	ParNs     float64
	SerialNs  float64
	Speedup   float64 // SerialNs / ParNs
	ParOnly   bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// Usage:
//
//	go test ./alloc -run '^$' -bench . -cpu 1,4,8 | go run ./scripts -output bench.md
func main() {
	flag.Parse()

	in := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	report := generateMarkdownReport(comparisons)

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

// BenchmarkParallel/par/128B-8    50000000    24.1 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	for scanner.Scan() {
		line := scanner.Text()

		// Accept `go test -json` output too.
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}
		r, ok := parseName(matches[1])
		if !ok {
			continue
		}
		r.Iterations, _ = strconv.Atoi(matches[2])
		r.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		results = append(results, r)
	}

	return results
}

// parseName splits Benchmark<Op>/<impl>/<size>-<procs>.
func parseName(name string) (BenchmarkResult, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 {
		return BenchmarkResult{}, false
	}
	r := BenchmarkResult{
		Name:      name,
		Operation: strings.TrimPrefix(parts[0], "Benchmark"),
		Impl:      parts[1],
		Size:      parts[2],
		Procs:     1,
	}
	if i := strings.LastIndex(r.Size, "-"); i > 0 {
		if n, err := strconv.Atoi(r.Size[i+1:]); err == nil {
			r.Procs = n
			r.Size = r.Size[:i]
		}
	}
	return r, true
}

func generateComparisons(results []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		size      string
		procs     int
	}

	grouped := make(map[key]map[string]BenchmarkResult)
	for _, r := range results {
		k := key{r.Operation, r.Size, r.Procs}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		par, hasPar := impls["par"]
		if !hasPar {
			continue
		}
		c := ComparisonResult{
			Operation: k.operation,
			Size:      k.size,
			Procs:     k.procs,
			ParNs:     par.NsPerOp,
		}
		if serial, ok := impls["serial"]; ok && par.NsPerOp > 0 {
			c.SerialNs = serial.NsPerOp
			c.Speedup = serial.NsPerOp / par.NsPerOp
		} else {
			c.ParOnly = true
		}
		comparisons = append(comparisons, c)
	}

	slices.SortFunc(comparisons, func(a, b ComparisonResult) int {
		return cmp.Or(
			cmp.Compare(a.Operation, b.Operation),
			cmp.Compare(a.Procs, b.Procs),
			cmp.Compare(sizeBytes(a.Size), sizeBytes(b.Size)),
		)
	})
	return comparisons
}

// sizeBytes orders labels like 16B, 8KB; anything else sorts first.
func sizeBytes(label string) int {
	mult := 1
	num := label
	switch {
	case strings.HasSuffix(label, "KB"):
		mult, num = 1<<10, strings.TrimSuffix(label, "KB")
	case strings.HasSuffix(label, "B"):
		num = strings.TrimSuffix(label, "B")
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n * mult
}

func generateMarkdownReport(comparisons []ComparisonResult) string {
	var sb strings.Builder

	sb.WriteString("# Allocator Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	parFaster, serialFaster, parOnly := 0, 0, 0
	var totalSpeedup float64
	for _, c := range comparisons {
		switch {
		case c.ParOnly:
			parOnly++
		case c.Speedup >= 1.0:
			parFaster++
		default:
			serialFaster++
		}
		if !c.ParOnly {
			totalSpeedup += c.Speedup
		}
	}
	comparable := len(comparisons) - parOnly

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	fmt.Fprintf(&sb, "- **Comparable** (par and serial): %d\n", comparable)
	if comparable > 0 {
		fmt.Fprintf(&sb, "  - par faster: %d (%.1f%%)\n", parFaster, float64(parFaster)/float64(comparable)*100)
		fmt.Fprintf(&sb, "  - serial faster: %d (%.1f%%)\n", serialFaster, float64(serialFaster)/float64(comparable)*100)
		fmt.Fprintf(&sb, "  - Average speedup: **%.2fx**\n", totalSpeedup/float64(comparable))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Size | Procs | par (ns/op) | serial (ns/op) | Speedup |\n")
	sb.WriteString("|-----------|------|-------|-------------|----------------|---------|\n")
	for _, c := range comparisons {
		if c.ParOnly {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s | *N/A* | *par only* |\n",
				c.Operation, c.Size, c.Procs, formatNumber(c.ParNs))
			continue
		}
		indicator := "✓"
		style := "**"
		if c.Speedup < 1.0 {
			indicator = "✗"
			style = ""
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s | %s%.2fx%s %s |\n",
			c.Operation, c.Size, c.Procs,
			formatNumber(c.ParNs), formatNumber(c.SerialNs),
			style, c.Speedup, style, indicator)
	}
	sb.WriteString("\n")

	sb.WriteString("## Scaling\n\n")
	for _, op := range operations(comparisons) {
		var parts []string
		for _, c := range comparisons {
			if c.Operation == op && !c.ParOnly {
				parts = append(parts, fmt.Sprintf("%s@%d: %.2fx", c.Size, c.Procs, c.Speedup))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(&sb, "- **%s**: %s\n", op, strings.Join(parts, ", "))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: per-thread allocator is faster ✓\n")
	sb.WriteString("- **Speedup < 1.0**: serial baseline is faster ✗\n")
	sb.WriteString("- Run with several `-cpu` values to see contention effects\n")

	return sb.String()
}

func operations(comparisons []ComparisonResult) []string {
	var ops []string
	for _, c := range comparisons {
		if !slices.Contains(ops, c.Operation) {
			ops = append(ops, c.Operation)
		}
	}
	return ops
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.1f", n)
}
