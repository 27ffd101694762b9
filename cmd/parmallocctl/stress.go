package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/parmalloc/alloc"
)

var (
	stressThreads   int
	stressOps       int
	stressMaxSize   int
	stressCross     int
	stressLargeEach int
	stressSeed      uint64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressThreads, "threads", "t", 4, "Number of worker threads")
	cmd.Flags().IntVarP(&stressOps, "ops", "n", 100000, "Operations per thread")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 4096, "Largest small request in bytes")
	cmd.Flags().IntVar(&stressCross, "cross", 30, "Percent of releases performed by another thread")
	cmd.Flags().IntVar(&stressLargeEach, "large-every", 200, "Make every Nth allocation large (0 disables)")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Random seed")
	addConfigFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent allocate/resize/release workload",
		Long: `The stress command starts one allocator thread per worker. Each worker
allocates, resizes and releases blocks of random size, stamping every block with
a pattern and checking it before the block is moved or released. A share of the
blocks is released by a neighbouring worker to exercise the hand-back path.
After the run the free lists are checked for ordering and coalescing invariants.

Example:
  parmallocctl stress
  parmallocctl stress --threads 16 --ops 1000000 --cross 50
  parmallocctl stress --config wide --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			opts := stressOptions{
				Threads:    stressThreads,
				Ops:        stressOps,
				MaxSize:    stressMaxSize,
				CrossPct:   stressCross,
				LargeEvery: stressLargeEach,
				Seed:       stressSeed,
			}
			report, err := runStress(cfg, opts)
			if err != nil {
				return err
			}
			return printStressReport(report)
		},
	}
	return cmd
}

type stressOptions struct {
	Threads    int
	Ops        int
	MaxSize    int
	CrossPct   int
	LargeEvery int
	Seed       uint64
}

// StressReport is the outcome of a stress run.
type StressReport struct {
	Config    string
	Threads   int
	Ops       int64
	Duration  time.Duration
	OpsPerSec float64
	Stats     alloc.Stats
}

var errCorrupt = errors.New("payload corrupted")

type block struct {
	ptr  unsafe.Pointer
	size int
	seed byte
}

func (b block) bytes() []byte { return unsafe.Slice((*byte)(b.ptr), b.size) }

func (b block) stamp() {
	buf := b.bytes()
	for i := range buf {
		buf[i] = b.seed + byte(i)
	}
}

func (b block) ok() bool {
	buf := b.bytes()
	for i := range buf {
		if buf[i] != b.seed+byte(i) {
			return false
		}
	}
	return true
}

func runStress(cfg alloc.Config, opts stressOptions) (StressReport, error) {
	if opts.Threads <= 0 || opts.Ops <= 0 || opts.MaxSize <= 0 {
		return StressReport{}, errors.New("threads, ops and max-size must be positive")
	}
	if opts.Threads > cfg.MaxThreads {
		return StressReport{}, fmt.Errorf("%d workers need %d slots, config has %d",
			opts.Threads, opts.Threads, cfg.MaxThreads)
	}
	pa, err := alloc.NewPar(&cfg)
	if err != nil {
		return StressReport{}, err
	}

	printVerbose("Running %d workers x %s ops (config %s)\n", opts.Threads, formatNumber(int64(opts.Ops)), cfg.String())

	inboxes := make([]chan block, opts.Threads)
	for i := range inboxes {
		inboxes[i] = make(chan block, 1024)
	}
	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) { once.Do(func() { firstErr = err }) }

	var producers, consumers sync.WaitGroup
	start := time.Now()
	for w := range opts.Threads {
		releaser := pa.NewThread()
		consumers.Add(1)
		go func(in <-chan block) {
			defer consumers.Done()
			for b := range in {
				if !b.ok() {
					fail(errCorrupt)
				}
				if err := releaser.Free(b.ptr); err != nil {
					fail(err)
				}
			}
		}(inboxes[w])

		producers.Add(1)
		go func(w int) {
			defer producers.Done()
			if err := stressWorker(pa.NewThread(), opts, w, inboxes[(w+1)%opts.Threads]); err != nil {
				fail(fmt.Errorf("worker %d: %w", w, err))
			}
		}(w)
	}
	producers.Wait()
	for _, ch := range inboxes {
		close(ch)
	}
	consumers.Wait()
	elapsed := time.Since(start)

	if firstErr != nil {
		return StressReport{}, firstErr
	}
	if err := pa.CheckInvariants(); err != nil {
		return StressReport{}, err
	}

	total := int64(opts.Threads) * int64(opts.Ops)
	return StressReport{
		Config:    cfg.String(),
		Threads:   opts.Threads,
		Ops:       total,
		Duration:  elapsed,
		OpsPerSec: float64(total) / elapsed.Seconds(),
		Stats:     pa.Stats(),
	}, nil
}

func stressWorker(t *alloc.Thread, opts stressOptions, w int, neighbour chan<- block) error {
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
	var live []block
	take := func() block {
		k := rng.IntN(len(live))
		b := live[k]
		live[k] = live[len(live)-1]
		live = live[:len(live)-1]
		return b
	}

	for i := range opts.Ops {
		op := rng.IntN(10)
		switch {
		case op < 5 || len(live) == 0:
			size := 1 + rng.IntN(opts.MaxSize)
			if opts.LargeEvery > 0 && i%opts.LargeEvery == opts.LargeEvery-1 {
				size = t.Allocator().Config().ChunkSize + rng.IntN(opts.MaxSize)
			}
			p, err := t.Alloc(size)
			if err != nil {
				return err
			}
			b := block{ptr: p, size: size, seed: byte(rng.Uint32())}
			b.stamp()
			live = append(live, b)
		case op < 7:
			k := rng.IntN(len(live))
			b := live[k]
			if !b.ok() {
				return errCorrupt
			}
			size := 1 + rng.IntN(2*opts.MaxSize)
			p, err := t.Realloc(b.ptr, size)
			if err != nil {
				return err
			}
			moved := block{ptr: p, size: min(b.size, size), seed: b.seed}
			if !moved.ok() {
				return errCorrupt
			}
			moved.size = size
			moved.stamp()
			live[k] = moved
		default:
			b := take()
			if !b.ok() {
				return errCorrupt
			}
			if rng.IntN(100) < opts.CrossPct {
				neighbour <- b
				continue
			}
			if err := t.Free(b.ptr); err != nil {
				return err
			}
		}
	}
	for _, b := range live {
		if err := t.Free(b.ptr); err != nil {
			return err
		}
	}
	return nil
}

func printStressReport(r StressReport) error {
	if jsonOut {
		return printJSON(r)
	}
	st := r.Stats
	printInfo("\nStress Run (%s): %d threads, %s ops in %s (%s ops/s)\n",
		r.Config, r.Threads, formatNumber(r.Ops), r.Duration.Round(time.Millisecond), formatNumber(int64(r.OpsPerSec)))

	printInfo("\nMemory:\n")
	printInfo("  Chunks mapped:   %s (never returned)\n", formatNumber(st.Chunks))
	printInfo("  Large regions:   %s mapped, %s unmapped\n", formatNumber(st.LargeMaps), formatNumber(st.LargeUnmaps))
	printInfo("  Mapped now:      %s\n", humanize.IBytes(uint64(st.MappedBytes)))
	printInfo("  Free lists:      %s cells, %s\n", formatNumber(int64(st.FreeCells)), humanize.IBytes(uint64(st.FreeBytes)))

	printInfo("\nOperations:\n")
	printInfo("  Allocs:     %s\n", formatNumber(st.Allocs))
	printInfo("  Frees:      %s\n", formatNumber(st.Frees))
	printInfo("  Reallocs:   %s\n", formatNumber(st.Reallocs))
	printInfo("  Splits:     %s\n", formatNumber(st.Splits))
	printInfo("  Coalesces:  %s\n", formatNumber(st.Coalesces))
	printInfo("  Hand-backs: %s (%s drained)\n", formatNumber(st.HandBacks), formatNumber(st.Drained))
	printInfo("  Slots used: %d\n", st.Slots)
	return nil
}
