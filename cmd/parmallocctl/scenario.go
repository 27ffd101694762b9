package main

import (
	"fmt"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/joshuapare/parmalloc/alloc"
)

func init() {
	cmd := newScenarioCmd()
	addConfigFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Replay the reuse and hand-back scenarios",
		Long: `The scenario command replays two short allocation sequences and prints
the addresses involved.

  reuse:     allocate 100 bytes (A) and 200 bytes (B), release A, then
             allocate 50 bytes (C). C is expected inside A's old range.
  hand-back: thread 1 allocates a block, thread 2 releases it, thread 1
             releases another of its own blocks and allocates again. The
             handed-back block is expected to be reused.

Example:
  parmallocctl scenario
  parmallocctl scenario --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
	return cmd
}

// ScenarioResult records one replayed sequence.
type ScenarioResult struct {
	Name     string
	Steps    []ScenarioStep
	Expected string
	Passed   bool
}

// ScenarioStep is one allocator call.
type ScenarioStep struct {
	Label  string
	Op     string
	Size   int     `json:",omitempty"`
	Addr   uintptr `json:",string"`
	Thread uint32
}

func runScenario() error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	reuse, err := reuseScenario(cfg)
	if err != nil {
		return fmt.Errorf("reuse scenario: %w", err)
	}
	handBack, err := handBackScenario(cfg)
	if err != nil {
		return fmt.Errorf("hand-back scenario: %w", err)
	}
	results := []ScenarioResult{reuse, handBack}

	if jsonOut {
		return printJSON(results)
	}

	for _, r := range results {
		printInfo("\nScenario %s:\n", r.Name)
		for _, s := range r.Steps {
			if s.Size > 0 {
				printInfo("  [t%d] %-6s %-2s %5d bytes -> %#x\n", s.Thread, s.Op, s.Label, s.Size, s.Addr)
			} else {
				printInfo("  [t%d] %-6s %-2s             %#x\n", s.Thread, s.Op, s.Label, s.Addr)
			}
		}
		verdict := "ok"
		if !r.Passed {
			verdict = "FAILED"
		}
		printInfo("  Expect: %s ... %s\n", r.Expected, verdict)
	}

	for _, r := range results {
		if !r.Passed {
			return fmt.Errorf("scenario %s did not behave as expected", r.Name)
		}
	}
	return nil
}

func reuseScenario(cfg alloc.Config) (ScenarioResult, error) {
	pa, err := alloc.NewPar(&cfg)
	if err != nil {
		return ScenarioResult{}, err
	}
	t := pa.NewThread()
	res := ScenarioResult{Name: "reuse", Expected: "C lies within A"}

	a, err := t.Alloc(100)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"A", "alloc", 100, uintptr(a), t.ID()})
	b, err := t.Alloc(200)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"B", "alloc", 200, uintptr(b), t.ID()})

	if err := t.Free(a); err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"A", "free", 0, uintptr(a), t.ID()})

	c, err := t.Alloc(50)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"C", "alloc", 50, uintptr(c), t.ID()})

	res.Passed = uintptr(c) >= uintptr(a) && uintptr(c) < uintptr(a)+100
	for _, p := range []unsafe.Pointer{b, c} {
		if err := t.Free(p); err != nil {
			return res, err
		}
	}
	return res, pa.CheckInvariants()
}

func handBackScenario(cfg alloc.Config) (ScenarioResult, error) {
	pa, err := alloc.NewPar(&cfg)
	if err != nil {
		return ScenarioResult{}, err
	}
	t1, t2 := pa.NewThread(), pa.NewThread()
	res := ScenarioResult{Name: "hand-back", Expected: "C reuses P after t2 hands it back"}

	p, err := t1.Alloc(100)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"P", "alloc", 100, uintptr(p), t1.ID()})
	q, err := t1.Alloc(100)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"Q", "alloc", 100, uintptr(q), t1.ID()})

	if err := t2.Free(p); err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"P", "free", 0, uintptr(p), t2.ID()})
	if err := t1.Free(q); err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"Q", "free", 0, uintptr(q), t1.ID()})

	c, err := t1.Alloc(100)
	if err != nil {
		return res, err
	}
	res.Steps = append(res.Steps, ScenarioStep{"C", "alloc", 100, uintptr(c), t1.ID()})

	res.Passed = c == p
	if err := t1.Free(c); err != nil {
		return res, err
	}
	return res, pa.CheckInvariants()
}
