package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/parmalloc/internal/format"
	"github.com/joshuapare/parmalloc/internal/mmap"
)

func init() {
	cmd := newInfoCmd()
	addConfigFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show allocator layout and configuration",
		Long: `The info command prints the cell layout constants and the capacity
limits of the selected configuration.

Example:
  parmallocctl info
  parmallocctl info --config wide --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
	return cmd
}

// Info describes the allocator layout.
type Info struct {
	Config      string
	ChunkSize   int
	MaxThreads  int
	HeaderSize  int
	MinCellSize int
	Alignment   int
	PageSize    int
}

func runInfo() error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	info := Info{
		Config:      cfg.String(),
		ChunkSize:   cfg.ChunkSize,
		MaxThreads:  cfg.MaxThreads,
		HeaderSize:  format.HeaderSize,
		MinCellSize: format.MinCellSize,
		Alignment:   format.Alignment,
		PageSize:    mmap.PageSize,
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nAllocator Layout (%s):\n", info.Config)
	printInfo("  Chunk size:    %s (%s bytes)\n", humanize.IBytes(uint64(info.ChunkSize)), formatNumber(int64(info.ChunkSize)))
	printInfo("  Thread slots:  %d\n", info.MaxThreads)
	printInfo("  Header size:   %d bytes\n", info.HeaderSize)
	printInfo("  Min cell size: %d bytes\n", info.MinCellSize)
	printInfo("  Alignment:     %d bytes\n", info.Alignment)
	printInfo("  OS page size:  %s\n", humanize.IBytes(uint64(info.PageSize)))
	printVerbose("  Large threshold: requests of %s or more (header included) bypass the free lists\n",
		humanize.IBytes(uint64(info.ChunkSize)))
	return nil
}
