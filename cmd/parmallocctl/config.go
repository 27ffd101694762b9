package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/parmalloc/alloc"
	"github.com/joshuapare/parmalloc/cmd/parmallocctl/logger"
)

var (
	configName string
	chunkSize  int
	maxThreads int
)

// addConfigFlags registers the allocator configuration flags on cmd.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configName, "config", "default", "Preset: default, wide, large-chunk")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override chunk size in bytes")
	cmd.Flags().IntVar(&maxThreads, "max-threads", 0, "Override thread slot count")
}

// resolveConfig builds the allocator configuration from flags.
func resolveConfig() (alloc.Config, error) {
	var cfg alloc.Config
	switch strings.ToLower(configName) {
	case "", "default":
		cfg = alloc.DefaultConfig
	case "wide":
		cfg = alloc.ConfigWide
	case "large-chunk", "largechunk":
		cfg = alloc.ConfigLargeChunk
	default:
		return alloc.Config{}, fmt.Errorf("unknown config preset %q", configName)
	}
	if chunkSize > 0 {
		cfg.ChunkSize = chunkSize
		cfg.Name = ""
	}
	if maxThreads > 0 {
		cfg.MaxThreads = maxThreads
		cfg.Name = ""
	}
	if logDir != "" {
		cfg.Logger = logger.L
	}
	if err := cfg.Validate(); err != nil {
		return alloc.Config{}, err
	}
	return cfg, nil
}
