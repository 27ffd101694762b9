package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/parmalloc/cmd/parmallocctl/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	logDir   string
	logLevel string
	logFile  io.Closer = io.NopCloser(nil)

	// out is where command output goes; tests swap it.
	out io.Writer = os.Stdout

	numbers = message.NewPrinter(language.English)
)

var rootCmd = &cobra.Command{
	Use:   "parmallocctl",
	Short: "Exercise and inspect the parmalloc allocator",
	Long: `parmallocctl drives the thread-aware off-heap allocator from the command
line. It can run concurrent stress workloads with payload verification, replay
the reference reuse scenario, and print the allocator's layout constants.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := logger.Init(logger.Options{Dir: logDir, Level: logLevel})
		if err != nil {
			return err
		}
		logFile = c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logFile.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Write allocator events to a daily log file in this directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug", "Allocator log level (debug, info, warn, error)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatNumber renders n with thousands separators.
func formatNumber(n int64) string {
	return numbers.Sprintf("%d", n)
}
