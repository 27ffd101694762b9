package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/parmalloc/internal/format"
)

// Runtime debug flag for allocation logging - controlled by PARMALLOC_LOG_ALLOC env var.
var logAlloc = os.Getenv("PARMALLOC_LOG_ALLOC") != ""

const (
	// maxThreadsLimit bounds Config.MaxThreads; slot scans are linear.
	maxThreadsLimit = 4096

	// minChunkSize keeps a chunk large enough to be split a few times.
	minChunkSize = 4 * format.MinCellSize
)

// Config defines the allocator's static capacity limits.
type Config struct {
	// Name for this configuration (for logging and benchmarks)
	Name string

	// ChunkSize is the unit of OS acquisition. Requests whose cell size reaches
	// it bypass the free lists and get a dedicated mapping.
	ChunkSize int

	// MaxThreads is the number of thread slots. A thread claims a slot on its
	// first allocation and never gives it back.
	MaxThreads int

	// Source supplies raw memory. Nil means the OS (anonymous mmap).
	Source ChunkSource

	// Logger receives allocator events. Nil means discard, unless
	// PARMALLOC_LOG_ALLOC is set, in which case events go to stderr.
	Logger *slog.Logger
}

// Predefined configurations.
var (
	// DefaultConfig matches the classic layout: 64 KiB chunks, 64 threads.
	DefaultConfig = Config{
		Name:       "Default",
		ChunkSize:  format.DefaultChunkSize,
		MaxThreads: 64,
	}

	// ConfigWide allows many more threads for goroutine-heavy programs.
	ConfigWide = Config{
		Name:       "Wide",
		ChunkSize:  format.DefaultChunkSize,
		MaxThreads: 1024,
	}

	// ConfigLargeChunk trades memory for fewer OS calls.
	ConfigLargeChunk = Config{
		Name:       "LargeChunk",
		ChunkSize:  1 << 20,
		MaxThreads: 64,
	}
)

// Validate reports whether the configuration can be used.
func (c *Config) Validate() error {
	if c.ChunkSize < minChunkSize {
		return fmt.Errorf("%w: chunk size %d below minimum %d", ErrBadConfig, c.ChunkSize, minChunkSize)
	}
	if !format.Aligned(c.ChunkSize) {
		return fmt.Errorf("%w: chunk size %d not a multiple of %d", ErrBadConfig, c.ChunkSize, format.Alignment)
	}
	if c.MaxThreads <= 0 || c.MaxThreads > maxThreadsLimit {
		return fmt.Errorf("%w: max threads %d outside [1, %d]", ErrBadConfig, c.MaxThreads, maxThreadsLimit)
	}
	return nil
}

// String returns the configuration name.
func (c *Config) String() string {
	if c.Name == "" {
		return fmt.Sprintf("chunk=%d threads=%d", c.ChunkSize, c.MaxThreads)
	}
	return c.Name
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
