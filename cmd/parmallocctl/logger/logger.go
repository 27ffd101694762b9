// Package logger routes allocator events to a daily JSON log file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is handed to alloc.Config.Logger. It discards everything until Init
// enables file output.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "parmallocctl-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 14
)

// Options configures the logger.
type Options struct {
	Dir   string // Directory for log files; empty disables logging
	Level string // debug, info, warn or error; default debug
}

// Init points L at today's log file under opts.Dir. The returned closer
// flushes and closes the file; it is never nil.
func Init(opts Options) (io.Closer, error) {
	if opts.Dir == "" {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return io.NopCloser(nil), nil
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return io.NopCloser(nil), err
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return io.NopCloser(nil), fmt.Errorf("create log dir: %w", err)
	}
	pruneOld(opts.Dir, time.Now())

	name := filepath.Join(opts.Dir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}

	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return f, nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// pruneOld removes log files older than retentionDays. Errors are ignored.
func pruneOld(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		day, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
