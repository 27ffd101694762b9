package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	quiet = false
	verbose = false
	jsonOut = false
	configName = "default"
	chunkSize = 0
	maxThreads = 0
	logDir = ""
}

// captureOutput collects everything written to out while running fn
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := out
	var buf bytes.Buffer
	out = &buf
	defer func() { out = orig }()

	fnErr := fn()
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
