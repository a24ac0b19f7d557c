package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile creates a file with the given content, ensuring parent
// directories exist. It uses require assertions for test setup.
func CreateDummyFile(t *testing.T, path string, content []byte) {
	t.Helper()
	fullPath := filepath.Clean(path)
	err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
	require.NoError(t, err, "Failed to create directory for dummy file %s", fullPath)
	err = os.WriteFile(fullPath, content, 0o644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// CreateDummyOdex writes a file carrying the odex magic header padded to
// size bytes, so it passes structural validation.
func CreateDummyOdex(t *testing.T, path string, size int) {
	t.Helper()
	if size < 8 {
		size = 8
	}
	content := make([]byte, size)
	copy(content, []byte("dey\n036\x00"))
	CreateDummyFile(t, path, content)
}

// CreateDummyDir ensures a directory exists at the given path, creating
// parents if needed.
func CreateDummyDir(t *testing.T, path string) {
	t.Helper()
	err := os.MkdirAll(filepath.Clean(path), 0o755)
	require.NoError(t, err, "Failed to create dummy directory %s", path)
}

// CreateFakeJava writes an executable shell script that mimics the java
// binary: it exits with the given code after printing stderrText to stderr.
// Returns the script path. Tests calling this only run on unix-like hosts.
func CreateFakeJava(t *testing.T, dir string, exitCode int, stderrText string) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if stderrText != "" {
		script += "echo \"" + stderrText + "\" >&2\n"
	}
	script += "exit " + strconv.Itoa(exitCode) + "\n"
	path := filepath.Join(dir, "fakejava")
	err := os.WriteFile(path, []byte(script), 0o755)
	require.NoError(t, err, "Failed to write fake java script")
	return path
}
