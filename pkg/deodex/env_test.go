package deodex

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyJAR(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "baksmali.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := zip.NewWriter(f)
	entry, err := w.Create("META-INF/MANIFEST.MF")
	require.NoError(t, err)
	_, err = entry.Write([]byte("Main-Class: tool"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

// TestHostEnvChecker_AllGood wires fake seams that report a healthy host.
func TestHostEnvChecker_AllGood(t *testing.T) {
	c := NewHostEnvChecker("java", dummyJAR(t), nil)
	c.lookPath = func(name string) (string, error) { return "/usr/bin/java", nil }
	c.runner = func(ctx context.Context, name string, args ...string) error { return nil }

	assert.NoError(t, c.Check(context.Background()))
}

// TestHostEnvChecker_JavaMissing verifies the sentinel chain when java is
// not on PATH.
func TestHostEnvChecker_JavaMissing(t *testing.T) {
	c := NewHostEnvChecker("java", dummyJAR(t), nil)
	c.lookPath = func(name string) (string, error) { return "", errors.New("not found") }

	err := c.Check(context.Background())
	assert.ErrorIs(t, err, ErrEnvironment)
	assert.ErrorIs(t, err, ErrJavaNotFound)
}

// TestHostEnvChecker_JavaBroken verifies a resolvable but non-runnable
// runtime is rejected.
func TestHostEnvChecker_JavaBroken(t *testing.T) {
	c := NewHostEnvChecker("java", dummyJAR(t), nil)
	c.lookPath = func(name string) (string, error) { return "/usr/bin/java", nil }
	c.runner = func(ctx context.Context, name string, args ...string) error { return errors.New("exec format error") }

	err := c.Check(context.Background())
	assert.ErrorIs(t, err, ErrEnvironment)
	assert.ErrorIs(t, err, ErrJavaNotFound)
}

// TestHostEnvChecker_ToolMissing verifies the tool JAR checks run after the
// runtime checks and wrap their sentinels.
func TestHostEnvChecker_ToolMissing(t *testing.T) {
	c := NewHostEnvChecker("java", filepath.Join(t.TempDir(), "ghost.jar"), nil)
	c.lookPath = func(name string) (string, error) { return "/usr/bin/java", nil }
	c.runner = func(ctx context.Context, name string, args ...string) error { return nil }

	err := c.Check(context.Background())
	assert.ErrorIs(t, err, ErrEnvironment)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

// TestHostEnvChecker_ToolNotAnArchive verifies a present but unreadable
// JAR is rejected.
func TestHostEnvChecker_ToolNotAnArchive(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.jar")
	require.NoError(t, os.WriteFile(bogus, []byte("plain text"), 0o644))

	c := NewHostEnvChecker("java", bogus, nil)
	c.lookPath = func(name string) (string, error) { return "/usr/bin/java", nil }
	c.runner = func(ctx context.Context, name string, args ...string) error { return nil }

	err := c.Check(context.Background())
	assert.ErrorIs(t, err, ErrEnvironment)
	assert.ErrorIs(t, err, ErrToolInvalid)
}
