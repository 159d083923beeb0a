package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironment(t *testing.T) {
	sys := []string{"PATH=/usr/bin", "HOME=/home/dev", "MALFORMED"}
	got := resolveEnvironment(sys, map[string]string{
		"HOME":           "/tmp",
		"RUST_BACKTRACE": "1",
	})

	assert.Equal(t, []string{
		"HOME=/tmp",
		"PATH=/usr/bin",
		"RUST_BACKTRACE=1",
	}, got)
	assert.Equal(t, "HOME=/home/dev", sys[1], "input slice is not modified")
}

func TestResolveEnvironment_NoOverrides(t *testing.T) {
	got := resolveEnvironment([]string{"B=2", "A=1"}, nil)
	assert.Equal(t, []string{"A=1", "B=2"}, got)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o700)) //nolint:gosec // test script
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600))

	env := []string{"PATH=" + dir}

	got, err := lookPath("tool", env)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = lookPath("data", env)
	require.Error(t, err)

	_, err = lookPath("tool", []string{"HOME=/"})
	require.Error(t, err)
}
