package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShowsUsageOnHelp(t *testing.T) {
	var out bytes.Buffer

	err := run(&out, []string{"-h"})

	require.NoError(t, err, "help should exit cleanly")
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ShowsUsageWithoutGridPath(t *testing.T) {
	var out bytes.Buffer

	err := run(&out, nil)

	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_RejectsInvalidLogLevel(t *testing.T) {
	var out bytes.Buffer

	err := run(&out, []string{"-log-level", "loud", "main.hcl"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log-level")
}

func TestRun_RecoversStartupPanic(t *testing.T) {
	tmpDir := t.TempDir()
	gridPath := filepath.Join(tmpDir, "main.hcl")
	require.NoError(t, os.WriteFile(gridPath, []byte(`step "probe" "A" { arguments {`), 0o644))

	var out bytes.Buffer
	err := run(&out, []string{"-modules-path", tmpDir, gridPath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "application startup panicked")
}
