package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	out := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--spec", "../../testdata/entities.yaml", "--out", out, "--header", "Generated.", "--workers", "1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	b, err := os.ReadFile(filepath.Join(out, "person.go"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "// Generated.")

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--spec", "missing.yaml", "--out", out})
	assert.Error(t, cmd.ExecuteContext(context.Background()))

	cmd = newRootCmd()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
