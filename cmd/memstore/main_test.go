/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "memstore version")
	assert.Contains(t, out, "Go version:")
}

func TestDemoCommand(t *testing.T) {
	out, err := run(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "All people:")
	assert.Contains(t, out, "Oldest three:")
	assert.Contains(t, out, "Count: 5 (3 over 40)")
}

func TestDemoAndDestroyRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "memstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: redis\nredis:\n  addr: "+mr.Addr()+"\n"), 0o600))

	_, err := run(t, "demo", "--config", path, "--keep")
	require.NoError(t, err)
	assert.True(t, mr.Exists("memstore:people"))

	out, err := run(t, "destroy", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Destroyed 2 caches on the redis backend")
	assert.False(t, mr.Exists("memstore:people"))
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: nowhere\n"), 0o600))

	_, err := run(t, "demo", "--config", path)
	assert.ErrorContains(t, err, "unknown backend")
}
