package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sandbox(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "localhost", "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "localhost", "assets", "logo.png"), []byte("12345"), 0o644))
	return root
}

func TestResolveCommand(t *testing.T) {
	root := sandbox(t)

	out, err := runCmd(t, "resolve", "res://localhost/assets/logo.png", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "200 image/png 5\n", out)
}

func TestResolveCommandNotFound(t *testing.T) {
	root := sandbox(t)

	out, err := runCmd(t, "resolve", "res://localhost/../../etc/passwd", "--root", root)
	require.Error(t, err)
	assert.Contains(t, out, "404 text/plain")
}

func TestResolveCommandFromConfigFile(t *testing.T) {
	root := sandbox(t)
	cfgPath := filepath.Join(t.TempDir(), "bridge.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[resources]\nroot = \""+filepath.ToSlash(root)+"\"\n\n[resources.mime_overrides]\npng = \"image/x-test\"\n"), 0o644))

	out, err := runCmd(t, "resolve", "res://localhost/assets/logo.png", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "200 image/x-test 5\n", out)
}

func TestResolveCommandArgs(t *testing.T) {
	_, err := runCmd(t, "resolve")
	assert.Error(t, err)

	_, err = runCmd(t, "resolve", "res://localhost/x", "--root", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestServeRejectsArgs(t *testing.T) {
	_, err := runCmd(t, "serve", "extra")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	root := sandbox(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "localhost", "index.html"), []byte("<p>hi</p>"), 0o644))

	out, err := runCmd(t, "list", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "res:///localhost/assets/logo.png\nres:///localhost/index.html\n", out)
}
