package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "cradle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "0.1"
name: demo
docker:
  image: ubuntu:latest
`), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cradle")
	assert.Contains(t, out, "schema 0.1")
}

func TestValidateCommand(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	out, err := runCommand(t, "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (schema 0.1)")
	assert.Contains(t, out, "demo")
}

func TestValidateCommandMissingConfig(t *testing.T) {
	_, err := runCommand(t, "validate", "--config", filepath.Join(t.TempDir(), "cradle.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cradle.yaml")

	out, err := runCommand(t, "init", "starter", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `Created`)
	assert.FileExists(t, cfg)

	// Refuses to clobber without --force.
	_, err = runCommand(t, "init", "starter", "--config", cfg)
	require.Error(t, err)

	initForce = false
	_, err = runCommand(t, "init", "other", "--config", cfg, "--force")
	require.NoError(t, err)
}

func TestSyncDryRunAndApply(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := runCommand(t, "sync", "--dry-run", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Would create")
	assert.NoFileExists(t, filepath.Join(dir, ".devcontainer", "devcontainer.json"))

	syncDryRun = false
	out, err = runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	assert.FileExists(t, filepath.Join(dir, ".devcontainer", "devcontainer.json"))
	assert.FileExists(t, filepath.Join(dir, "project", "README.md"))
	assert.DirExists(t, filepath.Join(dir, "project", ".git"))
	assert.DirExists(t, filepath.Join(dir, ".devcontainer", ".git"))
}

func TestSyncRejectsTraversalOutput(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	syncDryRun = false
	_, err := runCommand(t, "sync", "--config", cfg, "--output", "../escape")
	syncOutput = "."
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
}

func TestSyncKeepOrphansSetting(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	syncDryRun = false
	_, err := runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)

	stray := filepath.Join(dir, ".devcontainer", "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("leftover\n"), 0o644))

	out, err := runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "stray.txt")

	t.Setenv("CRADLE_GENERATOR_KEEP_ORPHANS", "true")
	out, err = runCommand(t, "sync", "--config", cfg, "--output", dir, "--force")
	syncForce = false
	require.NoError(t, err)
	assert.NotContains(t, out, "stray.txt")
	assert.FileExists(t, stray)
}

func TestSyncInstallRootSetting(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0o755))
	feature := filepath.Join(root, "core", "features", "assistant")
	require.NoError(t, os.MkdirAll(feature, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(feature, "install.sh"), []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("CRADLE_GENERATOR_INSTALL_ROOT", root)
	syncDryRun = false
	_, err := runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".devcontainer", "features", "assistant", "install.sh"))
}

func TestDiffCommandCleanTree(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	syncDryRun = false
	_, err := runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)

	out, err := runCommand(t, "diff", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No drift")
}

func TestDiffCommandReportsDrift(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	syncDryRun = false
	_, err := runCommand(t, "sync", "--config", cfg, "--output", dir)
	require.NoError(t, err)

	dockerfile := filepath.Join(dir, ".devcontainer", "Dockerfile")
	require.NoError(t, os.WriteFile(dockerfile, []byte("FROM scratch\n"), 0o644))

	out, err := runCommand(t, "diff", "--config", cfg, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, ".devcontainer/Dockerfile")
	assert.Contains(t, out, "modified")
}

func TestDiffCommandUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	_, err := runCommand(t, "diff", "--config", cfg, "--output", dir, "--format", "xml")
	require.Error(t, err)
	diffFormat = "text"
}

func TestExitCodeMapping(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "cradle.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"0.1\"\nname: \"\"\ndocker:\n  image: x\n"), 0o644))

	_, err := runCommand(t, "validate", "--config", bad)
	require.Error(t, err)
	assert.Equal(t, 3, exitCodeFor(err))

	require.NoError(t, os.WriteFile(bad, []byte("version: \"9.9\"\nname: x\n"), 0o644))
	_, err = runCommand(t, "validate", "--config", bad)
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeFor(err))
}
