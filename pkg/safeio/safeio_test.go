package safeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanUserPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain file", input: "file.txt", want: "file.txt"},
		{name: "relative subdir", input: "./out/env", want: "out/env"},
		{name: "absolute", input: "/tmp/out", want: "/tmp/out"},
		{name: "current dir", input: ".", want: "."},
		{name: "empty", input: "", want: "."},
		{name: "dots in name", input: "file.with.dots.txt", want: "file.with.dots.txt"},
		{name: "parent", input: "..", wantErr: true},
		{name: "leading traversal", input: "../../etc/passwd", wantErr: true},
		{name: "embedded traversal", input: "out/../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanUserPath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFileContained(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	inside := filepath.Join(sub, "devcontainer.json")
	require.NoError(t, os.WriteFile(inside, []byte("contained"), 0o644))

	outside := filepath.Join(t.TempDir(), "outside.json")
	require.NoError(t, os.WriteFile(outside, []byte("escaped"), 0o644))

	data, err := ReadFileContained(root, inside)
	require.NoError(t, err)
	assert.Equal(t, "contained", string(data))

	_, err = ReadFileContained(root, outside)
	assert.Error(t, err)

	_, err = ReadFileContained(sub, filepath.Join(sub, "..", "..", "outside.json"))
	assert.Error(t, err)

	_, err = ReadFileContained(root, filepath.Join(root, "missing.json"))
	assert.Error(t, err)
}

func TestWriteFilePreservePermsNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.txt")
	require.NoError(t, WriteFilePreservePerms(path, []byte("rendered")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), st.Mode().Perm())
}

func TestWriteFilePreservePermsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.sh")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o755))

	require.NoError(t, WriteFilePreservePerms(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), st.Mode().Perm())
}

func TestWriteFilePreservePermsMissingDir(t *testing.T) {
	err := WriteFilePreservePerms(filepath.Join(t.TempDir(), "no", "such", "dir", "f"), []byte("x"))
	assert.Error(t, err)
}
