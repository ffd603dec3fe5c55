package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/markgen/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file_b.yaml"), "b: 1")
	writeFile(t, filepath.Join(dir, "file_a.yaml"), "a: 1")
	writeFile(t, filepath.Join(dir, "B_upper.json"), "{}")
	writeFile(t, filepath.Join(dir, ".hidden.yaml"), "h: 1")
	writeFile(t, filepath.Join(dir, "nested", "deep.yaml"), "d: 1")

	entries, err := ListFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"B_upper.json", "file_a.yaml", "file_b.yaml"}, names, "raw byte order, files only")
	assert.Equal(t, "file_a", entries[1].Stem)
	assert.Equal(t, filepath.Join(dir, "file_a.yaml"), entries[1].Path)
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := ListFiles(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListFilesIgnoreRules(t *testing.T) {
	t.Run("ignore file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "file_a.yaml"), "a: 1")
		writeFile(t, filepath.Join(dir, "file_b.yaml"), "b: 1")
		writeFile(t, filepath.Join(dir, "file_a.yaml~"), "a: 0")
		writeFile(t, filepath.Join(dir, IgnoreFile), "# backups\nfile_b.yaml\n*~\n")

		assert.Equal(t, []string{"file_a.yaml"}, names(t, dir))
	})

	t.Run("gitignore outside a work tree", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "file_a.yaml"), "a: 1")
		writeFile(t, filepath.Join(dir, GitIgnoreFile), "file_a.yaml\n")

		assert.Equal(t, []string{"file_a.yaml"}, names(t, dir))
	})

	t.Run("gitignore in parent of work tree", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git", "info"), 0o755))
		writeFile(t, filepath.Join(repo, GitIgnoreFile), "data/*.bak\n")
		writeFile(t, filepath.Join(repo, ".git", "info", "exclude"), "local.json\n")
		dir := filepath.Join(repo, "data")
		writeFile(t, filepath.Join(dir, "one.json"), "{}")
		writeFile(t, filepath.Join(dir, "one.bak"), "{}")
		writeFile(t, filepath.Join(dir, "local.json"), "{}")

		assert.Equal(t, []string{"one.json"}, names(t, dir))
	})

	t.Run("ignore file overrides gitignore", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
		writeFile(t, filepath.Join(repo, "a.json"), "{}")
		writeFile(t, filepath.Join(repo, "b.json"), "{}")
		writeFile(t, filepath.Join(repo, GitIgnoreFile), "*.json\n")
		writeFile(t, filepath.Join(repo, IgnoreFile), "!a.json\n")

		assert.Equal(t, []string{"a.json"}, names(t, repo))
	})
}

func TestListFilesMissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "", errors.Kind(err))
}

func TestEnsureDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "a", "b", "out.rs")

	require.NoError(t, EnsureDestination(dest, false))
	_, err := os.Stat(filepath.Dir(dest))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, EnsureDestination(dest, true))
	info, err := os.Stat(filepath.Dir(dest))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteOnlyIfChanged(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.rs")

	written, err := Write(dest, []byte("one"), true)
	require.NoError(t, err)
	assert.True(t, written)

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(dest, old, old))

	written, err = Write(dest, []byte("one"), true)
	require.NoError(t, err)
	assert.False(t, written)
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged file keeps its mtime")

	written, err = Write(dest, []byte("one"), false)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = Write(dest, []byte("two"), true)
	require.NoError(t, err)
	assert.True(t, written)
	got, _ := os.ReadFile(dest)
	assert.Equal(t, "two", string(got))
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.rs")

	cmp, err := Compare(dest, []byte("a\n"))
	require.NoError(t, err)
	assert.Equal(t, Missing, cmp.Status)

	writeFile(t, dest, "line 1\nline 2\nline 3\n")

	cmp, err = Compare(dest, []byte("line 1\nline 2\nline 3\n"))
	require.NoError(t, err)
	assert.Equal(t, UpToDate, cmp.Status)

	cmp, err = Compare(dest, []byte("line 1\nchanged\nline 3\n"))
	require.NoError(t, err)
	assert.Equal(t, OutOfDate, cmp.Status)
	assert.Equal(t, 2, cmp.Line)

	cmp, err = Compare(dest, []byte("line 1\nline 2\nline 3\nline 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cmp.Line)

	assert.Equal(t, "out of date", OutOfDate.String())
}
