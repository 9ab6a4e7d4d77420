package fileupdate

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/d-buckner/apppack/internal/resources"
)

func newTestUpdater() *Updater {
	return NewUpdater(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestApply_CopiesThenSkipsUnchanged(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(src, "res", "icon.png"), "icon-bytes")

	mapping := resources.Mapping{"images/StoreLogo.png": "res/icon.png"}
	u := newTestUpdater()

	stats, err := u.Apply(src, dest, mapping)
	require.NoError(t, err)
	assert.Equal(t, Stats{Copied: 1}, stats)

	got, err := os.ReadFile(filepath.Join(dest, "images", "StoreLogo.png"))
	require.NoError(t, err)
	assert.Equal(t, "icon-bytes", string(got))

	stats, err = u.Apply(src, dest, mapping)
	require.NoError(t, err)
	assert.Equal(t, Stats{Unchanged: 1}, stats)
}

func TestApply_OverwritesChangedContent(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFile(t, filepath.Join(src, "a.png"), "new-bytes!")
	writeFile(t, filepath.Join(dest, "images", "a.png"), "old-bytes!")

	stats, err := newTestUpdater().Apply(src, dest, resources.Mapping{"images/a.png": "a.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Copied)

	got, err := os.ReadFile(filepath.Join(dest, "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "new-bytes!", string(got))
}

func TestApply_DeleteToleratesMissing(t *testing.T) {
	dest := t.TempDir()
	writeFile(t, filepath.Join(dest, "images", "present.png"), "x")

	stats, err := newTestUpdater().Apply(t.TempDir(), dest, resources.Mapping{
		"images/present.png": "",
		"images/absent.png":  "",
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Deleted: 1}, stats)

	_, err = os.Stat(filepath.Join(dest, "images", "present.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_MissingSource(t *testing.T) {
	_, err := newTestUpdater().Apply(t.TempDir(), t.TempDir(), resources.Mapping{"images/a.png": "missing.png"})
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "same")
	writeFile(t, filepath.Join(dir, "b"), "same")
	writeFile(t, filepath.Join(dir, "c"), "diff")

	a, err := Checksum(filepath.Join(dir, "a"))
	require.NoError(t, err)
	b, err := Checksum(filepath.Join(dir, "b"))
	require.NoError(t, err)
	c, err := Checksum(filepath.Join(dir, "c"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
