package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-plotter/internal/apperr"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("Time,0\n"), 0o644))
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ch2.csv", "Ch1.csv", "ch10.csv", "notes.txt", "upper.CSV", "ch1.csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.csv"), 0o755))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ch1.csv", "ch1.csv", "ch10.csv", "ch2.csv"}, names)
}

func TestListFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	touch(t, other, "real.csv")
	require.NoError(t, os.Mkdir(filepath.Join(other, "sub"), 0o755))

	if err := os.Symlink(filepath.Join(other, "real.csv"), filepath.Join(dir, "linked.csv")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(other, "sub"), filepath.Join(dir, "subdir.csv")))
	require.NoError(t, os.Symlink(filepath.Join(other, "gone.csv"), filepath.Join(dir, "dangling.csv")))
	touch(t, dir, "plain.csv")

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"linked.csv", "plain.csv"}, names)
}

func TestListEmptyAndMissing(t *testing.T) {
	names, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = List(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, apperr.Is(err, apperr.KindIO))
}

func TestSelection(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv", "b.csv", "c.csv")
	c, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())
	assert.Empty(t, c.Selected())

	require.NoError(t, c.Select(2))
	require.NoError(t, c.Select(0))
	assert.Equal(t, []int{0, 2}, c.Selected())
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "c.csv")}, c.SelectedPaths())

	assert.True(t, c.IsSelected(2))
	assert.False(t, c.IsSelected(1))

	c.SelectAll()
	assert.Equal(t, []int{0, 1, 2}, c.Selected())

	c.Clear()
	assert.Empty(t, c.Selected())
}

func TestSetSelectedIsAllOrNothing(t *testing.T) {
	c := New("/data", []string{"a.csv", "b.csv"})
	require.NoError(t, c.SetSelected([]int{1}))

	err := c.SetSelected([]int{0, 5})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, []int{1}, c.Selected())

	assert.Error(t, c.Select(-1))
	assert.Error(t, c.Select(2))
}

func TestIndexAndPaths(t *testing.T) {
	c := New("/data", []string{"a.csv", "b.csv"})
	assert.Equal(t, 1, c.Index("b.csv"))
	assert.Equal(t, -1, c.Index("z.csv"))
	assert.Equal(t, []string{filepath.Join("/data", "a.csv"), filepath.Join("/data", "b.csv")}, c.Paths())
	assert.Equal(t, "/data", c.Dir())
}
