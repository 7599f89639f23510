package mainwindow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-plotter/internal/app"
	"curve-plotter/internal/cache"
	"curve-plotter/internal/opener"
)

func newTestWindow(t *testing.T, rec cache.Record) (*MainWindow, *app.State) {
	t.Helper()
	store := cache.NewMemory(filepath.Join(t.TempDir(), "app_cache.json"), rec)
	state := app.NewState(store, app.Config{})
	mw := New(test.NewApp(), state, opener.Func(func(string) error { return nil }))
	t.Cleanup(mw.Close)
	return mw, state
}

func csvDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("Time,0\n0,1\n5e-06,2\n"), 0o644))
	}
	return dir
}

func TestCatalogPopulatesFileList(t *testing.T) {
	mw, state := newTestWindow(t, cache.Record{})
	dir := csvDir(t, "b.csv", "a.csv")

	require.NoError(t, state.LoadCatalog(dir))
	assert.Equal(t, []string{"a.csv", "b.csv"}, mw.fileList.Options)
	assert.Equal(t, dir, mw.csvDirLabel.Text)

	mw.onFilesChecked([]string{"b.csv"})
	assert.Equal(t, []int{1}, state.Selected())
	assert.Equal(t, []string{"b.csv"}, mw.fileList.Selected)
	assert.Equal(t, "Files selected: 1 of 2 files selected", mw.statusBar.Text)

	mw.selectMode.SetSelected(selectAllFiles)
	assert.Equal(t, []int{0, 1}, state.Selected())
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, mw.fileList.Selected)
}

func TestPlotModeRadio(t *testing.T) {
	mw, state := newTestWindow(t, cache.Record{})
	assert.Equal(t, app.PlotSeparate, state.PlotMode())
	mw.plotMode.SetSelected(plotModeCombined)
	assert.Equal(t, app.PlotCombined, state.PlotMode())
}

func TestSaveDirLabel(t *testing.T) {
	mw, state := newTestWindow(t, cache.Record{SaveDir: "/tmp/plots"})
	assert.Equal(t, "Save path: /tmp/plots", mw.saveDirLabel.Text)

	dir := t.TempDir()
	require.NoError(t, state.SetSaveDir(dir))
	assert.Equal(t, "Save path: "+dir, mw.saveDirLabel.Text)
}

func TestPlotFillsGallery(t *testing.T) {
	out := t.TempDir()
	mw, state := newTestWindow(t, cache.Record{SaveDir: out})
	require.NoError(t, state.LoadCatalog(csvDir(t, "a.csv", "b.csv")))
	mw.selectMode.SetSelected(selectAllFiles)

	mw.onPlot()

	assert.Eventually(t, func() bool {
		return mw.gallery.Len() == 2 && state.Phase() == app.PhaseFilesSelected && !mw.plotBtn.Disabled()
	}, 10*time.Second, 20*time.Millisecond)
	assert.NotNil(t, mw.Canvas().Overlays().Top(), "completion is reported in a dialog")
	assert.FileExists(t, filepath.Join(out, "a.png"))
}

func TestUnchangedSelectionIsNotResent(t *testing.T) {
	mw, state := newTestWindow(t, cache.Record{})
	require.NoError(t, state.LoadCatalog(csvDir(t, "a.csv", "b.csv")))
	require.NoError(t, state.SetSelected([]int{0, 1}))

	changes := 0
	state.On(app.EventSelectionChanged, func(interface{}) { changes++ })

	mw.onFilesChecked([]string{"b.csv", "a.csv"})
	assert.Equal(t, 0, changes)

	mw.onFilesChecked([]string{"a.csv"})
	assert.Equal(t, 1, changes)
	assert.Equal(t, []int{0}, state.Selected())
}

func TestEmptyAllFilesPlotClearsGallery(t *testing.T) {
	out := t.TempDir()
	mw, state := newTestWindow(t, cache.Record{SaveDir: out})
	require.NoError(t, state.LoadCatalog(csvDir(t, "a.csv")))
	mw.selectMode.SetSelected(selectAllFiles)
	_, err := state.Plot()
	require.NoError(t, err)
	require.Equal(t, 1, mw.gallery.Len())

	require.NoError(t, state.LoadCatalog(t.TempDir()))
	images, err := state.Plot()
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, 0, mw.gallery.Len())
}

func TestSameSelection(t *testing.T) {
	assert.True(t, sameSelection(nil, []string{}))
	assert.True(t, sameSelection([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, sameSelection([]string{"a"}, []string{"b"}))
	assert.False(t, sameSelection([]string{"a"}, nil))
}
