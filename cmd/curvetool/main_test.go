package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/catalog"
	"curve-plotter/internal/matfile"
	"curve-plotter/internal/render"
)

func TestSynthesize(t *testing.T) {
	vars := synthesize(synthOptions{Vars: 3, Channels: 2, Samples: 50, Rate: 200000})
	require.Len(t, vars, 4)
	assert.Equal(t, "ch1", vars[0].Name)
	assert.Equal(t, "__version__", vars[3].Name)
	r, c := vars[2].Data.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.0, vars[0].Data.At(0, 0), "sine starts at zero")
}

func TestSynthConvertPlot(t *testing.T) {
	dir := t.TempDir()
	matPath := filepath.Join(dir, "capture.mat")
	var out bytes.Buffer

	require.NoError(t, runSynth(&out, matPath, synthOptions{Vars: 2, Channels: 3, Samples: 100, Rate: 200000, Compress: true}))
	f, err := matfile.Open(matPath)
	require.NoError(t, err)
	assert.Len(t, f.Variables, 3)

	csvDir := filepath.Join(dir, "csv")
	require.NoError(t, runConvert(&out, matPath, csvDir, 200000))
	files, err := catalog.List(csvDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ch1.csv", "ch2.csv"}, files)

	imgDir := filepath.Join(dir, "img")
	paths := []string{filepath.Join(csvDir, "ch1.csv"), filepath.Join(csvDir, "ch2.csv")}
	require.NoError(t, runPlot(&out, paths, imgDir, false))
	assert.FileExists(t, filepath.Join(imgDir, "ch1.png"))
	assert.FileExists(t, filepath.Join(imgDir, "ch2.png"))

	require.NoError(t, runPlot(&out, paths, imgDir, true))
	assert.FileExists(t, filepath.Join(imgDir, render.CombinedFileName))
	assert.Contains(t, out.String(), "Converted 2 variables")
}

func TestConvertDefaultOutputDir(t *testing.T) {
	dir := t.TempDir()
	matPath := filepath.Join(dir, "capture.mat")
	require.NoError(t, runSynth(&bytes.Buffer{}, matPath, synthOptions{Vars: 1, Channels: 1, Samples: 5, Rate: 1000}))

	require.NoError(t, runConvert(&bytes.Buffer{}, matPath, "", 0))
	assert.FileExists(t, filepath.Join(dir, "csv_output", "ch1.csv"))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, runSynth(&bytes.Buffer{}, filepath.Join(dir, "x.mat"), synthOptions{Rate: 1}))
	assert.Error(t, runSynth(&bytes.Buffer{}, filepath.Join(dir, "x.mat"), synthOptions{Vars: 1, Channels: 1, Samples: 1}))

	err := runPlot(&bytes.Buffer{}, []string{filepath.Join(dir, "a.csv")}, "", false)
	assert.ErrorIs(t, err, apperr.ErrNoDestination)

	bad := filepath.Join(dir, "bad.mat")
	require.NoError(t, os.WriteFile(bad, []byte("MATLAB"), 0o644))
	err = runConvert(&bytes.Buffer{}, bad, filepath.Join(dir, "out"), 0)
	assert.True(t, apperr.Is(err, apperr.KindParse))
}

func TestRootCommandSynthAndConvert(t *testing.T) {
	dir := t.TempDir()
	matPath := filepath.Join(dir, "cli.mat")
	csvDir := filepath.Join(dir, "csv")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"synth", matPath, "--vars", "1", "--samples", "10"})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"convert", matPath, "--out", csvDir, "--rate", "1000"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(filepath.Join(csvDir, "ch1.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n0.001,")

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "curvetool v")
}
