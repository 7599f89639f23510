package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/convert"
	"curve-plotter/internal/csvtable"
	"curve-plotter/internal/matfile"
)

func writeCSVs(t *testing.T, dir string, n int) []string {
	t.Helper()
	var paths []string
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "ch"+string(rune('a'+i))+".csv")
		content := "Time,0,1\n0,1,2\n5e-06,2,1\n1e-05,,3\n1.5e-05,4,0\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func listPNGs(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestRenderSeparateWritesOneImagePerFile(t *testing.T) {
	paths := writeCSVs(t, t.TempDir(), 3)
	out := filepath.Join(t.TempDir(), "plots")

	var progress []Progress
	images, err := New().RenderSeparate(paths, out, func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"cha.png", "chb.png", "chc.png"}, listPNGs(t, out))
	require.Len(t, images, 3)
	require.Len(t, progress, 3)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Done)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, images[i], p.Path)
	}

	f, err := os.Open(images[0])
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 576, cfg.Height)
}

func TestRenderCombinedWritesSingleImage(t *testing.T) {
	paths := writeCSVs(t, t.TempDir(), 4)
	out := t.TempDir()

	img, err := New().RenderCombinedFiles(paths, out)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, CombinedFileName), img)
	assert.Equal(t, []string{CombinedFileName}, listPNGs(t, out))
}

func TestRenderValidatesBeforeWork(t *testing.T) {
	paths := writeCSVs(t, t.TempDir(), 1)
	r := New()

	_, err := r.RenderSeparate(nil, t.TempDir(), nil)
	assert.ErrorIs(t, err, apperr.ErrNoFilesSelected)

	_, err = r.RenderSeparate(paths, "", nil)
	assert.ErrorIs(t, err, apperr.ErrNoDestination)

	_, err = r.RenderCombinedFiles(paths, "")
	assert.ErrorIs(t, err, apperr.ErrNoDestination)

	_, err = r.RenderCombined(nil, t.TempDir())
	assert.ErrorIs(t, err, apperr.ErrNoFilesSelected)
}

func TestRenderSeparateStopsOnSchemaError(t *testing.T) {
	dir := t.TempDir()
	paths := writeCSVs(t, dir, 1)
	bad := filepath.Join(dir, "zz.csv")
	require.NoError(t, os.WriteFile(bad, []byte("t,0\n0,1\n"), 0o644))
	out := t.TempDir()

	images, err := New().RenderSeparate(append(paths, bad), out, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSchema))
	assert.Len(t, images, 1, "images before the failure remain")
	assert.Equal(t, []string{"cha.png"}, listPNGs(t, out))
}

func TestRenderTableWithoutRows(t *testing.T) {
	tbl, err := csvtable.Read("empty.csv", strings.NewReader("Time,0\n"))
	require.NoError(t, err)

	img, err := New().RenderTable(tbl, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, img)
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "ch1.png", ImageName("ch1.csv"))
	assert.Equal(t, "ch1.png", ImageName("/data/ch1.csv"))
	assert.Equal(t, "a.b.png", ImageName("a.b.csv"))
	assert.Equal(t, "Curve Plot for ch1.csv", TableTitle("ch1.csv"))
	assert.Equal(t, "ch1.csv - 0", SeriesLabel("ch1.csv", "0"))
}

func readTable(t *testing.T, name, content string) *csvtable.Table {
	t.Helper()
	tbl, err := csvtable.Read(name, strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

func seriesLabels(ss []series) []string {
	labels := make([]string, len(ss))
	for i, s := range ss {
		labels[i] = s.label
	}
	return labels
}

func TestCombinedChartLabels(t *testing.T) {
	tables := []*csvtable.Table{
		readTable(t, "ch1.csv", "Time,0,1\n0,1,2\n5e-06,3,4\n"),
		readTable(t, "ch2.csv", "Time,0\n0,5\n"),
	}

	assert.Equal(t, []string{"ch1.csv - 0", "ch1.csv - 1", "ch2.csv - 0"}, seriesLabels(combinedSeries(tables)))

	p, err := combinedPlot(tables)
	require.NoError(t, err)
	assert.Equal(t, "Combined Curve Plot", p.Title.Text)
	assert.Equal(t, "Time (s)", p.X.Label.Text)
	assert.Equal(t, "Value", p.Y.Label.Text)
	assert.True(t, p.Legend.Top)
}

func TestSeparateChartLabels(t *testing.T) {
	tbl := readTable(t, "ch1.csv", "Time,0,1\n0,1,2\n")

	assert.Equal(t, []string{"0", "1"}, seriesLabels(tableSeries(tbl)))

	p, err := tablePlot(tbl)
	require.NoError(t, err)
	assert.Equal(t, "Curve Plot for ch1.csv", p.Title.Text)
	assert.Equal(t, "Time (s)", p.X.Label.Text)
	assert.Equal(t, "Value", p.Y.Label.Text)
}

func TestRenderConvertedEmptyArray(t *testing.T) {
	src := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, matfile.Write(&buf, []*matfile.Variable{
		{Name: "a_empty", Dims: []int{0, 0}},
		{Name: "b_ch", Data: mat.NewDense(3, 1, []float64{1, 2, 3})},
	}, matfile.WriteOptions{}))
	matPath := filepath.Join(src, "capture.mat")
	require.NoError(t, os.WriteFile(matPath, buf.Bytes(), 0o644))

	csvDir := filepath.Join(src, "csv_output")
	_, err := convert.New(convert.DefaultSampleRate).ConvertFile(matPath, csvDir, nil)
	require.NoError(t, err)

	empty, err := csvtable.Load(filepath.Join(csvDir, "a_empty.csv"))
	require.NoError(t, err)
	assert.Empty(t, empty.Columns)

	paths := []string{filepath.Join(csvDir, "a_empty.csv"), filepath.Join(csvDir, "b_ch.csv")}
	out := t.TempDir()

	images, err := New().RenderSeparate(paths, out, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_empty.png", "b_ch.png"}, listPNGs(t, out))
	assert.Len(t, images, 2)

	_, err = New().RenderCombinedFiles(paths, out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, CombinedFileName))
}
