// Package render draws CSV captures as time-series charts and saves them as PNG.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/atomicfile"
	"curve-plotter/internal/csvtable"
	"curve-plotter/pkg/colorutil"
)

const (
	// CombinedFileName is the image written in combined mode.
	CombinedFileName = "combined_plot.png"

	CombinedTitle = "Combined Curve Plot"
	XLabel        = "Time (s)"
	YLabel        = "Value"
)

// Progress reports one finished image of a batch.
type Progress struct {
	Done  int
	Total int
	Path  string // Image just written
}

// ProgressFunc receives per-image progress.
type ProgressFunc func(Progress)

// Renderer draws and saves charts.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
	Format string // Image format understood by gonum/plot
}

// New returns a renderer producing 10x6 inch PNG images.
func New() *Renderer {
	return &Renderer{
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		Format: "png",
	}
}

// ImageName maps a CSV file name to the image name used in separate mode.
func ImageName(csvName string) string {
	base := filepath.Base(csvName)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// TableTitle returns the chart title for a single table.
func TableTitle(name string) string {
	return "Curve Plot for " + name
}

// RenderSeparate loads each CSV in order and writes one image per file into
// dir. Images written before a failure remain on disk and are returned.
func (r *Renderer) RenderSeparate(paths []string, dir string, onProgress ProgressFunc) ([]string, error) {
	if err := validate(paths, dir); err != nil {
		return nil, err
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	images := make([]string, 0, len(paths))
	for i, path := range paths {
		t, err := csvtable.Load(path)
		if err != nil {
			return images, err
		}
		img, err := r.RenderTable(t, dir)
		if err != nil {
			return images, err
		}
		images = append(images, img)
		if onProgress != nil {
			onProgress(Progress{Done: i + 1, Total: len(paths), Path: img})
		}
	}
	return images, nil
}

// RenderCombinedFiles loads every CSV and writes a single overlay chart.
func (r *Renderer) RenderCombinedFiles(paths []string, dir string) (string, error) {
	if err := validate(paths, dir); err != nil {
		return "", err
	}

	tables := make([]*csvtable.Table, 0, len(paths))
	for _, path := range paths {
		t, err := csvtable.Load(path)
		if err != nil {
			return "", err
		}
		tables = append(tables, t)
	}
	return r.RenderCombined(tables, dir)
}

// RenderTable draws every data column of t against Time and saves
// <basename>.png in dir. A table without data columns gives an empty chart.
func (r *Renderer) RenderTable(t *csvtable.Table, dir string) (string, error) {
	p, err := tablePlot(t)
	if err != nil {
		return "", err
	}
	return r.save(p, filepath.Join(dir, ImageName(t.Name)))
}

// RenderCombined overlays every column of every table on one chart, each
// series labeled "<file> - <column>", saved as combined_plot.png in dir.
func (r *Renderer) RenderCombined(tables []*csvtable.Table, dir string) (string, error) {
	if len(tables) == 0 {
		return "", apperr.ErrNoFilesSelected
	}
	if dir == "" {
		return "", apperr.ErrNoDestination
	}
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	p, err := combinedPlot(tables)
	if err != nil {
		return "", err
	}
	return r.save(p, filepath.Join(dir, CombinedFileName))
}

// SeriesLabel names column col of a table in a combined chart.
func SeriesLabel(tableName, col string) string {
	return fmt.Sprintf("%s - %s", tableName, col)
}

// series is one line of a chart.
type series struct {
	label  string
	xs, ys []float64
}

func tableSeries(t *csvtable.Table) []series {
	out := make([]series, 0, len(t.Columns))
	for j, col := range t.Columns {
		out = append(out, series{label: col, xs: t.Time, ys: t.Column(j)})
	}
	return out
}

func combinedSeries(tables []*csvtable.Table) []series {
	var out []series
	for _, t := range tables {
		for j, col := range t.Columns {
			out = append(out, series{label: SeriesLabel(t.Name, col), xs: t.Time, ys: t.Column(j)})
		}
	}
	return out
}

func tablePlot(t *csvtable.Table) (*plot.Plot, error) {
	p := newPlot(TableTitle(t.Name))
	if err := addAll(p, tableSeries(t)); err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	return p, nil
}

func combinedPlot(tables []*csvtable.Table) (*plot.Plot, error) {
	p := newPlot(CombinedTitle)
	if err := addAll(p, combinedSeries(tables)); err != nil {
		return nil, err
	}
	return p, nil
}

// addAll adds the series in order, colors continuing through the palette.
func addAll(p *plot.Plot, ss []series) error {
	for i, s := range ss {
		if err := addSeries(p, s.label, s.xs, s.ys, i); err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
	}
	return nil
}

func (r *Renderer) save(p *plot.Plot, path string) (string, error) {
	wt, err := p.WriterTo(r.Width, r.Height, r.Format)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	err = atomicfile.WriteFile(path, 0o644, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
	if err != nil {
		return "", apperr.IO("save", path, err)
	}
	return path, nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.BackgroundColor = colorutil.Background

	grid := plotter.NewGrid()
	grid.Vertical.Color = colorutil.Grid
	grid.Horizontal.Color = colorutil.Grid
	p.Add(grid)

	p.Legend.Top = true
	p.Legend.Padding = vg.Points(5)
	return p
}

// addSeries adds one line plus its legend entry. Samples that are NaN or
// infinite are dropped and a series with no samples left is skipped.
func addSeries(p *plot.Plot, label string, xs, ys []float64, colorIdx int) error {
	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		x := xs[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = colorutil.Series(colorIdx)
	line.Width = vg.Points(1)

	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func validate(paths []string, dir string) error {
	if len(paths) == 0 {
		return apperr.ErrNoFilesSelected
	}
	if dir == "" {
		return apperr.ErrNoDestination
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.IO("create image dir", dir, err)
	}
	return nil
}
