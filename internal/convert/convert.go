// Package convert turns MAT captures into one timestamped CSV per channel.
package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/atomicfile"
	"curve-plotter/internal/matfile"
)

const (
	// DefaultSampleRate is the capture rate of the acquisition hardware in Hz.
	DefaultSampleRate = 200000

	// DefaultOutputDir is the directory name CSVs are written to.
	DefaultOutputDir = "csv_output"

	// TimeColumn is the header of the synthesized time axis.
	TimeColumn = "Time"

	reservedPrefix = "__"
)

// Output describes one written CSV.
type Output struct {
	Variable string // Name with NULs stripped
	Path     string
	Rows     int
	Columns  int // Data columns, excluding Time
}

// ProgressFunc is called after each CSV is written.
type ProgressFunc func(done, total int, out Output)

// Converter writes CSVs from MAT files.
type Converter struct {
	SampleRate float64
}

// New creates a converter. A non-positive rate selects DefaultSampleRate.
func New(sampleRate float64) *Converter {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Converter{SampleRate: sampleRate}
}

// SafeName strips the NUL characters some writers pad variable names with.
func SafeName(name string) string {
	return strings.ReplaceAll(name, "\x00", "")
}

// IsReserved reports whether a variable name marks file metadata.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, reservedPrefix)
}

// Qualifying returns the variables that produce a CSV, in file order.
func Qualifying(f *matfile.File) []*matfile.Variable {
	var out []*matfile.Variable
	for _, v := range f.Variables {
		name := SafeName(v.Name)
		switch {
		case name == "":
			log.Printf("convert: skipping variable with empty name")
		case IsReserved(name):
			// metadata
		case !v.Numeric():
			log.Printf("convert: skipping %s (%s is not numeric)", name, v.Class)
		default:
			out = append(out, v)
		}
	}
	return out
}

// ConvertFile writes <name>.csv into outDir for every qualifying variable
// of the MAT file at matPath. outDir is created if needed and existing
// files are overwritten. CSVs written before a failure are left in place.
func (c *Converter) ConvertFile(matPath, outDir string, onProgress ProgressFunc) ([]Output, error) {
	f, err := matfile.Open(matPath)
	if err != nil {
		return nil, err
	}
	return c.Convert(f, outDir, onProgress)
}

// Convert writes the CSVs for an already decoded file.
func (c *Converter) Convert(f *matfile.File, outDir string, onProgress ProgressFunc) ([]Output, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, apperr.IO("create output dir", outDir, err)
	}

	vars := Qualifying(f)
	outputs := make([]Output, 0, len(vars))
	for i, v := range vars {
		out, err := c.writeVariable(v, outDir)
		if err != nil {
			return outputs, err
		}
		log.Printf("convert: wrote %s (%d rows, %d columns)", out.Path, out.Rows, out.Columns)
		outputs = append(outputs, out)
		if onProgress != nil {
			onProgress(i+1, len(vars), out)
		}
	}
	return outputs, nil
}

func (c *Converter) writeVariable(v *matfile.Variable, outDir string) (Output, error) {
	name := SafeName(v.Name)
	out := Output{
		Variable: name,
		Path:     filepath.Join(outDir, name+".csv"),
		Rows:     v.Rows(),
		Columns:  v.Cols(),
	}

	err := atomicfile.WriteFile(out.Path, 0o644, func(w io.Writer) error {
		return c.WriteCSV(w, v)
	})
	if err != nil {
		return out, apperr.IO("write", out.Path, err)
	}
	return out, nil
}

// WriteCSV writes the table for v: a header of Time followed by the column
// indices, then one row per sample with Time = i / SampleRate.
func (c *Converter) WriteCSV(w io.Writer, v *matfile.Variable) error {
	rows, cols := v.Rows(), v.Cols()
	cw := csv.NewWriter(w)

	record := make([]string, cols+1)
	record[0] = TimeColumn
	for j := 0; j < cols; j++ {
		record[j+1] = strconv.Itoa(j)
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	if v.Data != nil {
		for i := 0; i < rows; i++ {
			record[0] = formatFloat(c.TimeAt(i))
			for j := 0; j < cols; j++ {
				record[j+1] = formatFloat(v.Data.At(i, j))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

// TimeAt returns the elapsed time in seconds of sample i.
func (c *Converter) TimeAt(i int) float64 {
	return float64(i) / c.SampleRate
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
