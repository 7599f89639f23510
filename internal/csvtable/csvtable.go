// Package csvtable loads converted CSV captures for plotting.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"curve-plotter/internal/apperr"
)

// TimeColumn is the header of the time axis.
const TimeColumn = "Time"

// Table is one CSV capture: a time axis plus zero or more data columns.
type Table struct {
	Name    string   // Source file name, e.g. "ch1.csv"
	Columns []string // Data column headers in file order, Time excluded
	Time    []float64

	// Data is Rows x len(Columns). It is nil when the table has no rows
	// or no data columns.
	Data *mat.Dense
}

// Rows returns the number of samples.
func (t *Table) Rows() int {
	return len(t.Time)
}

// Column returns a copy of data column j.
func (t *Table) Column(j int) []float64 {
	if t.Data == nil {
		return nil
	}
	return mat.Col(nil, j, t.Data)
}

// Load reads the CSV at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.IO("open", path, err)
	}
	defer f.Close()

	t, err := Read(filepath.Base(path), f)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			ae.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Read parses a CSV with a Time column. Empty cells become NaN. A file with
// only the Time column, as written for an empty array, is a valid table
// with no series.
func Read(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, schemaErr(name, "empty file, no header row")
	}
	if err != nil {
		return nil, readErr(name, err)
	}

	timeIdx := -1
	var columns []string
	var dataIdx []int
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == TimeColumn && timeIdx < 0 {
			timeIdx = i
			continue
		}
		columns = append(columns, h)
		dataIdx = append(dataIdx, i)
	}
	if timeIdx < 0 {
		return nil, schemaErr(name, "missing Time column")
	}

	t := &Table{Name: name, Columns: columns}
	var values []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readErr(name, err)
		}

		tv, err := parseCell(rec[timeIdx])
		if err != nil {
			return nil, schemaErr(name, fmt.Sprintf("line %d, column %s: %v", line, TimeColumn, err))
		}
		t.Time = append(t.Time, tv)
		for k, idx := range dataIdx {
			v, err := parseCell(rec[idx])
			if err != nil {
				return nil, schemaErr(name, fmt.Sprintf("line %d, column %s: %v", line, columns[k], err))
			}
			values = append(values, v)
		}
	}

	if len(t.Time) > 0 && len(columns) > 0 {
		t.Data = mat.NewDense(len(t.Time), len(columns), values)
	}
	return t, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func schemaErr(name, msg string) error {
	return apperr.Schema(name, msg)
}

// readErr classifies csv reader failures. Ragged rows are a schema problem,
// everything else is a read failure.
func readErr(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return schemaErr(name, pe.Error())
	}
	return &apperr.Error{Kind: apperr.KindIO, Op: "read", Path: name, Err: err}
}
