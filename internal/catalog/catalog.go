// Package catalog lists the CSV files of a directory and tracks which are
// selected for plotting.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curve-plotter/internal/apperr"
)

const csvExt = ".csv"

// List returns the names of the .csv files in dir, sorted lexicographically
// by byte value. The extension match is case-sensitive. Directories are
// skipped, symlinks are followed and kept unless they point to a directory
// or nowhere.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperr.IO("list", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), csvExt) {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || info.IsDir() {
				continue
			}
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Catalog is the ordered CSV listing of one directory plus a selection.
type Catalog struct {
	dir      string
	files    []string
	selected map[int]bool
}

// Open lists dir into a new catalog with nothing selected.
func Open(dir string) (*Catalog, error) {
	files, err := List(dir)
	if err != nil {
		return nil, err
	}
	return New(dir, files), nil
}

// New builds a catalog from an existing listing.
func New(dir string, files []string) *Catalog {
	return &Catalog{
		dir:      dir,
		files:    append([]string(nil), files...),
		selected: make(map[int]bool),
	}
}

// Dir returns the listed directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Files returns the file names in catalog order.
func (c *Catalog) Files() []string {
	return append([]string(nil), c.files...)
}

// Len returns the number of files.
func (c *Catalog) Len() int {
	return len(c.files)
}

// Path returns the full path of file i.
func (c *Catalog) Path(i int) string {
	return filepath.Join(c.dir, c.files[i])
}

// Paths returns the full paths of every file.
func (c *Catalog) Paths() []string {
	out := make([]string, len(c.files))
	for i := range c.files {
		out[i] = c.Path(i)
	}
	return out
}

// Index returns the position of name, or -1.
func (c *Catalog) Index(name string) int {
	for i, f := range c.files {
		if f == name {
			return i
		}
	}
	return -1
}

func (c *Catalog) check(i int) error {
	if i < 0 || i >= len(c.files) {
		return apperr.Validation(fmt.Sprintf("file index %d out of range [0, %d)", i, len(c.files)))
	}
	return nil
}

// Select adds file i to the selection.
func (c *Catalog) Select(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.selected[i] = true
	return nil
}

// SetSelected replaces the selection. It changes nothing if any index is invalid.
func (c *Catalog) SetSelected(indices []int) error {
	for _, i := range indices {
		if err := c.check(i); err != nil {
			return err
		}
	}
	c.selected = make(map[int]bool, len(indices))
	for _, i := range indices {
		c.selected[i] = true
	}
	return nil
}

// SelectAll selects every file.
func (c *Catalog) SelectAll() {
	for i := range c.files {
		c.selected[i] = true
	}
}

// Clear empties the selection.
func (c *Catalog) Clear() {
	c.selected = make(map[int]bool)
}

// IsSelected reports whether file i is selected.
func (c *Catalog) IsSelected(i int) bool {
	return c.selected[i]
}

// Selected returns the selected indices in ascending order.
func (c *Catalog) Selected() []int {
	out := make([]int, 0, len(c.selected))
	for i := range c.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SelectedPaths returns the full paths of the selection in catalog order.
func (c *Catalog) SelectedPaths() []string {
	idx := c.Selected()
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = c.Path(i)
	}
	return out
}
