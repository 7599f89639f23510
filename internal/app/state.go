// Package app provides the application controller: user actions, their
// preconditions, and the events the window reacts to.
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/cache"
	"curve-plotter/internal/catalog"
	"curve-plotter/internal/convert"
	"curve-plotter/internal/render"
)

// Phase is the controller's position in the action state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConverting
	PhaseFilesSelected
	PhasePlotting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseConverting:
		return "Converting"
	case PhaseFilesSelected:
		return "Files selected"
	case PhasePlotting:
		return "Plotting"
	default:
		return "Unknown"
	}
}

// Busy reports whether an action is running.
func (p Phase) Busy() bool {
	return p == PhaseConverting || p == PhasePlotting
}

// PlotMode chooses between one chart per file and one overlay chart.
type PlotMode int

const (
	PlotSeparate PlotMode = iota
	PlotCombined
)

func (m PlotMode) String() string {
	if m == PlotCombined {
		return "Combined"
	}
	return "Separate"
}

// SelectionMode chooses between plotting every listed file and the picked ones.
type SelectionMode int

const (
	SelectSome SelectionMode = iota
	SelectAll
)

func (m SelectionMode) String() string {
	if m == SelectAll {
		return "All files"
	}
	return "Selected files"
}

// EventType identifies controller events.
type EventType int

const (
	EventPhaseChanged       EventType = iota // Phase
	EventCatalogLoaded                       // *catalog.Catalog
	EventSelectionChanged                    // []int
	EventSaveDirChanged                      // string
	EventConversionProgress                  // ConversionProgress
	EventConversionComplete                  // ConversionResult
	EventPlotStarted                         // nil
	EventImageRendered                       // string, image path
	EventPlotProgress                        // render.Progress
	EventPlotComplete                        // []string, image paths
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ConversionProgress is emitted after each CSV of a conversion.
type ConversionProgress struct {
	Done   int
	Total  int
	Output convert.Output
}

// ConversionResult is emitted when a conversion finishes.
type ConversionResult struct {
	Source  string
	Dir     string
	Outputs []convert.Output
}

// Config holds controller settings that are not persisted.
type Config struct {
	SampleRate float64
	// OutputDir receives converted CSVs. Empty means a csv_output
	// directory next to the converted .mat file.
	OutputDir string
}

// State holds the application state and runs user actions one at a time.
type State struct {
	mu sync.RWMutex

	store     *cache.Store
	converter *convert.Converter
	renderer  *render.Renderer

	catalog       *catalog.Catalog
	plotMode      PlotMode
	selectionMode SelectionMode
	phase         Phase
	outputDir     string

	listenerMu sync.RWMutex
	listeners  map[EventType][]EventListener
}

// NewState creates a controller backed by the given cache store.
func NewState(store *cache.Store, cfg Config) *State {
	return &State{
		store:     store,
		converter: convert.New(cfg.SampleRate),
		renderer:  render.New(),
		outputDir: cfg.OutputDir,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.listenerMu.RLock()
	listeners := s.listeners[event]
	s.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// PlotMode returns the current plot mode.
func (s *State) PlotMode() PlotMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plotMode
}

// SelectionMode returns the current selection mode.
func (s *State) SelectionMode() SelectionMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionMode
}

// SampleRate returns the rate used to synthesize the time axis.
func (s *State) SampleRate() float64 {
	return s.converter.SampleRate
}

// LastOpenedPath returns the cached directory of the last pick.
func (s *State) LastOpenedPath() string {
	return s.store.LastOpenedPath()
}

// SaveDir returns the cached image destination.
func (s *State) SaveDir() string {
	return s.store.SaveDir()
}

// CatalogFiles returns the listed CSV names, empty if no folder is loaded.
func (s *State) CatalogFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Files()
}

// CatalogDir returns the loaded CSV folder, or "".
func (s *State) CatalogDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return ""
	}
	return s.catalog.Dir()
}

// Selected returns the selected catalog indices in ascending order.
func (s *State) Selected() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Selected()
}

// ConversionDir returns where CSVs converted from matPath are written.
func (s *State) ConversionDir(matPath string) string {
	if s.outputDir != "" {
		return s.outputDir
	}
	return filepath.Join(filepath.Dir(matPath), convert.DefaultOutputDir)
}

// Convert turns the MAT file at matPath into CSVs and then lists the
// output folder as the current catalog.
func (s *State) Convert(matPath string) ([]convert.Output, error) {
	if matPath == "" {
		return nil, apperr.Validation("no .mat file chosen")
	}
	if err := s.begin(PhaseConverting); err != nil {
		return nil, err
	}
	defer s.finish()

	s.remember(func() error { return s.store.SetLastOpenedPath(filepath.Dir(matPath)) })

	dir := s.ConversionDir(matPath)
	log.Printf("Converting %s into %s at %.0f Hz", matPath, dir, s.converter.SampleRate)
	outputs, err := s.converter.ConvertFile(matPath, dir, func(done, total int, out convert.Output) {
		s.Emit(EventConversionProgress, ConversionProgress{Done: done, Total: total, Output: out})
	})
	if err != nil {
		return outputs, err
	}

	s.Emit(EventConversionComplete, ConversionResult{Source: matPath, Dir: dir, Outputs: outputs})

	cat, err := catalog.Open(dir)
	if err != nil {
		return outputs, err
	}
	s.setCatalog(cat)
	return outputs, nil
}

// LoadCatalog lists the CSVs of dir as the new catalog. The selection
// starts empty, or full in all-files mode.
func (s *State) LoadCatalog(dir string) error {
	if dir == "" {
		return apperr.Validation("no folder chosen")
	}
	if s.Phase().Busy() {
		return apperr.ErrBusy
	}
	cat, err := catalog.Open(dir)
	if err != nil {
		return err
	}
	s.remember(func() error { return s.store.SetLastOpenedPath(dir) })
	s.setCatalog(cat)
	return nil
}

func (s *State) setCatalog(cat *catalog.Catalog) {
	s.mu.Lock()
	s.catalog = cat
	if s.selectionMode == SelectAll {
		cat.SelectAll()
	}
	selected := cat.Selected()
	s.mu.Unlock()

	log.Printf("Catalog %s: %d CSV files", cat.Dir(), cat.Len())
	s.Emit(EventCatalogLoaded, cat)
	s.updateIdlePhase()
	s.Emit(EventSelectionChanged, selected)
}

// SetSelected replaces the selection with the given catalog indices.
func (s *State) SetSelected(indices []int) error {
	s.mu.Lock()
	if s.catalog == nil {
		s.mu.Unlock()
		if len(indices) == 0 {
			return nil
		}
		return apperr.Validation("no CSV folder loaded")
	}
	if err := s.catalog.SetSelected(indices); err != nil {
		s.mu.Unlock()
		return err
	}
	selected := s.catalog.Selected()
	s.mu.Unlock()

	s.updateIdlePhase()
	s.Emit(EventSelectionChanged, selected)
	return nil
}

// SetSelectedFiles replaces the selection with the named catalog files.
// An unknown name leaves the selection unchanged.
func (s *State) SetSelectedFiles(names []string) error {
	s.mu.RLock()
	cat := s.catalog
	s.mu.RUnlock()
	if cat == nil {
		return s.SetSelected(nil)
	}

	indices := make([]int, 0, len(names))
	for _, name := range names {
		i := cat.Index(name)
		if i < 0 {
			return apperr.Validation(fmt.Sprintf("%s is not in %s", name, cat.Dir()))
		}
		indices = append(indices, i)
	}
	return s.SetSelected(indices)
}

// SelectAll selects every catalog entry.
func (s *State) SelectAll() {
	s.mutateSelection(func(c *catalog.Catalog) { c.SelectAll() })
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.mutateSelection(func(c *catalog.Catalog) { c.Clear() })
}

func (s *State) mutateSelection(fn func(*catalog.Catalog)) {
	s.mu.Lock()
	if s.catalog == nil {
		s.mu.Unlock()
		return
	}
	fn(s.catalog)
	selected := s.catalog.Selected()
	s.mu.Unlock()

	s.updateIdlePhase()
	s.Emit(EventSelectionChanged, selected)
}

// SetSelectionMode switches between all and some. Choosing all selects
// every file, choosing some clears the selection.
func (s *State) SetSelectionMode(mode SelectionMode) {
	s.mu.Lock()
	s.selectionMode = mode
	s.mu.Unlock()

	if mode == SelectAll {
		s.SelectAll()
	} else {
		s.ClearSelection()
	}
}

// SetPlotMode chooses separate or combined charts.
func (s *State) SetPlotMode(mode PlotMode) {
	s.mu.Lock()
	s.plotMode = mode
	s.mu.Unlock()
}

// SetSaveDir records the image destination and persists it.
func (s *State) SetSaveDir(dir string) error {
	if dir == "" {
		return apperr.Validation("no folder chosen")
	}
	if err := s.store.SetSaveDir(dir); err != nil {
		return err
	}
	s.Emit(EventSaveDirChanged, dir)
	return nil
}

// Plot renders the current selection into the save directory and returns
// the written images. Preconditions are checked before anything is drawn,
// in order: a selection in some-files mode, then a destination. All-files
// mode with an empty catalog writes nothing and succeeds.
func (s *State) Plot() ([]string, error) {
	s.mu.Lock()
	if s.phase.Busy() {
		s.mu.Unlock()
		return nil, apperr.ErrBusy
	}

	var paths []string
	if s.catalog != nil {
		if s.selectionMode == SelectAll {
			paths = s.catalog.Paths()
		} else {
			paths = s.catalog.SelectedPaths()
		}
	}
	mode := s.plotMode
	selectionMode := s.selectionMode

	if selectionMode == SelectSome && len(paths) == 0 {
		s.mu.Unlock()
		return nil, apperr.ErrNoFilesSelected
	}
	saveDir := s.store.SaveDir()
	if saveDir == "" {
		s.mu.Unlock()
		return nil, apperr.ErrNoDestination
	}
	if len(paths) == 0 {
		s.mu.Unlock()
		// Still a new job: the gallery drops the previous images.
		s.Emit(EventPlotStarted, nil)
		s.Emit(EventPlotComplete, []string{})
		return nil, nil
	}
	s.phase = PhasePlotting
	s.mu.Unlock()

	s.Emit(EventPhaseChanged, PhasePlotting)
	defer s.finish()

	s.Emit(EventPlotStarted, nil)
	log.Printf("Plotting %d files (%s) into %s", len(paths), mode, saveDir)

	var images []string
	switch mode {
	case PlotCombined:
		img, err := s.renderer.RenderCombinedFiles(paths, saveDir)
		if err != nil {
			return nil, err
		}
		images = []string{img}
		s.Emit(EventImageRendered, img)
		s.Emit(EventPlotProgress, render.Progress{Done: 1, Total: 1, Path: img})
	default:
		var err error
		images, err = s.renderer.RenderSeparate(paths, saveDir, func(p render.Progress) {
			s.Emit(EventImageRendered, p.Path)
			s.Emit(EventPlotProgress, p)
		})
		if err != nil {
			return images, err
		}
	}

	s.Emit(EventPlotComplete, images)
	return images, nil
}

// begin moves into a busy phase, refusing if an action is already running.
func (s *State) begin(phase Phase) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.mu.Unlock()
		return apperr.ErrBusy
	}
	s.phase = phase
	s.mu.Unlock()

	s.Emit(EventPhaseChanged, phase)
	return nil
}

// finish leaves a busy phase for Idle or FilesSelected.
func (s *State) finish() {
	s.mu.Lock()
	s.phase = s.restingPhaseLocked()
	phase := s.phase
	s.mu.Unlock()

	s.Emit(EventPhaseChanged, phase)
}

// updateIdlePhase tracks selection changes while no action is running.
func (s *State) updateIdlePhase() {
	s.mu.Lock()
	if s.phase.Busy() {
		s.mu.Unlock()
		return
	}
	old := s.phase
	s.phase = s.restingPhaseLocked()
	phase := s.phase
	s.mu.Unlock()

	if phase != old {
		s.Emit(EventPhaseChanged, phase)
	}
}

func (s *State) restingPhaseLocked() Phase {
	if s.catalog != nil && len(s.catalog.Selected()) > 0 {
		return PhaseFilesSelected
	}
	return PhaseIdle
}

// remember applies a cache mutation. A failed write is logged; the
// in-memory record already holds the new value.
func (s *State) remember(save func() error) {
	if err := save(); err != nil {
		log.Printf("cache: %v", err)
	}
}

// Describe summarizes the state for the status bar.
func (s *State) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	sel := 0
	if s.catalog != nil {
		n = s.catalog.Len()
		sel = len(s.catalog.Selected())
	}
	return fmt.Sprintf("%s: %d of %d files selected", s.phase, sel, n)
}
