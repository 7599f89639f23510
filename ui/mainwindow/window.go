// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"curve-plotter/internal/app"
	"curve-plotter/internal/apperr"
	"curve-plotter/internal/catalog"
	"curve-plotter/internal/opener"
	"curve-plotter/internal/render"
	"curve-plotter/internal/version"
	"curve-plotter/ui/gallery"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle = "Curve Plotter"

	plotModeSeparate = "Separate"
	plotModeCombined = "Combined"

	selectAllFiles  = "All files"
	selectSomeFiles = "Selected files"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State

	convertBtn   *widget.Button
	csvDirBtn    *widget.Button
	saveDirBtn   *widget.Button
	plotBtn      *widget.Button
	plotMode     *widget.RadioGroup
	selectMode   *widget.RadioGroup
	fileList     *widget.CheckGroup
	csvDirLabel  *widget.Label
	saveDirLabel *widget.Label
	progress     *widget.ProgressBar
	statusBar    *widget.Label
	gallery      *gallery.Gallery
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, o opener.Opener) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}
	mw.gallery = gallery.New(o, func(err error) {
		dialog.ShowError(err, mw.Window)
	})

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.Resize(fyne.NewSize(1100, 700))

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.convertBtn = widget.NewButton("Convert .mat to CSV...", mw.onConvert)
	mw.csvDirBtn = widget.NewButton("Choose CSV Folder...", mw.onChooseCSVDir)
	mw.saveDirBtn = widget.NewButton("Choose Save Folder...", mw.onChooseSaveDir)
	mw.plotBtn = widget.NewButton("Plot", mw.onPlot)
	mw.plotBtn.Importance = widget.HighImportance

	mw.plotMode = widget.NewRadioGroup([]string{plotModeSeparate, plotModeCombined}, mw.onPlotModeChanged)
	mw.plotMode.Horizontal = true
	mw.plotMode.Required = true
	mw.plotMode.SetSelected(plotModeSeparate)

	mw.selectMode = widget.NewRadioGroup([]string{selectAllFiles, selectSomeFiles}, mw.onSelectionModeChanged)
	mw.selectMode.Horizontal = true
	mw.selectMode.Required = true
	mw.selectMode.SetSelected(selectSomeFiles)

	mw.fileList = widget.NewCheckGroup(nil, mw.onFilesChecked)
	mw.csvDirLabel = widget.NewLabel("No CSV folder loaded")
	mw.csvDirLabel.Truncation = fyne.TextTruncateEllipsis

	mw.saveDirLabel = widget.NewLabel(saveDirText(mw.state.SaveDir()))
	mw.saveDirLabel.Truncation = fyne.TextTruncateEllipsis

	mw.progress = widget.NewProgressBar()
	mw.statusBar = widget.NewLabel("Ready")

	controls := container.NewVBox(
		mw.convertBtn,
		widget.NewSeparator(),
		widget.NewLabel("Plot mode:"),
		mw.plotMode,
		widget.NewLabel("Files to plot:"),
		mw.selectMode,
		widget.NewSeparator(),
		mw.csvDirBtn,
		mw.csvDirLabel,
		mw.saveDirBtn,
		mw.saveDirLabel,
	)

	files := container.NewBorder(
		widget.NewLabel("CSV files:"),              // top
		container.NewVBox(mw.plotBtn, mw.progress), // bottom
		nil,                                        // left
		nil,                                        // right
		container.NewVScroll(mw.fileList),          // center
	)

	sidePanel := container.NewBorder(controls, nil, nil, nil, files)

	split := container.NewHSplit(
		sidePanel,
		mw.gallery.Container(),
	)
	split.SetOffset(0.35)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Convert .mat to CSV...", mw.onConvert),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Choose CSV Folder...", mw.onChooseCSVDir),
		fyne.NewMenuItem("Choose Save Folder...", mw.onChooseSaveDir),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Plot", mw.onPlot),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventPhaseChanged, func(data interface{}) {
		if phase, ok := data.(app.Phase); ok {
			mw.setBusy(phase.Busy())
		}
	})

	mw.state.On(app.EventCatalogLoaded, func(data interface{}) {
		cat, ok := data.(*catalog.Catalog)
		if !ok {
			return
		}
		mw.fileList.Options = cat.Files()
		mw.fileList.Selected = nil
		mw.fileList.Refresh()
		mw.csvDirLabel.SetText(cat.Dir())
		mw.updateStatus(fmt.Sprintf("%d CSV files in %s", cat.Len(), cat.Dir()))
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		indices, _ := data.([]int)
		files := mw.state.CatalogFiles()
		selected := make([]string, 0, len(indices))
		for _, i := range indices {
			if i < len(files) {
				selected = append(selected, files[i])
			}
		}
		// Echoed back through onFilesChecked, which ignores an unchanged selection.
		mw.fileList.SetSelected(selected)
		mw.updateStatus(mw.state.Describe())
	})

	mw.state.On(app.EventSaveDirChanged, func(data interface{}) {
		if dir, ok := data.(string); ok {
			mw.saveDirLabel.SetText(saveDirText(dir))
		}
	})

	mw.state.On(app.EventConversionProgress, func(data interface{}) {
		if p, ok := data.(app.ConversionProgress); ok {
			mw.setProgress(p.Done, p.Total)
			mw.updateStatus("Wrote " + filepath.Base(p.Output.Path))
		}
	})

	mw.state.On(app.EventConversionComplete, func(data interface{}) {
		if r, ok := data.(app.ConversionResult); ok {
			msg := fmt.Sprintf("Converted %s: %d CSV files in %s",
				filepath.Base(r.Source), len(r.Outputs), r.Dir)
			mw.updateStatus(msg)
			dialog.ShowInformation("Conversion complete", msg, mw.Window)
		}
	})

	mw.state.On(app.EventPlotStarted, func(interface{}) {
		mw.gallery.Clear()
		mw.progress.SetValue(0)
		mw.updateStatus("Plotting...")
	})

	mw.state.On(app.EventImageRendered, func(data interface{}) {
		path, ok := data.(string)
		if !ok {
			return
		}
		if err := mw.gallery.Display(path); err != nil {
			log.Printf("gallery: %v", err)
			mw.updateStatus("Could not show " + filepath.Base(path))
		}
	})

	mw.state.On(app.EventPlotProgress, func(data interface{}) {
		if p, ok := data.(render.Progress); ok {
			mw.setProgress(p.Done, p.Total)
		}
	})

	mw.state.On(app.EventPlotComplete, func(data interface{}) {
		images, _ := data.([]string)
		msg := fmt.Sprintf("Saved %d images to %s", len(images), mw.state.SaveDir())
		mw.updateStatus(msg)
		dialog.ShowInformation("Plotting complete", msg, mw.Window)
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) setProgress(done, total int) {
	if total <= 0 {
		mw.progress.SetValue(0)
		return
	}
	mw.progress.SetValue(float64(done) / float64(total))
}

func (mw *MainWindow) setBusy(busy bool) {
	for _, b := range []*widget.Button{mw.convertBtn, mw.csvDirBtn, mw.saveDirBtn, mw.plotBtn} {
		if busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
}

// run executes a long action off the event goroutine so the progress bar
// repaints between items, then reports any failure.
func (mw *MainWindow) run(action func() error) {
	go func() {
		if err := action(); err != nil {
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) showError(err error) {
	log.Printf("Error: %v", err)
	if errors.Is(err, apperr.ErrBusy) {
		mw.updateStatus("Busy, please wait")
		return
	}
	prefix := "Error"
	if kind, ok := apperr.KindOf(err); ok {
		prefix = kind.String() + " error"
	}
	mw.updateStatus(prefix + ": " + err.Error())
	dialog.ShowError(err, mw.Window)
}

// lastDir returns the cached directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir(path string) fyne.ListableURI {
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func saveDirText(dir string) string {
	if dir == "" {
		return "Save path: not set"
	}
	return "Save path: " + dir
}

// Action handlers

func (mw *MainWindow) onConvert() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()

		mw.progress.SetValue(0)
		mw.updateStatus("Converting " + filepath.Base(path) + "...")
		mw.run(func() error {
			_, err := mw.state.Convert(path)
			return err
		})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".mat"}))
	if loc := mw.lastDir(mw.state.LastOpenedPath()); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onChooseCSVDir() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if uri == nil {
			return
		}
		if err := mw.state.LoadCatalog(uri.Path()); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	if loc := mw.lastDir(mw.state.LastOpenedPath()); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onChooseSaveDir() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if uri == nil {
			return
		}
		if err := mw.state.SetSaveDir(uri.Path()); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	if loc := mw.lastDir(mw.state.SaveDir()); loc != nil {
		fd.SetLocation(loc)
	} else if loc := mw.lastDir(mw.state.LastOpenedPath()); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onPlot() {
	mw.run(func() error {
		_, err := mw.state.Plot()
		return err
	})
}

func (mw *MainWindow) onPlotModeChanged(selected string) {
	if selected == plotModeCombined {
		mw.state.SetPlotMode(app.PlotCombined)
	} else {
		mw.state.SetPlotMode(app.PlotSeparate)
	}
}

func (mw *MainWindow) onSelectionModeChanged(selected string) {
	if selected == selectAllFiles {
		mw.state.SetSelectionMode(app.SelectAll)
	} else {
		mw.state.SetSelectionMode(app.SelectSome)
	}
}

func (mw *MainWindow) onFilesChecked(names []string) {
	if sameSelection(names, mw.selectedNames()) {
		return
	}
	if err := mw.state.SetSelectedFiles(names); err != nil {
		mw.showError(err)
	}
}

// selectedNames returns the file names the controller has selected.
func (mw *MainWindow) selectedNames() []string {
	files := mw.state.CatalogFiles()
	var names []string
	for _, i := range mw.state.Selected() {
		if i < len(files) {
			names = append(names, files[i])
		}
	}
	return names
}

func sameSelection(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, n := range a {
		set[n] = true
	}
	for _, n := range b {
		if !set[n] {
			return false
		}
	}
	return true
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Converts MATLAB .mat captures to CSV and plots them.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
