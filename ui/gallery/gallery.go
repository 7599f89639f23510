// Package gallery shows thumbnails of rendered charts and opens them full size.
package gallery

import (
	"image"
	"log"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/opener"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	DefaultMaxWidth  = 300
	DefaultMaxHeight = 200
)

// Entry is one displayed image.
type Entry struct {
	Path  string
	Thumb image.Image
}

// Thumbnail loads the image at path and scales it down to fit within
// maxW x maxH, keeping its aspect ratio. Smaller images are not enlarged.
func Thumbnail(path string, maxW, maxH int) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, apperr.IO("open image", path, err)
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos), nil
}

// Gallery is a scrollable column of clickable thumbnails, oldest first.
type Gallery struct {
	mu      sync.Mutex
	entries []Entry

	MaxWidth  int
	MaxHeight int

	opener  opener.Opener
	onError func(error)

	list   *fyne.Container
	scroll *container.Scroll
}

// New creates an empty gallery. Failures to open an image in the viewer
// are passed to onError.
func New(o opener.Opener, onError func(error)) *Gallery {
	g := &Gallery{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		opener:    o,
		onError:   onError,
	}
	g.list = container.NewVBox()
	g.scroll = container.NewVScroll(g.list)
	g.scroll.SetMinSize(fyne.NewSize(DefaultMaxWidth+20, DefaultMaxHeight))
	return g
}

// Container returns the scrollable canvas object.
func (g *Gallery) Container() fyne.CanvasObject {
	return g.scroll
}

// Display appends a thumbnail of the image at path.
func (g *Gallery) Display(path string) error {
	thumb, err := Thumbnail(path, g.MaxWidth, g.MaxHeight)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.entries = append(g.entries, Entry{Path: path, Thumb: thumb})
	g.mu.Unlock()

	g.list.Add(newThumbButton(path, thumb, g.OpenFull))
	g.scroll.ScrollToBottom()
	return nil
}

// Clear removes every entry.
func (g *Gallery) Clear() {
	g.mu.Lock()
	g.entries = nil
	g.mu.Unlock()

	g.list.RemoveAll()
	g.scroll.ScrollToTop()
}

// Entries returns the displayed entries in insertion order.
func (g *Gallery) Entries() []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Entry(nil), g.entries...)
}

// Len returns the number of entries.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// OpenFull opens path in the system image viewer.
func (g *Gallery) OpenFull(path string) {
	log.Printf("Opening %s", path)
	if err := g.opener.Open(path); err != nil {
		log.Printf("open %s: %v", path, err)
		if g.onError != nil {
			g.onError(err)
		}
	}
}

// thumbButton is a tappable thumbnail bound to its own image path.
type thumbButton struct {
	widget.BaseWidget
	path  string
	image *canvas.Image
	label *widget.Label
	onTap func(path string)
}

func newThumbButton(path string, thumb image.Image, onTap func(string)) *thumbButton {
	img := canvas.NewImageFromImage(thumb)
	img.FillMode = canvas.ImageFillContain
	b := thumb.Bounds()
	img.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))

	t := &thumbButton{
		path:  path,
		image: img,
		label: widget.NewLabel(filepath.Base(path)),
		onTap: onTap,
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *thumbButton) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, t.label, nil, nil, t.image))
}

// Tapped implements fyne.Tappable.
func (t *thumbButton) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(t.path)
	}
}
