package gallery

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curve-plotter/internal/apperr"
	"curve-plotter/internal/opener"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestThumbnailFitsBounds(t *testing.T) {
	dir := t.TempDir()

	thumb, err := Thumbnail(writePNG(t, dir, "wide.png", 960, 576), DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 180, thumb.Bounds().Dy())

	thumb, err = Thumbnail(writePNG(t, dir, "small.png", 40, 20), DefaultMaxWidth, DefaultMaxHeight)
	require.NoError(t, err)
	assert.Equal(t, 40, thumb.Bounds().Dx(), "small images are not enlarged")

	_, err = Thumbnail(filepath.Join(dir, "missing.png"), 10, 10)
	assert.True(t, apperr.Is(err, apperr.KindIO))
}

func TestDisplayClearAndOpen(t *testing.T) {
	test.NewApp()
	dir := t.TempDir()

	var opened []string
	g := New(opener.Func(func(p string) error {
		opened = append(opened, p)
		return nil
	}), nil)
	w := test.NewWindow(g.Container())
	defer w.Close()

	first := writePNG(t, dir, "a.png", 960, 576)
	second := writePNG(t, dir, "b.png", 960, 576)
	require.NoError(t, g.Display(first))
	require.NoError(t, g.Display(second))

	entries := g.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].Path)
	assert.Equal(t, second, entries[1].Path)

	// Each thumbnail opens its own image.
	require.Len(t, g.list.Objects, 2)
	test.Tap(g.list.Objects[1].(*thumbButton))
	test.Tap(g.list.Objects[0].(*thumbButton))
	assert.Equal(t, []string{second, first}, opened)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.list.Objects)
}

func TestDisplayMissingImage(t *testing.T) {
	test.NewApp()
	g := New(opener.Func(func(string) error { return nil }), nil)
	assert.Error(t, g.Display(filepath.Join(t.TempDir(), "gone.png")))
	assert.Equal(t, 0, g.Len())
}

func TestOpenFullReportsFailure(t *testing.T) {
	test.NewApp()
	want := errors.New("no default application handler (xdg-open)")
	var got error
	g := New(opener.Func(func(string) error { return want }), func(err error) { got = err })

	g.OpenFull("/tmp/x.png")
	assert.Equal(t, want, got)
}
