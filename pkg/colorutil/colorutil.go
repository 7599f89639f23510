// Package colorutil provides the chart colors shared by the plotting code.
package colorutil

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Chart background and grid colors.
var (
	Background = colornames.White
	Grid       = colornames.Gainsboro
)

// seriesPalette follows the usual ten-color cycle of scientific plotting tools.
var seriesPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}, // blue
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // orange
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // green
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // red
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}, // purple
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff}, // brown
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff}, // pink
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}, // gray
	{R: 0xbc, G: 0xbd, B: 0x22, A: 0xff}, // olive
	{R: 0x17, G: 0xbe, B: 0xcf, A: 0xff}, // cyan
}

// Series returns the color of the i-th series, cycling through the palette.
// Each full cycle is drawn darker so overlaid series stay distinguishable.
func Series(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	base := seriesPalette[i%len(seriesPalette)]
	cycle := i / len(seriesPalette)
	if cycle == 0 {
		return base
	}
	return Darken(base, 1/float64(cycle+1))
}

// PaletteSize returns the number of distinct base colors.
func PaletteSize() int {
	return len(seriesPalette)
}

// Darken scales the RGB channels of c by factor (0-1).
func Darken(c color.RGBA, factor float64) color.RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
