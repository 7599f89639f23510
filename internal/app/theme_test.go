package app

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestThemeOverridesAndDefaults(t *testing.T) {
	test.NewApp()
	th := &CurvePlotterTheme{}
	assert.NotEqual(t,
		theme.DefaultTheme().Color(theme.ColorNamePrimary, theme.VariantLight),
		th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t,
		theme.DefaultTheme().Color(theme.ColorNameForeground, theme.VariantLight),
		th.Color(theme.ColorNameForeground, theme.VariantLight))
	assert.Equal(t, float32(14), th.Size(theme.SizeNameScrollBar))
	assert.Equal(t, theme.DefaultTheme().Size(theme.SizeNamePadding), th.Size(theme.SizeNamePadding))
}
