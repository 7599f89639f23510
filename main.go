// Package main provides the entry point for the Curve Plotter application.
package main

import (
	"log"

	"curve-plotter/internal/app"
	"curve-plotter/internal/cache"
	"curve-plotter/internal/convert"
	"curve-plotter/internal/opener"
	"curve-plotter/internal/version"
	"curve-plotter/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
)

const appID = "com.curveplotter.app"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Curve Plotter %s", version.String())

	cachePath := cache.DefaultPath()
	store, err := cache.Open(cachePath)
	if err != nil {
		log.Printf("cache %s unavailable, starting empty: %v", cachePath, err)
		store = cache.NewMemory(cachePath, cache.Record{})
	}

	state := app.NewState(store, app.Config{SampleRate: convert.DefaultSampleRate})

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.CurvePlotterTheme{})

	win := mainwindow.New(fyneApp, state, opener.New())
	win.ShowAndRun()
}
