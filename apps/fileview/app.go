// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/fileview/app.go
// Summary: File viewer: serves a file line by line through a viewport
// with syntax highlighting, optional SQLite-backed search and reload.

package fileview

import (
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelview/config"
	"github.com/framegrace/texelview/highlight"
	"github.com/framegrace/texelview/source"
	"github.com/framegrace/texelview/textindex"
	"github.com/framegrace/texelview/viewport"
	"github.com/framegrace/texelview/widgets"
)

// sampleSize bounds how much of the file lexer detection reads.
const sampleSize = 8 * 1024

// App is the file viewer application.
type App struct {
	fs   *source.FileSource
	vp   *viewport.Viewport
	list *widgets.ListView
	idx  *textindex.Index
}

// Open builds a viewer over path. Follow-tail is forced off; a file is
// a snapshot, not a stream.
func Open(path string, settings config.Settings) (*App, error) {
	fs, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}

	opts := settings.ViewportOptions()
	opts.FollowTail = false
	vp := viewport.New(fs, opts)

	a := &App{
		fs:   fs,
		vp:   vp,
		list: widgets.NewListView(vp),
	}

	sample, err := readSample(path)
	if err != nil {
		log.Printf("[FILEVIEW] sample %s: %v", path, err)
	}
	a.list.SetHighlighter(highlight.ForFile(path, sample, settings.Style))

	if settings.IndexPath != "" {
		if err := a.buildIndex(settings.IndexPath); err != nil {
			// The linear scan still works without the index.
			log.Printf("[FILEVIEW] index: %v", err)
		}
	}
	return a, nil
}

// Viewport exposes the engine for tests and embedding.
func (a *App) Viewport() *viewport.Viewport { return a.vp }

// buildIndex creates the text index and loads every line into it.
func (a *App) buildIndex(dbPath string) error {
	idx, err := textindex.Open(textindex.DefaultConfig(dbPath))
	if err != nil {
		return err
	}
	if err := idx.Clear(); err != nil {
		idx.Close()
		return err
	}
	for i := 0; i < a.fs.TotalCount(); i++ {
		it, err := a.fs.Fetch(i)
		if err != nil {
			idx.Close()
			return fmt.Errorf("index line %d: %w", i, err)
		}
		if err := idx.IndexItem(i, it.ID, it.Content); err != nil {
			idx.Close()
			return err
		}
	}
	a.idx = idx
	a.vp.SetSearchIndexer(idx)
	return nil
}

// Reload re-reads the file and rebuilds the index, keeping the scroll
// position as close as the new content allows.
func (a *App) Reload(settings config.Settings) error {
	if err := a.fs.Reload(); err != nil {
		return err
	}
	if err := a.vp.Refresh(); err != nil {
		return err
	}
	if a.idx != nil {
		a.vp.SetSearchIndexer(nil)
		a.idx.Close()
		a.idx = nil
		if settings.IndexPath != "" {
			if err := a.buildIndex(settings.IndexPath); err != nil {
				log.Printf("[FILEVIEW] reindex: %v", err)
			}
		}
	}
	return nil
}

// Run drives the tcell event loop until quit (Ctrl+C or q).
func (a *App) Run(s tcell.Screen, settings config.Settings) error {
	w, h := s.Size()
	a.list.SetRect(0, 0, w, h)

	for {
		if err := a.list.Draw(s); err != nil {
			return err
		}
		s.Show()

		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			a.list.SetRect(0, 0, w, h)
			s.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if !a.list.Editing() && ev.Key() == tcell.KeyRune {
				switch ev.Rune() {
				case 'q':
					return nil
				case 'r':
					if err := a.Reload(settings); err != nil {
						log.Printf("[FILEVIEW] reload: %v", err)
					}
					continue
				}
			}
			a.list.HandleEvent(ev)
		case *tcell.EventMouse:
			a.list.HandleEvent(ev)
		case nil:
			return nil
		}
	}
}

// Close releases the file and the index.
func (a *App) Close() error {
	if a.idx != nil {
		a.idx.Close()
	}
	return a.fs.Close()
}

func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sampleSize)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}
