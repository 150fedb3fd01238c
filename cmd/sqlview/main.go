// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/sqlview/main.go
// Summary: Browse rows of a SQLite table through a viewport.
// Usage: sqlview -db data.db -table logs [-id id] [-content content] [-order "id ASC"]

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelview/config"
	"github.com/framegrace/texelview/source"
	"github.com/framegrace/texelview/viewport"
	"github.com/framegrace/texelview/widgets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("sqlview", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite database path (required)")
	table := fs.String("table", "", "Table to browse (required)")
	idCol := fs.String("id", "", "ID column (default: rowid)")
	contentCol := fs.String("content", "", "Content column (default: content)")
	orderBy := fs.String("order", "", "ORDER BY clause, e.g. \"id DESC\" (default: ID column ascending)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if *dbPath == "" || *table == "" {
		return fmt.Errorf("usage: sqlview -db <path> -table <name> [flags]")
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	cfg := source.DefaultSQLiteConfig(*dbPath, *table)
	if *idCol != "" {
		cfg.IDColumn = *idCol
	}
	if *contentCol != "" {
		cfg.ContentColumn = *contentCol
	}
	if *orderBy != "" {
		cfg.OrderBy = *orderBy
	}

	src, err := source.OpenSQLite(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	settings := config.Load()
	if err := config.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	opts := settings.ViewportOptions()
	opts.FollowTail = false
	vp := viewport.New(src, opts)
	list := widgets.NewListView(vp)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.EnableMouse()

	return eventLoop(screen, list, src, vp)
}

func eventLoop(s tcell.Screen, list *widgets.ListView, src *source.SQLiteSource, vp *viewport.Viewport) error {
	w, h := s.Size()
	list.SetRect(0, 0, w, h)

	for {
		if err := list.Draw(s); err != nil {
			return err
		}
		s.Show()

		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			list.SetRect(0, 0, w, h)
			s.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if !list.Editing() && ev.Key() == tcell.KeyRune {
				switch ev.Rune() {
				case 'q':
					return nil
				case 'r':
					if err := src.Refresh(); err != nil {
						log.Printf("[SQLVIEW] refresh: %v", err)
					} else if err := vp.Refresh(); err != nil {
						log.Printf("[SQLVIEW] refresh: %v", err)
					}
					continue
				}
			}
			list.HandleEvent(ev)
		case *tcell.EventMouse:
			list.HandleEvent(ev)
		case nil:
			return nil
		}
	}
}
