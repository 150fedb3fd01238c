// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/fileview/main.go
// Summary: Terminal file viewer with syntax highlighting and search.
// Usage: fileview [-style name] [-index path] <file>

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelview/apps/fileview"
	"github.com/framegrace/texelview/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("fileview", flag.ContinueOnError)
	style := fs.String("style", "", "Chroma style name (overrides config)")
	indexPath := fs.String("index", "", "SQLite search index path, or 'mem' for in-memory (overrides config)")
	noIndex := fs.Bool("no-index", false, "Disable the search index; search scans linearly")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: fileview [flags] <file>")
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	settings := config.Load()
	if err := config.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if *style != "" {
		settings.Style = *style
	}
	switch {
	case *noIndex:
		settings.IndexPath = ""
	case *indexPath == "mem":
		settings.IndexPath = ":memory:"
	case *indexPath != "":
		settings.IndexPath = *indexPath
	}

	app, err := fileview.Open(fs.Arg(0), settings)
	if err != nil {
		return err
	}
	defer app.Close()

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

	return app.Run(screen, settings)
}
