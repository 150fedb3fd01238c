// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/logview/main.go
// Summary: Live log viewer: tails a command or piped stdin.
// Usage: logview <command> [args...]  |  some-command | logview

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/framegrace/texelview/apps/logview"
	"github.com/framegrace/texelview/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("logview", flag.ContinueOnError)
	maxLines := fs.Int("max-lines", logview.DefaultMaxLines, "Maximum lines kept in memory")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	settings := config.Load()
	if err := config.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	app := logview.New(settings)
	app.SetMaxLines(*maxLines)
	defer app.Stop()

	stdinPiped := !term.IsTerminal(int(os.Stdin.Fd()))
	switch {
	case fs.NArg() > 0:
		if err := app.Tail(fs.Arg(0), fs.Args()[1:]...); err != nil {
			return err
		}
	case stdinPiped:
		app.TailFile(os.Stdin)
	default:
		return fmt.Errorf("usage: logview <command> [args...], or pipe input on stdin")
	}

	// The screen reads /dev/tty directly, so a piped stdin is fine.
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

	return app.Run(screen)
}
