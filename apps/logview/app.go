// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/logview/app.go
// Summary: Live log viewer: tails a command's output (through a pty,
// so programs keep line-buffering and colors off) or an io.Reader into
// a viewport with follow-tail, search and selection.

package logview

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelview/config"
	"github.com/framegrace/texelview/source"
	"github.com/framegrace/texelview/viewport"
	"github.com/framegrace/texelview/widgets"
)

// DefaultMaxLines caps the in-memory line buffer; older lines are
// dropped from the head once it is exceeded.
const DefaultMaxLines = 100000

// App is the log viewer application.
type App struct {
	buf  *source.Buffer
	vp   *viewport.Viewport
	list *widgets.ListView

	maxLines int
	seq      uint64

	mu     sync.Mutex
	screen tcell.Screen
	cmd    *exec.Cmd
	ptyf   *os.File
	stop   chan struct{}
}

// New builds a log viewer from stored settings. Follow-tail is forced
// on; a log viewer that does not follow is a file viewer.
func New(settings config.Settings) *App {
	buf := source.NewBuffer()
	opts := settings.ViewportOptions()
	opts.FollowTail = true
	vp := viewport.New(buf, opts)

	return &App{
		buf:      buf,
		vp:       vp,
		list:     widgets.NewListView(vp),
		maxLines: DefaultMaxLines,
		stop:     make(chan struct{}),
	}
}

// Viewport exposes the engine for tests and embedding.
func (a *App) Viewport() *viewport.Viewport { return a.vp }

// SetMaxLines adjusts the line cap. Values below 1 are ignored.
func (a *App) SetMaxLines(n int) {
	if n >= 1 {
		a.maxLines = n
	}
}

// Tail starts command under a pty and streams its output into the
// viewer.
func (a *App) Tail(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptyf, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty for %q: %w", command, err)
	}

	a.mu.Lock()
	a.cmd = cmd
	a.ptyf = ptyf
	a.mu.Unlock()

	go a.readLines(ptyf)
	return nil
}

// TailFile streams an already-open stream (stdin, a pipe) into the
// viewer.
func (a *App) TailFile(f *os.File) {
	go a.readLines(f)
}

func (a *App) readLines(f *os.File) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-a.stop:
			return
		default:
		}
		a.appendLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[LOGVIEW] read: %v", err)
	}
}

func (a *App) appendLine(text string) {
	// Appends go through the viewport, not the buffer directly, so
	// search state, the index and follow-tail all see the new item.
	id := fmt.Sprintf("log-%d", atomic.AddUint64(&a.seq, 1))
	a.vp.AppendItem(viewport.Item{ID: id, Content: text, Selectable: true})

	// Head trimming keeps memory bounded on long-running tails.
	for a.vp.TotalItems() > a.maxLines {
		oldest := a.buf.IDAt(0)
		if oldest == "" || !a.vp.RemoveItem(oldest) {
			break
		}
	}
	a.requestRedraw()
}

// requestRedraw wakes the event loop. Posting may race with screen
// teardown, so the screen is read under the lock.
func (a *App) requestRedraw() {
	a.mu.Lock()
	s := a.screen
	a.mu.Unlock()
	if s != nil {
		s.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// Run drives the tcell event loop until quit (Ctrl+C or q).
func (a *App) Run(s tcell.Screen) error {
	a.mu.Lock()
	a.screen = s
	a.mu.Unlock()

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
		case *tcell.EventInterrupt:
			// New content; loop redraws.
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || (!a.list.Editing() && ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return nil
			}
			a.list.HandleEvent(ev)
		case *tcell.EventMouse:
			a.list.HandleEvent(ev)
		case nil:
			return nil
		}
	}
}

// Stop terminates the tailed command and the reader.
func (a *App) Stop() {
	close(a.stop)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ptyf != nil {
		a.ptyf.Close()
	}
	if a.cmd != nil && a.cmd.Process != nil {
		a.cmd.Process.Kill()
	}
}
