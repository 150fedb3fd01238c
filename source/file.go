// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/file.go
// Summary: Read-only file source with an in-memory line offset index
// for O(1) random access. The file body stays on disk.

package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/framegrace/texelview/viewport"
)

// FileSource exposes a text file as one item per line. The file is
// indexed once on open; content is read on demand so arbitrarily large
// files cost only the offset index in memory.
//
// FileSource is read-only: the viewport's mutation operations do not
// apply. External changes to the file require Reload followed by
// Viewport.Refresh.
type FileSource struct {
	mu   sync.RWMutex
	path string
	file *os.File

	// offsets[i] is the byte offset of line i; a final sentinel entry
	// marks end-of-file, so line i spans [offsets[i], offsets[i+1]).
	offsets []int64
}

// OpenFile opens and indexes the file at path.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fs := &FileSource{path: path, file: f}
	if err := fs.index(); err != nil {
		f.Close()
		return nil, err
	}
	return fs, nil
}

// index scans the file once and records line start offsets.
func (fs *FileSource) index() error {
	if _, err := fs.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", fs.path, err)
	}

	offsets := []int64{0}
	var pos int64
	r := bufio.NewReaderSize(fs.file, 256*1024)
	for {
		line, err := r.ReadSlice('\n')
		pos += int64(len(line))
		if err == bufio.ErrBufferFull {
			// Long line: consume until the newline.
			for err == bufio.ErrBufferFull {
				line, err = r.ReadSlice('\n')
				pos += int64(len(line))
			}
		}
		if err == io.EOF {
			if pos > offsets[len(offsets)-1] {
				// Trailing content without a final newline is a line.
				offsets = append(offsets, pos)
			}
			break
		}
		if err != nil {
			return fmt.Errorf("index %s: %w", fs.path, err)
		}
		offsets = append(offsets, pos)
	}

	fs.mu.Lock()
	fs.offsets = offsets
	fs.mu.Unlock()
	return nil
}

// Reload re-indexes the file after external modification.
func (fs *FileSource) Reload() error {
	return fs.index()
}

// Path returns the indexed file path.
func (fs *FileSource) Path() string { return fs.path }

// Close releases the underlying file handle.
func (fs *FileSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.file.Close()
}

// TotalCount returns the number of indexed lines.
func (fs *FileSource) TotalCount() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.offsets) - 1
}

// Fetch reads line index from disk. The trailing newline is stripped.
func (fs *FileSource) Fetch(index int) (viewport.Item, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if index < 0 || index >= len(fs.offsets)-1 {
		return viewport.Item{}, fmt.Errorf("file fetch %d: out of range [0, %d)", index, len(fs.offsets)-1)
	}

	start := fs.offsets[index]
	length := fs.offsets[index+1] - start
	buf := make([]byte, length)
	if _, err := fs.file.ReadAt(buf, start); err != nil {
		return viewport.Item{}, fmt.Errorf("read %s line %d: %w", fs.path, index, err)
	}

	content := strings.TrimRight(string(buf), "\r\n")
	return viewport.Item{
		ID:         lineID(index),
		Content:    content,
		Selectable: true,
	}, nil
}

// IDAt returns the stable id of line index.
func (fs *FileSource) IDAt(index int) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if index < 0 || index >= len(fs.offsets)-1 {
		return ""
	}
	return lineID(index)
}

// IndexOf resolves a line id back to its index.
func (fs *FileSource) IndexOf(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "line-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if n < 0 || n >= len(fs.offsets)-1 {
		return 0, false
	}
	return n, true
}

func lineID(index int) string {
	return "line-" + strconv.Itoa(index)
}

// Interface checks.
var (
	_ viewport.Source   = (*FileSource)(nil)
	_ viewport.IDSource = (*FileSource)(nil)
)
