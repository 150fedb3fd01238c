// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Viewer configuration store backed by a JSON file under the
// user config directory.

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/framegrace/texelview/viewport"
)

// Settings holds the user-tunable viewer options. All fields have
// working defaults; a missing or partial config file is not an error.
type Settings struct {
	// Style is the Chroma style name for syntax highlighting.
	Style string `json:"style"`

	// SelectionMode is "none", "single" or "multi".
	SelectionMode string `json:"selectionMode"`

	// ScrollMode is "line" or "pixel".
	ScrollMode string `json:"scrollMode"`

	// ScrollbarPosition is "right" or "left"; ShowScrollbar toggles it.
	ShowScrollbar     bool   `json:"showScrollbar"`
	ScrollbarPosition string `json:"scrollbarPosition"`

	// CacheSize is the content cache capacity in items.
	CacheSize int `json:"cacheSize"`

	// FollowTail keeps the viewport pinned to new content when it is
	// already at the bottom.
	FollowTail bool `json:"followTail"`

	// IndexPath is the SQLite text index location. Empty disables the
	// index; ":memory:" keeps it in RAM.
	IndexPath string `json:"indexPath"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Style:             "catppuccin-mocha",
		SelectionMode:     "single",
		ScrollMode:        "line",
		ShowScrollbar:     true,
		ScrollbarPosition: "right",
		CacheSize:         viewport.DefaultCacheSize,
		FollowTail:        true,
	}
}

// ViewportOptions converts the settings to engine options. Width and
// height stay at their defaults; the widget resizes on attach.
func (s Settings) ViewportOptions() viewport.Options {
	opts := viewport.DefaultOptions()
	opts.CacheSize = s.CacheSize
	opts.ShowScrollbar = s.ShowScrollbar
	opts.FollowTail = s.FollowTail

	switch s.SelectionMode {
	case "single":
		opts.SelectionMode = viewport.SelectionSingle
	case "multi":
		opts.SelectionMode = viewport.SelectionMulti
	default:
		opts.SelectionMode = viewport.SelectionNone
	}
	if s.ScrollMode == "pixel" {
		opts.ScrollMode = viewport.ScrollModePixel
	}
	if s.ScrollbarPosition == "left" {
		opts.ScrollbarPosition = viewport.ScrollbarLeft
	}
	return opts
}

var (
	mu      sync.RWMutex
	once    sync.Once
	current Settings
	loadErr error
)

// Load returns the stored settings, reading the config file on first
// use. Load failures fall back to defaults; Err reports them.
func Load() Settings {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Err returns the most recent config load error.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// Set replaces the in-memory settings.
func Set(s Settings) {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	current = s
}

// Save persists the current settings to disk.
func Save() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	path, err := configPath()
	if err != nil {
		return err
	}
	return writeSettings(path, current)
}

// Reload re-reads the config file.
func Reload() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadLocked()
	return loadErr
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	current = Default()
	loadErr = loadLocked()
}

func loadLocked() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	loaded, found, err := readSettings(path)
	if err != nil {
		log.Printf("[CONFIG] Failed to load %s: %v", path, err)
		return err
	}
	if !found {
		// First run: write the defaults so users have a file to edit.
		current = Default()
		if werr := writeSettings(path, current); werr != nil {
			log.Printf("[CONFIG] Failed to write defaults: %v", werr)
		}
		return nil
	}
	current = loaded
	return nil
}

// readSettings parses the file at path over a base of defaults, so
// newly added fields keep working with old config files.
func readSettings(path string) (Settings, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, false, nil
		}
		return Settings{}, false, err
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, true, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, true, nil
}

func writeSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
