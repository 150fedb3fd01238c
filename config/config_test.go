// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/framegrace/texelview/viewport"
)

func resetStore() {
	once = sync.Once{}
	current = Settings{}
	loadErr = nil
}

func TestDefaultsWrittenOnFirstLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	s := Load()
	if s.Style == "" || s.CacheSize == 0 {
		t.Fatalf("defaults not applied: %+v", s)
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var disk Settings
	if err := json.Unmarshal(data, &disk); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if disk.Style != s.Style {
		t.Errorf("disk style %q, want %q", disk.Style, s.Style)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	s := Load()
	s.SelectionMode = "multi"
	s.CacheSize = 42
	Set(s)
	if err := Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	resetStore()
	got := Load()
	if got.SelectionMode != "multi" || got.CacheSize != 42 {
		t.Errorf("reloaded settings %+v", got)
	}
	if err := Err(); err != nil {
		t.Errorf("Err = %v", err)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	resetStore()

	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir+"/texelview", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"selectionMode": "multi"}`), 0644); err != nil {
		t.Fatal(err)
	}

	s := Load()
	if s.SelectionMode != "multi" {
		t.Errorf("selectionMode = %q", s.SelectionMode)
	}
	if s.CacheSize != viewport.DefaultCacheSize {
		t.Errorf("cacheSize lost its default: %d", s.CacheSize)
	}
}

func TestViewportOptions(t *testing.T) {
	s := Default()
	s.SelectionMode = "multi"
	s.ScrollMode = "pixel"
	s.ScrollbarPosition = "left"
	s.CacheSize = 7

	opts := s.ViewportOptions()
	if opts.SelectionMode != viewport.SelectionMulti {
		t.Errorf("selection mode = %v", opts.SelectionMode)
	}
	if opts.ScrollMode != viewport.ScrollModePixel {
		t.Errorf("scroll mode = %v", opts.ScrollMode)
	}
	if opts.ScrollbarPosition != viewport.ScrollbarLeft {
		t.Errorf("scrollbar position = %v", opts.ScrollbarPosition)
	}
	if opts.CacheSize != 7 {
		t.Errorf("cache size = %d", opts.CacheSize)
	}
}
