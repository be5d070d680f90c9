// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package static caches the single HTML page the server hands out and
// reloads it when the file changes on disk.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
)

// Asset is one file held in memory.
type Asset struct {
	path string

	mu   sync.RWMutex
	data []byte
	ok   bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Load reads path and watches its directory for changes. A missing file is
// not an error; Bytes reports it as unavailable until it appears.
func Load(path string) (*Asset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	a := &Asset{path: abs, done: make(chan struct{})}
	a.Reload()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	a.watcher = w

	go a.watch()
	return a, nil
}

// Bytes returns the cached content. ok is false if the file could not be
// read.
func (a *Asset) Bytes() (data []byte, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data, a.ok
}

// Reload re-reads the file from disk.
func (a *Asset) Reload() {
	data, err := os.ReadFile(a.path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("static file missing", "path", a.path)
		} else {
			slog.Error("failed to read static file", "path", a.path, "error", err)
		}
		a.data, a.ok = nil, false
		return
	}
	a.data, a.ok = data, true
	slog.Debug("static file loaded", "path", a.path, "size", humanize.Bytes(uint64(len(data))))
}

// Close stops watching. Bytes keeps returning the last content.
func (a *Asset) Close() error {
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Close()
	<-a.done
	return err
}

func (a *Asset) watch() {
	defer close(a.done)
	for {
		select {
		case ev, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != a.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				a.Reload()
			}
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("static watcher error", "error", err)
		}
	}
}
