// Package fswork binds the lint engine's workspace abstraction to the
// local filesystem. Locations are native paths; relative paths from
// template manifests are written slash-separated and converted on join.
package fswork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"templint/internal/lint"
)

// DirWorkspace resolves locations through the operating system.
// Create one with New; one instance can serve any number of template
// packages.
type DirWorkspace struct {
	mu   sync.Mutex
	docs map[string]*FileDocument
}

// New returns a filesystem workspace.
func New() *DirWorkspace {
	return &DirWorkspace{docs: make(map[string]*FileDocument)}
}

func (w *DirWorkspace) ParentOf(location string) string {
	return filepath.Dir(location)
}

func (w *DirWorkspace) BaseNameOf(location string) string {
	return filepath.Base(location)
}

func (w *DirWorkspace) JoinRelative(dir, relPath string) string {
	return filepath.Join(dir, filepath.FromSlash(relPath))
}

// Stat classifies the location. Any stat failure, not just a missing
// file, reads as missing; the linter wants one answer, not an error.
func (w *DirWorkspace) Stat(_ context.Context, location string) lint.FileStat {
	info, err := os.Stat(location)
	switch {
	case err != nil:
		return lint.StatMissing
	case info.IsDir():
		return lint.StatDir
	default:
		return lint.StatFile
	}
}

// Open returns the document for location. Documents are memoized per
// location so diagnostics produced in separate passes over the same
// workspace key consistently.
func (w *DirWorkspace) Open(_ context.Context, location string) (lint.Document, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", location)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[location]
	if !ok {
		doc = &FileDocument{path: location}
		w.docs[location] = doc
	}
	return doc, nil
}

// FileDocument is a lint.Document backed by a file on disk. The text is
// read once and cached for the lifetime of the document.
type FileDocument struct {
	path string

	once sync.Once
	text string
	err  error
}

func (d *FileDocument) Location() string { return d.path }

// Text reads and caches the file's contents. A read failure is cached
// too and returned to every caller.
func (d *FileDocument) Text(context.Context) (string, error) {
	d.once.Do(func() {
		data, err := os.ReadFile(d.path)
		if err != nil {
			d.err = fmt.Errorf("read %s: %w", d.path, err)
			return
		}
		d.text = string(data)
	})
	return d.text, d.err
}
