package lint

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// memDoc is an in-memory Document for tests.
type memDoc struct {
	path string
	text string
}

func (d *memDoc) Location() string { return d.path }

func (d *memDoc) Text(context.Context) (string, error) { return d.text, nil }

// memWorkspace is an in-memory Workspace over slash-separated paths.
// Open memoizes documents so every open of one location yields the same
// Document identity, the way an editor's document store behaves.
type memWorkspace struct {
	mu    sync.Mutex
	files map[string]string
	docs  map[string]*memDoc
	opens map[string]int
}

func newMemWorkspace(files map[string]string) *memWorkspace {
	return &memWorkspace{
		files: files,
		docs:  make(map[string]*memDoc),
		opens: make(map[string]int),
	}
}

func (w *memWorkspace) ParentOf(location string) string { return path.Dir(location) }

func (w *memWorkspace) BaseNameOf(location string) string { return path.Base(location) }

func (w *memWorkspace) JoinRelative(dir, rel string) string { return path.Join(dir, rel) }

func (w *memWorkspace) Stat(_ context.Context, location string) FileStat {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[location]; ok {
		return StatFile
	}
	prefix := location + "/"
	for p := range w.files {
		if strings.HasPrefix(p, prefix) {
			return StatDir
		}
	}
	return StatMissing
}

func (w *memWorkspace) Open(_ context.Context, location string) (Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opens[location]++
	text, ok := w.files[location]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", location)
	}
	doc, ok := w.docs[location]
	if !ok {
		doc = &memDoc{path: location, text: text}
		w.docs[location] = doc
	}
	return doc, nil
}
