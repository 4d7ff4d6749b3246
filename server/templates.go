package server

import (
	"fmt"
	"io/fs"
	"sync"

	"golang.org/x/net/html"

	"github.com/freightlane/sitekit/internal/dom"
)

// templateStore parses page templates once and hands out deep copies for
// per-request mutation.
type templateStore struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]*html.Node
}

func newTemplateStore(fsys fs.FS) *templateStore {
	return &templateStore{fsys: fsys, cache: map[string]*html.Node{}}
}

// Page returns a mutable copy of the named template. The parsed tree is
// cached; callers own the copy.
func (t *templateStore) Page(name string) (*html.Node, error) {
	t.mu.RLock()
	cached, ok := t.cache[name]
	t.mu.RUnlock()
	if ok {
		return dom.Clone(cached), nil
	}

	data, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	parsed, err := dom.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	t.mu.Lock()
	t.cache[name] = parsed
	t.mu.Unlock()

	return dom.Clone(parsed), nil
}
