package localization

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pitabwire/util"
	"gopkg.in/yaml.v3"

	"github.com/freightlane/sitekit/workerpool"
)

// UnmarshalFunc decodes a raw translation asset into a document tree.
type UnmarshalFunc func(data []byte, v any) error

// Loader reads translation documents from an asset filesystem laid out as
// {root}/{locale}/{namespace}.{ext}.
type Loader struct {
	assets  fs.FS
	root    string
	cfg     *Config
	pool    workerpool.Pool
	formats map[string]UnmarshalFunc
	// order holds the registered extensions in registration order; read
	// consults every one of them.
	order []string
}

// NewLoader builds a loader over the supplied asset filesystem. JSON, TOML
// and YAML documents are understood out of the box; further formats can be
// registered before use.
func NewLoader(assets fs.FS, root string, cfg *Config, pool workerpool.Pool) *Loader {
	cfg.normalize()
	l := &Loader{
		assets:  assets,
		root:    root,
		cfg:     cfg,
		pool:    pool,
		formats: map[string]UnmarshalFunc{},
	}
	l.RegisterUnmarshalFunc("json", json.Unmarshal)
	l.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	l.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	return l
}

// RegisterUnmarshalFunc registers a decoder for the given file extension.
// Re-registering an extension replaces its decoder without changing its
// position in the lookup order.
func (l *Loader) RegisterUnmarshalFunc(ext string, fn UnmarshalFunc) {
	if _, exists := l.formats[ext]; !exists {
		l.order = append(l.order, ext)
	}
	l.formats[ext] = fn
}

// Namespace loads one namespace document for a locale. Failures degrade:
// a non-default locale falls back to the default locale's document, and if
// that also fails an empty document is returned. It never returns an error.
func (l *Loader) Namespace(ctx context.Context, locale Locale, namespace string) Document {
	doc, err := l.read(locale, namespace)
	if err == nil {
		return doc
	}

	log := util.Log(ctx).WithField("locale", locale.String()).WithField("namespace", namespace)
	log.WithError(err).Warn("namespace load failed")

	if locale != l.cfg.Default {
		doc, err = l.read(l.cfg.Default, namespace)
		if err == nil {
			return doc
		}
		log.WithError(err).Warn("default locale fallback failed")
	}

	return Document{}
}

// Locale loads every configured namespace for a locale concurrently and
// returns the combined set. Individual namespace failures are absorbed by
// the fallback chain in Namespace, so the set always holds one document per
// namespace.
func (l *Loader) Locale(ctx context.Context, locale Locale) DocumentSet {
	set := make(DocumentSet, len(l.cfg.Namespaces))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, namespace := range l.cfg.Namespaces {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			doc := l.Namespace(ctx, locale, namespace)
			mu.Lock()
			set[namespace] = doc
			mu.Unlock()
		}
		if l.pool == nil || l.pool.Submit(ctx, task) != nil {
			// Degrade to a direct call when the pool is absent or full.
			task()
		}
	}

	wg.Wait()
	return set
}

// read loads and decodes the asset for one (locale, namespace) pair, trying
// each registered format in turn.
func (l *Loader) read(locale Locale, namespace string) (Document, error) {
	var lastErr error
	for _, ext := range l.order {
		fn := l.formats[ext]

		name := path.Join(l.root, locale.String(), namespace+"."+ext)
		data, err := fs.ReadFile(l.assets, name)
		if err != nil {
			lastErr = err
			continue
		}

		var tree map[string]any
		if err = fn(data, &tree); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return normalizeTree(tree), nil
	}

	if lastErr == nil {
		lastErr = fs.ErrNotExist
	}
	return nil, fmt.Errorf("no document for %s/%s: %w", locale, namespace, lastErr)
}

// normalizeTree coerces decoder-specific container types into the canonical
// map[string]any / []any shape ResolveKey walks. YAML in particular can
// produce map[any]any nodes.
func normalizeTree(tree map[string]any) Document {
	out := make(Document, len(tree))
	for k, v := range tree {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
