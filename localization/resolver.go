package localization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pitabwire/util"
	"golang.org/x/net/html"

	"github.com/freightlane/sitekit/cache"
	"github.com/freightlane/sitekit/internal/dom"
)

// ErrUnsupportedLocale is returned when a manual switch names a locale
// outside the supported set. The previous locale stays active.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// localeDocs is one cache entry. Sets handed out to callers are shared, so
// cached maps are never mutated in place; merges replace the entry with a
// copy. complete marks entries produced by a whole-locale load as opposed to
// lazy single-namespace seeding.
type localeDocs struct {
	set      DocumentSet
	complete bool
}

// Resolver owns the active locale, the translation document cache and the
// painting of translated text into page documents. Each resolver instance
// carries its own cache so isolated instances can be built in tests.
type Resolver struct {
	cfg    Config
	loader *Loader

	docs   cache.Cache[Locale, localeDocs]
	loadMu sync.Mutex

	mu     sync.RWMutex
	active Detection
}

// NewResolver builds a resolver around the supplied loader.
func NewResolver(cfg Config, loader *Loader) *Resolver {
	cfg.normalize()
	return &Resolver{
		cfg:    cfg,
		loader: loader,
		docs:   cache.NewInMemory[Locale, localeDocs](),
		active: Detection{Locale: cfg.Default, Source: SourceDefault},
	}
}

// Close releases the document cache.
func (r *Resolver) Close() error {
	return r.docs.Close()
}

// Config returns the resolver's locale configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Active returns the currently active locale and its detection source.
func (r *Resolver) Active() Detection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Detect determines the locale for a request using the priority chain:
// URL query parameter, persisted cookie, the page document's declared lang
// attribute, the Accept-Language header, and finally the default locale.
// It always resolves; there is no failure mode.
func (r *Resolver) Detect(req *http.Request, doc *html.Node) Detection {
	if req != nil {
		if v := strings.TrimSpace(req.URL.Query().Get(r.cfg.QueryParam)); v != "" {
			if l := Locale(strings.ToLower(v)); r.cfg.IsSupported(l) {
				return Detection{Locale: l, Source: SourceURL}
			}
		}

		if c, err := req.Cookie(r.cfg.CookieName); err == nil {
			if l := Locale(c.Value); r.cfg.IsSupported(l) {
				return Detection{Locale: l, Source: SourceStorage}
			}
		}
	}

	if doc != nil {
		if root := dom.FindElement(doc, "html"); root != nil {
			if v, ok := dom.Attr(root, "lang"); ok {
				if l := NormalizeLang(v); r.cfg.IsSupported(l) {
					return Detection{Locale: l, Source: SourceDocument}
				}
			}
		}
	}

	if req != nil {
		for _, l := range acceptedLocales(req.Header.Get("Accept-Language")) {
			if r.cfg.IsSupported(l) {
				return Detection{Locale: l, Source: SourceAgent}
			}
		}
	}

	return Detection{Locale: r.cfg.Default, Source: SourceDefault}
}

// SetLocale switches the active locale. An unsupported locale is a logged
// no-op returning ErrUnsupportedLocale. On success the locale's documents
// are loaded before the call returns, so a following paint never awaits.
func (r *Resolver) SetLocale(ctx context.Context, locale Locale) (Detection, error) {
	if !r.cfg.IsSupported(locale) {
		util.Log(ctx).WithField("locale", locale.String()).Error("locale switch rejected")
		return r.Active(), ErrUnsupportedLocale
	}

	r.mu.Lock()
	r.active = Detection{Locale: locale, Source: SourceManual}
	r.mu.Unlock()

	r.LoadLocale(ctx, locale, true)
	return Detection{Locale: locale, Source: SourceManual}, nil
}

// LoadLocale returns the full document set of a locale, loading every
// namespace concurrently on first use. With useCache a complete cached set
// is returned verbatim without re-reading any asset; a set seeded only by
// lazy namespace loads does not satisfy a whole-locale request and is
// completed here.
func (r *Resolver) LoadLocale(ctx context.Context, locale Locale, useCache bool) DocumentSet {
	if useCache {
		if entry, ok, _ := r.docs.Get(ctx, locale); ok && entry.complete {
			return entry.set
		}
	}

	set := r.loader.Locale(ctx, locale)

	r.loadMu.Lock()
	// Keep namespaces loaded lazily outside the configured list.
	if entry, ok, _ := r.docs.Get(ctx, locale); ok {
		for ns, doc := range entry.set {
			if _, exists := set[ns]; !exists {
				set[ns] = doc
			}
		}
	}
	_ = r.docs.Set(ctx, locale, localeDocs{set: set, complete: true}, 0)
	r.loadMu.Unlock()

	return set
}

// LoadNamespace returns one namespace document, merging it into the
// locale's cached set. Used for lazy per-page loading.
func (r *Resolver) LoadNamespace(ctx context.Context, locale Locale, namespace string) Document {
	r.loadMu.Lock()
	entry, ok, _ := r.docs.Get(ctx, locale)
	if ok {
		if doc, exists := entry.set[namespace]; exists {
			r.loadMu.Unlock()
			return doc
		}
	}
	r.loadMu.Unlock()

	doc := r.loader.Namespace(ctx, locale, namespace)

	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	entry, ok, _ = r.docs.Get(ctx, locale)
	if cached, exists := entry.set[namespace]; ok && exists {
		return cached
	}

	// Cached sets are shared with readers; merge into a copy instead of
	// writing to a map already handed out.
	merged := make(DocumentSet, len(entry.set)+1)
	for ns, d := range entry.set {
		merged[ns] = d
	}
	merged[namespace] = doc
	_ = r.docs.Set(ctx, locale, localeDocs{set: merged, complete: entry.complete}, 0)

	return doc
}

// ClearCache drops cached documents. Without arguments the whole cache is
// flushed; otherwise only the named locales are evicted.
func (r *Resolver) ClearCache(ctx context.Context, locales ...Locale) {
	if len(locales) == 0 {
		_ = r.docs.Flush(ctx)
		return
	}
	for _, locale := range locales {
		_ = r.docs.Delete(ctx, locale)
	}
}

// Lookup resolves a key against a locale's documents.
func (r *Resolver) Lookup(ctx context.Context, locale Locale, key string) (string, bool) {
	set := r.LoadLocale(ctx, locale, true)
	return set.Resolve(key)
}

// Translate resolves a key against the active locale, returning the raw key
// itself when no translation exists.
func (r *Resolver) Translate(ctx context.Context, key string) string {
	value, ok := r.Lookup(ctx, r.Active().Locale, key)
	if !ok {
		util.Log(ctx).WithField("key", key).Debug("missing translation")
		return key
	}
	return value
}

// SetLocaleCookie persists a manual locale choice on the response.
func (r *Resolver) SetLocaleCookie(w http.ResponseWriter, locale Locale) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    locale.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// LocaleURL returns the given path with the locale query parameter updated.
// Only site-relative paths are honoured; anything carrying a scheme or host
// collapses to the root path.
func (r *Resolver) LocaleURL(path, rawQuery string, locale Locale) string {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(r.cfg.QueryParam, locale.String())
	return (&url.URL{Path: sitePath(path), RawQuery: query.Encode()}).String()
}

// SwitchLocale performs a manual locale switch in one step. With persist the
// choice is written to the locale cookie on w; with updateURL the returned
// redirect target carries the locale query parameter, otherwise the target
// echoes path and rawQuery unchanged. An unsupported locale switches
// nothing and returns ErrUnsupportedLocale.
func (r *Resolver) SwitchLocale(
	ctx context.Context,
	w http.ResponseWriter,
	locale Locale,
	path, rawQuery string,
	updateURL, persist bool,
) (string, error) {
	if _, err := r.SetLocale(ctx, locale); err != nil {
		return "", err
	}

	if persist {
		r.SetLocaleCookie(w, locale)
	}

	if updateURL {
		return r.LocaleURL(path, rawQuery, locale), nil
	}
	return (&url.URL{Path: sitePath(path), RawQuery: rawQuery}).String(), nil
}

// sitePath restricts a redirect target to a site-relative path. Values with
// a scheme, a protocol-relative host ("//host") or a backslash variant fall
// back to the root path.
func sitePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != '/' {
		return "/"
	}
	if len(path) > 1 && (path[1] == '/' || path[1] == '\\') {
		return "/"
	}
	return path
}

// String implements fmt.Stringer for diagnostics.
func (d Detection) String() string {
	return fmt.Sprintf("%s(%s)", d.Locale, d.Source)
}
