package localization_test

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/freightlane/sitekit/internal/dom"
	"github.com/freightlane/sitekit/localization"
)

// countingFS records how many file opens hit the underlying filesystem so
// cache behaviour can be asserted.
type countingFS struct {
	inner fs.FS
	opens atomic.Int64
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.inner.Open(name)
}

type ResolverSuite struct {
	suite.Suite

	assets *countingFS
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) newResolver(namespaces ...string) *localization.Resolver {
	if len(namespaces) == 0 {
		namespaces = []string{"common", "home"}
	}

	cfg := localization.Config{
		Supported:  []localization.Locale{"en", "de"},
		Default:    "en",
		Namespaces: namespaces,
	}
	s.assets = &countingFS{inner: os.DirFS("testdata")}
	loader := localization.NewLoader(s.assets, "translations", &cfg, nil)

	r := localization.NewResolver(cfg, loader)
	s.T().Cleanup(func() { _ = r.Close() })
	return r
}

func (s *ResolverSuite) parsePage(lang string) []byte {
	return []byte(fmt.Sprintf(`<html lang=%q><body></body></html>`, lang))
}

func (s *ResolverSuite) TestDetectPriority() {
	r := s.newResolver()

	testCases := []struct {
		name           string
		target         string
		cookie         string
		acceptLanguage string
		docLang        string
		expected       localization.Detection
	}{
		{
			name:           "url wins over everything",
			target:         "/?lang=de",
			cookie:         "en",
			acceptLanguage: "en-US,en;q=0.9",
			docLang:        "fr",
			expected:       localization.Detection{Locale: "de", Source: localization.SourceURL},
		},
		{
			name:           "unsupported url value is skipped",
			target:         "/?lang=xx",
			cookie:         "de",
			acceptLanguage: "en",
			docLang:        "fr",
			expected:       localization.Detection{Locale: "de", Source: localization.SourceStorage},
		},
		{
			name:     "cookie beats document",
			target:   "/",
			cookie:   "de",
			docLang:  "en",
			expected: localization.Detection{Locale: "de", Source: localization.SourceStorage},
		},
		{
			name:     "document lang attribute normalized",
			target:   "/",
			docLang:  "en-US",
			expected: localization.Detection{Locale: "en", Source: localization.SourceDocument},
		},
		{
			name:           "agent header when document lang unsupported",
			target:         "/",
			docLang:        "fr",
			acceptLanguage: "de-DE,de;q=0.8,en;q=0.5",
			expected:       localization.Detection{Locale: "de", Source: localization.SourceAgent},
		},
		{
			name:     "default when nothing matches",
			target:   "/",
			docLang:  "fr",
			expected: localization.Detection{Locale: "en", Source: localization.SourceDefault},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "fl_lang", Value: tc.cookie})
			}
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}

			doc, err := dom.ParseBytes(s.parsePage(tc.docLang))
			s.Require().NoError(err)

			s.Require().Equal(tc.expected, r.Detect(req, doc))
		})
	}
}

func (s *ResolverSuite) TestLoadLocaleCachesUntilCleared() {
	ctx := context.Background()
	r := s.newResolver()

	set := r.LoadLocale(ctx, "en", true)
	s.Require().NotNil(set)
	s.Require().Contains(set, "common")
	s.Require().Contains(set, "home")

	opensAfterFirst := s.assets.opens.Load()
	s.Require().Positive(opensAfterFirst)

	// Cached calls must not touch the filesystem again.
	again := r.LoadLocale(ctx, "en", true)
	s.Require().Contains(again, "common")
	s.Require().Equal(opensAfterFirst, s.assets.opens.Load())

	// Clearing the locale forces a re-fetch.
	r.ClearCache(ctx, "en")
	_ = r.LoadLocale(ctx, "en", true)
	s.Require().Greater(s.assets.opens.Load(), opensAfterFirst)
}

func (s *ResolverSuite) TestLoadLocaleFallsBackPerNamespace() {
	ctx := context.Background()
	r := s.newResolver()

	// de has common.toml but no home document; home must fall back to en.
	set := r.LoadLocale(ctx, "de", true)

	value, found := set.Resolve("common.nav.home")
	s.Require().True(found)
	s.Require().Equal("Startseite", value)

	value, found = set.Resolve("home.hero.title")
	s.Require().True(found)
	s.Require().Equal("Logistics that moves you", value)
}

func (s *ResolverSuite) TestLoadNamespaceMissingEverywhereIsEmpty() {
	ctx := context.Background()
	r := s.newResolver("common", "ghost")

	doc := r.LoadNamespace(ctx, "de", "ghost")
	s.Require().NotNil(doc)
	s.Require().Empty(doc)
}

func (s *ResolverSuite) TestLoadNamespaceMergesIntoCache() {
	ctx := context.Background()
	r := s.newResolver()

	doc := r.LoadNamespace(ctx, "en", "home")
	s.Require().NotEmpty(doc)

	opens := s.assets.opens.Load()
	again := r.LoadNamespace(ctx, "en", "home")
	s.Require().NotEmpty(again)
	s.Require().Equal(opens, s.assets.opens.Load())
}

func (s *ResolverSuite) TestLoadNamespaceNeverMutatesSharedSet() {
	ctx := context.Background()
	r := s.newResolver()

	set := r.LoadLocale(ctx, "en", true)
	s.Require().Len(set, 2)

	// Lazily loading an extra namespace must not write into the set that
	// was already handed out.
	doc := r.LoadNamespace(ctx, "en", "apply")
	s.Require().NotEmpty(doc)
	s.Require().Len(set, 2)
	s.Require().NotContains(set, "apply")

	// The merged entry is visible to subsequent cached fetches.
	merged := r.LoadLocale(ctx, "en", true)
	s.Require().Contains(merged, "apply")
	s.Require().Contains(merged, "common")
}

func (s *ResolverSuite) TestConcurrentLoadsShareCacheSafely() {
	ctx := context.Background()
	r := s.newResolver()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				set := r.LoadLocale(ctx, "de", true)
				_, _ = set.Resolve("common.nav.home")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			_ = r.LoadNamespace(ctx, "de", "apply")
		}
	}()
	wg.Wait()

	value, found := r.Lookup(ctx, "de", "common.nav.home")
	s.Require().True(found)
	s.Require().Equal("Startseite", value)
}

func (s *ResolverSuite) TestLoadLocaleCompletesPartiallySeededCache() {
	ctx := context.Background()
	r := s.newResolver()

	// A lone lazy namespace load must not satisfy a whole-locale request.
	doc := r.LoadNamespace(ctx, "de", "common")
	s.Require().NotEmpty(doc)

	set := r.LoadLocale(ctx, "de", true)
	s.Require().Contains(set, "common")
	s.Require().Contains(set, "home")
}

func (s *ResolverSuite) TestYAMLNamespace() {
	ctx := context.Background()
	r := s.newResolver("common", "apply")

	value, found := r.Lookup(ctx, "en", "apply.form.submit")
	s.Require().True(found)
	s.Require().Equal("Send application", value)

	value, found = r.Lookup(ctx, "en", "apply.steps[1]")
	s.Require().True(found)
	s.Require().Equal("Pick a role", value)
}

func (s *ResolverSuite) TestSetLocale() {
	ctx := context.Background()
	r := s.newResolver()

	det, err := r.SetLocale(ctx, "de")
	s.Require().NoError(err)
	s.Require().Equal(localization.Locale("de"), det.Locale)
	s.Require().Equal(localization.SourceManual, det.Source)
	s.Require().Equal(det, r.Active())

	// An unsupported locale is rejected and leaves the active one alone.
	_, err = r.SetLocale(ctx, "fr")
	s.Require().ErrorIs(err, localization.ErrUnsupportedLocale)
	s.Require().Equal(localization.Locale("de"), r.Active().Locale)
}

func (s *ResolverSuite) TestTranslateReturnsKeyOnMiss() {
	ctx := context.Background()
	r := s.newResolver()

	s.Require().Equal("Home", r.Translate(ctx, "common.nav.home"))
	s.Require().Equal("common.nav.missing", r.Translate(ctx, "common.nav.missing"))
}

func (s *ResolverSuite) TestLocaleURL() {
	r := s.newResolver()

	s.Require().Equal("/services?lang=de", r.LocaleURL("/services", "", "de"))
	s.Require().Equal("/?lang=en&tech=sea", r.LocaleURL("", "tech=sea&lang=de", "en"))
}

func (s *ResolverSuite) TestLocaleURLRejectsExternalTargets() {
	r := s.newResolver()

	testCases := []struct {
		name string
		path string
	}{
		{name: "protocol relative host", path: "//evil.example"},
		{name: "absolute url", path: "https://evil.example/x"},
		{name: "backslash host", path: `/\evil.example`},
		{name: "no leading slash", path: "evil"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Require().Equal("/?lang=en", r.LocaleURL(tc.path, "", "en"))
		})
	}
}

func (s *ResolverSuite) TestSwitchLocale() {
	ctx := context.Background()
	r := s.newResolver()

	rec := httptest.NewRecorder()
	target, err := r.SwitchLocale(ctx, rec, "de", "/services", "", true, true)
	s.Require().NoError(err)
	s.Require().Equal("/services?lang=de", target)
	s.Require().Equal(localization.Locale("de"), r.Active().Locale)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "fl_lang" {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)
	s.Require().Equal("de", cookie.Value)

	// Without updateURL and persist the target passes through untouched
	// and no cookie is written.
	rec = httptest.NewRecorder()
	target, err = r.SwitchLocale(ctx, rec, "en", "/services", "page=2", false, false)
	s.Require().NoError(err)
	s.Require().Equal("/services?page=2", target)
	s.Require().Empty(rec.Result().Cookies())

	_, err = r.SwitchLocale(ctx, httptest.NewRecorder(), "fr", "/", "", true, true)
	s.Require().ErrorIs(err, localization.ErrUnsupportedLocale)
}
