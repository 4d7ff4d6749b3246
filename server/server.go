// Package server serves the localized marketing pages: per request it
// clones the parsed page template, paints translations for the detected
// locale, stamps tab group state from the URL and serialises the result.
package server

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pitabwire/util"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freightlane/sitekit/config"
	"github.com/freightlane/sitekit/internal/dom"
	"github.com/freightlane/sitekit/localization"
	"github.com/freightlane/sitekit/tabs"
)

// Server wires the page registry to the localization engine.
type Server struct {
	cfg       *config.SiteConfig
	resolver  *localization.Resolver
	manager   localization.Manager
	templates *templateStore
	pages     []Page
	handler   http.Handler
}

// New assembles the HTTP surface. siteFS must contain the templates/
// directory and, when present, static/ assets.
func New(
	ctx context.Context,
	cfg *config.SiteConfig,
	resolver *localization.Resolver,
	manager localization.Manager,
	siteFS fs.FS,
) *Server {
	s := &Server{
		cfg:       cfg,
		resolver:  resolver,
		manager:   manager,
		templates: newTemplateStore(siteFS),
		pages:     sitePages(),
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return contextSetupMiddleware(ctx, cfg, next)
	})
	router.Use(requestIDMiddleware)
	router.Use(languageMiddleware)
	router.Use(loggingMiddleware)

	for _, p := range s.pages {
		router.Get(p.Path, s.pageHandler(p))
	}
	router.Post("/lang", s.handleLanguageSwitch)

	if static, err := fs.Sub(siteFS, "static"); err == nil {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	}

	router.NotFound(s.handleNotFound)

	s.handler = otelhttp.NewHandler(router, "sitekit.http")
	return s
}

// Handler returns the assembled HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// pageHandler renders one registry page.
func (s *Server) pageHandler(p Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		doc, err := s.templates.Page(p.Template)
		if err != nil {
			s.renderServerError(w, r, err)
			return
		}

		detection := s.resolver.Detect(r, doc)
		for _, ns := range p.Namespaces {
			s.resolver.LoadNamespace(ctx, detection.Locale, ns)
		}
		s.resolver.Paint(ctx, doc, detection.Locale)

		query := r.URL.Query()
		for _, groupCfg := range p.TabGroups {
			group, groupErr := tabs.NewGroup(ctx, doc, groupCfg, query)
			if groupErr != nil {
				util.Log(ctx).WithError(groupErr).
					WithField("tabGroup", groupCfg.Name).
					Warn("skipping misconfigured tab group")
				continue
			}
			group.Close()
		}

		body, err := dom.Render(doc)
		if err != nil {
			s.renderServerError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Language", detection.Locale.String())
		_, _ = w.Write(body)
	}
}

// handleLanguageSwitch persists a manual locale choice and redirects back
// to the originating page with the locale parameter applied.
func (s *Server) handleLanguageSwitch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	locale := localization.NormalizeLang(r.FormValue("lang"))
	target, err := s.resolver.SwitchLocale(
		ctx, w, locale,
		r.FormValue("redirect"), r.FormValue("query"),
		true, true,
	)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "ErrorBadLanguageTitle", "ErrorBadLanguageBody")
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "ErrorNotFoundTitle", "ErrorNotFoundBody")
}

func (s *Server) renderServerError(w http.ResponseWriter, r *http.Request, err error) {
	util.Log(r.Context()).WithError(err).Error("page render failed")
	s.renderError(w, r, http.StatusInternalServerError, "ErrorInternalTitle", "ErrorInternalBody")
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
  <main class="error-page">
    <h1>{{.Title}}</h1>
    <p>{{.Body}}</p>
    <a href="/">{{.HomeLabel}}</a>
  </main>
</body>
</html>
`))

// renderError serves a localized error page through the message catalog.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, titleID, bodyID string) {
	ctx := r.Context()
	detection := s.resolver.Detect(r, nil)

	data := struct {
		Lang      string
		Title     string
		Body      string
		HomeLabel string
	}{
		Lang:      detection.Locale.String(),
		Title:     s.manager.Translate(ctx, detection.Locale, titleID),
		Body:      s.manager.Translate(ctx, detection.Locale, bodyID),
		HomeLabel: s.manager.Translate(ctx, detection.Locale, "ErrorHomeLink"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorPage.Execute(w, data); err != nil {
		util.Log(ctx).WithError(err).Error("error page render failed")
	}
}
