package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/freightlane/sitekit/config"
	"github.com/freightlane/sitekit/localization"
)

const requestIDHeader = "X-Request-Id"

// contextSetupMiddleware propagates the service configuration and logger
// from the main context into every request context.
func contextSetupMiddleware(mainCtx context.Context, cfg *config.SiteConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx := r.Context()
		reqCtx = config.ToContext(reqCtx, cfg)
		reqCtx = util.ContextWithLogger(reqCtx, util.Log(mainCtx))

		next.ServeHTTP(w, r.WithContext(reqCtx))
	})
}

// requestIDMiddleware tags every request with an id, honouring one supplied
// by an upstream proxy.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := util.ContextWithLogger(r.Context(), util.Log(r.Context()).WithField("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// languageMiddleware stores the request's language candidates in the
// context for downstream translation calls.
func languageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		languages := localization.ExtractLanguageFromHTTPHeader(r.Header)
		ctx := localization.ToContext(r.Context(), languages)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs every request with its outcome, warning on client
// errors and erroring on server errors.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		logEntry := util.Log(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"status_code": wrapped.statusCode,
			"duration_ms": duration.Milliseconds(),
		})

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			logEntry.Error("HTTP request completed with server error")
		case wrapped.statusCode >= http.StatusBadRequest:
			logEntry.Warn("HTTP request completed with client error")
		default:
			logEntry.Info("HTTP request completed successfully")
		}
	})
}
