// Command sitesrv serves the localized Freightlane marketing site.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pitabwire/util"

	"github.com/freightlane/sitekit/config"
	"github.com/freightlane/sitekit/localization"
	"github.com/freightlane/sitekit/server"
	"github.com/freightlane/sitekit/web"
	"github.com/freightlane/sitekit/workerpool"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv[config.SiteConfig]()
	if err != nil {
		util.Log(ctx).WithError(err).Fatal("could not process configuration")
	}

	level := slog.LevelInfo
	if parsed, lvlErr := util.ParseLevel(cfg.LoggingLevel()); lvlErr == nil {
		level = parsed
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: cfg.LoggingTimeFormat(),
		NoColor:    !cfg.LoggingColored(),
	})
	log := util.NewLogger(ctx, util.WithLogHandler(handler)).WithField("service", cfg.Name())
	ctx = util.ContextWithLogger(ctx, log)
	ctx = config.ToContext(ctx, &cfg)

	supported := make([]localization.Locale, 0, len(cfg.Locales()))
	for _, code := range cfg.Locales() {
		supported = append(supported, localization.Locale(code))
	}

	locCfg := localization.Config{
		Supported:  supported,
		Default:    localization.Locale(cfg.DefaultLocale),
		Namespaces: server.Namespaces(),
		QueryParam: cfg.LocaleQueryParam,
		CookieName: cfg.LocaleCookieName,
	}

	pool, err := workerpool.New(ctx, workerpool.WithCapacity(8), workerpool.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("could not start worker pool")
	}
	defer pool.Shutdown()

	loader := localization.NewLoader(web.Translations, cfg.TranslationsDir, &locCfg, pool)
	resolver := localization.NewResolver(locCfg, loader)
	defer func() { _ = resolver.Close() }()

	manager, err := localization.NewManager(web.Messages, "messages", cfg.Locales()...)
	if err != nil {
		log.WithError(err).Fatal("could not load message catalog")
	}

	// Warm the default locale so the first request paints from cache.
	resolver.LoadLocale(ctx, locCfg.Default, true)

	srv := server.New(ctx, &cfg, resolver, manager, web.Site)

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.WithError(shutdownErr).Error("server shutdown failed")
		}
	}()

	log.WithField("addr", cfg.HTTPPort).Info("serving site")
	if err = httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped unexpectedly")
	}
}
