// Package config loads service configuration from the environment and
// carries it through request contexts.
package config

import (
	"context"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type contextKey string

func (c contextKey) String() string {
	return "sitekit/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ToContext adds service configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts service configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// SiteConfig is the configuration surface for the site server.
type SiteConfig struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	ServiceName        string `envDefault:"sitekit" env:"SERVICE_NAME"        yaml:"service_name"`
	ServiceEnvironment string `envDefault:""        env:"SERVICE_ENVIRONMENT" yaml:"service_environment"`

	HTTPPort        string        `envDefault:":8080" env:"HTTP_PORT"        yaml:"http_port"`
	ShutdownTimeout time.Duration `envDefault:"15s"   env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`

	DefaultLocale    string `envDefault:"en"    env:"DEFAULT_LOCALE"    yaml:"default_locale"`
	SupportedLocales string `envDefault:"en,de" env:"SUPPORTED_LOCALES" yaml:"supported_locales"`
	TranslationsDir  string `envDefault:"translations" env:"TRANSLATIONS_DIR" yaml:"translations_dir"`
	LocaleCookieName string `envDefault:"fl_lang"      env:"LOCALE_COOKIE"    yaml:"locale_cookie"`
	LocaleQueryParam string `envDefault:"lang"         env:"LOCALE_PARAM"     yaml:"locale_param"`
}

// Name returns the configured service name.
func (c *SiteConfig) Name() string {
	return c.ServiceName
}

// Environment returns the environment the service runs in.
func (c *SiteConfig) Environment() string {
	return c.ServiceEnvironment
}

// LoggingLevel returns the configured log level.
func (c *SiteConfig) LoggingLevel() string {
	return c.LogLevel
}

// LoggingTimeFormat returns the configured log time format.
func (c *SiteConfig) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

// LoggingColored reports whether colored log output is enabled.
func (c *SiteConfig) LoggingColored() bool {
	return c.LogColored
}

// LoggingLevelIsDebug reports whether debug logging is active.
func (c *SiteConfig) LoggingLevelIsDebug() bool {
	return c.LogLevel == "debug" || c.LogLevel == "trace"
}

// Locales returns the supported locale codes in declaration order.
func (c *SiteConfig) Locales() []string {
	parts := strings.Split(c.SupportedLocales, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
