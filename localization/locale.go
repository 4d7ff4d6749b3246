// Package localization resolves the active locale for a request, loads and
// caches namespaced translation documents, and paints translated text into
// parsed page documents.
package localization

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported language code, e.g. "en" or "de".
type Locale string

func (l Locale) String() string {
	return string(l)
}

// Source identifies which detection tier supplied the active locale.
type Source string

const (
	SourceURL      Source = "url"
	SourceStorage  Source = "storage"
	SourceDocument Source = "document"
	SourceAgent    Source = "agent"
	SourceDefault  Source = "default"
	SourceManual   Source = "manual"
)

// Detection is the outcome of locale detection.
type Detection struct {
	Locale Locale
	Source Source
}

const (
	defaultQueryParam = "lang"
	defaultCookieName = "fl_lang"
)

// Config describes the locale universe of a resolver.
type Config struct {
	// Supported is the closed set of locales, in declaration order.
	Supported []Locale
	// Default is used when no other detection tier yields a supported
	// locale, and as the fallback source for failed namespace loads.
	Default Locale
	// Namespaces is the closed list of translation partitions.
	Namespaces []string
	// QueryParam is the URL parameter carrying a locale override.
	QueryParam string
	// CookieName is the cookie persisting a manual locale choice.
	CookieName string
}

func (c *Config) normalize() {
	if c.QueryParam == "" {
		c.QueryParam = defaultQueryParam
	}
	if c.CookieName == "" {
		c.CookieName = defaultCookieName
	}
	if c.Default == "" && len(c.Supported) > 0 {
		c.Default = c.Supported[0]
	}
}

// IsSupported reports whether the locale is part of the supported set.
func (c *Config) IsSupported(l Locale) bool {
	for _, s := range c.Supported {
		if s == l {
			return true
		}
	}
	return false
}

// NormalizeLang reduces a language identifier such as "en-US" or
// "de_DE.UTF-8" to its two-letter base code.
func NormalizeLang(value string) Locale {
	value = strings.TrimSpace(strings.ToLower(value))
	if len(value) > 2 {
		value = value[:2]
	}
	return Locale(value)
}

// acceptedLocales parses an Accept-Language header into candidate locales,
// ordered by preference.
func acceptedLocales(header string) []Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}
	out := make([]Locale, 0, len(tags))
	for _, tag := range tags {
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		out = append(out, NormalizeLang(base.String()))
	}
	return out
}
