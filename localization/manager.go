package localization

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
)

type contextKey string

func (c contextKey) String() string {
	return "sitekit/localization/" + string(c)
}

const ctxKeyLanguage = contextKey("languageKey")

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

// Manager serves the flat server-chrome message catalog: error pages and
// other HTTP-facing strings with pluralization and template data. Page
// content goes through Resolver instead.
type Manager interface {
	Bundle() *i18n.Bundle
	Translate(ctx context.Context, request any, messageID string) string
	TranslateWithMap(
		ctx context.Context,
		request any,
		messageID string,
		variables map[string]any,
	) string
	TranslateWithMapAndCount(
		ctx context.Context,
		request any,
		messageID string,
		variables map[string]any,
		count int,
	) string
}

type managerImpl struct {
	bundle *i18n.Bundle
}

// NewManager loads message files named messages.{lang}.toml from the
// supplied filesystem folder for each requested language.
func NewManager(messagesFS fs.FS, folder string, languages ...string) (Manager, error) {
	if folder == "" {
		folder = "messages"
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range languages {
		name := fmt.Sprintf("%s/messages.%v.toml", folder, lang)
		if _, err := bundle.LoadMessageFileFS(messagesFS, name); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", name, err)
		}
	}

	return &managerImpl{bundle: bundle}, nil
}

// Bundle accesses the message bundle instantiated in the system.
func (s *managerImpl) Bundle() *i18n.Bundle {
	return s.bundle
}

// Translate performs a quick translation based on the supplied message id.
func (s *managerImpl) Translate(ctx context.Context, request any, messageID string) string {
	return s.TranslateWithMap(ctx, request, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the supplied message id.
func (s *managerImpl) TranslateWithMap(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
) string {
	return s.TranslateWithMapAndCount(ctx, request, messageID, variables, 1)
}

// TranslateWithMapAndCount performs a translation with variables based on the supplied message id and can pluralize.
func (s *managerImpl) TranslateWithMapAndCount(
	ctx context.Context,
	request any,
	messageID string,
	variables map[string]any,
	count int,
) string {
	var languageSlice []string

	switch v := request.(type) {
	case *http.Request:
		languageSlice = ExtractLanguageFromHTTPRequest(v)

	case string:
		languageSlice = []string{v}

	case []string:
		languageSlice = v

	case Locale:
		languageSlice = []string{v.String()}

	default:
		logger := util.Log(ctx).WithField("messageID", messageID).WithField("variables", variables)
		logger.Warn("TranslateWithMapAndCount -- no valid request object found, use string, []string, Locale or http.Request")
		return messageID
	}

	localizer := i18n.NewLocalizer(s.Bundle(), languageSlice...)

	transVersion, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      messageID,
		DefaultMessage: &i18n.Message{ID: messageID},
		TemplateData:   variables,
		PluralCount:    count,
	})

	if err != nil {
		logger := util.Log(ctx).WithError(err)
		logger.Error("TranslateWithMapAndCount -- could not perform translation")
		if transVersion == "" {
			return messageID
		}
	}

	return transVersion
}

// ExtractLanguageFromHTTPRequest collects language candidates from the lang
// form value followed by the Accept-Language header.
func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	lang := req.FormValue("lang")

	acceptedLang := ExtractLanguageFromHTTPHeader(req.Header)

	var languages []string
	if lang != "" {
		languages = append(languages, lang)
	}

	return append(languages, acceptedLang...)
}

// ExtractLanguageFromHTTPHeader splits the Accept-Language header into its
// candidate entries.
func ExtractLanguageFromHTTPHeader(header http.Header) []string {
	acceptLanguageHeader := header.Get("Accept-Language")
	return strings.Split(acceptLanguageHeader, ",")
}
