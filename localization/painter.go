package localization

import (
	"context"
	"strings"

	"github.com/pitabwire/util"
	"golang.org/x/net/html"

	"github.com/freightlane/sitekit/internal/dom"
)

// Marker attributes consumed by the painter.
const (
	// AttrText marks an element whose text content is translated.
	AttrText = "data-i18n"
	// AttrPlaceholder marks an input whose placeholder is translated.
	AttrPlaceholder = "data-i18n-placeholder"
	// AttrNamed marks an element with an "attribute:key" translation
	// target, e.g. data-i18n-attr="title:common.nav.tooltip".
	AttrNamed = "data-i18n-attr"
	// AttrLangOption marks a language selector control carrying a locale
	// code; the control matching the active locale is tagged active.
	AttrLangOption = "data-lang-option"
	// AttrLangCurrent marks an element showing the active locale code.
	AttrLangCurrent = "data-lang-current"

	activeClass = "active"
)

// PaintPage translates every marked node in the document using the active
// locale. Missing keys are logged and the node's fallback content is left
// untouched.
func (r *Resolver) PaintPage(ctx context.Context, doc *html.Node) {
	r.Paint(ctx, doc, r.Active().Locale)
}

// Paint translates every marked node in the document for an explicit
// locale, updates the document's lang attribute, and synchronises language
// selector controls.
func (r *Resolver) Paint(ctx context.Context, doc *html.Node, locale Locale) {
	set := r.LoadLocale(ctx, locale, true)
	log := util.Log(ctx).WithField("locale", locale.String())

	dom.Walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}

		if key, ok := dom.Attr(n, AttrText); ok {
			if value, found := set.Resolve(key); found {
				dom.SetText(n, substituteForNode(value, n))
			} else {
				log.WithField("key", key).Debug("missing text translation")
			}
		}

		if key, ok := dom.Attr(n, AttrPlaceholder); ok {
			if value, found := set.Resolve(key); found {
				dom.SetAttr(n, "placeholder", substituteForNode(value, n))
			} else {
				log.WithField("key", key).Debug("missing placeholder translation")
			}
		}

		if marker, ok := dom.Attr(n, AttrNamed); ok {
			name, key, valid := strings.Cut(marker, ":")
			if !valid || name == "" || key == "" {
				log.WithField("marker", marker).Debug("malformed attribute translation marker")
				return
			}
			if value, found := set.Resolve(key); found {
				dom.SetAttr(n, name, substituteForNode(value, n))
			} else {
				log.WithField("key", key).Debug("missing attribute translation")
			}
		}
	})

	if root := dom.FindElement(doc, "html"); root != nil {
		dom.SetAttr(root, "lang", locale.String())
	}

	r.syncLanguageControls(doc, locale)
}

// syncLanguageControls marks the selector control of the active locale and
// clears the rest.
func (r *Resolver) syncLanguageControls(doc *html.Node, locale Locale) {
	for _, n := range dom.FindAllWithAttr(doc, AttrLangOption) {
		value, _ := dom.Attr(n, AttrLangOption)
		if Locale(value) == locale {
			dom.AddClass(n, activeClass)
			dom.SetAttr(n, "aria-current", "true")
		} else {
			dom.RemoveClass(n, activeClass)
			dom.RemoveAttr(n, "aria-current")
		}
	}

	for _, n := range dom.FindAllWithAttr(doc, AttrLangCurrent) {
		dom.SetText(n, strings.ToUpper(locale.String()))
	}
}
