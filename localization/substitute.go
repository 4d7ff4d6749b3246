package localization

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Substitute replaces {name} placeholders in text with values from vars.
// Placeholders without a matching variable are left intact so missing data
// stays visible during content review. Values are substituted verbatim;
// attribute values are never evaluated as code.
func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.ContainsRune(text, '{') {
		return text
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

const varAttrPrefix = "data-var-"

// nodeVars collects {name} substitution values from an element's
// data-var-* attributes.
func nodeVars(n *html.Node) map[string]string {
	var vars map[string]string
	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, varAttrPrefix) {
			continue
		}
		if vars == nil {
			vars = map[string]string{}
		}
		vars[a.Key[len(varAttrPrefix):]] = a.Val
	}
	return vars
}

// substituteForNode resolves a translated string's placeholders against the
// element the string is painted into.
func substituteForNode(text string, n *html.Node) string {
	if !strings.ContainsRune(text, '{') {
		return text
	}
	return Substitute(text, nodeVars(n))
}
