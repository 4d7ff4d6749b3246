package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// QueryAll returns all elements matching a simple CSS selector.
// Supported forms:
//   - tag: "section", "div"
//   - .class: ".tab-trigger"
//   - #id: "#tech-tabs"
//   - tag.class, tag#id
//   - [attr], [attr=val], tag[attr=val]
//   - descendant combinations separated by spaces
func QueryAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(root, parts[0])
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		for _, parent := range matches {
			for _, m := range matchSimple(parent, parts[i]) {
				if m != parent {
					next = append(next, m)
				}
			}
		}
		matches = next
	}
	return matches
}

// Query returns the first element matching the selector, or nil.
func Query(root *html.Node, selector string) *html.Node {
	matches := QueryAll(root, selector)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func matchSimple(root *html.Node, sel string) []*html.Node {
	m := parseSimpleSelector(sel)
	var results []*html.Node
	Walk(root, func(n *html.Node) {
		if matchesSelector(n, m) {
			results = append(results, n)
		}
	})
	return results
}

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
}

func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eqIdx := strings.IndexByte(attrPart, '='); eqIdx >= 0 {
			s.attrKey = attrPart[:eqIdx]
			s.attrVal = strings.Trim(attrPart[eqIdx+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}

	s.tag = sel
	return s
}

func matchesSelector(n *html.Node, m simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if m.tag != "" && n.Data != m.tag {
		return false
	}
	if m.id != "" {
		id, ok := Attr(n, "id")
		if !ok || id != m.id {
			return false
		}
	}
	if m.class != "" && !HasClass(n, m.class) {
		return false
	}
	if m.attrKey != "" {
		val, ok := Attr(n, m.attrKey)
		if !ok {
			return false
		}
		if m.attrVal != "" && val != m.attrVal {
			return false
		}
	}
	return true
}
