// Package dom provides parsing, traversal and mutation helpers for HTML
// documents used by the page painting and tab rendering layers.
package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses an HTML document from the supplied reader.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseBytes parses an HTML document held in memory.
func ParseBytes(data []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(data))
}

// Render serialises a node tree back to HTML.
func Render(n *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Clone produces a deep copy of a node tree. Parsed page templates are
// cached per process and cloned for every request before mutation.
func Clone(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if n.Attr != nil {
		cp.Attr = make([]html.Attribute, len(n.Attr))
		copy(cp.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// Walk visits every node in the tree depth first.
func Walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr drops the named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node carries the given class.
func HasClass(n *html.Node, class string) bool {
	val, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class to the node, preserving existing ones.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	val, _ := Attr(n, "class")
	if val == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", val+" "+class)
}

// RemoveClass drops a class from the node if present.
func RemoveClass(n *html.Node, class string) {
	val, ok := Attr(n, "class")
	if !ok {
		return
	}
	fields := strings.Fields(val)
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Text collects the concatenated text content of a node tree.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}

// SetText replaces the node's children with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// FindElement returns the first element with the given tag name.
func FindElement(root *html.Node, tag string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	return found
}

// FindAllWithAttr returns every element carrying the named attribute,
// in document order.
func FindAllWithAttr(root *html.Node, name string) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if _, ok := Attr(n, name); ok {
			out = append(out, n)
		}
	})
	return out
}
