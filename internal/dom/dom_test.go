package dom_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freightlane/sitekit/internal/dom"
)

const sampleDoc = `<!DOCTYPE html>
<html lang="en">
<body>
  <div id="wrap" class="wrapper hero">
    <p class="lead" data-i18n="home.lead">fallback text</p>
    <span data-tab="air">Air</span>
    <span data-tab="sea">Sea</span>
  </div>
</body>
</html>`

func TestAttrHelpers(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	wrap := dom.Query(root, "#wrap")
	require.NotNil(t, wrap)

	val, ok := dom.Attr(wrap, "class")
	require.True(t, ok)
	require.Equal(t, "wrapper hero", val)

	dom.SetAttr(wrap, "style", "min-height: 120px")
	style, ok := dom.Attr(wrap, "style")
	require.True(t, ok)
	require.Equal(t, "min-height: 120px", style)

	dom.RemoveAttr(wrap, "style")
	_, ok = dom.Attr(wrap, "style")
	require.False(t, ok)
}

func TestClassHelpers(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	wrap := dom.Query(root, "#wrap")
	require.True(t, dom.HasClass(wrap, "hero"))
	require.False(t, dom.HasClass(wrap, "active"))

	dom.AddClass(wrap, "active")
	require.True(t, dom.HasClass(wrap, "active"))

	// Adding twice must not duplicate the class token.
	dom.AddClass(wrap, "active")
	val, _ := dom.Attr(wrap, "class")
	require.Equal(t, 1, strings.Count(val, "active"))

	dom.RemoveClass(wrap, "wrapper")
	require.False(t, dom.HasClass(wrap, "wrapper"))
	require.True(t, dom.HasClass(wrap, "hero"))
}

func TestTextHelpers(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	lead := dom.Query(root, ".lead")
	require.Equal(t, "fallback text", dom.Text(lead))

	dom.SetText(lead, "translated")
	require.Equal(t, "translated", dom.Text(lead))

	rendered, err := dom.Render(root)
	require.NoError(t, err)
	require.Contains(t, string(rendered), ">translated</p>")
	require.NotContains(t, string(rendered), "fallback text")
}

func TestCloneIsolation(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	cp := dom.Clone(root)
	lead := dom.Query(cp, ".lead")
	dom.SetText(lead, "changed")
	dom.AddClass(dom.Query(cp, "#wrap"), "mutated")

	// The original tree must be untouched.
	require.Equal(t, "fallback text", dom.Text(dom.Query(root, ".lead")))
	require.False(t, dom.HasClass(dom.Query(root, "#wrap"), "mutated"))
}

func TestFindAllWithAttr(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	tabs := dom.FindAllWithAttr(root, "data-tab")
	require.Len(t, tabs, 2)

	first, _ := dom.Attr(tabs[0], "data-tab")
	second, _ := dom.Attr(tabs[1], "data-tab")
	require.Equal(t, "air", first)
	require.Equal(t, "sea", second)
}

func TestQuerySelectors(t *testing.T) {
	root, err := dom.ParseBytes([]byte(sampleDoc))
	require.NoError(t, err)

	testCases := []struct {
		name     string
		selector string
		count    int
	}{
		{name: "by tag", selector: "span", count: 2},
		{name: "by class", selector: ".lead", count: 1},
		{name: "by id", selector: "#wrap", count: 1},
		{name: "by attribute", selector: "[data-tab]", count: 2},
		{name: "by attribute value", selector: "span[data-tab=sea]", count: 1},
		{name: "descendant", selector: "#wrap span", count: 2},
		{name: "no match", selector: ".missing", count: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, dom.QueryAll(root, tc.selector), tc.count)
		})
	}
}
