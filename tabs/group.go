// Package tabs drives tab groups on rendered pages: explicit active state,
// staggered hide/show transitions, URL parameter mirroring and optional
// automatic rotation through the triggers.
package tabs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pitabwire/util"
	"golang.org/x/net/html"

	"github.com/freightlane/sitekit/internal/dom"
)

// Classes applied to triggers and content blocks. Stylesheets key off these
// to run the actual CSS transitions.
const (
	classActive  = "active"
	classHidden  = "is-hidden"
	classVisible = "is-visible"
	classLeaving = "is-leaving"

	animClassPrefix = "anim-"
	heightAttr      = "data-height"
)

// HeightFunc measures the rendered height of a content block in pixels.
// The default reads the data-height attribute stamped by the page build.
type HeightFunc func(n *html.Node) int

// Option configures optional Group collaborators.
type Option func(*Group)

// WithClock overrides the transition clock.
func WithClock(c Clock) Option {
	return func(g *Group) { g.clock = c }
}

// WithHeightFunc overrides how content block heights are measured.
func WithHeightFunc(f HeightFunc) Option {
	return func(g *Group) { g.measure = f }
}

// WithURLFunc registers a callback invoked with the updated query values
// whenever a trigger activation changes the URL parameter.
func WithURLFunc(f func(url.Values)) Option {
	return func(g *Group) { g.onURL = f }
}

type binding struct {
	node    *html.Node
	value   string
	visible bool
}

// Group is the state machine for one tab group. The active value lives here;
// node classes and attributes are projections of it.
type Group struct {
	cfg     GroupConfig
	clock   Clock
	measure HeightFunc
	onURL   func(url.Values)
	log     *util.LogEntry

	triggers []*binding
	blocks   []*binding
	wrapper  *html.Node

	mu       sync.Mutex
	query    url.Values
	current  string
	gen      uint64
	timers   []Timer
	rotateT  Timer
	rotating bool
	closed   bool
	noop     bool
}

// NewGroup binds a tab group to the supplied document. The initial active
// value comes from the query parameter when it names a known trigger,
// otherwise from the configured default, and is applied without animation.
// A document with no matching triggers or blocks yields an inert group.
func NewGroup(
	ctx context.Context,
	doc *html.Node,
	cfg GroupConfig,
	query url.Values,
	opts ...Option,
) (*Group, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Group{
		cfg:     cfg,
		clock:   NewSystemClock(),
		measure: attrHeight,
		log:     util.Log(ctx).WithField("tabGroup", cfg.Name),
		query:   cloneValues(query),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.triggers = collect(doc, cfg.TriggerSelector, cfg.TriggerAttr)
	g.blocks = collect(doc, cfg.ContentSelector, cfg.ContentAttr)
	if len(g.triggers) == 0 || len(g.blocks) == 0 {
		g.log.WithField("triggers", len(g.triggers)).
			WithField("blocks", len(g.blocks)).
			Debug("no tab elements matched, group is inert")
		g.noop = true
		return g, nil
	}
	g.wrapper = g.blocks[0].node.Parent

	// Parsed markup renders every block until the first apply hides the
	// non-matching ones.
	for _, b := range g.blocks {
		b.visible = !dom.HasClass(b.node, classHidden)
	}

	initial := g.query.Get(cfg.QueryParam)
	if !g.knownValue(initial) {
		initial = cfg.DefaultValue
	}

	g.mu.Lock()
	g.setActiveTriggerLocked(initial)
	g.activateLocked(initial, false)
	g.mu.Unlock()

	return g, nil
}

// Start begins automatic rotation when the group is configured for it.
func (g *Group) Start() {
	if g.noop {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || !g.cfg.AutoRotate {
		return
	}
	g.rotating = true
	g.scheduleRotationLocked()
}

// Close cancels all pending transition phases and stops rotation.
func (g *Group) Close() {
	if g.noop {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cancelTimersLocked()
	g.stopRotationLocked()
}

// Current returns the active discriminator value.
func (g *Group) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Query returns a copy of the group's view of the URL query values.
func (g *Group) Query() url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneValues(g.query)
}

// VisibleValues lists the discriminators of currently visible blocks in
// document order.
func (g *Group) VisibleValues() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, b := range g.blocks {
		if b.visible {
			out = append(out, b.value)
		}
	}
	return out
}

// Rotating reports whether automatic rotation is currently armed.
func (g *Group) Rotating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotating
}

// Activate transitions the group to the given value. With animate set the
// hide and show phases run on the clock; otherwise the final state is
// applied at once.
func (g *Group) Activate(value string, animate bool) {
	if g.noop {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.setActiveTriggerLocked(value)
	g.activateLocked(value, animate)
}

// ClickTrigger handles a user activation: rotation halts, the trigger row
// and URL parameter are retagged, the transition runs, and when the group
// auto rotates a fresh timer is armed so rotation resumes one full interval
// later.
func (g *Group) ClickTrigger(value string) {
	if g.noop {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}

	g.stopRotationLocked()
	g.setActiveTriggerLocked(value)
	g.syncURLLocked(value)
	g.activateLocked(value, true)

	if g.cfg.AutoRotate {
		g.rotating = true
		g.scheduleRotationLocked()
	}
}

// HandleHistoryPop re-applies state for a navigation event. The value is
// read from the supplied query; unknown or absent values fall back to the
// default. Rotation state is left untouched and the URL is not rewritten.
func (g *Group) HandleHistoryPop(query url.Values) {
	if g.noop {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}

	g.query = cloneValues(query)
	value := g.query.Get(g.cfg.QueryParam)
	if !g.knownValue(value) {
		value = g.cfg.DefaultValue
	}
	g.setActiveTriggerLocked(value)
	g.activateLocked(value, true)
}

func (g *Group) activateLocked(value string, animate bool) {
	g.gen++
	gen := g.gen
	g.cancelTimersLocked()

	showAll := g.cfg.ShowAll && value == ShowAllValue
	var outgoing, incoming []*binding
	for _, b := range g.blocks {
		if showAll || b.value == value {
			incoming = append(incoming, b)
		} else if b.visible {
			outgoing = append(outgoing, b)
		}
	}
	g.current = value

	// Pin the wrapper to the outgoing height so the page does not collapse
	// while all blocks are hidden mid-transition.
	if animate && len(outgoing) > 0 {
		g.pinHeightLocked(g.outgoingHeightLocked(outgoing))
	}

	if !animate {
		for _, b := range outgoing {
			b.hideNow()
		}
		for _, b := range incoming {
			b.showNow(g.cfg.Animation)
		}
		g.releaseHeightLocked()
		return
	}

	for i, b := range outgoing {
		delay := time.Duration(i) * hideStagger
		g.scheduleLocked(gen, delay, b.beginHide)
		g.scheduleLocked(gen, delay+hideDuration, b.hideNow)
	}

	showStart := HideCompletion(len(outgoing))
	for i, b := range incoming {
		block := b
		delay := showStart + time.Duration(i)*g.cfg.StaggerDelay
		g.scheduleLocked(gen, delay, func() {
			block.showNow(g.cfg.Animation)
		})
	}

	settle := showStart + g.cfg.Duration
	if n := len(incoming); n > 0 {
		settle = showStart + time.Duration(n-1)*g.cfg.StaggerDelay + g.cfg.Duration
	}
	g.scheduleLocked(gen, settle, func() {
		g.pinHeightLocked(g.incomingHeightLocked(incoming))
	})
	g.scheduleLocked(gen, settle+heightGrace, g.releaseHeightLocked)
}

// scheduleLocked runs f immediately for a zero delay, otherwise arms a
// timer whose callback is dropped when the generation has moved on.
func (g *Group) scheduleLocked(gen uint64, d time.Duration, f func()) {
	if d <= 0 {
		f()
		return
	}
	t := g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.closed || g.gen != gen {
			return
		}
		f()
	})
	g.timers = append(g.timers, t)
}

func (g *Group) cancelTimersLocked() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}

func (g *Group) stopRotationLocked() {
	g.rotating = false
	if g.rotateT != nil {
		g.rotateT.Stop()
		g.rotateT = nil
	}
}

func (g *Group) scheduleRotationLocked() {
	if g.rotateT != nil {
		g.rotateT.Stop()
	}
	g.rotateT = g.clock.AfterFunc(g.cfg.RotateInterval, g.rotateTick)
}

func (g *Group) rotateTick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || !g.rotating {
		return
	}

	next := g.nextValueLocked()
	g.setActiveTriggerLocked(next)
	g.syncURLLocked(next)
	g.activateLocked(next, true)
	g.scheduleRotationLocked()
}

// nextValueLocked advances through the triggers in declaration order,
// wrapping at the end. An active value without a trigger restarts at the
// first one.
func (g *Group) nextValueLocked() string {
	for i, t := range g.triggers {
		if t.value == g.current {
			return g.triggers[(i+1)%len(g.triggers)].value
		}
	}
	return g.triggers[0].value
}

func (g *Group) setActiveTriggerLocked(value string) {
	for _, t := range g.triggers {
		if t.value == value {
			dom.AddClass(t.node, classActive)
			dom.SetAttr(t.node, "aria-selected", "true")
		} else {
			dom.RemoveClass(t.node, classActive)
			dom.SetAttr(t.node, "aria-selected", "false")
		}
	}
}

// syncURLLocked mirrors the active value into the query. The default value
// keeps the URL clean by removing the parameter entirely.
func (g *Group) syncURLLocked(value string) {
	if value == g.cfg.DefaultValue {
		g.query.Del(g.cfg.QueryParam)
	} else {
		g.query.Set(g.cfg.QueryParam, value)
	}
	if g.onURL != nil {
		g.onURL(cloneValues(g.query))
	}
}

func (g *Group) knownValue(value string) bool {
	if value == "" {
		return false
	}
	if g.cfg.ShowAll && value == ShowAllValue {
		return true
	}
	for _, t := range g.triggers {
		if t.value == value {
			return true
		}
	}
	return false
}

func (g *Group) outgoingHeightLocked(outgoing []*binding) int {
	total := 0
	for _, b := range outgoing {
		total += g.measure(b.node)
	}
	return total
}

func (g *Group) incomingHeightLocked(incoming []*binding) int {
	total := 0
	for _, b := range incoming {
		total += g.measure(b.node)
	}
	return total
}

func (g *Group) pinHeightLocked(px int) {
	if g.wrapper == nil || px <= 0 {
		return
	}
	style, _ := dom.Attr(g.wrapper, "style")
	decl := fmt.Sprintf("min-height: %dpx", px)
	if base := stripMinHeight(style); base != "" {
		decl = base + "; " + decl
	}
	dom.SetAttr(g.wrapper, "style", decl)
}

func (g *Group) releaseHeightLocked() {
	if g.wrapper == nil {
		return
	}
	style, ok := dom.Attr(g.wrapper, "style")
	if !ok {
		return
	}
	if base := stripMinHeight(style); base != "" {
		dom.SetAttr(g.wrapper, "style", base)
	} else {
		dom.RemoveAttr(g.wrapper, "style")
	}
}

// stripMinHeight removes the min-height declaration the pin added, keeping
// any other inline declarations the template carried.
func stripMinHeight(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" || strings.HasPrefix(decl, "min-height:") {
			continue
		}
		kept = append(kept, decl)
	}
	return strings.Join(kept, "; ")
}

func (b *binding) beginHide() {
	dom.RemoveClass(b.node, classVisible)
	dom.AddClass(b.node, classLeaving)
}

func (b *binding) hideNow() {
	dom.RemoveClass(b.node, classLeaving)
	dom.RemoveClass(b.node, classVisible)
	dom.AddClass(b.node, classHidden)
	b.visible = false
}

func (b *binding) showNow(animation string) {
	dom.RemoveClass(b.node, classHidden)
	dom.RemoveClass(b.node, classLeaving)
	dom.AddClass(b.node, animClassPrefix+animation)
	dom.AddClass(b.node, classVisible)
	b.visible = true
}

func collect(doc *html.Node, selector, attr string) []*binding {
	var out []*binding
	for _, n := range dom.QueryAll(doc, selector) {
		value, ok := dom.Attr(n, attr)
		if !ok || value == "" {
			continue
		}
		out = append(out, &binding{node: n, value: value})
	}
	return out
}

func attrHeight(n *html.Node) int {
	raw, ok := dom.Attr(n, heightAttr)
	if !ok {
		return 0
	}
	px, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return px
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
