package tabs

import (
	"errors"
	"fmt"
	"time"
)

// ShowAllValue is the discriminator that reveals every content block in a
// group configured with ShowAll.
const ShowAllValue = "all"

// Transition phase constants. The arithmetic built on them is an observable
// contract: outgoing blocks fade over hideDuration with hideStagger between
// items, so the show phase starts at hideDuration + (n-1)*hideStagger.
const (
	hideDuration = 200 * time.Millisecond
	hideStagger  = 30 * time.Millisecond
	heightGrace  = 50 * time.Millisecond
)

const (
	defaultAnimation      = "fade"
	defaultDuration       = 400 * time.Millisecond
	defaultStaggerDelay   = 100 * time.Millisecond
	defaultRotateInterval = 5 * time.Second
)

var errConfigIncomplete = errors.New("tab group config incomplete")

// GroupConfig describes one tab group binding.
type GroupConfig struct {
	// Name identifies the group in logs.
	Name string

	// TriggerSelector locates the trigger elements.
	TriggerSelector string
	// ContentSelector locates the content blocks.
	ContentSelector string
	// TriggerAttr is the discriminator attribute on triggers.
	TriggerAttr string
	// ContentAttr is the discriminator attribute on content blocks.
	ContentAttr string
	// QueryParam is the URL parameter mirroring the active value.
	QueryParam string
	// DefaultValue is active when the URL carries no known value.
	DefaultValue string

	// ShowAll permits the special "all" value revealing every block.
	ShowAll bool

	// Animation names the reveal animation applied to incoming blocks.
	Animation string
	// Duration is the reveal animation duration per block.
	Duration time.Duration
	// StaggerDelay is the extra reveal delay per incoming block index.
	StaggerDelay time.Duration

	// AutoRotate advances through triggers in declaration order.
	AutoRotate bool
	// RotateInterval is the delay between automatic advances.
	RotateInterval time.Duration
}

// Validate checks required fields and fills defaults for the rest.
func (c *GroupConfig) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"trigger selector", c.TriggerSelector},
		{"content selector", c.ContentSelector},
		{"trigger attribute", c.TriggerAttr},
		{"content attribute", c.ContentAttr},
		{"query parameter", c.QueryParam},
		{"default value", c.DefaultValue},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", errConfigIncomplete, missing)
	}

	if c.Animation == "" {
		c.Animation = defaultAnimation
	}
	if c.Duration <= 0 {
		c.Duration = defaultDuration
	}
	if c.StaggerDelay <= 0 {
		c.StaggerDelay = defaultStaggerDelay
	}
	if c.RotateInterval <= 0 {
		c.RotateInterval = defaultRotateInterval
	}
	return nil
}

// HideCompletion returns when the hide phase of a transition with n
// outgoing blocks has finished: hideDuration + (n-1)*hideStagger.
func HideCompletion(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return hideDuration + time.Duration(n-1)*hideStagger
}
