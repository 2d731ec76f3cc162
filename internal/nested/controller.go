// Package nested adds focus-one-of-many selection on top of a transformer.
// One member of a non-empty group is always focused; clicks on a member
// move the focus without starting a group transform.
package nested

import (
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/transformer"
)

// NoFocus is the focus index of an empty group and the transient request
// to clear focus.
const NoFocus = -1

// EventType names a focus notification.
type EventType string

const (
	EventElementFocused      EventType = "elementfocused"
	EventElementFocusCleared EventType = "elementfocuscleared"
)

// Event is delivered to focus listeners. Member is nil for
// EventElementFocusCleared.
type Event struct {
	Type   EventType
	Index  int
	Member transformer.Member
}

// Options configure borders and the initial focus.
type Options struct {
	FocusedIndex int `json:"focusedElementIndex" toml:"focused_element_index"`

	FocusedBorderColor     string  `json:"focusedBorderColor" toml:"focused_border_color"`
	FocusedBorderThickness float64 `json:"focusedBorderThickness" toml:"focused_border_thickness"`
	FocusedBorderAlpha     float64 `json:"focusedBorderAlpha" toml:"focused_border_alpha"`

	BorderColor     string  `json:"borderColor" toml:"border_color"`
	BorderThickness float64 `json:"borderThickness" toml:"border_thickness"`
	BorderAlpha     float64 `json:"borderAlpha" toml:"border_alpha"`

	// ShowAllBorders also outlines members that are not focused.
	ShowAllBorders bool `json:"showAllBorders" toml:"show_all_borders"`
}

// DefaultOptions returns the built-in border styling.
func DefaultOptions() Options {
	return Options{
		FocusedBorderColor:     "#ff9800",
		FocusedBorderThickness: 2,
		FocusedBorderAlpha:     1,
		BorderColor:            "#9e9e9e",
		BorderThickness:        1,
		BorderAlpha:            0.6,
	}
}

// Callbacks observe focus from construction on, so the initial focus is
// reported too.
type Callbacks struct {
	OnElementFocused      func(index int, m transformer.Member)
	OnElementFocusCleared func()
	// OnFocusChange receives every change; m is nil when focus is cleared.
	OnFocusChange func(index int, m transformer.Member)
}

// Config constructs a Controller.
type Config struct {
	Transformer *transformer.Transformer
	// Surface receives the border layer. Defaults to the transformer's own
	// surface.
	Surface surface.Surface
	Options Options
	Logger  *slog.Logger
	Callbacks
}

// Controller tracks the focused member of a transformer's group.
type Controller struct {
	tf     *transformer.Transformer
	opts   Options
	logger *slog.Logger
	cb     Callbacks

	parent  surface.Surface
	surface surface.Surface

	members []transformer.Member
	focused int
	dirty   bool

	listeners map[EventType][]func(Event)
	cancel    []func()
}

// New attaches a controller to cfg.Transformer and focuses the initial
// member when the group is not empty.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parent := cfg.Surface
	if parent == nil {
		parent = cfg.Transformer.Surface()
	}

	c := &Controller{
		tf:      cfg.Transformer,
		opts:    cfg.Options,
		logger:  logger,
		cb:      cfg.Callbacks,
		parent:  parent,
		surface: parent.AddChild("nested-borders"),
		focused: NoFocus,
		dirty:   true,
	}

	markDirty := func(transformer.Event) { c.dirty = true }
	c.cancel = append(c.cancel,
		c.tf.On(transformer.EventGroupChange, c.groupChanged),
		c.tf.On(transformer.EventTransformChange, markDirty),
		c.tf.On(transformer.EventTransformCommit, markDirty),
		c.tf.OnClick(c.click),
	)

	c.reset(c.tf.Group(), cfg.Options.FocusedIndex)
	return c
}

// On registers fn for focus notifications of type et.
func (c *Controller) On(et EventType, fn func(Event)) {
	if c.listeners == nil {
		c.listeners = make(map[EventType][]func(Event))
	}
	c.listeners[et] = append(c.listeners[et], fn)
}

// FocusedIndex returns the focused index, or NoFocus for an empty group.
func (c *Controller) FocusedIndex() int { return c.focused }

// FocusedMember returns the focused member, or nil.
func (c *Controller) FocusedMember() transformer.Member {
	if c.focused < 0 || c.focused >= len(c.members) {
		return nil
	}
	return c.members[c.focused]
}

// SetFocusedIndex moves focus to i. NoFocus clears focus transiently and
// the first member is focused again at once. Other invalid indexes fall
// back to the first member.
func (c *Controller) SetFocusedIndex(i int) {
	if len(c.members) == 0 {
		return
	}
	if i == NoFocus {
		c.clear()
		c.focus(0)
		return
	}
	if i < 0 || i >= len(c.members) {
		c.logger.Debug("focus index out of range", "index", i, "members", len(c.members))
		i = 0
	}
	if i == c.focused {
		return
	}
	c.focus(i)
}

// FocusNext moves focus to the following member, wrapping around.
func (c *Controller) FocusNext() {
	if len(c.members) == 0 {
		return
	}
	c.focus((c.focused + 1) % len(c.members))
}

// Options returns the current options.
func (c *Controller) Options() Options { return c.opts }

// SetOptions replaces the border styling. FocusedIndex is applied as a
// focus request.
func (c *Controller) SetOptions(o Options) {
	prev := c.opts
	c.opts = o
	c.dirty = true
	if o.FocusedIndex != prev.FocusedIndex {
		c.SetFocusedIndex(o.FocusedIndex)
	}
}

// MemberAt returns the index of the top-most member under p.
func (c *Controller) MemberAt(p mgl64.Vec2) (int, bool) {
	for i := len(c.members) - 1; i >= 0; i-- {
		m := c.members[i]
		if (geometry.Shape{Transform: m.LocalTransform(), Bounds: m.LocalBounds()}).Contains(p) {
			return i, true
		}
	}
	return NoFocus, false
}

// click consumes clicks that land on a member. Clicking the focused member
// keeps it focused.
func (c *Controller) click(p mgl64.Vec2) bool {
	i, ok := c.MemberAt(p)
	if !ok {
		return false
	}
	if i != c.focused {
		c.focus(i)
	}
	return true
}

// groupChanged re-picks the first member only when the membership differs
// in size, identity or order; the same members keep their focus.
func (c *Controller) groupChanged(e transformer.Event) {
	if slices.Equal(c.members, e.Members) {
		c.members = e.Members
		c.dirty = true
		return
	}
	c.reset(e.Members, 0)
}

func (c *Controller) reset(members []transformer.Member, initial int) {
	c.members = members
	c.dirty = true
	if len(members) == 0 {
		if c.focused != NoFocus {
			c.clear()
		}
		return
	}
	if initial < 0 || initial >= len(members) {
		initial = 0
	}
	c.focus(initial)
}

func (c *Controller) focus(i int) {
	c.focused = i
	c.dirty = true
	m := c.members[i]
	if c.cb.OnElementFocused != nil {
		c.cb.OnElementFocused(i, m)
	}
	if c.cb.OnFocusChange != nil {
		c.cb.OnFocusChange(i, m)
	}
	c.emit(Event{Type: EventElementFocused, Index: i, Member: m})
}

func (c *Controller) clear() {
	c.focused = NoFocus
	c.dirty = true
	if c.cb.OnElementFocusCleared != nil {
		c.cb.OnElementFocusCleared()
	}
	if c.cb.OnFocusChange != nil {
		c.cb.OnFocusChange(NoFocus, nil)
	}
	c.emit(Event{Type: EventElementFocusCleared, Index: NoFocus})
}

func (c *Controller) emit(e Event) {
	for _, fn := range c.listeners[e.Type] {
		fn(e)
	}
}

// Render redraws member borders when focus, styling or member geometry
// changed and reports whether it did.
func (c *Controller) Render() bool {
	if !c.dirty {
		return false
	}
	c.dirty = false
	s := c.surface
	s.Clear()
	for i, m := range c.members {
		switch {
		case i == c.focused:
			s.LineStyle(c.opts.FocusedBorderThickness, c.opts.FocusedBorderColor, c.opts.FocusedBorderAlpha)
		case c.opts.ShowAllBorders:
			s.LineStyle(c.opts.BorderThickness, c.opts.BorderColor, c.opts.BorderAlpha)
		default:
			continue
		}
		corners := geometry.Shape{Transform: m.LocalTransform(), Bounds: m.LocalBounds()}.WorldCorners()
		s.DrawPolygon(corners[:])
	}
	return true
}

// Destroy detaches the controller from the transformer.
func (c *Controller) Destroy() {
	for _, cancel := range c.cancel {
		cancel()
	}
	c.cancel = nil
	c.parent.RemoveChild(c.surface)
	c.members = nil
	c.focused = NoFocus
}
