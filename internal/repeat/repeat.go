package repeat

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/input/key"
)

// State is the controller state.
type State int

const (
	// StateIdle means normal key handling.
	StateIdle State = iota

	// StateAccumulating means a repeat prefix is being typed.
	StateAccumulating
)

// String returns the state name.
func (s State) String() string {
	if s == StateAccumulating {
		return "accumulating"
	}
	return "idle"
}

// Surface receives replayed text.
type Surface interface {
	InsertText(text string) error
}

// Config configures a Controller.
type Config struct {
	// DefaultMultiplier is the count used when no digits are typed.
	DefaultMultiplier int

	// MaxCount caps both typed counts and compounded multipliers.
	MaxCount int

	// ActivationKey is the key that activates the prefix.
	ActivationKey key.Event

	// CancelKey discards the prefix. Escape always cancels as well.
	CancelKey key.Event
}

// DefaultConfig returns the emacs defaults: Ctrl+U, multiplier 4, Ctrl+G.
func DefaultConfig() Config {
	return Config{
		DefaultMultiplier: 4,
		MaxCount:          10000,
		ActivationKey:     key.MustParse("Ctrl+U"),
		CancelKey:         key.MustParse("Ctrl+G"),
	}
}

// Outcome reports what HandleKey did with a key.
type Outcome struct {
	// Consumed is true when the controller handled the key itself.
	Consumed bool

	// Forward is true when the caller should run the key's binding Count
	// times.
	Forward bool

	// Count is the repeat count that finished the prefix.
	Count int

	// Inserted is the number of characters written to the surface.
	Inserted int

	// Cancelled is true when the key discarded the prefix.
	Cancelled bool
}

// Controller is the repeat prefix state machine.
type Controller struct {
	cfg Config

	state      State
	count      int
	useDefault bool
	multiplier int

	surface    func() Surface
	status     func(msg string)
	activation func(ev key.Event) bool
	log        *logrus.Entry
}

// Option configures a Controller.
type Option func(*Controller)

// WithSurface sets the provider of the active text surface. The provider
// may return nil when no surface is focused.
func WithSurface(fn func() Surface) Option {
	return func(c *Controller) { c.surface = fn }
}

// WithStatus sets the status message sink.
func WithStatus(fn func(msg string)) Option {
	return func(c *Controller) { c.status = fn }
}

// WithActivationMatcher replaces the ActivationKey comparison, e.g. to
// follow the key currently bound to the prefix command.
func WithActivationMatcher(fn func(ev key.Event) bool) Option {
	return func(c *Controller) { c.activation = fn }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Controller) { c.log = log }
}

// New creates an idle controller. Zero config fields take their defaults.
func New(cfg Config, opts ...Option) *Controller {
	def := DefaultConfig()
	if cfg.DefaultMultiplier < 2 {
		cfg.DefaultMultiplier = def.DefaultMultiplier
	}
	if cfg.MaxCount < 1 {
		cfg.MaxCount = def.MaxCount
	}
	if cfg.ActivationKey.Key == key.KeyNone {
		cfg.ActivationKey = def.ActivationKey
	}
	if cfg.CancelKey.Key == key.KeyNone {
		cfg.CancelKey = def.CancelKey
	}

	c := &Controller{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.activation == nil {
		c.activation = func(ev key.Event) bool { return ev.Equals(c.cfg.ActivationKey) }
	}
	if c.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		c.log = logrus.NewEntry(l)
	}
	c.log = c.log.WithField("component", "repeat")
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Active reports whether a prefix is being accumulated.
func (c *Controller) Active() bool { return c.state == StateAccumulating }

// Count returns the digits typed so far.
func (c *Controller) Count() int { return c.count }

// Multiplier returns the current default multiplier.
func (c *Controller) Multiplier() int { return c.multiplier }

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// Activate starts the prefix, or squares the multiplier when the prefix is
// already active and no digits were typed. Once digits are typed a repeated
// activation is ignored.
func (c *Controller) Activate() {
	switch {
	case c.state == StateIdle:
		c.state = StateAccumulating
		c.count = 0
		c.useDefault = true
		c.multiplier = c.cfg.DefaultMultiplier
	case c.useDefault:
		c.multiplier = min(c.multiplier*c.multiplier, c.cfg.MaxCount)
	default:
		return
	}
	c.setStatus(fmt.Sprintf("Repeat x%d", c.multiplier))
}

// Cancel discards the prefix and returns to idle.
func (c *Controller) Cancel() {
	if c.state == StateIdle {
		return
	}
	c.reset()
	c.setStatus("")
}

// HandleKey feeds a key to the controller. Keys are only consumed while
// accumulating.
func (c *Controller) HandleKey(ev key.Event) Outcome {
	if c.state == StateIdle {
		return Outcome{}
	}
	ev = ev.Normalize()

	if d, ok := ev.Digit(); ok {
		c.count = min(c.count*10+d, c.cfg.MaxCount)
		c.useDefault = false
		c.setStatus(fmt.Sprintf("Repeat: %d", c.count))
		return Outcome{Consumed: true}
	}

	if ev.Equals(c.cfg.CancelKey) || ev == key.NewSpecialEvent(key.KeyEscape, key.ModNone) {
		c.Cancel()
		return Outcome{Consumed: true, Cancelled: true}
	}

	if c.activation(ev) {
		c.Activate()
		return Outcome{Consumed: true}
	}

	n := c.effectiveCount()
	c.reset()
	c.setStatus("")

	if !ev.IsChar() {
		return Outcome{Forward: true, Count: n}
	}

	out := Outcome{Consumed: true, Count: n}
	var surface Surface
	if c.surface != nil {
		surface = c.surface()
	}
	if surface == nil {
		c.log.WithField("count", n).Debug("no active surface, replay skipped")
		return out
	}
	if n == 0 {
		return out
	}
	if err := surface.InsertText(strings.Repeat(string(ev.Rune), n)); err != nil {
		c.log.WithError(err).Warn("repeat replay failed")
		return out
	}
	out.Inserted = n
	return out
}

func (c *Controller) effectiveCount() int {
	if c.useDefault {
		return c.multiplier
	}
	return c.count
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.count = 0
	c.useDefault = false
	c.multiplier = 0
}

func (c *Controller) setStatus(msg string) {
	if c.status != nil {
		c.status(msg)
	}
}
