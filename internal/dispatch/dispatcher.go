package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/input/key"
	"github.com/dshills/keycmd/internal/keybind"
	"github.com/dshills/keycmd/internal/repeat"
)

// Builtin command names owned by the dispatcher.
const (
	CmdRepeatPrefix = "cmd_repeatNumericPrefix"
	CmdCancel       = "cmd_cancel"
)

// Config holds dispatcher configuration options.
type Config struct {
	// MaxSequence is the longest key sequence that is recorded.
	MaxSequence int

	// CancelKey drops a pending sequence. Escape always cancels as well.
	CancelKey key.Event
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSequence: keybind.DefaultMaxSequence,
		CancelKey:   key.MustParse("Ctrl+G"),
	}
}

// Dispatcher routes key events to commands.
type Dispatcher struct {
	config   Config
	registry *command.Registry
	bindings *keybind.Manager
	repeat   *repeat.Controller
	recorder *keybind.Recorder

	// count carried from a repeat prefix into a multi-key sequence; zero
	// is a valid count, so hasPendingCount marks it as set
	pendingCount    int
	hasPendingCount bool

	ctx     context.Context
	surface func() command.Surface
	status  func(msg string)
	metrics *Metrics
	log     *logrus.Entry
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSurface sets the provider of the active surface.
func WithSurface(fn func() command.Surface) Option {
	return func(d *Dispatcher) { d.surface = fn }
}

// WithStatus sets the status message sink.
func WithStatus(fn func(msg string)) Option {
	return func(d *Dispatcher) { d.status = fn }
}

// WithRepeat sets the repeat prefix controller.
func WithRepeat(c *repeat.Controller) Option {
	return func(d *Dispatcher) { d.repeat = c }
}

// WithContext sets the context passed to invoked commands.
func WithContext(ctx context.Context) Option {
	return func(d *Dispatcher) { d.ctx = ctx }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Dispatcher) { d.log = log }
}

// New creates a dispatcher over a command registry and a binding table.
func New(config Config, registry *command.Registry, bindings *keybind.Manager, opts ...Option) *Dispatcher {
	if config.MaxSequence <= 0 {
		config.MaxSequence = keybind.DefaultMaxSequence
	}
	if config.CancelKey.Key == key.KeyNone {
		config.CancelKey = DefaultConfig().CancelKey
	}
	d := &Dispatcher{
		config:   config,
		registry: registry,
		bindings: bindings,
		recorder: keybind.NewRecorder(config.MaxSequence),
		metrics:  NewMetrics(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		d.log = logrus.NewEntry(l)
	}
	d.log = d.log.WithField("component", "dispatch")
	return d
}

// Metrics returns the invocation statistics.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Pending returns the keys typed towards an unfinished sequence.
func (d *Dispatcher) Pending() string {
	return d.recorder.String()
}

// HandleKey processes one key event.
func (d *Dispatcher) HandleKey(ev key.Event) Result {
	ev = ev.Normalize()
	if ev == (key.Event{}) {
		return Result{Status: StatusIgnored}
	}

	if d.repeat != nil && d.repeat.Active() {
		out := d.repeat.HandleKey(ev)
		switch {
		case out.Cancelled:
			d.pendingCount, d.hasPendingCount = 0, false
			return Result{Status: StatusCancelled, Keys: ev.String()}
		case out.Forward:
			d.recorder.Reset()
			return d.resolve(ev, out.Count)
		case out.Consumed && d.repeat.Active():
			return Result{Status: StatusPending, Keys: ev.String()}
		case out.Consumed:
			return Result{Status: StatusInserted, Keys: ev.String(), Count: out.Inserted}
		}
	}

	if d.recorder.Len() > 0 && d.isCancel(ev) {
		d.Cancel()
		return Result{Status: StatusCancelled, Keys: ev.String()}
	}

	count := 1
	if d.hasPendingCount {
		count = d.pendingCount
	}
	return d.resolve(ev, count)
}

// resolve appends ev to the pending sequence and acts on the lookup.
func (d *Dispatcher) resolve(ev key.Event, count int) Result {
	state := d.recorder.Feed(ev)
	if state == keybind.RecordRejected {
		keys := strings.TrimSpace(d.recorder.String() + " " + ev.String())
		d.reset()
		return d.unbound(keys)
	}

	seq := d.recorder.Sequence()
	keys := seq.String()
	b, match := d.bindings.Lookup(seq)

	switch {
	case match == keybind.MatchExact:
		d.reset()
		return d.invoke(b, count)

	case match == keybind.MatchPrefix && state == keybind.RecordPending:
		d.pendingCount, d.hasPendingCount = count, true
		d.setStatus(keys + " -")
		return Result{Status: StatusPending, Keys: keys}
	}

	n := seq.Len()
	d.reset()
	if n == 1 && ev.IsChar() {
		return d.insert(ev, count)
	}
	return d.unbound(keys)
}

func (d *Dispatcher) invoke(b keybind.Binding, count int) Result {
	source := command.SourceKeyboard
	if count > 1 {
		source = command.SourceRepeat
	}

	res := Result{Status: StatusInvoked, Keys: b.Keys, Command: b.Command}
	for i := 0; i < count; i++ {
		ctx := &command.Context{
			Ctx:     d.ctx,
			Param:   b.Param,
			Count:   1,
			Source:  source,
			Surface: d.activeSurface(),
		}
		start := time.Now()
		err := d.registry.Invoke(b.Command, ctx)
		d.metrics.Record(b.Command, time.Since(start), err != nil)
		if err != nil {
			d.report(b, err)
			res.Status = StatusError
			res.Err = err
			return res
		}
		res.Count++
	}
	return res
}

// report logs a failed invocation and surfaces a short message.
func (d *Dispatcher) report(b keybind.Binding, err error) {
	entry := d.log.WithFields(logrus.Fields{"command": b.Command, "keys": b.Keys})
	switch {
	case errors.Is(err, command.ErrUnsupported):
		entry.Warn("binding points at an unregistered command")
		d.setStatus(fmt.Sprintf("%s: no such command %s", b.Keys, b.Command))
	case errors.Is(err, command.ErrDisabled):
		entry.Debug("command disabled")
		d.setStatus(fmt.Sprintf("%s is not available", b.Command))
	default:
		entry.WithError(err).Error("command failed")
		d.setStatus(fmt.Sprintf("%s failed: %v", b.Command, firstLine(err)))
	}
}

func (d *Dispatcher) insert(ev key.Event, count int) Result {
	surface := d.activeSurface()
	if surface == nil {
		return Result{Status: StatusIgnored, Keys: ev.String()}
	}
	if err := surface.InsertText(strings.Repeat(string(ev.Rune), count)); err != nil {
		d.log.WithError(err).Warn("self-insert failed")
		return Result{Status: StatusError, Keys: ev.String(), Err: err}
	}
	return Result{Status: StatusInserted, Keys: ev.String(), Count: count}
}

func (d *Dispatcher) unbound(keys string) Result {
	d.setStatus(keys + " is undefined")
	return Result{Status: StatusUnbound, Keys: keys, Err: ErrUnbound}
}

// Cancel drops pending keys and any repeat prefix.
func (d *Dispatcher) Cancel() {
	d.reset()
	if d.repeat != nil {
		d.repeat.Cancel()
	}
	d.setStatus("")
}

// ActivateRepeat starts or compounds the repeat prefix.
func (d *Dispatcher) ActivateRepeat() error {
	if d.repeat == nil {
		return fmt.Errorf("%w: repeat prefix not configured", command.ErrUnsupported)
	}
	d.repeat.Activate()
	return nil
}

// RegisterCommands registers the dispatcher's own commands.
func (d *Dispatcher) RegisterCommands() error {
	if err := d.registry.Register(CmdRepeatPrefix,
		command.HandlerFunc(func(*command.Context) error { return d.ActivateRepeat() }),
		command.WithLabel("Repeat Next Command"),
		command.WithCategory("Editor"),
		command.WithKeys("Ctrl+U"),
	); err != nil {
		return err
	}
	return d.registry.Register(CmdCancel,
		command.HandlerFunc(func(*command.Context) error { d.Cancel(); return nil }),
		command.WithLabel("Keyboard Quit"),
		command.WithCategory("Editor"),
		command.WithKeys("Ctrl+G"),
	)
}

func (d *Dispatcher) isCancel(ev key.Event) bool {
	return ev.Equals(d.config.CancelKey) || ev == key.NewSpecialEvent(key.KeyEscape, key.ModNone)
}

func (d *Dispatcher) reset() {
	d.recorder.Reset()
	d.pendingCount, d.hasPendingCount = 0, false
}

func (d *Dispatcher) activeSurface() command.Surface {
	if d.surface == nil {
		return nil
	}
	return d.surface()
}

func (d *Dispatcher) setStatus(msg string) {
	if d.status != nil {
		d.status(msg)
	}
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
