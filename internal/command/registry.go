package command

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/notify"
)

// Binder installs and removes key bindings on behalf of the registry.
// The key binding manager implements it.
type Binder interface {
	AddDefaultBinding(command, keys string) bool
	RemoveBinding(command string) int
}

type entry struct {
	info Info
	cmd  Command
}

// Registry maps command names to handlers and metadata.
//
// Handlers and predicates are called without holding the registry lock,
// so a command may register or unregister other commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*entry

	binder   Binder
	notifier *notify.Notifier
	log      *logrus.Entry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBinder sets the key binder used for default keys.
func WithBinder(b Binder) RegistryOption {
	return func(r *Registry) { r.binder = b }
}

// WithNotifier sets the notifier for registration changes.
func WithNotifier(n *notify.Notifier) RegistryOption {
	return func(r *Registry) { r.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{commands: make(map[string]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	if r.notifier == nil {
		r.notifier = notify.New()
	}
	if r.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		r.log = logrus.NewEntry(l)
	}
	r.log = r.log.WithField("component", "command")
	return r
}

// Subscribe registers an observer for registration changes. The returned
// subscription is the disposer.
func (r *Registry) Subscribe(observer notify.Observer) *notify.Subscription {
	return r.notifier.SubscribeTopic(notify.TopicCommand, observer)
}

// SetBinder sets the key binder after construction. The binding manager
// usually needs the registry first.
func (r *Registry) SetBinder(b Binder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binder = b
}

// Register adds a command. It fails with ErrInvalidName, ErrNilCommand or
// ErrAlreadyUsed without touching existing state.
func (r *Registry) Register(name string, cmd Command, opts ...Option) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if isNilCommand(cmd) {
		return fmt.Errorf("%w: %q", ErrNilCommand, name)
	}

	info := Info{Name: name}
	for _, opt := range opts {
		opt(&info)
	}

	r.mu.Lock()
	if _, exists := r.commands[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrAlreadyUsed, name)
	}
	r.commands[name] = &entry{info: info, cmd: cmd}
	binder := r.binder
	r.mu.Unlock()

	if binder != nil {
		for _, keys := range info.Keys {
			if !binder.AddDefaultBinding(name, keys) {
				r.log.WithFields(logrus.Fields{"command": name, "keys": keys}).
					Warn("default key binding not installed")
			}
		}
	}

	r.log.WithField("command", name).Debug("registered")
	r.notifier.Notify(notify.Change{Topic: notify.TopicCommand, Kind: notify.KindAdded, Subject: name, Source: "command"})
	return nil
}

// Unregister removes a command and every key binding pointing at it.
// A missing command is logged and reported as false.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	_, ok := r.commands[name]
	delete(r.commands, name)
	binder := r.binder
	r.mu.Unlock()

	if !ok {
		r.log.WithField("command", name).Warn("unregister: no such command")
		return false
	}

	if binder != nil {
		binder.RemoveBinding(name)
	}

	r.log.WithField("command", name).Debug("unregistered")
	r.notifier.Notify(notify.Change{Topic: notify.TopicCommand, Kind: notify.KindRemoved, Subject: name, Source: "command"})
	return true
}

// Has reports whether a command is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[name]
	return ok
}

// Info returns the metadata for a command.
func (r *Registry) Info(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.commands[name]
	if !ok {
		return Info{}, false
	}
	info := e.info
	info.Keys = append([]string(nil), e.info.Keys...)
	return info, true
}

// Names returns all command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

func (r *Registry) lookup(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.commands[name]; ok {
		return e.cmd
	}
	return nil
}

// prepare returns a copy of ctx with the defaults filled in. The caller's
// context is never modified.
func prepare(name string, ctx *Context) *Context {
	var c Context
	if ctx != nil {
		c = *ctx
	}
	c.Name = name
	if c.Ctx == nil {
		c.Ctx = context.Background()
	}
	if c.Count <= 0 {
		c.Count = 1
	}
	return &c
}

// IsEnabled reports whether the command exists and its predicate allows
// it. A panicking predicate counts as disabled.
func (r *Registry) IsEnabled(name string) bool {
	return r.IsEnabledWith(name, nil)
}

// IsEnabledWith is IsEnabled with an explicit context.
func (r *Registry) IsEnabledWith(name string, ctx *Context) (enabled bool) {
	cmd := r.lookup(name)
	if cmd == nil {
		return false
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{"command": name, "panic": p}).Error("enablement predicate panicked")
			enabled = false
		}
	}()
	return cmd.IsEnabled(prepare(name, ctx))
}

// Invoke runs a command. An unregistered command is a no-op returning
// ErrUnsupported; a disabled one returns ErrDisabled. Handler panics are
// recovered and returned as ErrHandlerPanic.
func (r *Registry) Invoke(name string, ctx *Context) error {
	cmd := r.lookup(name)
	if cmd == nil {
		return fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	ctx = prepare(name, ctx)

	if err := ctx.Ctx.Err(); err != nil {
		return err
	}
	if !r.IsEnabledWith(name, ctx) {
		return fmt.Errorf("%w: %q", ErrDisabled, name)
	}
	return r.invokeWithRecovery(cmd, ctx)
}

func (r *Registry) invokeWithRecovery(cmd Command, ctx *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			r.log.WithFields(logrus.Fields{"command": ctx.Name, "panic": p}).Error("command handler panicked")
			err = fmt.Errorf("%w: %s: %v\n%s", ErrHandlerPanic, ctx.Name, p, stack[:n])
		}
	}()
	return cmd.Invoke(ctx)
}

// Close unregisters every command.
func (r *Registry) Close() {
	for _, name := range r.Names() {
		r.Unregister(name)
	}
}
