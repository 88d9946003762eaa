package command

import (
	"context"
	"regexp"
)

// MaxNameLength bounds command names.
const MaxNameLength = 128

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*([.-][A-Za-z0-9_]+)*$`)

// ValidName reports whether name matches the command identifier grammar.
func ValidName(name string) bool {
	return len(name) <= MaxNameLength && namePattern.MatchString(name)
}

// Source indicates where an invocation came from.
type Source uint8

const (
	// SourceAPI is a direct call.
	SourceAPI Source = iota
	// SourceKeyboard is a key binding.
	SourceKeyboard
	// SourceRepeat is a key binding replayed by the repeat prefix.
	SourceRepeat
	// SourceScript is a Lua script.
	SourceScript
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceKeyboard:
		return "keyboard"
	case SourceRepeat:
		return "repeat"
	case SourceScript:
		return "script"
	default:
		return "unknown"
	}
}

// Surface is the text target commands edit. It may be absent.
type Surface interface {
	InsertText(text string) error
}

// Context is passed to command handlers and predicates.
type Context struct {
	// Ctx carries cancellation. Never nil once the registry has seen it.
	Ctx context.Context

	// Name is the command being invoked.
	Name string

	// Param is the binding's parameter, e.g. a snippet id.
	Param string

	// Count is the repeat count; 1 unless a repeat prefix was used.
	Count int

	// Source tells where the invocation came from.
	Source Source

	// Surface is the active text surface, or nil.
	Surface Surface
}

// Command is an invocable action.
type Command interface {
	// Invoke runs the command.
	Invoke(ctx *Context) error

	// IsEnabled reports whether the command can run now.
	IsEnabled(ctx *Context) bool
}

// HandlerFunc adapts a function to a Command that is always enabled.
type HandlerFunc func(ctx *Context) error

// Invoke implements Command.
func (f HandlerFunc) Invoke(ctx *Context) error { return f(ctx) }

// IsEnabled implements Command.
func (f HandlerFunc) IsEnabled(*Context) bool { return true }

// Func is a Command built from a handler and an optional predicate.
type Func struct {
	Run     func(ctx *Context) error
	Enabled func(ctx *Context) bool
}

// Invoke implements Command.
func (f *Func) Invoke(ctx *Context) error {
	if f.Run == nil {
		return nil
	}
	return f.Run(ctx)
}

// IsEnabled implements Command.
func (f *Func) IsEnabled(ctx *Context) bool {
	if f.Enabled == nil {
		return true
	}
	return f.Enabled(ctx)
}

// NilChecker is implemented by commands that can be nil behind a non-nil
// interface value.
type NilChecker interface {
	IsNil() bool
}

// IsNil reports whether the handler is missing.
func (f HandlerFunc) IsNil() bool { return f == nil }

// IsNil reports whether f is a nil pointer.
func (f *Func) IsNil() bool { return f == nil }

func isNilCommand(cmd Command) bool {
	if cmd == nil {
		return true
	}
	if nc, ok := cmd.(NilChecker); ok {
		return nc.IsNil()
	}
	return false
}

// Info is the metadata kept with a registered command.
type Info struct {
	Name     string
	Label    string
	Category string

	// Keys are the default key sequences requested at registration.
	Keys []string
}

// Option configures a command at registration.
type Option func(*Info)

// WithLabel sets the display label.
func WithLabel(label string) Option {
	return func(i *Info) { i.Label = label }
}

// WithCategory sets the display category.
func WithCategory(category string) Option {
	return func(i *Info) { i.Category = category }
}

// WithKeys requests default key bindings. Sequences already owned by
// another command are skipped.
func WithKeys(keys ...string) Option {
	return func(i *Info) { i.Keys = append(i.Keys, keys...) }
}
