package lua

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycmd/internal/command"
)

// Bindings is the part of the key binding manager scripts can use.
type Bindings interface {
	AddBinding(command, keys string, force bool) bool
	UsedBy(keys string) []string
}

// Host runs user scripts and owns the commands they register.
type Host struct {
	state    *State
	registry *command.Registry
	bindings Bindings

	surface func() command.Surface
	status  func(msg string)
	log     *logrus.Entry

	mu    sync.Mutex
	owned map[string]bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithSurface sets the provider of the surface keycmd.insert writes to.
func WithSurface(fn func() command.Surface) HostOption {
	return func(h *Host) { h.surface = fn }
}

// WithStatus sets the sink for keycmd.status.
func WithStatus(fn func(msg string)) HostOption {
	return func(h *Host) { h.status = fn }
}

// WithLogger sets the logger. Script print output goes to it as well.
func WithLogger(log *logrus.Entry) HostOption {
	return func(h *Host) { h.log = log }
}

// WithState sets the Lua state, e.g. one with a custom timeout.
func WithState(s *State) HostOption {
	return func(h *Host) { h.state = s }
}

// NewHost creates a host with the keycmd API installed.
func NewHost(registry *command.Registry, bindings Bindings, opts ...HostOption) *Host {
	h := &Host{
		registry: registry,
		bindings: bindings,
		owned:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.state == nil {
		h.state = NewState()
	}
	if h.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		h.log = logrus.NewEntry(l)
	}
	h.log = h.log.WithField("component", "lua")

	_ = h.state.With(h.install)
	return h
}

func (h *Host) install(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"register":   h.luaRegister,
		"unregister": h.luaUnregister,
		"bind":       h.luaBind,
		"used_by":    h.luaUsedBy,
		"insert":     h.luaInsert,
		"status":     h.luaStatus,
	})
	L.SetGlobal("keycmd", mod)
	L.SetGlobal("print", L.NewFunction(h.luaPrint))
}

// LoadFile runs one script.
func (h *Host) LoadFile(path string) error {
	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	h.log.WithField("script", path).Debug("script loaded")
	return nil
}

// LoadString runs a chunk of Lua code.
func (h *Host) LoadString(code string) error {
	return h.state.DoString(code)
}

// LoadDir runs every *.lua file in dir in name order. A failing script is
// logged and skipped. A missing directory loads nothing.
func (h *Host) LoadDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	loaded := 0
	for _, path := range paths {
		if err := h.LoadFile(path); err != nil {
			h.log.WithError(err).WithField("script", path).Warn("script failed")
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Commands returns the commands registered by scripts.
func (h *Host) Commands() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.owned))
	for name := range h.owned {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close unregisters script commands and releases the Lua state.
func (h *Host) Close() error {
	for _, name := range h.Commands() {
		h.registry.Unregister(name)
	}
	h.mu.Lock()
	h.owned = make(map[string]bool)
	h.mu.Unlock()
	return h.state.Close()
}

// keycmd.register(name, fn[, opts]) -> true | false, err
func (h *Host) luaRegister(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	opts := L.OptTable(3, nil)

	cmd := &Command{state: h.state, fn: fn}
	var options []command.Option
	options = append(options, command.WithCategory("Script"))
	if opts != nil {
		if label, ok := opts.RawGetString("label").(lua.LString); ok {
			options = append(options, command.WithLabel(string(label)))
		}
		if keys := stringList(opts.RawGetString("keys")); len(keys) > 0 {
			options = append(options, command.WithKeys(keys...))
		}
		if enabled, ok := opts.RawGetString("enabled").(*lua.LFunction); ok {
			cmd.enabled = enabled
		}
	}

	if err := h.registry.Register(name, cmd, options...); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	h.mu.Lock()
	h.owned[name] = true
	h.mu.Unlock()
	L.Push(lua.LTrue)
	return 1
}

// keycmd.unregister(name) -> bool[, err]
// Only commands registered by scripts can be removed.
func (h *Host) luaUnregister(L *lua.LState) int {
	name := L.CheckString(1)
	h.mu.Lock()
	owned := h.owned[name]
	if owned {
		delete(h.owned, name)
	}
	h.mu.Unlock()

	if !owned {
		h.log.WithField("command", name).Warn("script tried to unregister a command it does not own")
		L.Push(lua.LFalse)
		L.Push(lua.LString(fmt.Sprintf("%s was not registered by a script", name)))
		return 2
	}
	L.Push(lua.LBool(h.registry.Unregister(name)))
	return 1
}

// keycmd.bind(command, keys[, force]) -> bool
func (h *Host) luaBind(L *lua.LState) int {
	name := L.CheckString(1)
	keys := L.CheckString(2)
	force := L.OptBool(3, false)
	L.Push(lua.LBool(h.bindings.AddBinding(name, keys, force)))
	return 1
}

// keycmd.used_by(keys) -> { command... }
func (h *Host) luaUsedBy(L *lua.LState) int {
	tbl := L.NewTable()
	for _, name := range h.bindings.UsedBy(L.CheckString(1)) {
		tbl.Append(lua.LString(name))
	}
	L.Push(tbl)
	return 1
}

// keycmd.insert(text) -> bool
func (h *Host) luaInsert(L *lua.LState) int {
	text := L.CheckString(1)
	var surface command.Surface
	if h.surface != nil {
		surface = h.surface()
	}
	if surface == nil {
		L.Push(lua.LFalse)
		return 1
	}
	if err := surface.InsertText(text); err != nil {
		L.RaiseError("insert: %v", err)
	}
	L.Push(lua.LTrue)
	return 1
}

// keycmd.status(msg)
func (h *Host) luaStatus(L *lua.LState) int {
	if h.status != nil {
		h.status(L.CheckString(1))
	}
	return 0
}

func (h *Host) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]any, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.log.Info(parts...)
	return 0
}

// stringList accepts a string or a table of strings.
func stringList(v lua.LValue) []string {
	switch v := v.(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		v.ForEach(func(_, item lua.LValue) {
			if s, ok := item.(lua.LString); ok {
				out = append(out, string(s))
			}
		})
		return out
	}
	return nil
}
