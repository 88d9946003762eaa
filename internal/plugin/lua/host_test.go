package lua

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/editor"
	"github.com/dshills/keycmd/internal/keybind"
)

type hostFixture struct {
	reg      *command.Registry
	bindings *keybind.Manager
	buf      *editor.Buffer
	host     *Host
	status   []string
}

func newHostFixture(t *testing.T, opts ...HostOption) *hostFixture {
	t.Helper()
	f := &hostFixture{buf: editor.NewBuffer("")}
	f.bindings = keybind.NewManager()
	f.reg = command.NewRegistry(command.WithBinder(f.bindings))
	opts = append([]HostOption{
		WithSurface(func() command.Surface { return f.buf }),
		WithStatus(func(msg string) { f.status = append(f.status, msg) }),
	}, opts...)
	f.host = NewHost(f.reg, f.bindings, opts...)
	t.Cleanup(func() { _ = f.host.Close() })
	return f
}

func TestRegisterAndInvoke(t *testing.T) {
	f := newHostFixture(t)
	require.NoError(t, f.host.LoadString(`
		ok = keycmd.register("cmd_shout", function(ctx)
			keycmd.insert(string.upper(ctx.param or "hi") .. ctx.count)
		end, { label = "Shout", keys = { "Ctrl+K S" } })
	`))

	info, ok := f.reg.Info("cmd_shout")
	require.True(t, ok)
	assert.Equal(t, "Shout", info.Label)
	assert.Equal(t, "Script", info.Category)
	assert.Equal(t, []string{"cmd_shout"}, f.bindings.UsedBy("Ctrl+K S"))

	require.NoError(t, f.reg.Invoke("cmd_shout", &command.Context{Param: "hey", Count: 2}))
	assert.Equal(t, "HEY2", f.buf.Text())
	assert.Equal(t, []string{"cmd_shout"}, f.host.Commands())
}

func TestRegisterReportsErrors(t *testing.T) {
	f := newHostFixture(t)
	require.NoError(t, f.host.LoadString(`
		a = keycmd.register("cmd_dup", function() end)
		b, err = keycmd.register("cmd_dup", function() end)
		c, err2 = keycmd.register("bad name", function() end)
	`))

	var a, b, c bool
	var msg string
	require.NoError(t, f.host.state.With(func(L *glua.LState) {
		a = glua.LVAsBool(L.GetGlobal("a"))
		b = glua.LVAsBool(L.GetGlobal("b"))
		c = glua.LVAsBool(L.GetGlobal("c"))
		msg = L.GetGlobal("err").String()
	}))
	assert.True(t, a)
	assert.False(t, b)
	assert.False(t, c)
	assert.Contains(t, msg, "already")
}

func TestEnabledPredicateAndErrors(t *testing.T) {
	f := newHostFixture(t)
	require.NoError(t, f.host.LoadString(`
		allowed = false
		keycmd.register("cmd_guarded", function() keycmd.status("ran") end,
			{ enabled = function() return allowed end })
		keycmd.register("cmd_broken", function() error("boom") end)
	`))

	assert.False(t, f.reg.IsEnabled("cmd_guarded"))
	assert.ErrorIs(t, f.reg.Invoke("cmd_guarded", nil), command.ErrDisabled)

	require.NoError(t, f.host.LoadString(`allowed = true`))
	require.NoError(t, f.reg.Invoke("cmd_guarded", nil))
	assert.Equal(t, []string{"ran"}, f.status)

	err := f.reg.Invoke("cmd_broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestBindAndUsedBy(t *testing.T) {
	f := newHostFixture(t)
	require.True(t, f.bindings.AddBinding("cmd_save", "Ctrl+S", false))

	require.NoError(t, f.host.LoadString(`
		refused = keycmd.bind("cmd_other", "Ctrl+S")
		forced = keycmd.bind("cmd_other", "Ctrl+S", true)
		owners = keycmd.used_by("Ctrl+S")
		owner = owners[1]
	`))

	require.NoError(t, f.host.state.With(func(L *glua.LState) {
		assert.Equal(t, glua.LFalse, L.GetGlobal("refused"))
		assert.Equal(t, glua.LTrue, L.GetGlobal("forced"))
		assert.Equal(t, "cmd_other", L.GetGlobal("owner").String())
	}))
}

func TestUnregisterOnlyScriptCommands(t *testing.T) {
	f := newHostFixture(t)
	require.NoError(t, f.reg.Register("cmd_builtin", command.HandlerFunc(func(*command.Context) error { return nil })))

	require.NoError(t, f.host.LoadString(`
		keycmd.register("cmd_mine", function() end)
		mine = keycmd.unregister("cmd_mine")
		builtin, err = keycmd.unregister("cmd_builtin")
	`))

	var mine, builtin bool
	var msg string
	require.NoError(t, f.host.state.With(func(L *glua.LState) {
		mine = glua.LVAsBool(L.GetGlobal("mine"))
		builtin = glua.LVAsBool(L.GetGlobal("builtin"))
		msg = L.GetGlobal("err").String()
	}))
	assert.True(t, mine)
	assert.False(t, builtin)
	assert.Contains(t, msg, "not registered by a script")
	assert.True(t, f.reg.Has("cmd_builtin"))
	assert.False(t, f.reg.Has("cmd_mine"))
	assert.Empty(t, f.host.Commands())
}

func TestSandbox(t *testing.T) {
	f := newHostFixture(t)
	for _, code := range []string{
		`os.exit(1)`,
		`io.open("/etc/passwd")`,
		`dofile("/tmp/x.lua")`,
		`require("os")`,
	} {
		assert.Error(t, f.host.LoadString(code), code)
	}
}

func TestExecutionTimeout(t *testing.T) {
	f := newHostFixture(t, WithState(NewState(WithExecutionTimeout(50*time.Millisecond))))
	err := f.host.LoadString(`while true do end`)
	assert.ErrorIs(t, err, ErrExecutionTimeout)
}

func TestLoadDirAndClose(t *testing.T) {
	f := newHostFixture(t)
	dir := t.TempDir()
	write := func(name, code string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(code), 0o644))
	}
	write("a.lua", `keycmd.register("cmd_a", function() end, { keys = "F5" })`)
	write("b.lua", `this is not lua`)
	write("c.lua", `keycmd.register("cmd_c", function() end)`)
	write("notes.txt", `ignored`)

	n, err := f.host.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"cmd_a", "cmd_c"}, f.host.Commands())

	n, err = f.host.LoadDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.host.Close())
	assert.False(t, f.reg.Has("cmd_a"))
	assert.Empty(t, f.bindings.UsedBy("F5"))
	assert.ErrorIs(t, f.host.LoadString(`x = 1`), ErrStateClosed)
}
