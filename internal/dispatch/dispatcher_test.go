package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/editor"
	"github.com/dshills/keycmd/internal/input/key"
	"github.com/dshills/keycmd/internal/keybind"
	"github.com/dshills/keycmd/internal/repeat"
)

type fixture struct {
	reg      *command.Registry
	bindings *keybind.Manager
	buf      *editor.Buffer
	rep      *repeat.Controller
	d        *Dispatcher
	status   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{buf: editor.NewBuffer("")}
	f.bindings = keybind.NewManager()
	f.reg = command.NewRegistry(command.WithBinder(f.bindings))
	f.rep = repeat.New(repeat.DefaultConfig(),
		repeat.WithSurface(func() repeat.Surface { return f.buf }))
	f.d = New(DefaultConfig(), f.reg, f.bindings,
		WithRepeat(f.rep),
		WithSurface(func() command.Surface { return f.buf }),
		WithStatus(func(msg string) { f.status = append(f.status, msg) }),
	)
	require.NoError(t, f.d.RegisterCommands())
	require.NoError(t, editor.RegisterCommands(f.reg, f.buf, nil))
	return f
}

func (f *fixture) press(specs ...string) Result {
	var res Result
	for _, s := range specs {
		res = f.d.HandleKey(key.MustParse(s))
	}
	return res
}

func TestSelfInsertAndBuiltins(t *testing.T) {
	f := newFixture(t)

	res := f.press("h")
	assert.Equal(t, StatusInserted, res.Status)
	f.press("i", "Left")
	assert.Equal(t, 1, f.buf.Cursor())

	res = f.press("Backspace")
	assert.Equal(t, StatusInvoked, res.Status)
	assert.Equal(t, editor.CmdBackspace, res.Command)
	assert.Equal(t, "i", f.buf.Text())
}

func TestRepeatPrefixInsertsCount(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, StatusInvoked, f.press("Ctrl+U").Status)
	assert.Equal(t, StatusPending, f.press("4").Status)
	assert.Equal(t, StatusPending, f.press("2").Status)
	res := f.press("x")

	assert.Equal(t, StatusInserted, res.Status)
	assert.Equal(t, 42, res.Count)
	assert.Len(t, f.buf.Text(), 42)
	assert.False(t, f.rep.Active())
}

func TestRepeatPrefixCompounds(t *testing.T) {
	f := newFixture(t)
	f.press("Ctrl+U", "Ctrl+U", "-")
	assert.Len(t, f.buf.Text(), 16)
}

func TestRepeatForwardsBinding(t *testing.T) {
	f := newFixture(t)
	f.buf.Reset("abcdef")

	res := f.press("Ctrl+U", "3", "Left")
	assert.Equal(t, StatusInvoked, res.Status)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 3, f.buf.Cursor())
}

func TestRepeatCarriesIntoSequence(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register("cmd_twice", command.HandlerFunc(func(ctx *command.Context) error {
		calls++
		assert.Equal(t, command.SourceRepeat, ctx.Source)
		return nil
	}), command.WithKeys("Ctrl+K B")))

	assert.Equal(t, StatusPending, f.press("Ctrl+U", "2", "Ctrl+K").Status)
	res := f.press("B")
	assert.Equal(t, StatusInvoked, res.Status)
	assert.Equal(t, 2, calls)
}

func TestZeroCountCarriesIntoSequence(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register("cmd_counted", command.HandlerFunc(func(*command.Context) error {
		calls++
		return nil
	}), command.WithKeys("Ctrl+K B")))

	res := f.press("Ctrl+U", "0", "Enter")
	assert.Equal(t, StatusInvoked, res.Status)
	assert.Zero(t, res.Count)
	assert.Empty(t, f.buf.Text())

	assert.Equal(t, StatusPending, f.press("Ctrl+U", "0", "Ctrl+K").Status)
	res = f.press("B")
	assert.Equal(t, StatusInvoked, res.Status)
	assert.Zero(t, res.Count)
	assert.Zero(t, calls)

	f.press("Ctrl+K", "B")
	assert.Equal(t, 1, calls, "the carried count applies to one sequence only")

	f.press("Ctrl+U", "3", "Ctrl+K", "B")
	assert.Equal(t, 4, calls)
}

func TestCancelRestoresNormalHandling(t *testing.T) {
	f := newFixture(t)

	f.press("Ctrl+U", "5")
	res := f.press("Ctrl+G")
	assert.Equal(t, StatusCancelled, res.Status)
	assert.False(t, f.rep.Active())

	f.press("x")
	assert.Equal(t, "x", f.buf.Text())
}

func TestMultiKeySequence(t *testing.T) {
	f := newFixture(t)
	var got *command.Context
	require.NoError(t, f.reg.Register("cmd_snippet", command.HandlerFunc(func(ctx *command.Context) error {
		got = ctx
		return nil
	})))
	require.True(t, f.bindings.AddBindingWithParam("cmd_snippet", "snip-1", "Ctrl+K B", false))

	res := f.press("Ctrl+K")
	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, "Ctrl+K", f.d.Pending())
	assert.Contains(t, f.status, "Ctrl+K -")

	res = f.press("B")
	assert.Equal(t, StatusInvoked, res.Status)
	require.NotNil(t, got)
	assert.Equal(t, "snip-1", got.Param)
	assert.Equal(t, command.SourceKeyboard, got.Source)
	assert.Empty(t, f.d.Pending())

	res = f.press("Ctrl+K", "z")
	assert.Equal(t, StatusUnbound, res.Status)
	assert.ErrorIs(t, res.Err, ErrUnbound)
	assert.Equal(t, "Ctrl+K z", res.Keys)
	assert.Empty(t, f.buf.Text(), "keys of a failed sequence are not inserted")

	assert.Equal(t, StatusPending, f.press("Ctrl+K").Status)
	assert.Equal(t, StatusCancelled, f.press("Escape").Status)
	assert.Empty(t, f.d.Pending())
}

func TestUnboundSpecialKey(t *testing.T) {
	f := newFixture(t)
	res := f.press("F7")
	assert.Equal(t, StatusUnbound, res.Status)
	assert.False(t, res.IsOK())
	assert.Equal(t, "F7 is undefined", f.status[len(f.status)-1])
}

func TestCommandFailuresAreReported(t *testing.T) {
	f := newFixture(t)
	want := errors.New("disk full")
	require.NoError(t, f.reg.Register("cmd_fail", command.HandlerFunc(func(*command.Context) error { return want }),
		command.WithKeys("F2")))
	require.NoError(t, f.reg.Register("cmd_off", &command.Func{Enabled: func(*command.Context) bool { return false }},
		command.WithKeys("F3")))
	require.True(t, f.bindings.AddBinding("cmd_gone", "F4", false))

	res := f.press("F2")
	assert.Equal(t, StatusError, res.Status)
	assert.ErrorIs(t, res.Err, want)

	res = f.press("F3")
	assert.ErrorIs(t, res.Err, command.ErrDisabled)

	res = f.press("F4")
	assert.ErrorIs(t, res.Err, command.ErrUnsupported)

	stats, ok := f.d.Metrics().CommandStats("cmd_fail")
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.ErrorCount)
	assert.Equal(t, uint64(3), f.d.Metrics().TotalErrors())
}

func TestUnregisterRemovesBinding(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.reg.Unregister(editor.CmdLeft))
	assert.Empty(t, f.bindings.UsedBy("Left"))
	assert.Equal(t, StatusUnbound, f.press("Left").Status)
}

func TestMetricsTopCommands(t *testing.T) {
	m := NewMetrics()
	m.Record("cmd_a", 0, false)
	m.Record("cmd_b", 0, false)
	m.Record("cmd_b", 0, true)

	top := m.TopCommands(1)
	require.Len(t, top, 1)
	assert.Equal(t, "cmd_b", top[0].Name)
	assert.Equal(t, uint64(3), m.TotalInvocations())

	m.Reset()
	assert.Zero(t, m.TotalInvocations())
}
