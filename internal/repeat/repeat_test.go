package repeat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keycmd/internal/input/key"
)

type bufferSurface struct {
	text string
	err  error
}

func (b *bufferSurface) InsertText(text string) error {
	if b.err != nil {
		return b.err
	}
	b.text += text
	return nil
}

func newController(surface Surface, status *[]string) *Controller {
	opts := []Option{WithSurface(func() Surface { return surface })}
	if status != nil {
		opts = append(opts, WithStatus(func(msg string) { *status = append(*status, msg) }))
	}
	return New(DefaultConfig(), opts...)
}

func feed(c *Controller, specs ...string) Outcome {
	var out Outcome
	for _, s := range specs {
		out = c.HandleKey(key.MustParse(s))
	}
	return out
}

func TestDigitsThenCharacter(t *testing.T) {
	surface := &bufferSurface{}
	var status []string
	c := newController(surface, &status)

	c.Activate()
	require.Equal(t, StateAccumulating, c.State())

	out := feed(c, "4", "2", "x")
	assert.True(t, out.Consumed)
	assert.Equal(t, 42, out.Count)
	assert.Equal(t, 42, out.Inserted)
	assert.Len(t, surface.text, 42)
	assert.Equal(t, StateIdle, c.State())
	assert.Contains(t, status, "Repeat: 42")
	assert.Equal(t, "", status[len(status)-1], "status cleared on completion")
}

func TestDefaultMultiplierCompounds(t *testing.T) {
	surface := &bufferSurface{}
	c := newController(surface, nil)

	c.Activate()
	assert.Equal(t, 4, c.Multiplier())
	c.Activate()
	assert.Equal(t, 16, c.Multiplier())
	c.Activate()
	assert.Equal(t, 256, c.Multiplier())

	out := feed(c, "a")
	assert.Equal(t, 256, out.Inserted)
	assert.Len(t, surface.text, 256)
}

func TestActivationKeyWhileAccumulating(t *testing.T) {
	surface := &bufferSurface{}
	c := newController(surface, nil)

	c.Activate()
	out := feed(c, "Ctrl+U")
	assert.True(t, out.Consumed)
	assert.Equal(t, 16, c.Multiplier())

	feed(c, "3")
	feed(c, "Ctrl+U")
	assert.Equal(t, 16, c.Multiplier(), "activation after digits is ignored")
	assert.Equal(t, 3, c.Count())

	feed(c, "z")
	assert.Equal(t, "zzz", surface.text)
}

func TestCancel(t *testing.T) {
	for _, spec := range []string{"Ctrl+G", "Escape"} {
		surface := &bufferSurface{}
		var status []string
		c := newController(surface, &status)

		c.Activate()
		feed(c, "5")
		out := feed(c, spec)

		assert.True(t, out.Consumed, spec)
		assert.True(t, out.Cancelled, spec)
		assert.False(t, c.Active(), spec)
		assert.Empty(t, surface.text, spec)
		assert.Equal(t, "", status[len(status)-1], spec)

		out = feed(c, "x")
		assert.False(t, out.Consumed, "idle controller ignores keys")
	}
}

func TestNonPrintableForwards(t *testing.T) {
	c := newController(&bufferSurface{}, nil)

	c.Activate()
	out := feed(c, "1", "2", "Left")
	assert.False(t, out.Consumed)
	assert.True(t, out.Forward)
	assert.Equal(t, 12, out.Count)
	assert.False(t, c.Active())

	c.Activate()
	out = feed(c, "Ctrl+F")
	assert.True(t, out.Forward)
	assert.Equal(t, 4, out.Count)
}

func TestZeroCountInsertsNothing(t *testing.T) {
	surface := &bufferSurface{}
	c := newController(surface, nil)

	c.Activate()
	out := feed(c, "0", "x")
	assert.True(t, out.Consumed)
	assert.Zero(t, out.Inserted)
	assert.Empty(t, surface.text)
}

func TestCountIsCapped(t *testing.T) {
	c := New(Config{MaxCount: 100})
	c.Activate()
	feed(c, "9", "9", "9", "9")
	assert.Equal(t, 100, c.Count())

	c.Cancel()
	c.Activate()
	for i := 0; i < 5; i++ {
		c.Activate()
	}
	assert.Equal(t, 100, c.Multiplier())
}

func TestNoSurfaceSkipsReplay(t *testing.T) {
	c := New(DefaultConfig(), WithSurface(func() Surface { return nil }))
	c.Activate()
	out := feed(c, "3", "x")
	assert.True(t, out.Consumed)
	assert.Zero(t, out.Inserted)
	assert.False(t, c.Active())
}

func TestSurfaceErrorIsSwallowed(t *testing.T) {
	surface := &bufferSurface{err: errors.New("read-only")}
	c := newController(surface, nil)
	c.Activate()
	out := feed(c, "x")
	assert.True(t, out.Consumed)
	assert.Zero(t, out.Inserted)
	assert.False(t, c.Active())
}

func TestActivationMatcher(t *testing.T) {
	surface := &bufferSurface{}
	c := New(DefaultConfig(),
		WithSurface(func() Surface { return surface }),
		WithActivationMatcher(func(ev key.Event) bool { return ev.Matches("Alt+U") }))

	c.Activate()
	feed(c, "Alt+U")
	assert.Equal(t, 16, c.Multiplier())

	out := feed(c, "Ctrl+U")
	assert.True(t, out.Forward, "Ctrl+U is an ordinary key once rebound")
}
