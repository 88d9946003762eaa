// Package ui is the terminal front-end: it feeds tcell key events to the
// dispatcher and renders the buffer with a status line.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/dispatch"
	"github.com/dshills/keycmd/internal/editor"
	"github.com/dshills/keycmd/internal/input/key"
)

// Model is what the terminal displays and drives.
type Model interface {
	HandleKey(ev key.Event) dispatch.Result
	Buffer() *editor.Buffer
	Status() string
	Pending() string
}

// UI runs the terminal event loop.
type UI struct {
	screen tcell.Screen
	model  Model
	quit   key.Event
	log    *logrus.Entry

	mu          sync.Mutex
	lastResult  dispatch.Result
	initialized bool
}

// Option configures a UI.
type Option func(*UI)

// WithQuitKey sets the key that leaves the loop. The default is Ctrl+Q.
func WithQuitKey(ev key.Event) Option {
	return func(u *UI) { u.quit = ev }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(u *UI) { u.log = log }
}

// New creates a UI on screen. Pass nil to use the real terminal.
func New(screen tcell.Screen, model Model, opts ...Option) (*UI, error) {
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, err
		}
	}
	u := &UI{screen: screen, model: model, quit: key.MustParse("Ctrl+Q")}
	for _, opt := range opts {
		opt(u)
	}
	if u.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		u.log = logrus.NewEntry(l)
	}
	u.log = u.log.WithField("component", "ui")
	return u, nil
}

// Init prepares the screen.
func (u *UI) Init() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.initialized {
		return nil
	}
	if err := u.screen.Init(); err != nil {
		return err
	}
	u.initialized = true
	return nil
}

// Refresh asks the loop to redraw, e.g. after bindings were reloaded.
// It is safe to call from any goroutine.
func (u *UI) Refresh() {
	_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run processes events until the quit key is pressed or ctx is done.
func (u *UI) Run(ctx context.Context) error {
	if err := u.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()

	stop := context.AfterFunc(ctx, u.Refresh)
	defer stop()

	u.draw()
	for {
		if ctx.Err() != nil {
			return nil
		}
		switch ev := u.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			kev, ok := key.FromTcell(ev)
			if !ok {
				continue
			}
			if kev.Equals(u.quit) {
				return nil
			}
			res := u.model.HandleKey(kev)
			u.log.WithFields(logrus.Fields{"keys": res.Keys, "status": res.Status.String()}).Debug("key")
			u.mu.Lock()
			u.lastResult = res
			u.mu.Unlock()
		}
		u.draw()
	}
}

// draw renders the buffer and the status line.
func (u *UI) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	buf := u.model.Buffer()
	text := buf.Text()
	cursor := buf.Cursor()
	lines := strings.Split(text, "\n")

	before := text[:cursor]
	curLine := strings.Count(before, "\n")
	curCol := runewidth.StringWidth(before[strings.LastIndexByte(before, '\n')+1:])

	// scroll so the cursor line stays visible above the status line
	rows := height - 1
	top := 0
	if rows > 0 && curLine >= rows {
		top = curLine - rows + 1
	}

	style := tcell.StyleDefault
	for y := 0; y < rows && top+y < len(lines); y++ {
		drawText(u.screen, 0, y, width, lines[top+y], style)
	}

	u.drawStatus(width, height-1, curLine, buf.Position().Col)

	if rows > 0 && curCol < width {
		u.screen.ShowCursor(curCol, curLine-top)
	} else {
		u.screen.HideCursor()
	}
	u.screen.Show()
}

func (u *UI) drawStatus(width, y, line, col int) {
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < width; x++ {
		u.screen.SetContent(x, y, ' ', nil, style)
	}

	msg := u.model.Status()
	if pending := u.model.Pending(); pending != "" && msg == "" {
		msg = pending + " -"
	}
	pos := fmt.Sprintf("Ln %d, Col %d", line+1, col+1)
	posWidth := runewidth.StringWidth(pos)

	drawText(u.screen, 1, y, width-posWidth-2, msg, style)
	if posWidth+1 < width {
		drawText(u.screen, width-posWidth-1, y, posWidth, pos, style)
	}
}

// drawText draws s from column x, clipped to maxWidth cells. Each
// grapheme cluster occupies its display width.
func drawText(screen tcell.Screen, x, y, maxWidth int, s string, style tcell.Style) int {
	end := x + maxWidth
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		w := runewidth.StringWidth(g.Str())
		if w == 0 {
			continue
		}
		if x+w > end {
			break
		}
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}
