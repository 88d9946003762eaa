package editor

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/dshills/keycmd/internal/command"
)

// Clipboard reads the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("system clipboard unavailable")
	}
	return clipboard.ReadAll()
}

// SystemClipboard returns the clipboard of the host desktop.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

// Builtin command names.
const (
	CmdLeft      = "cmd_left"
	CmdRight     = "cmd_right"
	CmdBackspace = "cmd_backspace"
	CmdNewline   = "cmd_newline"
	CmdHome      = "cmd_home"
	CmdEnd       = "cmd_end"
	CmdPaste     = "cmd_paste"
)

type builtin struct {
	name  string
	label string
	keys  []string
	run   func(b *Buffer, ctx *command.Context) error
}

// times wraps a single step so it honours the invocation count.
func times(step func(b *Buffer)) func(*Buffer, *command.Context) error {
	return func(b *Buffer, ctx *command.Context) error {
		for i := 0; i < ctx.Count; i++ {
			step(b)
		}
		return nil
	}
}

func builtins(clip Clipboard) []builtin {
	return []builtin{
		{CmdLeft, "Cursor Left", []string{"Left"}, times(func(b *Buffer) { b.Left() })},
		{CmdRight, "Cursor Right", []string{"Right"}, times(func(b *Buffer) { b.Right() })},
		{CmdBackspace, "Delete Previous Character", []string{"Backspace"}, times(func(b *Buffer) { b.Backspace() })},
		{CmdNewline, "Insert Newline", []string{"Enter"}, times(func(b *Buffer) { b.Newline() })},
		{CmdHome, "Beginning of Line", []string{"Ctrl+A"}, times(func(b *Buffer) { b.LineStart() })},
		{CmdEnd, "End of Line", []string{"Ctrl+E"}, times(func(b *Buffer) { b.LineEnd() })},
		{CmdPaste, "Paste", []string{"Ctrl+Y"}, func(b *Buffer, ctx *command.Context) error {
			text, err := clip.ReadAll()
			if err != nil {
				return fmt.Errorf("paste: %w", err)
			}
			for i := 0; i < ctx.Count; i++ {
				if err := b.InsertText(text); err != nil {
					return err
				}
			}
			return nil
		}},
	}
}

// RegisterCommands registers the editing commands operating on buf. A nil
// clip uses the system clipboard.
func RegisterCommands(reg *command.Registry, buf *Buffer, clip Clipboard) error {
	if clip == nil {
		clip = SystemClipboard()
	}
	for _, bi := range builtins(clip) {
		run := bi.run
		err := reg.Register(bi.name,
			command.HandlerFunc(func(ctx *command.Context) error { return run(buf, ctx) }),
			command.WithLabel(bi.label),
			command.WithCategory("Editor"),
			command.WithKeys(bi.keys...),
		)
		if err != nil {
			return fmt.Errorf("registering %s: %w", bi.name, err)
		}
	}
	return nil
}
