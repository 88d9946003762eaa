package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Event represents a single key press, also called a chord.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// NewRuneEvent creates a normalized key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}.Normalize()
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// Normalize folds equivalent spellings of a chord into one form so that
// events can be compared with ==.
//
// Unmodified characters keep their case and drop Shift ("Shift+b" is "B").
// Characters combined with Ctrl, Alt or Meta are stored lowercase and an
// uppercase input turns into an explicit Shift ("Ctrl+K" typed with caps is
// "Ctrl+Shift+K").
func (e Event) Normalize() Event {
	if e.Key != KeyRune {
		e.Rune = 0
		return e
	}
	if e.Rune == 0 {
		return Event{}
	}

	if e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0 {
		if e.Modifiers.Has(ModShift) && unicode.IsLetter(e.Rune) {
			e.Rune = unicode.ToUpper(e.Rune)
		}
		e.Modifiers = ModNone
		return e
	}

	if unicode.IsUpper(e.Rune) {
		e.Rune = unicode.ToLower(e.Rune)
		e.Modifiers = e.Modifiers.With(ModShift)
	}
	return e
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsModified returns true if Ctrl, Alt or Meta is pressed, or Shift on a
// special key. Shift on a character is part of the character.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// IsChar returns true if this is an unmodified printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && !e.IsModified() && unicode.IsPrint(e.Rune)
}

// Digit returns the value of an unmodified ASCII digit key.
func (e Event) Digit() (int, bool) {
	if !e.IsRune() || e.IsModified() || e.Rune < '0' || e.Rune > '9' {
		return 0, false
	}
	return int(e.Rune - '0'), true
}

// IsSpecial returns true if this is a special (non-character) key.
func (e Event) IsSpecial() bool {
	return e.Key.IsSpecial()
}

// String returns the canonical chord, e.g. "Ctrl+K", "B", "Space",
// "Alt+Shift+F4".
func (e Event) String() string {
	e = e.Normalize()

	var name string
	switch e.Key {
	case KeyNone:
		return ""
	case KeyRune:
		switch {
		case e.Rune == ' ':
			name = "Space"
		case e.IsModified():
			name = string(unicode.ToUpper(e.Rune))
		default:
			name = string(e.Rune)
		}
	default:
		name = e.Key.String()
	}

	if e.Modifiers == ModNone {
		return name
	}
	return e.Modifiers.String() + "+" + name
}

// VimString returns a vim-style representation such as "<C-k>" or "x".
func (e Event) VimString() string {
	e = e.Normalize()
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}

	parts := e.Modifiers.names(true)

	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		parts = append(parts, "Space")
	case e.Key == KeyRune:
		parts = append(parts, string(e.Rune))
	case e.Key == KeyEscape:
		parts = append(parts, "Esc")
	case e.Key == KeyEnter:
		parts = append(parts, "CR")
	case e.Key == KeyBackspace:
		parts = append(parts, "BS")
	default:
		parts = append(parts, e.Key.String())
	}
	return "<" + strings.Join(parts, "-") + ">"
}

// Equals returns true if two events represent the same chord.
func (e Event) Equals(other Event) bool {
	return e.Normalize() == other.Normalize()
}

// Matches checks if this event matches a chord specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key, e.Rune, e.Modifiers)
}
