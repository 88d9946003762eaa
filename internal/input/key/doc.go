// Package key provides key event types, chord parsing and key sequences.
//
// The package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A single key press with modifiers, also called a chord
//   - Sequence: An ordered list of chords forming a multi-key shortcut
//
// # Chord Grammar
//
// The canonical chord form is modifiers joined by "+" in the fixed order
// Ctrl, Alt, Shift, Meta, followed by the key:
//
//	"Ctrl+K", "Alt+Shift+F4", "B", "x", "Enter", "Space"
//
// Unmodified character keys carry their case directly ("B" is a capital
// B and never shows Shift). Once Ctrl, Alt or Meta is involved letters are
// written uppercase and Shift is explicit ("Ctrl+Shift+K").
//
// The parser additionally accepts modifier aliases ("Control", "Option",
// "Cmd", "Super") and vim notation ("<C-k>", "<Esc>", "<CR>").
//
// # Key Sequences
//
// Sequences serialize as space separated chords ("Ctrl+K B") and are
// compared by exact ordered equality of their normalized chords.
package key
