// Package keybind provides the key binding manager.
//
// The manager maps key sequences to command names. At most one binding
// exists per exact sequence; assigning an occupied sequence to another
// command is refused unless forced, in which case the previous owner loses
// it. A command may own several sequences.
//
// Every mutation is written through to a prefs.Store under the
// "keybindings" preference as a JSON array of
//
//	{"command": "cmd_save", "param": "", "keys": "Ctrl+X Ctrl+S"}
//
// entries. Sequences are stored in canonical chord form (see package key).
//
// # Multi-key Sequences
//
// Lookup reports whether a sequence is bound exactly, is the prefix of a
// longer binding, or matches nothing. Recorder accumulates chords for
// callers that capture a sequence one key at a time.
package keybind
