package key

import "strings"

// Modifier is a set of modifier keys held with a chord.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// modifierOrder lists modifiers in canonical chord order with their
// written and vim names.
var modifierOrder = [...]struct {
	mod  Modifier
	name string
	vim  string
}{
	{ModCtrl, "Ctrl", "C"},
	{ModAlt, "Alt", "A"},
	{ModShift, "Shift", "S"},
	{ModMeta, "Meta", "D"},
}

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier { return m | mod }

// names returns the held modifiers in canonical order.
func (m Modifier) names(vim bool) []string {
	var out []string
	for _, o := range modifierOrder {
		if !m.Has(o.mod) {
			continue
		}
		if vim {
			out = append(out, o.vim)
		} else {
			out = append(out, o.name)
		}
	}
	return out
}

// String returns the canonical form, e.g. "Ctrl+Alt", or "" for none.
func (m Modifier) String() string {
	return strings.Join(m.names(false), "+")
}
