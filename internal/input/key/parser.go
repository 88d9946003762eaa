package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a chord specification into a normalized Event.
//
// Supported formats:
//   - Single character: "a", "B", "1", "@", "+"
//   - Named keys: "Enter", "Escape", "Tab", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+K", "Alt+F4", "Ctrl+Shift+P", "Ctrl++"
//   - Vim notation: "<C-k>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len([]rune(spec)) == 1 {
		return NewRuneEvent([]rune(spec)[0], ModNone), nil
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if strings.Contains(spec, "+") {
		return parseModifierStyle(spec)
	}

	return parseKeyWithModifiers(spec, ModNone)
}

// parseVimStyle parses the inside of "<...>" notation like "C-s" or "Esc".
func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	keyPart := inner
	var modPart string
	switch {
	case strings.HasSuffix(inner, "--"):
		keyPart = "-"
		modPart = inner[:len(inner)-2]
	case strings.Contains(inner, "-"):
		i := strings.LastIndex(inner, "-")
		keyPart = inner[i+1:]
		modPart = inner[:i]
	}

	mods, err := parseModifierList(modPart, "-")
	if err != nil {
		return Event{}, err
	}
	return parseKeyWithModifiers(keyPart, mods)
}

// parseModifierStyle parses "Ctrl+S" style notation. A trailing "++"
// means the plus key itself.
func parseModifierStyle(spec string) (Event, error) {
	var keyPart, modPart string
	if strings.HasSuffix(spec, "++") {
		keyPart = "+"
		modPart = spec[:len(spec)-2]
	} else {
		i := strings.LastIndex(spec, "+")
		keyPart = spec[i+1:]
		modPart = spec[:i]
	}

	mods, err := parseModifierList(modPart, "+")
	if err != nil {
		return Event{}, err
	}
	return parseKeyWithModifiers(keyPart, mods)
}

// modifierAliases maps every accepted modifier spelling, lower-cased, to
// its modifier. Single letters are the vim prefixes.
var modifierAliases = map[string]Modifier{
	"ctrl": ModCtrl, "control": ModCtrl, "c": ModCtrl,
	"alt": ModAlt, "option": ModAlt, "opt": ModAlt, "a": ModAlt,
	"shift": ModShift, "s": ModShift,
	"meta": ModMeta, "cmd": ModMeta, "command": ModMeta, "super": ModMeta,
	"win": ModMeta, "m": ModMeta, "d": ModMeta,
}

func parseModifierList(s, sep string) (Modifier, error) {
	var mods Modifier
	if s == "" {
		return mods, nil
	}
	for _, p := range strings.Split(s, sep) {
		mod, ok := modifierAliases[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return ModNone, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return mods, nil
}

// parseKeyWithModifiers parses a key name or character with known modifiers.
func parseKeyWithModifiers(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		// In written specs the letter case after Ctrl/Alt/Meta is cosmetic;
		// Shift must be spelled out.
		if mods&(ModCtrl|ModAlt|ModMeta) != 0 {
			r = unicode.ToLower(r)
		}
		return NewRuneEvent(r, mods), nil
	}

	lower := strings.ToLower(keyPart)
	if r, ok := runeNameMap[lower]; ok {
		return NewRuneEvent(r, mods), nil
	}
	if k := KeyFromName(lower); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a chord and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// NormalizeSpec parses and re-formats a chord to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	event, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return event.String(), nil
}
