package key

import (
	"github.com/gdamore/tcell/v2"
)

// FromTcell converts a terminal key event into a normalized chord.
// Control characters reported by the terminal (Ctrl+A through Ctrl+Z) are
// mapped back to the letter with ModCtrl. Returns false for keys that have
// no chord representation.
func FromTcell(ev *tcell.EventKey) (Event, bool) {
	if ev == nil {
		return Event{}, false
	}
	mods := convertMod(ev.Modifiers())
	k := ev.Key()

	if k == tcell.KeyRune {
		e := NewRuneEvent(ev.Rune(), mods)
		return e, e.Key == KeyRune
	}

	if special := convertKey(k); special != KeyNone {
		return NewSpecialEvent(special, mods), true
	}

	if k == tcell.KeyCtrlSpace {
		return NewRuneEvent(' ', mods.With(ModCtrl)), true
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		r := 'a' + rune(k-tcell.KeyCtrlA)
		return NewRuneEvent(r, mods.With(ModCtrl)), true
	}

	return Event{}, false
}

// convertKey maps tcell's named keys. It runs before the control character
// range check so that Tab, Enter and Backspace win over Ctrl+I/M/H.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyTab:
		return KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyBackspace
	case tcell.KeyDelete:
		return KeyDelete
	case tcell.KeyInsert:
		return KeyInsert
	case tcell.KeyHome:
		return KeyHome
	case tcell.KeyEnd:
		return KeyEnd
	case tcell.KeyPgUp:
		return KeyPageUp
	case tcell.KeyPgDn:
		return KeyPageDown
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyF1:
		return KeyF1
	case tcell.KeyF2:
		return KeyF2
	case tcell.KeyF3:
		return KeyF3
	case tcell.KeyF4:
		return KeyF4
	case tcell.KeyF5:
		return KeyF5
	case tcell.KeyF6:
		return KeyF6
	case tcell.KeyF7:
		return KeyF7
	case tcell.KeyF8:
		return KeyF8
	case tcell.KeyF9:
		return KeyF9
	case tcell.KeyF10:
		return KeyF10
	case tcell.KeyF11:
		return KeyF11
	case tcell.KeyF12:
		return KeyF12
	default:
		return KeyNone
	}
}

func convertMod(m tcell.ModMask) Modifier {
	var mods Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(ModMeta)
	}
	return mods
}
