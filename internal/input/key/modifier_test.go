package key

import "testing"

func TestModifierStringOrder(t *testing.T) {
	tests := []struct {
		mods Modifier
		want string
	}{
		{ModNone, ""},
		{ModShift, "Shift"},
		{ModMeta | ModShift | ModAlt | ModCtrl, "Ctrl+Alt+Shift+Meta"},
		{ModShift.With(ModCtrl), "Ctrl+Shift"},
	}
	for _, tt := range tests {
		if got := tt.mods.String(); got != tt.want {
			t.Errorf("%08b.String() = %q, want %q", uint8(tt.mods), got, tt.want)
		}
	}
}

func TestModifierAliases(t *testing.T) {
	tests := []struct {
		spec string
		want Modifier
	}{
		{"Control+x", ModCtrl},
		{"Option+x", ModAlt},
		{"Cmd+x", ModMeta},
		{"Super+x", ModMeta},
		{"<D-x>", ModMeta},
		{"<C-S-x>", ModCtrl | ModShift},
	}
	for _, tt := range tests {
		ev, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if ev.Modifiers != tt.want {
			t.Errorf("Parse(%q) modifiers = %v, want %v", tt.spec, ev.Modifiers, tt.want)
		}
	}

	if _, err := Parse("Hyper+x"); err == nil {
		t.Error("Parse(Hyper+x) should fail")
	}
}

func TestVimStringUsesModifierLetters(t *testing.T) {
	ev := MustParse("Ctrl+Alt+Meta+F4")
	if got := ev.VimString(); got != "<C-A-D-F4>" {
		t.Errorf("VimString() = %q, want %q", got, "<C-A-D-F4>")
	}
}
