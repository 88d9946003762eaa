package key

import (
	"errors"
	"testing"
)

func TestParseSingleCharacter(t *testing.T) {
	tests := []struct {
		spec     string
		wantRune rune
	}{
		{"a", 'a'},
		{"B", 'B'},
		{"1", '1'},
		{"@", '@'},
		{"+", '+'},
	}

	for _, tt := range tests {
		event, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if event.Key != KeyRune || event.Rune != tt.wantRune {
			t.Errorf("Parse(%q) = %#v, want rune %q", tt.spec, event, tt.wantRune)
		}
		if event.Modifiers != ModNone {
			t.Errorf("Parse(%q) modifiers = %v, want none", tt.spec, event.Modifiers)
		}
	}
}

func TestParseCanonicalForm(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"Ctrl+K", "Ctrl+K"},
		{"ctrl+k", "Ctrl+K"},
		{"Control+k", "Ctrl+K"},
		{"Ctrl+Shift+k", "Ctrl+Shift+K"},
		{"Shift+Ctrl+K", "Ctrl+Shift+K"},
		{"Alt+Ctrl+x", "Ctrl+Alt+X"},
		{"Shift+b", "B"},
		{"Shift+F4", "Shift+F4"},
		{"Cmd+s", "Meta+S"},
		{"Ctrl++", "Ctrl++"},
		{"Space", "Space"},
		{"Ctrl+Space", "Ctrl+Space"},
		{"escape", "Escape"},
		{"Esc", "Escape"},
		{"return", "Enter"},
		{"pgdn", "PageDown"},
		{"<C-k>", "Ctrl+K"},
		{"<C-S-p>", "Ctrl+Shift+P"},
		{"<CR>", "Enter"},
		{"<Esc>", "Escape"},
		{"<A-F4>", "Alt+F4"},
	}

	for _, tt := range tests {
		got, err := NormalizeSpec(tt.spec)
		if err != nil {
			t.Errorf("NormalizeSpec(%q) error = %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeSpec(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"Ctrl+", ErrInvalidSpec},
		{"Hyper+K", ErrInvalidSpec},
		{"Ctrl+Foo", ErrInvalidSpec},
		{"<>", ErrInvalidSpec},
		{"gg", ErrInvalidSpec},
	}

	for _, tt := range tests {
		_, err := Parse(tt.spec)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	specs := []string{"a", "Z", "Ctrl+K", "Ctrl+Shift+K", "Alt+F4", "Enter", "Space", "Meta+Left", "Ctrl++"}
	for _, spec := range specs {
		event := MustParse(spec)
		again, err := Parse(event.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", event.String(), err)
		}
		if again != event {
			t.Errorf("round trip %q: got %#v, want %#v", spec, again, event)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid spec")
		}
	}()
	MustParse("Ctrl+Nope")
}
