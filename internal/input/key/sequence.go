package key

import (
	"fmt"
	"strings"
)

// Sequence represents an ordered list of chords forming a shortcut.
// Examples: "Ctrl+K B", "Ctrl+X Ctrl+S", "g g"
type Sequence struct {
	// Events contains the chords in order.
	Events []Event
}

// NewSequence creates an empty key sequence.
func NewSequence() *Sequence {
	return &Sequence{
		Events: make([]Event, 0, 4), // Most sequences are short
	}
}

// NewSequenceFrom creates a sequence from the given events.
func NewSequenceFrom(events ...Event) *Sequence {
	seq := &Sequence{Events: make([]Event, len(events))}
	for i, e := range events {
		seq.Events[i] = e.Normalize()
	}
	return seq
}

// Len returns the number of chords in the sequence.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Events)
}

// IsEmpty returns true if the sequence has no chords.
func (s *Sequence) IsEmpty() bool {
	return s.Len() == 0
}

// Add appends a chord to the sequence.
func (s *Sequence) Add(event Event) {
	s.Events = append(s.Events, event.Normalize())
}

// Clear removes all chords from the sequence.
func (s *Sequence) Clear() {
	s.Events = s.Events[:0]
}

// Last returns the last chord, or nil if empty.
func (s *Sequence) Last() *Event {
	if s.IsEmpty() {
		return nil
	}
	return &s.Events[len(s.Events)-1]
}

// String returns the canonical form: chords joined by a single space.
func (s *Sequence) String() string {
	if s.IsEmpty() {
		return ""
	}

	parts := make([]string, len(s.Events))
	for i, e := range s.Events {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Equals returns true if two sequences hold the same chords in order.
func (s *Sequence) Equals(other *Sequence) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, e := range s.Events {
		if !e.Equals(other.Events[i]) {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
func (s *Sequence) HasPrefix(prefix *Sequence) bool {
	if prefix.IsEmpty() {
		return true
	}
	if prefix.Len() > s.Len() {
		return false
	}
	for i, e := range prefix.Events {
		if !e.Equals(s.Events[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return &Sequence{Events: events}
}

// ParseSequence parses a key sequence string into a Sequence.
//
// Space separated chords are parsed individually ("Ctrl+K B"). A string
// without spaces is first tried as a single chord ("Ctrl+K", "Enter") and
// otherwise read as a continuous run of characters and vim "<...>" chords
// ("gg", "<C-x><C-s>").
func ParseSequence(s string) (*Sequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptySpec
	}

	seq := NewSequence()

	if strings.ContainsAny(s, " \t") {
		for _, part := range strings.Fields(s) {
			event, err := Parse(part)
			if err != nil {
				return nil, fmt.Errorf("chord %q: %w", part, err)
			}
			seq.Add(event)
		}
		return seq, nil
	}

	if event, err := Parse(s); err == nil {
		seq.Add(event)
		return seq, nil
	}

	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] == '<' {
			end := strings.IndexRune(string(runes[i:]), '>')
			if end > 0 {
				chord := string(runes[i:])[:end+1]
				event, err := Parse(chord)
				if err != nil {
					return nil, fmt.Errorf("chord %q: %w", chord, err)
				}
				seq.Add(event)
				i += len([]rune(chord))
				continue
			}
		}
		seq.Add(NewRuneEvent(runes[i], ModNone))
		i++
	}

	return seq, nil
}

// MustParseSequence parses a sequence string and panics on error.
// Use only for known-valid sequences in initialization code.
func MustParseSequence(s string) *Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic("invalid key sequence: " + s + ": " + err.Error())
	}
	return seq
}

// NormalizeSequence parses a sequence and returns its canonical string.
func NormalizeSequence(s string) (string, error) {
	seq, err := ParseSequence(s)
	if err != nil {
		return "", err
	}
	return seq.String(), nil
}
