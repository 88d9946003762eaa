package keybind

import (
	"github.com/dshills/keycmd/internal/input/key"
)

// DefaultMaxSequence is the default longest sequence a Recorder accepts.
const DefaultMaxSequence = 4

// RecordState is the result of feeding a chord to a Recorder.
type RecordState int

const (
	// RecordPending means more chords may follow.
	RecordPending RecordState = iota

	// RecordComplete means the maximum length was reached.
	RecordComplete

	// RecordRejected means the chord was not accepted.
	RecordRejected
)

// Recorder captures a key sequence one chord at a time.
type Recorder struct {
	seq *key.Sequence
	max int
}

// NewRecorder creates a recorder accepting up to max chords.
func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = DefaultMaxSequence
	}
	return &Recorder{seq: key.NewSequence(), max: max}
}

// Feed appends a chord.
func (r *Recorder) Feed(ev key.Event) RecordState {
	ev = ev.Normalize()
	if ev.Key == key.KeyNone || r.seq.Len() >= r.max {
		return RecordRejected
	}
	r.seq.Add(ev)
	if r.seq.Len() >= r.max {
		return RecordComplete
	}
	return RecordPending
}

// Sequence returns a copy of the chords recorded so far.
func (r *Recorder) Sequence() *key.Sequence {
	return r.seq.Clone()
}

// Len returns the number of recorded chords.
func (r *Recorder) Len() int {
	return r.seq.Len()
}

// String returns the canonical form of the recorded chords.
func (r *Recorder) String() string {
	return r.seq.String()
}

// Reset discards the recorded chords.
func (r *Recorder) Reset() {
	r.seq.Clear()
}
