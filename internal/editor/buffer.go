package editor

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// Surface is anything text can be inserted into.
type Surface interface {
	InsertText(text string) error
}

// Position is a line and column in a buffer. Col counts grapheme clusters.
type Position struct {
	Line int
	Col  int
}

// Buffer is a multi-line text buffer with a cursor at a byte offset.
//
// Buffer is safe for concurrent use.
type Buffer struct {
	mu     sync.RWMutex
	text   string
	cursor int
}

// NewBuffer creates a buffer holding text with the cursor at the end.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

// InsertText inserts text at the cursor and moves the cursor after it.
func (b *Buffer) InsertText(text string) error {
	if text == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = b.text[:b.cursor] + text + b.text[b.cursor:]
	b.cursor += len(text)
	return nil
}

// Newline inserts a line break.
func (b *Buffer) Newline() {
	_ = b.InsertText("\n")
}

// Backspace deletes the grapheme cluster before the cursor. It reports
// whether anything was deleted.
func (b *Buffer) Backspace() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := prevBoundary(b.text, b.cursor)
	if prev == b.cursor {
		return false
	}
	b.text = b.text[:prev] + b.text[b.cursor:]
	b.cursor = prev
	return true
}

// Left moves the cursor one grapheme cluster back.
func (b *Buffer) Left() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := prevBoundary(b.text, b.cursor)
	moved := prev != b.cursor
	b.cursor = prev
	return moved
}

// Right moves the cursor one grapheme cluster forward.
func (b *Buffer) Right() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := nextBoundary(b.text, b.cursor)
	moved := next != b.cursor
	b.cursor = next
	return moved
}

// LineStart moves the cursor to the start of its line.
func (b *Buffer) LineStart() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = strings.LastIndexByte(b.text[:b.cursor], '\n') + 1
}

// LineEnd moves the cursor to the end of its line.
func (b *Buffer) LineEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := strings.IndexByte(b.text[b.cursor:], '\n'); i >= 0 {
		b.cursor += i
		return
	}
	b.cursor = len(b.text)
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Lines returns the buffer split into lines.
func (b *Buffer) Lines() []string {
	return strings.Split(b.Text(), "\n")
}

// Cursor returns the cursor byte offset.
func (b *Buffer) Cursor() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Position returns the cursor line and grapheme column.
func (b *Buffer) Position() Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	before := b.text[:b.cursor]
	start := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line: strings.Count(before, "\n"),
		Col:  uniseg.GraphemeClusterCount(before[start:]),
	}
}

// Reset replaces the contents and moves the cursor to the end.
func (b *Buffer) Reset(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.cursor = len(text)
}

// prevBoundary returns the start of the grapheme cluster ending at off.
func prevBoundary(text string, off int) int {
	if off == 0 {
		return 0
	}
	last := 0
	state := -1
	rest := text[:off]
	pos := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = pos
		pos += len(cluster)
	}
	return last
}

// nextBoundary returns the end of the grapheme cluster starting at off.
func nextBoundary(text string, off int) int {
	if off >= len(text) {
		return len(text)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text[off:], -1)
	return off + len(cluster)
}
