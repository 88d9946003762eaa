// Package editor provides the text surface that commands and the repeat
// prefix write into, together with the builtin editing commands.
//
// Buffer is a small in-memory text buffer with a single cursor. Cursor
// movement and deletion step over whole grapheme clusters, so combining
// marks and emoji sequences behave as one character.
package editor
