package keybind

import "errors"

// Binding manager errors.
var (
	// ErrSequenceInUse indicates the sequence is bound to another command.
	ErrSequenceInUse = errors.New("keybind: sequence already in use")

	// ErrInvalidSequence indicates the key sequence cannot be parsed.
	ErrInvalidSequence = errors.New("keybind: invalid key sequence")

	// ErrInvalidCommand indicates the command name fails the identifier grammar.
	ErrInvalidCommand = errors.New("keybind: invalid command name")
)
