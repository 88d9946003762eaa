package command

import "errors"

// Registry errors.
var (
	// ErrInvalidName indicates the name fails the identifier grammar.
	ErrInvalidName = errors.New("command: invalid name")

	// ErrAlreadyUsed indicates a command with that name is registered.
	ErrAlreadyUsed = errors.New("command: name already used")

	// ErrNilCommand indicates a nil command was registered.
	ErrNilCommand = errors.New("command: nil command")

	// ErrUnsupported indicates the command is not registered.
	ErrUnsupported = errors.New("command: unsupported")

	// ErrDisabled indicates the command's predicate refused invocation.
	ErrDisabled = errors.New("command: disabled")

	// ErrHandlerPanic indicates the handler panicked.
	ErrHandlerPanic = errors.New("command: handler panic")
)
