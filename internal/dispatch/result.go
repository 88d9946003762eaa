package dispatch

// Status is the outcome of a dispatched key.
type Status uint8

const (
	// StatusIgnored means the key was empty or unusable.
	StatusIgnored Status = iota
	// StatusPending means more keys are needed: a sequence prefix or a
	// repeat count is being typed.
	StatusPending
	// StatusInvoked means a bound command ran.
	StatusInvoked
	// StatusInserted means the key inserted text.
	StatusInserted
	// StatusUnbound means the sequence has no binding.
	StatusUnbound
	// StatusCancelled means pending keys or a repeat prefix were dropped.
	StatusCancelled
	// StatusError means the bound command failed.
	StatusError
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusPending:
		return "pending"
	case StatusInvoked:
		return "invoked"
	case StatusInserted:
		return "inserted"
	case StatusUnbound:
		return "unbound"
	case StatusCancelled:
		return "cancelled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result describes what HandleKey did.
type Result struct {
	Status Status

	// Keys is the canonical sequence that was resolved or is pending.
	Keys string

	// Command is the invoked command, if any.
	Command string

	// Count is how many times the command ran or the text was inserted.
	Count int

	// Err is the command failure for StatusError and ErrUnbound for
	// StatusUnbound.
	Err error
}

// IsOK returns true if the key was handled without error.
func (r Result) IsOK() bool {
	return r.Status != StatusError && r.Status != StatusUnbound
}
