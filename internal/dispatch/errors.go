package dispatch

import "errors"

// ErrUnbound is reported when a key sequence has no binding.
var ErrUnbound = errors.New("key sequence is not bound")
