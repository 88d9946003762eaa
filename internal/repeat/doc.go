// Package repeat implements the emacs-style numeric repeat prefix.
//
// The controller is idle until the prefix command activates it. While
// accumulating it consumes digit keys into a count. The next printable key
// is inserted count times into the active surface and any other key is
// handed back to the caller to run its binding count times. With no digits
// typed the count is the default multiplier, which squares each time the
// prefix is activated again (4, 16, 256).
//
//	Idle --Activate--> Accumulating --digit--> Accumulating
//	                        |
//	                        +--printable / other key / cancel--> Idle
package repeat
