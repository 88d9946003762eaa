// Package dispatch turns key events into command invocations.
//
// A key first goes to the repeat prefix when one is being typed. Otherwise
// it extends the pending key sequence, which is resolved against the
// binding table: an exact match runs the bound command, a prefix match
// waits for more keys, and an unbound printable key inserts itself into the
// active surface.
//
// The Dispatcher is driven from a single event loop and is not safe for
// concurrent use. Commands it invokes may call back into it, for example
// to cancel the pending sequence.
package dispatch
