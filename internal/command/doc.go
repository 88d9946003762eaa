// Package command provides the command registry.
//
// A command is a named, invocable action exposed to the key binding and
// menu layers. Features register their commands at start-up and
// unregister them when they unload:
//
//	reg := command.NewRegistry(command.WithLogger(log))
//	err := reg.Register("cmd_save", command.HandlerFunc(save),
//	    command.WithLabel("Save"),
//	    command.WithKeys("Ctrl+S"))
//
//	if reg.IsEnabled("cmd_save") {
//	    err = reg.Invoke("cmd_save", nil)
//	}
//
// Names must match the identifier grammar
//
//	^[A-Za-z][A-Za-z0-9_]*([.-][A-Za-z0-9_]+)*$
//
// so "cmd_save", "editor.save" and "snippet-insert" are valid while
// "1cmd", "cmd..x" and "cmd save" are not.
package command
