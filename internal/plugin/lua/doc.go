// Package lua hosts user commands written in Lua.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. They reach the editor through the global
// keycmd table:
//
//	keycmd.register("cmd_shout", function(ctx)
//	    keycmd.insert(string.upper(ctx.param or "hi"))
//	end, { label = "Shout", keys = { "Ctrl+K S" } })
//
//	keycmd.bind("cmd_shout", "F5")
//	local owners = keycmd.used_by("F5")
//	keycmd.status("loaded")
//
// Registered functions become commands in the registry. Closing the host
// unregisters every command its scripts created.
package lua
