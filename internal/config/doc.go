// Package config loads the keycmd configuration.
//
// Settings come from built-in defaults, then an optional TOML file, then
// KEYCMD_* environment variables:
//
//	[repeat]
//	default_multiplier = 4
//	max_count = 10000
//	cancel_key = "Ctrl+G"
//
//	[keys]
//	max_sequence = 4
//
//	[prefs]
//	path = "~/.config/keycmd/prefs.toml"
//
//	[scripts]
//	dir = "~/.config/keycmd/scripts"
//
//	[log]
//	level = "info"
//	file = ""
//
// The environment variable for a setting is its path upper-cased with
// dots replaced by underscores, e.g. KEYCMD_REPEAT_MAX_COUNT.
package config
