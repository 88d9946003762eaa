// Package prefs provides a typed key-value preference store.
//
// Values are booleans, strings or longs (int64). The file backed store
// writes through on every mutation; there is no batching.
package prefs
