// Package config loads application settings for the hybrid editor.
//
// Settings come from three places, each overriding the one before:
//
//  1. Built-in defaults (Defaults)
//  2. A settings file, TOML or YAML chosen by extension
//  3. HYBRID_* environment variables
//
// A file looks like:
//
//	[editor]
//	autoInsertPairs = true
//	maxUndo = 500
//
//	[logging]
//	level = "debug"
//
//	[completion]
//	keywords = ["select", "from"]
//	script = "items.lua"
//
//	[[pairs]]
//	left = "("
//	right = ")"
//	autoInsert = true
//
// Environment variables map onto setting paths by dropping the prefix and
// camel-casing the remainder: HYBRID_EDITOR_MAX_UNDO sets editor.maxUndo.
//
// Watcher reloads a settings file whenever it changes on disk.
package config
