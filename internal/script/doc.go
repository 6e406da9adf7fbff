// Package script loads completion items and bracket pairs from Lua.
//
// Scripts run in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are opened, and dofile, loadfile, load and
// loadstring are removed. Every call runs under an execution timeout.
//
// A script registers definitions through the global hybrid table:
//
//	hybrid.keywords("select", "from", "where")
//	hybrid.keyword("(", { no_space_right = true })
//	hybrid.pattern("ident", "[a-z_][a-z0-9_]*", "[a-z_][a-z0-9_]*")
//	hybrid.item({
//	    label = "even",
//	    match = function(text) return tonumber(text) ~= nil and tonumber(text) % 2 == 0 end,
//	    prefix = function(text) return text == "" end,
//	})
//	hybrid.pair("(", ")", true)
//
// Patterns use Go regexp syntax and are anchored. Items defined with Lua
// functions call back into the script each time they are queried, so the
// Script must stay open while its items are in use.
//
// print writes to the script's logger.
package script
