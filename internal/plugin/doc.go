// Package plugin runs the user's Lua init script against the editor.
//
// A Host owns one sandboxed Lua state with the bight module registered.
// Scripts read and write cells of the current surface and bind keys:
//
//	bight.keymap("n", "gs", function()
//	  local x, y = bight.cell_pos()
//	  bight.set_source(x, y, "=" .. bight.get_value(x, y))
//	end)
package plugin
