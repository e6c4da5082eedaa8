// Package app wires bight together: it loads configuration, starts the
// logger, the clipboard register, the file watcher, the surface
// integration and the Lua plugin host, and runs the terminal host until
// the grid is closed.
//
// Components are started in dependency order by a bootstrapper; a failed
// step tears down what already started. Shutdown is idempotent.
package app
