// Package host connects grid editors to a host environment.
//
// The host owns display surfaces and reports what happens to them as
// Events. Integration maps each event onto the editor of that surface,
// keeping one editor.Actor per open surface in a Registry. Keymap binds key
// sequences to Actions, which the host runs on the focused surface.
package host
