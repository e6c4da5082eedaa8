// Package term is the terminal host: a tcell screen showing one grid
// surface with a status line.
//
// The host owns the modes. Keys are looked up in a host.Keymap for the
// current mode; unbound keys in insert and scratch modes edit text
// directly. Mode switches, cursor moves and writes are reported to a
// host.Integration as events.
package term
