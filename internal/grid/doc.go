// Package grid defines logical cell coordinates and the geometry that maps
// them onto a text viewport.
//
// Two coordinate systems meet here:
//
//  1. Cell coordinates (x, y): 0-based column and row of a logical cell in
//     the sparse table. Negative values are never representable through the
//     helpers in this package.
//
//  2. Viewport coordinates (line, col): 1-based line and 0-based column of
//     a cursor inside the rendered text. Every cell occupies CellWidth
//     columns followed by SeparatorWidth columns of padding.
//
// A cursor outside an active edit always rests on a cell boundary, so
// Geometry.Normalize snaps arbitrary columns down to the start of the cell
// they fall in.
package grid
