// Package table provides the sparse cell table behind a grid surface.
//
// A SourceTable stores the raw source text of each non-empty cell. An
// EvaluatorTable wraps a SourceTable and turns sources into values:
//
//   - "" or missing          -> empty
//   - "=expr"                -> result of the Lua expression expr
//   - text parseable as float -> number
//   - anything else          -> text
//
// Formulas can read other cells with cell(x, y) and sum a rectangle with
// sum(x1, y1, x2, y2). Cycles evaluate to an error value.
package table
