package table

import (
	"strconv"
	"strings"
)

// Kind identifies the type of an evaluated cell value.
type Kind uint8

const (
	// KindEmpty is a cell with no value.
	KindEmpty Kind = iota
	// KindNumber is a numeric value.
	KindNumber
	// KindText is a text value.
	KindText
	// KindBool is a boolean value produced by a formula.
	KindBool
	// KindError is a failed evaluation.
	KindError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is an evaluated cell value.
type Value struct {
	Kind Kind
	Num  float64
	Text string
	Bool bool
	Err  string
}

// Empty is the value of a cell without source.
var Empty = Value{}

// Number creates a numeric value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Text creates a text value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Error creates an error value.
func Error(msg string) Value {
	return Value{Kind: KindError, Err: msg}
}

// IsEmpty returns true if the value is empty.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String returns the display text of the value, unclipped.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindError:
		return "#ERR " + v.Err
	default:
		return ""
	}
}

// Any returns the value as a plain Go value for scripting: nil, float64,
// string or bool. Errors become their display text.
func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	case KindError:
		return v.String()
	default:
		return nil
	}
}

// ParseLiteral converts non-formula source text into a value.
func ParseLiteral(src string) Value {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return Empty
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(n)
	}
	return Text(src)
}
