package table

import (
	"strings"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/bight/internal/grid"
	"github.com/dshills/bight/internal/plugin/lua"
)

// FormulaPrefix marks a source as a Lua formula.
const FormulaPrefix = "="

// EvaluatorTable evaluates a SourceTable. It implements Table.
//
// It is owned by a single editor and is not safe for concurrent use.
type EvaluatorTable struct {
	source *SourceTable
	values map[grid.CellPos]Value

	state *lua.State

	// Cells currently being evaluated, for cycle detection.
	evaluating map[grid.CellPos]bool
	// Lua state of the formula that is running, if any. Nested formulas
	// evaluate on it instead of re-entering State.
	running *glua.LState
}

// Option configures an EvaluatorTable.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithFormulaTimeout bounds the evaluation of a single top-level formula.
func WithFormulaTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// NewEvaluatorTable creates an evaluator over source. A nil source starts
// an empty table.
func NewEvaluatorTable(source *SourceTable, opts ...Option) (*EvaluatorTable, error) {
	o := options{timeout: lua.DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if source == nil {
		source = NewSourceTable()
	}

	state, err := lua.NewState(lua.WithExecutionTimeout(o.timeout))
	if err != nil {
		return nil, err
	}

	t := &EvaluatorTable{
		source:     source,
		values:     make(map[grid.CellPos]Value),
		state:      state,
		evaluating: make(map[grid.CellPos]bool),
	}
	state.RegisterFunc("cell", t.luaCell)
	state.RegisterFunc("sum", t.luaSum)
	return t, nil
}

// SourceTable returns the underlying source table.
func (t *EvaluatorTable) SourceTable() *SourceTable {
	return t.source
}

// Get returns the value of pos as of the last Evaluate.
func (t *EvaluatorTable) Get(pos grid.CellPos) (Value, bool) {
	v, ok := t.values[pos]
	if !ok || v.IsEmpty() {
		return Empty, false
	}
	return v, true
}

// Source returns the raw source of pos.
func (t *EvaluatorTable) Source(pos grid.CellPos) (string, bool) {
	return t.source.Get(pos)
}

// SetSource replaces the source of pos. Values update on the next Evaluate.
func (t *EvaluatorTable) SetSource(pos grid.CellPos, src string) {
	t.source.Set(pos, src)
}

// Clear removes the source of pos.
func (t *EvaluatorTable) Clear(pos grid.CellPos) {
	t.source.Delete(pos)
}

// Replace swaps in a new source table, dropping every cached value. A nil
// source empties the table.
func (t *EvaluatorTable) Replace(source *SourceTable) {
	if source == nil {
		source = NewSourceTable()
	}
	t.source = source
	t.values = make(map[grid.CellPos]Value)
}

// Evaluate recomputes every cell.
func (t *EvaluatorTable) Evaluate() {
	t.values = make(map[grid.CellPos]Value, t.source.Len())
	for _, pos := range t.source.Positions() {
		t.valueAt(pos)
	}
}

// Slice returns the values of r, row-major.
func (t *EvaluatorTable) Slice(r grid.CellRange) [][]Value {
	rows := make([][]Value, 0, max(r.Height, 0))
	for dy := 0; dy < r.Height; dy++ {
		row := make([]Value, r.Width)
		for dx := 0; dx < r.Width; dx++ {
			row[dx] = t.values[grid.Pos(r.Start.X+dx, r.Start.Y+dy)]
		}
		rows = append(rows, row)
	}
	return rows
}

// Close releases the formula runtime.
func (t *EvaluatorTable) Close() error {
	return t.state.Close()
}

// valueAt returns the value of pos, evaluating it on first use.
func (t *EvaluatorTable) valueAt(pos grid.CellPos) Value {
	if v, ok := t.values[pos]; ok {
		return v
	}

	src, ok := t.source.Get(pos)
	if !ok {
		return Empty
	}

	if t.evaluating[pos] {
		return Error("cycle at " + pos.String())
	}

	var v Value
	if expr, isFormula := strings.CutPrefix(src, FormulaPrefix); isFormula {
		t.evaluating[pos] = true
		v = t.evalFormula(expr)
		delete(t.evaluating, pos)
	} else {
		v = ParseLiteral(src)
	}

	t.values[pos] = v
	return v
}

func (t *EvaluatorTable) evalFormula(expr string) Value {
	if strings.TrimSpace(expr) == "" {
		return Empty
	}

	var (
		res any
		err error
	)
	if t.running != nil {
		res, err = lua.EvalExpr(t.running, expr)
	} else {
		res, err = t.state.Eval(expr)
	}
	if err != nil {
		return Error(err.Error())
	}

	switch r := res.(type) {
	case nil:
		return Empty
	case float64:
		return Number(r)
	case string:
		return Text(r)
	case bool:
		return Bool(r)
	default:
		return Error("unsupported result")
	}
}

// luaCell implements cell(x, y).
func (t *EvaluatorTable) luaCell(L *glua.LState) int {
	x := L.CheckInt(1)
	y := L.CheckInt(2)
	if x < 0 || y < 0 {
		L.ArgError(1, "cell coordinates must be non-negative")
		return 0
	}

	v := t.nested(L, grid.Pos(x, y))
	if v.Kind == KindError {
		L.RaiseError("%s", v.Err)
		return 0
	}
	L.Push(lua.ToLuaValue(v.Any()))
	return 1
}

// luaSum implements sum(x1, y1, x2, y2) over the numeric cells of the
// rectangle spanned by both corners.
func (t *EvaluatorTable) luaSum(L *glua.LState) int {
	a := grid.Pos(L.CheckInt(1), L.CheckInt(2))
	b := grid.Pos(L.CheckInt(3), L.CheckInt(4))
	if !a.Valid() || !b.Valid() {
		L.ArgError(1, "cell coordinates must be non-negative")
		return 0
	}

	var (
		total  float64
		failed string
	)
	grid.RangeFromCorners(a, b).Each(func(p grid.CellPos) bool {
		v := t.nested(L, p)
		switch v.Kind {
		case KindNumber:
			total += v.Num
		case KindError:
			failed = v.Err
			return false
		}
		return true
	})
	if failed != "" {
		L.RaiseError("%s", failed)
		return 0
	}

	L.Push(glua.LNumber(total))
	return 1
}

func (t *EvaluatorTable) nested(L *glua.LState, pos grid.CellPos) Value {
	prev := t.running
	t.running = L
	v := t.valueAt(pos)
	t.running = prev
	return v
}
