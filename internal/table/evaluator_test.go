package table

import (
	"strings"
	"testing"

	"github.com/dshills/bight/internal/grid"
)

func newTable(t *testing.T, cells map[grid.CellPos]string) *EvaluatorTable {
	t.Helper()
	src := NewSourceTable()
	for p, s := range cells {
		src.Set(p, s)
	}
	tbl, err := NewEvaluatorTable(src)
	if err != nil {
		t.Fatalf("NewEvaluatorTable() error = %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestEvaluateLiterals(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "42",
		grid.Pos(1, 0): "hello",
		grid.Pos(2, 0): " 1.5 ",
	})
	tbl.Evaluate()

	tests := []struct {
		pos  grid.CellPos
		want string
		kind Kind
	}{
		{grid.Pos(0, 0), "42", KindNumber},
		{grid.Pos(1, 0), "hello", KindText},
		{grid.Pos(2, 0), "1.5", KindNumber},
	}
	for _, tt := range tests {
		v, ok := tbl.Get(tt.pos)
		if !ok {
			t.Fatalf("Get(%v) missing", tt.pos)
		}
		if v.Kind != tt.kind || v.String() != tt.want {
			t.Errorf("Get(%v) = %v %q, want %v %q", tt.pos, v.Kind, v.String(), tt.kind, tt.want)
		}
	}

	if _, ok := tbl.Get(grid.Pos(5, 5)); ok {
		t.Error("Get of an empty cell should report missing")
	}
}

func TestEvaluateFormulas(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "2",
		grid.Pos(0, 1): "3",
		grid.Pos(0, 2): "=cell(0, 0) * cell(0, 1)",
		grid.Pos(1, 2): "=sum(0, 0, 0, 2)",
		grid.Pos(2, 2): `="total: " .. cell(1, 2)`,
		grid.Pos(3, 2): "=cell(0, 0) > 1",
	})
	tbl.Evaluate()

	want := map[grid.CellPos]string{
		grid.Pos(0, 2): "6",
		grid.Pos(1, 2): "11",
		grid.Pos(2, 2): "total: 11",
		grid.Pos(3, 2): "true",
	}
	for p, w := range want {
		v, _ := tbl.Get(p)
		if v.String() != w {
			t.Errorf("Get(%v) = %q, want %q", p, v.String(), w)
		}
	}
}

func TestEvaluateCycle(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "=cell(1, 0)",
		grid.Pos(1, 0): "=cell(0, 0)",
	})
	tbl.Evaluate()

	for _, p := range []grid.CellPos{grid.Pos(0, 0), grid.Pos(1, 0)} {
		v, _ := tbl.Get(p)
		if v.Kind != KindError || !strings.Contains(v.Err, "cycle") {
			t.Errorf("Get(%v) = %+v, want cycle error", p, v)
		}
	}
}

func TestEvaluateFormulaError(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "=1 +",
		grid.Pos(1, 0): "=cell(0, 0) + 1",
	})
	tbl.Evaluate()

	for _, p := range []grid.CellPos{grid.Pos(0, 0), grid.Pos(1, 0)} {
		v, _ := tbl.Get(p)
		if v.Kind != KindError {
			t.Errorf("Get(%v) kind = %v, want error", p, v.Kind)
		}
		if !strings.HasPrefix(v.String(), "#ERR") {
			t.Errorf("Get(%v).String() = %q, want #ERR prefix", p, v.String())
		}
	}
}

func TestSetSourceAndClear(t *testing.T) {
	tbl := newTable(t, nil)

	tbl.SetSource(grid.Pos(1, 1), "7")
	if src, ok := tbl.Source(grid.Pos(1, 1)); !ok || src != "7" {
		t.Fatalf("Source = %q, %v", src, ok)
	}

	// Values change only on Evaluate.
	if _, ok := tbl.Get(grid.Pos(1, 1)); ok {
		t.Error("value visible before Evaluate")
	}
	tbl.Evaluate()
	if v, ok := tbl.Get(grid.Pos(1, 1)); !ok || v.Num != 7 {
		t.Errorf("Get after Evaluate = %+v, %v", v, ok)
	}

	tbl.Clear(grid.Pos(1, 1))
	if _, ok := tbl.Source(grid.Pos(1, 1)); ok {
		t.Error("Source after Clear should be missing")
	}
	tbl.Evaluate()
	if _, ok := tbl.Get(grid.Pos(1, 1)); ok {
		t.Error("Get after Clear and Evaluate should be missing")
	}
}

func TestSliceAndCSV(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{
		grid.Pos(0, 0): "1",
		grid.Pos(1, 0): "a,b",
		grid.Pos(1, 1): "=cell(0, 0) + 1",
	})
	tbl.Evaluate()

	rows := tbl.Slice(grid.CellRange{Start: grid.Pos(0, 0), Width: 2, Height: 2})
	if len(rows) != 2 || len(rows[0]) != 2 {
		t.Fatalf("Slice shape = %dx%d, want 2x2", len(rows), len(rows[0]))
	}
	if !rows[1][0].IsEmpty() {
		t.Errorf("rows[1][0] = %+v, want empty", rows[1][0])
	}

	got := SliceToCSV(rows)
	want := "1,\"a,b\"\n,2\n"
	if got != want {
		t.Errorf("SliceToCSV = %q, want %q", got, want)
	}
}

func TestParseLiteral(t *testing.T) {
	if v := ParseLiteral("   "); !v.IsEmpty() {
		t.Errorf("ParseLiteral(blank) = %+v, want empty", v)
	}
	if v := ParseLiteral("-3e2"); v.Kind != KindNumber || v.Num != -300 {
		t.Errorf("ParseLiteral(-3e2) = %+v", v)
	}
	if v := ParseLiteral(" x "); v.Kind != KindText || v.Text != " x " {
		t.Errorf("ParseLiteral(' x ') = %+v", v)
	}
}

func TestSourceTablePositionsOrdered(t *testing.T) {
	src := NewSourceTable()
	src.Set(grid.Pos(3, 1), "a")
	src.Set(grid.Pos(0, 2), "b")
	src.Set(grid.Pos(1, 1), "c")

	got := src.Positions()
	want := []grid.CellPos{grid.Pos(1, 1), grid.Pos(3, 1), grid.Pos(0, 2)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Positions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	clone := src.Clone()
	clone.Delete(grid.Pos(3, 1))
	if src.Len() != 3 || clone.Len() != 2 {
		t.Errorf("Clone not independent: src %d, clone %d", src.Len(), clone.Len())
	}
}

func TestEvaluatorReplace(t *testing.T) {
	tbl := newTable(t, map[grid.CellPos]string{grid.Pos(0, 0): "1"})
	tbl.Evaluate()

	src := NewSourceTable()
	src.Set(grid.Pos(1, 1), "=2 * 3")
	tbl.Replace(src)

	if _, ok := tbl.Get(grid.Pos(0, 0)); ok {
		t.Error("Replace should drop cached values")
	}
	tbl.Evaluate()
	if v, ok := tbl.Get(grid.Pos(1, 1)); !ok || v.String() != "6" {
		t.Errorf("Get(1, 1) = %v %v, want 6", v, ok)
	}
	if tbl.SourceTable() != src {
		t.Error("SourceTable() should return the replacement")
	}
}
