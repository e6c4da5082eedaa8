package table

import (
	"bytes"
	"encoding/csv"
)

// SliceToCSV serializes a row-major slice of values as comma-separated text.
// Each value is written with Value.String.
func SliceToCSV(rows [][]Value) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = v.String()
		}
		// Writing to a bytes.Buffer cannot fail.
		_ = w.Write(record)
	}
	w.Flush()
	return buf.String()
}
