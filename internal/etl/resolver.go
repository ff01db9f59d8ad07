package etl

import (
	"strings"

	"github.com/BartekS5/legacysync/internal/legacy"
)

// Resolve returns the first usable value among candidates, tried in order.
// For each candidate an exact column match wins over a case-insensitive one.
// Null and empty cells are not usable.
func Resolve(row legacy.Row, candidates ...string) (string, bool) {
	for _, name := range candidates {
		if v, ok := row.Get(name); ok && usable(v) {
			return v.Text(), true
		}
		for i := 0; i < row.FieldCount(); i++ {
			col, v := row.At(i)
			if strings.EqualFold(col, name) && usable(v) {
				return v.Text(), true
			}
		}
	}
	return "", false
}

func usable(v legacy.Value) bool {
	return !v.IsNull() && v.Text() != ""
}
