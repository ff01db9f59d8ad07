package legacy

import "strings"

// Row is one result row: column names in select order, each with a Value.
// Duplicate column names are kept; lookups return the first.
type Row struct {
	cols []string
	vals []Value
}

// NewRow builds a row from alternating name/value pairs.
func NewRow(pairs ...interface{}) Row {
	var r Row
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		r.Set(name, FromDriver(pairs[i+1]))
	}
	return r
}

// Set appends a column, or overwrites the first column with that exact name.
func (r *Row) Set(name string, v Value) {
	for i, c := range r.cols {
		if c == name {
			r.vals[i] = v
			return
		}
	}
	r.cols = append(r.cols, name)
	r.vals = append(r.vals, v)
}

func (r *Row) add(name string, v Value) {
	r.cols = append(r.cols, name)
	r.vals = append(r.vals, v)
}

// FieldCount is the number of columns.
func (r Row) FieldCount() int { return len(r.cols) }

// Columns returns a copy of the column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// At returns the i-th column and value.
func (r Row) At(i int) (string, Value) { return r.cols[i], r.vals[i] }

// Get looks a column up by exact name.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.cols {
		if c == name {
			return r.vals[i], true
		}
	}
	return Value{}, false
}

// GetFold looks a column up ignoring case; the first column in row order wins.
func (r Row) GetFold(name string) (Value, bool) {
	for i, c := range r.cols {
		if strings.EqualFold(c, name) {
			return r.vals[i], true
		}
	}
	return Value{}, false
}

// Map flattens the row into a map of plain values, for reporting.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.cols))
	for i, c := range r.cols {
		if _, dup := m[c]; !dup {
			m[c] = r.vals[i].Interface()
		}
	}
	return m
}
