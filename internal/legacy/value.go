package legacy

import (
	"fmt"
	"strconv"
	"time"
)

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single legacy cell. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// FromDriver converts a value produced by database/sql scanning into a Value.
// The SQLite driver parses text in DATE/DATETIME/TIMESTAMP columns into
// time.Time; those cells come back as text via formatTime, so a stored
// "2024-01-05" stays "2024-01-05".
func FromDriver(src interface{}) Value {
	switch x := src.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case int64:
		return Int(x)
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case float64:
		return Float(x)
	case float32:
		return Float(float64(x))
	case string:
		return String(x)
	case []byte:
		return String(string(x))
	case time.Time:
		return String(formatTime(x))
	default:
		return String(fmt.Sprint(x))
	}
}

// Text renders the value the way it would print as text. Null renders empty.
func (v Value) Text() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Interface returns the plain Go value, nil for Null.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "NULL"
	}
	return v.Text()
}

func formatTime(t time.Time) string {
	if t.Location() != time.UTC {
		return t.Format(time.RFC3339Nano)
	}
	h, m, sec := t.Clock()
	if h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format("2006-01-02 15:04:05.999999999")
}
