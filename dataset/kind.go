package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the element type of a column.
type Kind int

// Column kinds.
const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindString
)

// String returns the dtype-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether the kind holds numbers.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// InferKind returns the narrowest kind able to hold every non-nil value.
// Integers widen to float when mixed with floats; any other mix is string.
// A column of only nulls is float.
func InferKind(values []any) Kind {
	var sawInt, sawFloat, sawBool, sawString bool
	for _, v := range values {
		switch v.(type) {
		case nil:
		case bool:
			sawBool = true
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			sawInt = true
		case float32, float64:
			sawFloat = true
		default:
			sawString = true
		}
	}
	switch {
	case sawString:
		return KindString
	case sawBool && (sawInt || sawFloat):
		return KindString
	case sawBool:
		return KindBool
	case sawFloat:
		return KindFloat
	case sawInt:
		return KindInt
	default:
		return KindFloat
	}
}

// coerce converts v to the storage type of kind. Nil stays nil.
func coerce(v any, kind Kind) any {
	if v == nil {
		return nil
	}
	switch kind {
	case KindInt:
		if i, ok := toInt64(v); ok {
			return i
		}
	case KindFloat:
		if f, ok := toFloat64(v); ok {
			return f
		}
	case KindBool:
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return formatValue(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// compareCells orders two non-nil cells. Numbers compare numerically,
// booleans false before true, anything else by its text form.
func compareCells(a, b any) int {
	if fa, ok := toFloat64(a); ok {
		if fb, ok := toFloat64(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(formatValue(a), formatValue(b))
}
