package luaengine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	lua "github.com/Shopify/go-lua"

	"github.com/jonwraymond/dataexec/dataset"
)

// maxDepth bounds table nesting during conversion so cyclic tables fail
// instead of recursing forever.
const maxDepth = 32

var (
	errUnsupportedValue = errors.New("unsupported value")
	errTooDeep          = errors.New("table nesting too deep")
)

// toGo converts the Lua value at index. Numbers with an integral value
// become int64, NaN becomes nil, arrays become []any and string-keyed
// tables map[string]any. Frames are returned as *dataset.Frame.
func toGo(l *lua.State, index, depth int) (any, error) {
	switch l.TypeOf(index) {
	case lua.TypeNil, lua.TypeNone:
		return nil, nil
	case lua.TypeBoolean:
		return l.ToBoolean(index), nil
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return normalizeNumber(n), nil
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s, nil
	case lua.TypeUserData:
		if f, ok := l.ToUserData(index).(*dataset.Frame); ok && f != nil {
			return f, nil
		}
		return nil, fmt.Errorf("%w: userdata", errUnsupportedValue)
	case lua.TypeTable:
		return tableToGo(l, index, depth)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedValue, typeName(l.TypeOf(index)))
	}
}

func normalizeNumber(n float64) any {
	switch {
	case math.IsNaN(n):
		return nil
	case n == math.Trunc(n) && math.Abs(n) <= 1<<53:
		return int64(n)
	default:
		return n
	}
}

// tableToGo converts a table to []any when every key is a positive integer
// and the keys are dense enough, otherwise to map[string]any. An empty table
// is an empty []any.
func tableToGo(l *lua.State, index, depth int) (any, error) {
	// Each level holds a key, a value and a key copy.
	if depth >= maxDepth || !l.CheckStack(3) {
		return nil, errTooDeep
	}
	index = l.AbsIndex(index)

	ints := map[int]any{}
	strs := map[string]any{}
	maxKey := 0
	var convErr error
	l.PushNil()
	for l.Next(index) {
		v, err := toGo(l, -1, depth+1)
		if err != nil && convErr == nil {
			convErr = err
		}
		switch l.TypeOf(-2) {
		case lua.TypeNumber:
			k, _ := l.ToNumber(-2)
			if k >= 1 && k == math.Trunc(k) && k <= math.MaxInt32 {
				ints[int(k)] = v
				maxKey = max(maxKey, int(k))
			} else {
				strs[fmt.Sprint(normalizeNumber(k))] = v
			}
		case lua.TypeString:
			// Read the key without ToString so Next keeps a valid key.
			l.PushValue(-2)
			k, _ := l.ToString(-1)
			l.Pop(1)
			strs[k] = v
		default:
			if convErr == nil {
				convErr = fmt.Errorf("%w: %s key", errUnsupportedValue, typeName(l.TypeOf(-2)))
			}
		}
		l.Pop(1)
	}
	if convErr != nil {
		return nil, convErr
	}

	if len(strs) == 0 && maxKey <= 2*len(ints)+1 {
		out := make([]any, maxKey)
		for k, v := range ints {
			out[k-1] = v
		}
		return out, nil
	}
	for k, v := range ints {
		strs[fmt.Sprint(k)] = v
	}
	return strs, nil
}

// toFrame converts a value returned by toGo into a frame:
//   - a frame is returned as is
//   - an array of string-keyed tables is read as records
//   - a table of arrays is read as columns
//   - an array of scalars becomes a single "value" column
//   - a scalar becomes a one-row "value" frame
func toFrame(v any) (*dataset.Frame, error) {
	switch x := v.(type) {
	case *dataset.Frame:
		return x, nil
	case []any:
		if len(x) == 0 {
			return dataset.New()
		}
		if records, ok := asRecords(x); ok {
			return dataset.FromRecords(records, nil)
		}
		for _, e := range x {
			switch e.(type) {
			case []any, map[string]any, *dataset.Frame:
				return nil, fmt.Errorf("%w: array mixes tables and scalars", errUnsupportedValue)
			}
		}
		return dataset.New(dataset.NewColumn("value", x))
	case map[string]any:
		return columnsToFrame(x, nil)
	case bool, int64, float64, string:
		return dataset.FromValue(x), nil
	default:
		return nil, fmt.Errorf("%w: %T", errUnsupportedValue, v)
	}
}

func asRecords(values []any) ([]map[string]any, bool) {
	records := make([]map[string]any, len(values))
	for i, e := range values {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, false
		}
		records[i] = m
	}
	return records, true
}

// columnsToFrame reads a name to array table. Columns follow order when
// given, otherwise sorted names.
func columnsToFrame(columns map[string]any, order []string) (*dataset.Frame, error) {
	if len(order) == 0 {
		for name := range columns {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	cols := make([]dataset.Column, 0, len(order))
	for _, name := range order {
		raw, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", dataset.ErrColumnNotFound, name)
		}
		values, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: column %q is not an array", errUnsupportedValue, name)
		}
		cols = append(cols, dataset.NewColumn(name, values))
	}
	return dataset.New(cols...)
}

// pushGo pushes a Go value produced by dataset or toGo.
func pushGo(l *lua.State, v any) {
	switch x := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(x)
	case int64:
		l.PushNumber(float64(x))
	case int:
		l.PushInteger(x)
	case float64:
		l.PushNumber(x)
	case string:
		l.PushString(x)
	case *dataset.Frame:
		pushFrame(l, x)
	case []any:
		l.CreateTable(len(x), 0)
		for i, e := range x {
			pushGo(l, e)
			l.RawSetInt(-2, i+1)
		}
	case []float64:
		l.CreateTable(len(x), 0)
		for i, e := range x {
			l.PushNumber(e)
			l.RawSetInt(-2, i+1)
		}
	case []string:
		l.CreateTable(len(x), 0)
		for i, e := range x {
			l.PushString(e)
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.CreateTable(0, len(x))
		for k, e := range x {
			pushGo(l, e)
			l.SetField(-2, k)
		}
	default:
		l.PushString(fmt.Sprint(x))
	}
}

// pushCell pushes one frame cell. Numeric nulls become NaN so that arrays
// keep their length.
func pushCell(l *lua.State, v any, kind dataset.Kind) {
	if v == nil && kind.Numeric() {
		l.PushNumber(math.NaN())
		return
	}
	pushGo(l, v)
}

func pushColumn(l *lua.State, c dataset.Column) {
	l.CreateTable(c.Len(), 0)
	for i := 0; i < c.Len(); i++ {
		pushCell(l, c.Value(i), c.Kind)
		l.RawSetInt(-2, i+1)
	}
}

func pushRecord(l *lua.State, f *dataset.Frame, row int) {
	l.CreateTable(0, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		c := f.ColumnAt(i)
		pushCell(l, c.Value(row), c.Kind)
		l.SetField(-2, c.Name)
	}
}

func typeName(t lua.Type) string {
	switch t {
	case lua.TypeNil:
		return "nil"
	case lua.TypeBoolean:
		return "boolean"
	case lua.TypeLightUserData, lua.TypeUserData:
		return "userdata"
	case lua.TypeNumber:
		return "number"
	case lua.TypeString:
		return "string"
	case lua.TypeTable:
		return "table"
	case lua.TypeFunction:
		return "function"
	case lua.TypeThread:
		return "thread"
	default:
		return "no value"
	}
}
