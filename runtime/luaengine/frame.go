package luaengine

import (
	"math"

	lua "github.com/Shopify/go-lua"

	"github.com/jonwraymond/dataexec/dataset"
)

const frameTypeName = "dataexec.frame"

// frameMethods are reachable as df:name(...). Column names that collide
// with a method are still reachable through df:column(name).
var frameMethods map[string]lua.Function

func init() {
	frameMethods = map[string]lua.Function{
		"nrows":        frameNRows,
		"ncols":        frameNCols,
		"shape":        frameShape,
		"columns":      frameColumns,
		"dtypes":       frameDTypes,
		"head":         frameHead,
		"tail":         frameTail,
		"select":       frameSelect,
		"drop":         frameDrop,
		"filter":       frameFilter,
		"sort":         frameSort,
		"column":       frameColumn,
		"row":          frameRow,
		"records":      frameRecords,
		"with_column":  frameWithColumn,
		"rename":       frameRename,
		"describe":     frameDescribe,
		"groupby":      frameGroupBy,
		"value_counts": frameValueCounts,
		"unique":       frameUnique,
		"mean":         frameReduce("mean"),
		"sum":          frameReduce("sum"),
		"min":          frameReduce("min"),
		"max":          frameReduce("max"),
		"std":          frameReduce("std"),
		"median":       frameReduce("median"),
	}
	for name, fn := range frameMethods {
		frameMethods[name] = guard(fn)
	}
}

var frameMeta = []lua.RegistryFunction{
	{Name: "__index", Function: guard(frameIndex)},
	{Name: "__len", Function: guard(frameLen)},
	{Name: "__tostring", Function: guard(frameToString)},
}

var frameLibrary = []lua.RegistryFunction{
	{Name: "new", Function: guard(frameNew)},
	{Name: "from_records", Function: guard(frameFromRecords)},
	{Name: "concat", Function: guard(frameConcat)},
	{Name: "is_frame", Function: guard(frameIsFrame)},
}

func registerFrameType(l *lua.State) {
	lua.NewMetaTable(l, frameTypeName)
	lua.SetFunctions(l, frameMeta, 0)
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, frameLibrary, 0)
	l.SetGlobal("frame")
}

func pushFrame(l *lua.State, f *dataset.Frame) {
	l.PushUserData(f)
	lua.SetMetaTableNamed(l, frameTypeName)
}

func checkFrame(l *lua.State, index int) *dataset.Frame {
	ud := lua.CheckUserData(l, index, frameTypeName)
	f, ok := ud.(*dataset.Frame)
	if !ok || f == nil {
		lua.ArgumentError(l, index, "frame expected")
	}
	return f
}

// raise turns a Go error into a Lua error.
func raise(l *lua.State, err error) {
	lua.Errorf(l, "%s", err.Error())
}

// stringArgs collects string arguments from index to the top of the stack.
func stringArgs(l *lua.State, from int) []string {
	var out []string
	for i := from; i <= l.Top(); i++ {
		out = append(out, lua.CheckString(l, i))
	}
	return out
}

func frameIndex(l *lua.State) int {
	f := checkFrame(l, 1)
	if l.TypeOf(2) == lua.TypeString {
		key, _ := l.ToString(2)
		if m, ok := frameMethods[key]; ok {
			l.PushGoFunction(m)
			return 1
		}
		if c, err := f.Column(key); err == nil {
			pushColumn(l, c)
			return 1
		}
	}
	l.PushNil()
	return 1
}

func frameLen(l *lua.State) int {
	l.PushInteger(checkFrame(l, 1).NumRows())
	return 1
}

func frameToString(l *lua.State) int {
	l.PushString(dataset.SafeRender(checkFrame(l, 1)))
	return 1
}

func frameNRows(l *lua.State) int {
	l.PushInteger(checkFrame(l, 1).NumRows())
	return 1
}

func frameNCols(l *lua.State) int {
	l.PushInteger(checkFrame(l, 1).NumCols())
	return 1
}

func frameShape(l *lua.State) int {
	rows, cols := checkFrame(l, 1).Shape()
	l.PushInteger(rows)
	l.PushInteger(cols)
	return 2
}

func frameColumns(l *lua.State) int {
	pushGo(l, checkFrame(l, 1).Columns())
	return 1
}

func frameDTypes(l *lua.State) int {
	f := checkFrame(l, 1)
	l.CreateTable(0, f.NumCols())
	for i, k := range f.Kinds() {
		l.PushString(k.String())
		l.SetField(-2, f.ColumnAt(i).Name)
	}
	return 1
}

func frameHead(l *lua.State) int {
	f := checkFrame(l, 1)
	pushFrame(l, f.Head(lua.OptInteger(l, 2, dataset.DefaultHeadRows)))
	return 1
}

func frameTail(l *lua.State) int {
	f := checkFrame(l, 1)
	pushFrame(l, f.Tail(lua.OptInteger(l, 2, dataset.DefaultHeadRows)))
	return 1
}

func frameSelect(l *lua.State) int {
	f := checkFrame(l, 1)
	out, err := f.Select(stringArgs(l, 2)...)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameDrop(l *lua.State) int {
	f := checkFrame(l, 1)
	out, err := f.Drop(stringArgs(l, 2)...)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

// frameFilter keeps the rows for which fn(record) is truthy.
func frameFilter(l *lua.State) int {
	f := checkFrame(l, 1)
	lua.CheckType(l, 2, lua.TypeFunction)
	out, err := f.Filter(func(row int) (bool, error) {
		l.PushValue(2)
		pushRecord(l, f, row)
		l.Call(1, 1)
		keep := l.ToBoolean(-1)
		l.Pop(1)
		return keep, nil
	})
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameSort(l *lua.State) int {
	f := checkFrame(l, 1)
	name := lua.CheckString(l, 2)
	desc := l.ToBoolean(3)
	out, err := f.SortBy(name, desc)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameColumn(l *lua.State) int {
	f := checkFrame(l, 1)
	c, err := f.Column(lua.CheckString(l, 2))
	if err != nil {
		raise(l, err)
	}
	pushColumn(l, c)
	return 1
}

// frameRow returns the 1-based row i as a record table.
func frameRow(l *lua.State) int {
	f := checkFrame(l, 1)
	i := lua.CheckInteger(l, 2)
	if i < 1 || i > f.NumRows() {
		lua.ArgumentError(l, 2, "row out of range")
	}
	pushRecord(l, f, i-1)
	return 1
}

func frameRecords(l *lua.State) int {
	f := checkFrame(l, 1)
	l.CreateTable(f.NumRows(), 0)
	for i := 0; i < f.NumRows(); i++ {
		pushRecord(l, f, i)
		l.RawSetInt(-2, i+1)
	}
	return 1
}

// frameWithColumn adds or replaces a column from an array or from a
// function called with each record.
func frameWithColumn(l *lua.State) int {
	f := checkFrame(l, 1)
	name := lua.CheckString(l, 2)

	var values []any
	switch l.TypeOf(3) {
	case lua.TypeFunction:
		values = make([]any, f.NumRows())
		for i := range values {
			l.PushValue(3)
			pushRecord(l, f, i)
			l.Call(1, 1)
			v, err := toGo(l, -1, 0)
			l.Pop(1)
			if err != nil {
				raise(l, err)
			}
			values[i] = v
		}
	case lua.TypeTable:
		v, err := toGo(l, 3, 0)
		if err != nil {
			raise(l, err)
		}
		arr, ok := v.([]any)
		if !ok {
			lua.ArgumentError(l, 3, "array expected")
		}
		values = arr
	default:
		lua.ArgumentError(l, 3, "array or function expected")
	}

	out, err := f.WithColumn(dataset.NewColumn(name, values))
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameRename(l *lua.State) int {
	f := checkFrame(l, 1)
	out, err := f.Rename(lua.CheckString(l, 2), lua.CheckString(l, 3))
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameDescribe(l *lua.State) int {
	out, err := checkFrame(l, 1).Describe()
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameGroupBy(l *lua.State) int {
	f := checkFrame(l, 1)
	key := lua.CheckString(l, 2)
	agg := lua.OptString(l, 3, "count")
	out, err := f.GroupBy(key, agg, stringArgs(l, 4)...)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameValueCounts(l *lua.State) int {
	out, err := checkFrame(l, 1).ValueCounts(lua.CheckString(l, 2))
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameUnique(l *lua.State) int {
	values, err := checkFrame(l, 1).Unique(lua.CheckString(l, 2))
	if err != nil {
		raise(l, err)
	}
	pushGo(l, values)
	return 1
}

func frameReduce(agg string) lua.Function {
	return func(l *lua.State) int {
		x, err := checkFrame(l, 1).Floats(lua.CheckString(l, 2))
		if err != nil {
			raise(l, err)
		}
		v, err := dataset.Aggregate(agg, x)
		if err != nil {
			raise(l, err)
		}
		l.PushNumber(v)
		return 1
	}
}

// frameNew builds a frame from a table of column arrays, with an optional
// array giving the column order.
func frameNew(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)
	v, err := toGo(l, 1, 0)
	if err != nil {
		raise(l, err)
	}
	var order []string
	if !l.IsNoneOrNil(2) {
		order = stringList(l, 2)
	}
	var out *dataset.Frame
	switch x := v.(type) {
	case map[string]any:
		out, err = columnsToFrame(x, order)
	case []any:
		if len(x) != 0 {
			lua.ArgumentError(l, 1, "table of columns expected")
		}
		out, err = dataset.New()
	}
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameFromRecords(l *lua.State) int {
	lua.CheckType(l, 1, lua.TypeTable)
	v, err := toGo(l, 1, 0)
	if err != nil {
		raise(l, err)
	}
	arr, ok := v.([]any)
	if !ok {
		lua.ArgumentError(l, 1, "array of records expected")
	}
	records, ok := asRecords(arr)
	if !ok {
		lua.ArgumentError(l, 1, "array of records expected")
	}
	var order []string
	if !l.IsNoneOrNil(2) {
		order = stringList(l, 2)
	}
	out, err := dataset.FromRecords(records, order)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameConcat(l *lua.State) int {
	frames := make([]*dataset.Frame, 0, l.Top())
	for i := 1; i <= l.Top(); i++ {
		frames = append(frames, checkFrame(l, i))
	}
	out, err := dataset.Concat(frames...)
	if err != nil {
		raise(l, err)
	}
	pushFrame(l, out)
	return 1
}

func frameIsFrame(l *lua.State) int {
	_, ok := l.ToUserData(1).(*dataset.Frame)
	l.PushBoolean(ok)
	return 1
}

// stringList reads an array of strings at index.
func stringList(l *lua.State, index int) []string {
	lua.CheckType(l, index, lua.TypeTable)
	n := l.RawLength(index)
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(index, i)
		s, ok := l.ToString(-1)
		l.Pop(1)
		if !ok {
			lua.ArgumentError(l, index, "array of strings expected")
		}
		out = append(out, s)
	}
	return out
}

// numberList reads an array of numbers at index, dropping NaN when skipNaN
// is set.
func numberList(l *lua.State, index int, skipNaN bool) []float64 {
	lua.CheckType(l, index, lua.TypeTable)
	n := l.RawLength(index)
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(index, i)
		v, ok := l.ToNumber(-1)
		isNil := l.IsNil(-1)
		l.Pop(1)
		if isNil {
			continue
		}
		if !ok {
			lua.ArgumentError(l, index, "array of numbers expected")
		}
		if skipNaN && math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
