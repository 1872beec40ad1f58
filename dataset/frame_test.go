package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumnInfersKind(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		kind   Kind
		first  any
	}{
		{"ints", []any{1, int32(2)}, KindInt, int64(1)},
		{"ints widen to float", []any{1, 2.5}, KindFloat, 1.0},
		{"bools", []any{true, nil}, KindBool, true},
		{"bool and number mix to string", []any{true, 1}, KindString, "True"},
		{"strings", []any{"a", 1}, KindString, "a"},
		{"only nulls", []any{nil, nil}, KindFloat, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColumn("c", tt.values)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.first, c.Value(0))
			assert.Equal(t, len(tt.values), c.Len())
		})
	}
}

func TestNewValidatesColumns(t *testing.T) {
	_, err := New(NewColumn("a", []any{1}), NewColumn("a", []any{2}))
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New(NewColumn("a", []any{1}), NewColumn("b", []any{1, 2}))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	f, err := New()
	require.NoError(t, err)
	rows, cols := f.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 0, cols)
}

func TestFromRecords(t *testing.T) {
	f, err := FromRecords([]map[string]any{
		{"b": 1, "a": "x"},
		{"a": "y", "c": true},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, f.Columns())
	assert.Equal(t, []Kind{KindString, KindInt, KindBool}, f.Kinds())

	v, err := f.Cell(1, "b")
	require.NoError(t, err)
	assert.Nil(t, v)

	f, err = FromRecords([]map[string]any{{"a": 1, "b": 2}}, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, f.Columns())
}

func TestFromColumnsSortsNames(t *testing.T) {
	f, err := FromColumns(map[string][]any{"z": {1, 2}, "m": {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "z"}, f.Columns())
	assert.Equal(t, 2, f.NumRows())

	_, err = FromColumns(map[string][]any{"z": {1, 2}, "m": {"a"}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromValue(t *testing.T) {
	f := FromValue(42)
	assert.Equal(t, []string{"value"}, f.Columns())
	v, err := f.Cell(0, "value")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func numbers(n int) *Frame {
	values := make([]any, n)
	for i := range values {
		values[i] = i
	}
	return MustNew(NewColumn("n", values))
}

func column(t *testing.T, f *Frame, name string) []any {
	t.Helper()
	c, err := f.Column(name)
	require.NoError(t, err)
	return c.Values()
}

func TestHeadTailSlice(t *testing.T) {
	f := numbers(8)

	assert.Equal(t, []any{int64(0), int64(1), int64(2), int64(3), int64(4)}, column(t, f.Head(-1), "n"))
	assert.Equal(t, []any{int64(0), int64(1)}, column(t, f.Head(2), "n"))
	assert.Equal(t, []any{int64(6), int64(7)}, column(t, f.Tail(2), "n"))
	assert.Equal(t, 8, f.Head(100).NumRows())
	assert.Equal(t, 0, f.Slice(10, 20).NumRows())
	assert.Equal(t, 8, f.NumRows(), "receiver must be unchanged")
}

func TestSelectDropRename(t *testing.T) {
	f := MustNew(NewColumn("a", []any{1}), NewColumn("b", []any{2}), NewColumn("c", []any{3}))

	s, err := f.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, s.Columns())

	_, err = f.Select("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	d, err := f.Drop("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, d.Columns())

	r, err := f.Rename("a", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "b", "c"}, r.Columns())
	assert.Equal(t, []string{"a", "b", "c"}, f.Columns())

	_, err = f.Rename("a", "b")
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestFilter(t *testing.T) {
	f := numbers(6)
	c, _ := f.Column("n")
	even, err := f.Filter(func(row int) (bool, error) {
		return c.Value(row).(int64)%2 == 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(0), int64(2), int64(4)}, column(t, even, "n"))
}

func TestSortByNullsLast(t *testing.T) {
	f := MustNew(
		NewColumn("v", []any{3, nil, 1, 2}),
		NewColumn("id", []any{"a", "b", "c", "d"}),
	)

	asc, err := f.SortBy("v", false)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), nil}, column(t, asc, "v"))
	assert.Equal(t, []any{"c", "d", "a", "b"}, column(t, asc, "id"))

	desc, err := f.SortBy("v", true)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3), int64(2), int64(1), nil}, column(t, desc, "v"))

	_, err = f.SortBy("missing", false)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestWithColumn(t *testing.T) {
	f := numbers(2)

	added, err := f.WithColumn(NewColumn("sq", []any{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "sq"}, added.Columns())

	replaced, err := added.WithColumn(NewColumn("n", []any{"x", "y"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "sq"}, replaced.Columns())
	assert.Equal(t, []any{"x", "y"}, column(t, replaced, "n"))

	_, err = f.WithColumn(NewColumn("bad", []any{1}))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestConcat(t *testing.T) {
	a := MustNew(NewColumn("x", []any{1}))
	b := MustNew(NewColumn("x", []any{2.5}))

	c, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.5}, column(t, c, "x"))

	_, err = Concat(a, MustNew(NewColumn("y", []any{1})))
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = Concat(a, nil)
	assert.ErrorIs(t, err, ErrNilFrame)
}

func TestValueCountsAndUnique(t *testing.T) {
	f := MustNew(NewColumn("k", []any{"a", "b", "a", nil, "c", "a", "b"}))

	vc, err := f.ValueCounts("k")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, column(t, vc, "k"))
	assert.Equal(t, []any{int64(3), int64(2), int64(1)}, column(t, vc, "count"))

	u, err := f.Unique("k")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, u)
}

func TestGroupBy(t *testing.T) {
	f := MustNew(
		NewColumn("region", []any{"b", "a", "b", nil}),
		NewColumn("sales", []any{1, 2, 3, 4}),
		NewColumn("label", []any{"x", "y", "z", "w"}),
	)

	sum, err := f.GroupBy("region", "sum")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales"}, sum.Columns())
	assert.Equal(t, []any{"a", "b"}, column(t, sum, "region"))
	assert.Equal(t, []any{2.0, 4.0}, column(t, sum, "sales"))

	count, err := f.GroupBy("region", "count")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "sales", "label"}, count.Columns())
	assert.Equal(t, []any{int64(1), int64(2)}, column(t, count, "label"))

	_, err = f.GroupBy("region", "mean", "label")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = f.GroupBy("region", "mode")
	assert.ErrorIs(t, err, ErrUnknownAggregation)
}

func TestDescribeNumeric(t *testing.T) {
	f := MustNew(
		NewColumn("x", []any{1, 2, 3, 4}),
		NewColumn("name", []any{"a", "b", "c", "d"}),
	)

	d, err := f.Describe()
	require.NoError(t, err)
	assert.Equal(t, []string{"stat", "x"}, d.Columns())
	assert.Equal(t, []any{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, column(t, d, "stat"))

	x, err := d.Floats("x")
	require.NoError(t, err)
	want := []float64{4, 2.5, math.Sqrt(5.0 / 3.0), 1, 1.75, 2.5, 3.25, 4}
	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-9, "stat %d", i)
	}
}

func TestDescribeCategorical(t *testing.T) {
	f := MustNew(NewColumn("k", []any{"a", "b", "a"}))

	d, err := f.Describe()
	require.NoError(t, err)
	assert.Equal(t, []any{"3", "2", "a", "2"}, column(t, d, "k"))
}

func TestFloatsRejectsText(t *testing.T) {
	f := MustNew(NewColumn("k", []any{"a"}))
	_, err := f.Floats("k")
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestQuantile(t *testing.T) {
	x := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, Median(x), 1e-12)
	assert.InDelta(t, 1.75, Quantile(x, 0.25), 1e-12)
	assert.InDelta(t, 4.0, Quantile(x, 1), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, []float64{4, 1, 3, 2}, x, "input must not be reordered")
}

func TestAggregateEmpty(t *testing.T) {
	v, err := Aggregate("sum", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = Aggregate("max", nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}
