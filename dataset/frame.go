package dataset

import (
	"fmt"
	"sort"
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	values []any
}

// NewColumn builds a column, inferring its kind from values. Values are
// normalized to the storage type of the inferred kind.
func NewColumn(name string, values []any) Column {
	return NewTypedColumn(name, InferKind(values), values)
}

// NewTypedColumn builds a column of the given kind, coercing every value.
func NewTypedColumn(name string, kind Kind, values []any) Column {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = coerce(v, kind)
	}
	return Column{Name: name, Kind: kind, values: out}
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.values) }

// Value returns cell i; nil means null.
func (c Column) Value(i int) any { return c.values[i] }

// Values returns a copy of the cells.
func (c Column) Values() []any {
	out := make([]any, len(c.values))
	copy(out, c.values)
	return out
}

// Nulls returns the number of null cells.
func (c Column) Nulls() int {
	n := 0
	for _, v := range c.values {
		if v == nil {
			n++
		}
	}
	return n
}

// Floats returns the non-null cells of a numeric column as float64.
func (c Column) Floats() ([]float64, error) {
	if !c.Kind.Numeric() {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, c.Name, c.Kind)
	}
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if v == nil {
			continue
		}
		f, _ := toFloat64(v)
		out = append(out, f)
	}
	return out, nil
}

func (c Column) take(rows []int) Column {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = c.values[r]
	}
	return Column{Name: c.Name, Kind: c.Kind, values: out}
}

// Frame is an immutable table of equal-length columns.
type Frame struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a frame from columns. Names must be unique and every column
// must have the same length.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := f.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i > 0 && c.Len() != f.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShapeMismatch, c.Name, c.Len(), f.rows)
		}
		f.rows = c.Len()
		f.index[c.Name] = i
		f.cols[i] = c
	}
	return f, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// FromColumns builds a frame from a name to values map. Columns are ordered
// by name since map order carries no meaning.
func FromColumns(columns map[string][]any) (*Frame, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = NewColumn(name, columns[name])
	}
	return New(cols...)
}

// FromRecords builds a frame from row maps. Column order follows order when
// given; otherwise the keys of the first record in sorted order, followed by
// keys first seen in later records. Missing keys become null.
func FromRecords(records []map[string]any, order []string) (*Frame, error) {
	names := order
	if len(names) == 0 {
		seen := map[string]bool{}
		for _, rec := range records {
			keys := make([]string, 0, len(rec))
			for k := range rec {
				if !seen[k] {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	cols := make([]Column, len(names))
	for i, name := range names {
		values := make([]any, len(records))
		for r, rec := range records {
			values[r] = rec[name]
		}
		cols[i] = NewColumn(name, values)
	}
	return New(cols...)
}

// FromValue wraps a scalar in a one-row frame with a single column "value".
func FromValue(v any) *Frame {
	return MustNew(NewColumn("value", []any{v}))
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// Shape returns rows and columns.
func (f *Frame) Shape() (int, int) { return f.rows, len(f.cols) }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

// Kinds returns the kind of every column in order.
func (f *Frame) Kinds() []Kind {
	out := make([]Kind, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Kind
	}
	return out
}

// HasColumn reports whether name is a column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (Column, error) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return f.cols[i], nil
}

// ColumnAt returns column i.
func (f *Frame) ColumnAt(i int) Column { return f.cols[i] }

// Cell returns the cell at row, column name.
func (f *Frame) Cell(row int, name string) (any, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= f.rows {
		return nil, fmt.Errorf("%w: row %d out of range [0,%d)", ErrShapeMismatch, row, f.rows)
	}
	return c.values[row], nil
}

// Row returns row i as a column name to cell map.
func (f *Frame) Row(i int) (map[string]any, error) {
	if i < 0 || i >= f.rows {
		return nil, fmt.Errorf("%w: row %d out of range [0,%d)", ErrShapeMismatch, i, f.rows)
	}
	out := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		out[c.Name] = c.values[i]
	}
	return out, nil
}

// Records returns every row as a map.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.rows)
	for i := range out {
		out[i], _ = f.Row(i)
	}
	return out
}

// Floats returns the non-null cells of a numeric column.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	return c.Floats()
}

func (f *Frame) take(rows []int) *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(rows)
	}
	return &Frame{cols: cols, index: f.index, rows: len(rows)}
}
