package dataset

import (
	"fmt"
	"sort"
)

// DefaultHeadRows is the row count used by Head and Tail when n < 0.
const DefaultHeadRows = 5

// Head returns the first n rows. A negative n means DefaultHeadRows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 {
		n = DefaultHeadRows
	}
	return f.Slice(0, n)
}

// Tail returns the last n rows. A negative n means DefaultHeadRows.
func (f *Frame) Tail(n int) *Frame {
	if n < 0 {
		n = DefaultHeadRows
	}
	return f.Slice(f.rows-n, f.rows)
}

// Slice returns rows [start, end), clamped to the frame.
func (f *Frame) Slice(start, end int) *Frame {
	start = max(0, min(start, f.rows))
	end = max(start, min(end, f.rows))
	rows := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, i)
	}
	return f.take(rows)
}

// Select returns a frame with only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// Drop returns a frame without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !f.HasColumn(name) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		drop[name] = true
	}
	cols := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = f.rows
	}
	return out, nil
}

// Rename returns a frame with column oldName called newName.
func (f *Frame) Rename(oldName, newName string) (*Frame, error) {
	i, ok := f.index[oldName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, oldName)
	}
	cols := make([]Column, len(f.cols))
	copy(cols, f.cols)
	cols[i].Name = newName
	return New(cols...)
}

// Filter returns the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) (bool, error)) (*Frame, error) {
	rows := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		ok, err := keep(i)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return f.take(rows), nil
}

// SortBy returns the rows ordered by column name. The sort is stable and
// nulls always sort last.
func (f *Frame) SortBy(name string, descending bool) (*Frame, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	rows := make([]int, f.rows)
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := c.values[rows[a]], c.values[rows[b]]
		switch {
		case va == nil:
			return false
		case vb == nil:
			return true
		}
		cmp := compareCells(va, vb)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return f.take(rows), nil
}

// WithColumn returns a frame with column c appended, or replacing the
// column of the same name in place. On a frame without columns any length
// is accepted.
func (f *Frame) WithColumn(c Column) (*Frame, error) {
	cols := make([]Column, len(f.cols))
	copy(cols, f.cols)
	if i, ok := f.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Concat stacks frames vertically. Every frame must have the column names
// of the first; kinds widen as needed.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return New()
	}
	for _, fr := range frames {
		if fr == nil {
			return nil, ErrNilFrame
		}
	}
	first := frames[0]
	cols := make([]Column, len(first.cols))
	for i, c := range first.cols {
		var values []any
		for _, fr := range frames {
			oc, err := fr.Column(c.Name)
			if err != nil {
				return nil, err
			}
			values = append(values, oc.values...)
		}
		cols[i] = NewColumn(c.Name, values)
	}
	for _, fr := range frames[1:] {
		if fr.NumCols() != first.NumCols() {
			return nil, fmt.Errorf("%w: concat of %d and %d columns", ErrShapeMismatch, first.NumCols(), fr.NumCols())
		}
	}
	return New(cols...)
}

// ValueCounts returns the distinct non-null values of a column with their
// counts, most frequent first. Ties keep first-seen order.
func (f *Frame) ValueCounts(name string) (*Frame, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	keys, counts := distinct(c.values)
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	vals := make([]any, len(keys))
	cnts := make([]any, len(keys))
	for i, o := range order {
		vals[i] = keys[o]
		cnts[i] = int64(counts[o])
	}
	return New(NewTypedColumn(name, c.Kind, vals), NewTypedColumn("count", KindInt, cnts))
}

// Unique returns the distinct non-null values of a column in first-seen
// order.
func (f *Frame) Unique(name string) ([]any, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	keys, _ := distinct(c.values)
	return keys, nil
}

func distinct(values []any) ([]any, []int) {
	pos := map[any]int{}
	var keys []any
	var counts []int
	for _, v := range values {
		if v == nil {
			continue
		}
		i, ok := pos[v]
		if !ok {
			i = len(keys)
			pos[v] = i
			keys = append(keys, v)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return keys, counts
}
