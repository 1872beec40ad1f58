package dataset

import (
	"fmt"
	"sort"
)

// GroupBy groups rows by the distinct non-null values of key and reduces
// each of cols with agg (see [Aggregate]). Without cols every numeric
// column other than key is reduced; "count" counts non-null cells of any
// column. Groups are ordered by key.
func (f *Frame) GroupBy(key, agg string, cols ...string) (*Frame, error) {
	kc, err := f.Column(key)
	if err != nil {
		return nil, err
	}
	if _, err := Aggregate(agg, nil); err != nil {
		return nil, fmt.Errorf("%w: %q", err, agg)
	}
	if len(cols) == 0 {
		for _, c := range f.cols {
			if c.Name != key && (c.Kind.Numeric() || agg == "count") {
				cols = append(cols, c.Name)
			}
		}
	}
	targets := make([]Column, len(cols))
	for i, name := range cols {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if agg != "count" && !c.Kind.Numeric() {
			return nil, fmt.Errorf("%w: cannot %s %q", ErrNotNumeric, agg, name)
		}
		targets[i] = c
	}

	keys, _ := distinct(kc.values)
	sort.SliceStable(keys, func(a, b int) bool { return compareCells(keys[a], keys[b]) < 0 })
	groups := make(map[any][]int, len(keys))
	for r, v := range kc.values {
		if v != nil {
			groups[v] = append(groups[v], r)
		}
	}

	out := []Column{NewTypedColumn(key, kc.Kind, keys)}
	for _, c := range targets {
		values := make([]any, len(keys))
		for g, k := range keys {
			rows := groups[k]
			if agg == "count" {
				n := 0
				for _, r := range rows {
					if c.values[r] != nil {
						n++
					}
				}
				values[g] = int64(n)
				continue
			}
			x := make([]float64, 0, len(rows))
			for _, r := range rows {
				if v := c.values[r]; v != nil {
					fv, _ := toFloat64(v)
					x = append(x, fv)
				}
			}
			values[g], _ = Aggregate(agg, x)
		}
		kind := KindFloat
		if agg == "count" {
			kind = KindInt
		}
		out = append(out, NewTypedColumn(c.Name, kind, values))
	}
	return New(out...)
}
