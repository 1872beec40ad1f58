package dataset

import "math"

var numericStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe summarizes the frame. Numeric columns get count, mean, std, min,
// quartiles and max in one row per statistic, labelled by a leading "stat"
// column. A frame without numeric columns gets count, unique, top and freq
// for every column instead.
func (f *Frame) Describe() (*Frame, error) {
	var numeric []Column
	for _, c := range f.cols {
		if c.Kind.Numeric() {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) == 0 {
		return f.describeCategorical()
	}

	labels := make([]any, len(numericStats))
	for i, s := range numericStats {
		labels[i] = s
	}
	cols := []Column{NewTypedColumn("stat", KindString, labels)}
	for _, c := range numeric {
		x, _ := c.Floats()
		values := []any{
			float64(len(x)),
			Mean(x),
			StdDev(x),
			Min(x),
			Quantile(x, 0.25),
			Quantile(x, 0.5),
			Quantile(x, 0.75),
			Max(x),
		}
		cols = append(cols, NewTypedColumn(c.Name, KindFloat, values))
	}
	return New(cols...)
}

func (f *Frame) describeCategorical() (*Frame, error) {
	cols := []Column{NewTypedColumn("stat", KindString, []any{"count", "unique", "top", "freq"})}
	for _, c := range f.cols {
		keys, counts := distinct(c.values)
		var top any
		freq := 0
		for i, n := range counts {
			if n > freq {
				top, freq = keys[i], n
			}
		}
		values := []any{int64(c.Len() - c.Nulls()), int64(len(keys)), top, int64(freq)}
		if top == nil {
			values[3] = nil
		}
		cols = append(cols, NewTypedColumn(c.Name, KindString, values))
	}
	return New(cols...)
}

func isNaN(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}
