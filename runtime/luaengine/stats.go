package luaengine

import (
	"math"

	lua "github.com/Shopify/go-lua"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/jonwraymond/dataexec/dataset"
)

// maxGenerated bounds the arrays num.arange and num.linspace build.
const maxGenerated = 10_000_000

var statsLibrary = []lua.RegistryFunction{
	{Name: "mean", Function: guard(reduce(dataset.Mean))},
	{Name: "median", Function: guard(reduce(dataset.Median))},
	{Name: "std", Function: guard(reduce(dataset.StdDev))},
	{Name: "var", Function: guard(reduce(dataset.Variance))},
	{Name: "sum", Function: guard(reduce(dataset.Sum))},
	{Name: "min", Function: guard(reduce(dataset.Min))},
	{Name: "max", Function: guard(reduce(dataset.Max))},
	{Name: "skew", Function: guard(reduce(skew))},
	{Name: "quantile", Function: guard(statsQuantile)},
	{Name: "corr", Function: guard(paired(stat.Correlation))},
	{Name: "cov", Function: guard(paired(stat.Covariance))},
	{Name: "linregress", Function: guard(statsLinregress)},
}

var numLibrary = []lua.RegistryFunction{
	{Name: "linspace", Function: guard(numLinspace)},
	{Name: "arange", Function: guard(numArange)},
	{Name: "cumsum", Function: guard(numCumsum)},
	{Name: "round", Function: guard(numRound)},
	{Name: "isnan", Function: guard(numIsNaN)},
}

func registerNumericLibraries(l *lua.State) {
	l.NewTable()
	lua.SetFunctions(l, statsLibrary, 0)
	l.SetGlobal("stats")

	l.NewTable()
	lua.SetFunctions(l, numLibrary, 0)
	l.PushNumber(math.NaN())
	l.SetField(-2, "nan")
	l.PushNumber(math.Inf(1))
	l.SetField(-2, "inf")
	l.SetGlobal("num")
}

// reduce wraps a single-sample statistic. NaN entries are ignored.
func reduce(fn func([]float64) float64) lua.Function {
	return func(l *lua.State) int {
		l.PushNumber(fn(numberList(l, 1, true)))
		return 1
	}
}

func skew(x []float64) float64 {
	if len(x) < 3 {
		return math.NaN()
	}
	return stat.Skew(x, nil)
}

func statsQuantile(l *lua.State) int {
	x := numberList(l, 1, true)
	p := lua.CheckNumber(l, 2)
	if p < 0 || p > 1 {
		lua.ArgumentError(l, 2, "quantile must be in [0, 1]")
	}
	l.PushNumber(dataset.Quantile(x, p))
	return 1
}

// pairs reads two equal-length arrays and drops positions where either is
// NaN.
func pairs(l *lua.State) ([]float64, []float64) {
	x := numberList(l, 1, false)
	y := numberList(l, 2, false)
	if len(x) != len(y) {
		lua.Errorf(l, "%s", "arrays must have the same length")
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func paired(fn func(x, y, weights []float64) float64) lua.Function {
	return func(l *lua.State) int {
		x, y := pairs(l)
		if len(x) < 2 {
			l.PushNumber(math.NaN())
			return 1
		}
		l.PushNumber(fn(x, y, nil))
		return 1
	}
}

// statsLinregress fits y = intercept + slope*x and returns intercept, slope
// and the correlation coefficient.
func statsLinregress(l *lua.State) int {
	x, y := pairs(l)
	if len(x) < 2 {
		l.PushNumber(math.NaN())
		l.PushNumber(math.NaN())
		l.PushNumber(math.NaN())
		return 3
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	l.PushNumber(intercept)
	l.PushNumber(slope)
	l.PushNumber(stat.Correlation(x, y, nil))
	return 3
}

// numLinspace returns n evenly spaced values from start to stop inclusive.
func numLinspace(l *lua.State) int {
	start := lua.CheckNumber(l, 1)
	stop := lua.CheckNumber(l, 2)
	n := lua.OptInteger(l, 3, 50)
	switch {
	case n < 0 || n > maxGenerated:
		lua.ArgumentError(l, 3, "count out of range")
	case n == 0:
		pushGo(l, []float64{})
	case n == 1:
		pushGo(l, []float64{start})
	default:
		pushGo(l, floats.Span(make([]float64, n), start, stop))
	}
	return 1
}

// numArange returns values from start up to but excluding stop. With one
// argument it counts from 0.
func numArange(l *lua.State) int {
	start, stop, step := 0.0, lua.CheckNumber(l, 1), 1.0
	if !l.IsNoneOrNil(2) {
		start, stop = stop, lua.CheckNumber(l, 2)
	}
	if !l.IsNoneOrNil(3) {
		step = lua.CheckNumber(l, 3)
	}
	if step == 0 || math.IsNaN(step) {
		lua.ArgumentError(l, 3, "step must be non-zero")
	}
	count := math.Ceil((stop - start) / step)
	if count > maxGenerated {
		lua.Errorf(l, "%s", "arange would produce too many values")
	}
	out := make([]float64, 0, max(0, int(count)))
	for i := 0; float64(i) < count; i++ {
		out = append(out, start+float64(i)*step)
	}
	pushGo(l, out)
	return 1
}

func numCumsum(l *lua.State) int {
	x := numberList(l, 1, false)
	pushGo(l, floats.CumSum(make([]float64, len(x)), x))
	return 1
}

func numRound(l *lua.State) int {
	x := lua.CheckNumber(l, 1)
	digits := lua.OptInteger(l, 2, 0)
	l.PushNumber(scalar.Round(x, digits))
	return 1
}

func numIsNaN(l *lua.State) int {
	x, ok := l.ToNumber(1)
	l.PushBoolean(ok && l.TypeOf(1) == lua.TypeNumber && math.IsNaN(x))
	return 1
}
