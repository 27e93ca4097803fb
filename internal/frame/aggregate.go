package frame

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// AggFunc reduces the non-missing values of one group
type AggFunc func(values []float64) float64

// Mean is the arithmetic mean, NaN for an empty group
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// Sum adds the group values
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Aggregate groups rows by the text values of the key columns and reduces col
// with fn. Groups appear in first-seen order; rows missing a key are skipped.
// The result has the key columns followed by col.
func (f *Frame) Aggregate(keys []string, col string, fn AggFunc) *Frame {
	type group struct {
		key    []string
		values []float64
	}
	groups := make(map[string]*group)
	order := make([]string, 0)
	values := f.Numbers(col)

	keyTexts := make([][]string, len(keys))
	for k, name := range keys {
		keyTexts[k] = f.Texts(name)
		if keyTexts[k] == nil {
			return Empty()
		}
	}

rows:
	for i := 0; i < f.Len(); i++ {
		parts := make([]string, len(keys))
		for k := range keys {
			if keyTexts[k][i] == "" {
				continue rows
			}
			parts[k] = keyTexts[k][i]
		}
		id := strings.Join(parts, "\x00")
		g, ok := groups[id]
		if !ok {
			g = &group{key: parts}
			groups[id] = g
			order = append(order, id)
		}
		if values != nil && !math.IsNaN(values[i]) {
			g.values = append(g.values, values[i])
		}
	}

	out := &Frame{cols: make(map[string]*column, len(keys)+1), n: len(order)}
	for k, name := range keys {
		c := &column{kind: Text, texts: make([]string, len(order))}
		for gi, id := range order {
			c.texts[gi] = groups[id].key[k]
		}
		if kind, _ := f.Kind(name); kind == Numeric {
			c = toNumeric(c)
		}
		out.names = append(out.names, name)
		out.cols[name] = c
	}
	agg := &column{kind: Numeric, nums: make([]float64, len(order))}
	for gi, id := range order {
		agg.nums[gi] = fn(groups[id].values)
	}
	out.names = append(out.names, col)
	out.cols[col] = agg
	return out
}

// GroupMean is Aggregate with Mean over a single key
func (f *Frame) GroupMean(by, col string) *Frame {
	return f.Aggregate([]string{by}, col, Mean)
}

// GroupMean2 is Aggregate with Mean over two keys
func (f *Frame) GroupMean2(by1, by2, col string) *Frame {
	return f.Aggregate([]string{by1, by2}, col, Mean)
}

// Corr returns the Pearson correlation matrix of the given columns. Each pair
// uses the rows where both values are present; pairs with fewer than two such
// rows are NaN.
func (f *Frame) Corr(cols ...string) [][]float64 {
	data := make([][]float64, len(cols))
	for i, c := range cols {
		data[i] = f.Numbers(c)
	}
	out := make([][]float64, len(cols))
	for i := range cols {
		out[i] = make([]float64, len(cols))
		for j := range cols {
			out[i][j] = pairwiseCorrelation(data[i], data[j])
		}
	}
	return out
}

func pairwiseCorrelation(a, b []float64) float64 {
	if a == nil || b == nil {
		return math.NaN()
	}
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(a))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Quantile returns the q-th quantile of a column ignoring missing values,
// interpolating linearly between the two closest ranks.
func (f *Frame) Quantile(col string, q float64) float64 {
	values := make([]float64, 0, f.Len())
	for _, v := range f.Numbers(col) {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return Quantile(values, q)
}

// Quantile computes the q-th quantile of values with linear interpolation
// between ranks (h = q*(n-1)). The input is not modified.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func toNumeric(c *column) *column {
	out := &column{kind: Numeric, nums: make([]float64, len(c.texts))}
	for i, s := range c.texts {
		out.nums[i] = parseOrNaN(s)
	}
	return out
}
