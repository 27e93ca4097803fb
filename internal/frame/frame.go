// Package frame is the small column store the dashboard filters operate on.
//
// Frames are immutable: every operation returns a new Frame and leaves its
// receiver untouched, so a loaded dataset can be shared across requests and
// cached filter results without copying.
package frame

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the storage type of a column
type Kind int

const (
	Numeric Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "text"
}

type column struct {
	kind  Kind
	nums  []float64
	texts []string
}

// Frame is an ordered set of equally long columns
type Frame struct {
	names []string
	cols  map[string]*column
	n     int
}

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// IsMissing reports whether a raw cell counts as a missing value
func IsMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// FromRows builds a frame from a header row and raw string rows. A column is
// numeric when every non-missing cell parses as a float; otherwise it is text.
// Short rows are padded with missing values.
func FromRows(headers []string, rows [][]string) *Frame {
	f := &Frame{
		names: make([]string, 0, len(headers)),
		cols:  make(map[string]*column, len(headers)),
		n:     len(rows),
	}

	for j, name := range headers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := f.cols[name]; dup {
			continue
		}
		cells := make([]string, len(rows))
		numeric := true
		for i, row := range rows {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
			if numeric && !IsMissing(cells[i]) {
				if _, err := strconv.ParseFloat(cells[i], 64); err != nil {
					numeric = false
				}
			}
		}

		col := &column{kind: Text}
		if numeric {
			col.kind = Numeric
			col.nums = make([]float64, len(cells))
			for i, cell := range cells {
				if IsMissing(cell) {
					col.nums[i] = math.NaN()
					continue
				}
				col.nums[i], _ = strconv.ParseFloat(cell, 64)
			}
		} else {
			col.texts = make([]string, len(cells))
			for i, cell := range cells {
				if !IsMissing(cell) {
					col.texts[i] = cell
				}
			}
		}
		f.names = append(f.names, name)
		f.cols[name] = col
	}
	return f
}

// Empty returns a frame with no columns and no rows
func Empty() *Frame {
	return &Frame{cols: map[string]*column{}}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return f.n
}

// IsEmpty reports whether the frame has no rows
func (f *Frame) IsEmpty() bool {
	return f.Len() == 0
}

// Columns returns the column names in order
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// HasColumn reports whether the named column exists
func (f *Frame) HasColumn(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.cols[name]
	return ok
}

// Kind returns the storage kind of a column
func (f *Frame) Kind(name string) (Kind, bool) {
	if !f.HasColumn(name) {
		return Text, false
	}
	return f.cols[name].kind, true
}

// Numbers returns the values of a numeric column. Text columns yield NaN for
// every row. The returned slice must not be modified.
func (f *Frame) Numbers(name string) []float64 {
	col, ok := f.cols[name]
	if !ok {
		return nil
	}
	if col.kind == Numeric {
		return col.nums
	}
	out := make([]float64, f.n)
	for i, s := range col.texts {
		out[i] = parseOrNaN(s)
	}
	return out
}

// Texts returns the values of a column formatted as strings
func (f *Frame) Texts(name string) []string {
	col, ok := f.cols[name]
	if !ok {
		return nil
	}
	if col.kind == Text {
		return col.texts
	}
	out := make([]string, f.n)
	for i, v := range col.nums {
		out[i] = formatNumber(v)
	}
	return out
}

// Row returns an accessor for the i-th row
func (f *Frame) Row(i int) Row {
	return Row{f: f, i: i}
}

// Filter keeps the rows for which pred returns true
func (f *Frame) Filter(pred func(Row) bool) *Frame {
	idx := make([]int, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		if pred(Row{f: f, i: i}) {
			idx = append(idx, i)
		}
	}
	return f.take(idx)
}

// Select projects the frame onto the given columns, in the given order.
// Unknown columns are skipped.
func (f *Frame) Select(names ...string) *Frame {
	out := &Frame{cols: make(map[string]*column, len(names)), n: f.Len()}
	for _, name := range names {
		col, ok := f.cols[name]
		if !ok {
			continue
		}
		if _, dup := out.cols[name]; dup {
			continue
		}
		out.names = append(out.names, name)
		out.cols[name] = col
	}
	return out
}

// DropNA drops rows that miss a value in any of the given columns. With no
// columns every column is checked.
func (f *Frame) DropNA(names ...string) *Frame {
	if len(names) == 0 {
		names = f.names
	}
	return f.Filter(func(r Row) bool {
		for _, name := range names {
			if !r.Has(name) {
				return false
			}
		}
		return true
	})
}

// NLargest returns the n rows with the largest values of col in descending
// order. Missing values are excluded and ties keep their original order.
func (f *Frame) NLargest(n int, col string) *Frame {
	if n <= 0 || !f.HasColumn(col) {
		return f.take(nil)
	}
	values := f.Numbers(col)
	idx := make([]int, 0, f.Len())
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return f.take(idx)
}

// SortBy orders rows by a column. Missing values always sort last.
func (f *Frame) SortBy(col string, desc bool) *Frame {
	c, ok := f.cols[col]
	if !ok {
		return f
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if c.kind == Numeric {
			va, vb := c.nums[ia], c.nums[ib]
			switch {
			case math.IsNaN(va):
				return false
			case math.IsNaN(vb):
				return true
			case desc:
				return va > vb
			default:
				return va < vb
			}
		}
		va, vb := c.texts[ia], c.texts[ib]
		switch {
		case va == "":
			return false
		case vb == "":
			return true
		case desc:
			return va > vb
		default:
			return va < vb
		}
	})
	return f.take(idx)
}

// Unique returns the distinct non-missing values of a column in first-seen order
func (f *Frame) Unique(col string) []string {
	values := f.Texts(col)
	seen := make(map[string]bool, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// WithColumn returns a frame with a numeric column added or replaced
func (f *Frame) WithColumn(name string, values []float64) *Frame {
	out := &Frame{
		names: make([]string, 0, len(f.names)+1),
		cols:  make(map[string]*column, len(f.cols)+1),
		n:     f.Len(),
	}
	for _, existing := range f.names {
		out.names = append(out.names, existing)
		out.cols[existing] = f.cols[existing]
	}
	vals := make([]float64, f.Len())
	for i := range vals {
		if i < len(values) {
			vals[i] = values[i]
		} else {
			vals[i] = math.NaN()
		}
	}
	if _, exists := out.cols[name]; !exists {
		out.names = append(out.names, name)
	}
	out.cols[name] = &column{kind: Numeric, nums: vals}
	return out
}

// Records converts the frame to its wire form: one map per row, with missing
// values as nil so they serialise to JSON null.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.Len())
	for i := range out {
		rec := make(map[string]any, len(f.names))
		for _, name := range f.names {
			col := f.cols[name]
			if col.kind == Numeric {
				if v := col.nums[i]; !math.IsNaN(v) {
					rec[name] = v
				} else {
					rec[name] = nil
				}
				continue
			}
			if v := col.texts[i]; v != "" {
				rec[name] = v
			} else {
				rec[name] = nil
			}
		}
		out[i] = rec
	}
	return out
}

func (f *Frame) take(idx []int) *Frame {
	out := &Frame{
		names: f.Columns(),
		cols:  make(map[string]*column, len(f.names)),
		n:     len(idx),
	}
	for _, name := range f.names {
		src := f.cols[name]
		dst := &column{kind: src.kind}
		if src.kind == Numeric {
			dst.nums = make([]float64, len(idx))
			for k, i := range idx {
				dst.nums[k] = src.nums[i]
			}
		} else {
			dst.texts = make([]string, len(idx))
			for k, i := range idx {
				dst.texts[k] = src.texts[i]
			}
		}
		out.cols[name] = dst
	}
	return out
}

// Row is a read-only view of one frame row
type Row struct {
	f *Frame
	i int
}

// Index returns the row position inside its frame
func (r Row) Index() int {
	return r.i
}

// Num returns a numeric cell, NaN when missing or non-numeric
func (r Row) Num(col string) float64 {
	c, ok := r.f.cols[col]
	if !ok {
		return math.NaN()
	}
	if c.kind == Numeric {
		return c.nums[r.i]
	}
	return parseOrNaN(c.texts[r.i])
}

// Text returns a cell formatted as a string, "" when missing
func (r Row) Text(col string) string {
	c, ok := r.f.cols[col]
	if !ok {
		return ""
	}
	if c.kind == Text {
		return c.texts[r.i]
	}
	return formatNumber(c.nums[r.i])
}

// Has reports whether the cell holds a value
func (r Row) Has(col string) bool {
	c, ok := r.f.cols[col]
	if !ok {
		return false
	}
	if c.kind == Numeric {
		return !math.IsNaN(c.nums[r.i])
	}
	return c.texts[r.i] != ""
}

func parseOrNaN(s string) float64 {
	if IsMissing(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
