package trend

import (
	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
)

// Options controls smoothing and projection
type Options struct {
	Frac           float64
	Iterations     int
	Window         int
	ProjectionYear int
}

// DefaultOptions projects to 2030 from the last five smoothed points
func DefaultOptions() Options {
	return Options{
		Frac:           DefaultFrac,
		Iterations:     DefaultIterations,
		Window:         5,
		ProjectionYear: 2030,
	}
}

// Series is the trend of one group
type Series struct {
	Name       string      `json:"name"`
	Observed   []Point     `json:"observed"`
	Smoothed   []Point     `json:"smoothed"`
	Projection *Projection `json:"projection,omitempty"`
}

// Analysis holds one series per group
type Analysis struct {
	Column string   `json:"column"`
	Group  string   `json:"group,omitempty"`
	Series []Series `json:"series"`
}

// Analyze averages col per year, per value of group when group is set, then
// smooths each series and projects it. Groups whose last year is already at
// or past the projection year get no projection.
func Analyze(f *frame.Frame, col, group string, opts Options) (*Analysis, error) {
	if !f.HasColumn(col) {
		return nil, errors.NotFound("column " + col)
	}
	if group != "" && !f.HasColumn(group) {
		return nil, errors.NotFound("column " + group)
	}

	out := &Analysis{Column: col, Group: group}
	if group == "" {
		means := f.GroupMean(heart.ColYear, col).DropNA(col)
		out.Series = append(out.Series, buildSeries("All", means, col, opts))
		return out, nil
	}

	means := f.GroupMean2(group, heart.ColYear, col).DropNA(col)
	for _, name := range means.Unique(group) {
		rows := means.Filter(func(r frame.Row) bool { return r.Text(group) == name })
		out.Series = append(out.Series, buildSeries(name, rows, col, opts))
	}
	return out, nil
}

func buildSeries(name string, means *frame.Frame, col string, opts Options) Series {
	means = means.SortBy(heart.ColYear, false)
	xs := means.Numbers(heart.ColYear)
	ys := means.Numbers(col)

	s := Series{Name: name, Observed: make([]Point, len(xs))}
	for i := range xs {
		s.Observed[i] = Point{X: xs[i], Y: ys[i]}
	}
	s.Smoothed = Lowess(xs, ys, opts.Frac, opts.Iterations)

	sx := make([]float64, len(s.Smoothed))
	sy := make([]float64, len(s.Smoothed))
	for i, p := range s.Smoothed {
		sx[i], sy[i] = p.X, p.Y
	}
	if p, err := Project(sx, sy, float64(opts.ProjectionYear), opts.Window); err == nil {
		s.Projection = &p
	}
	return s
}
