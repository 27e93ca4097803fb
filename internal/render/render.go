// Package render draws dashboard charts server-side as SVG or PNG.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
	"heartdash/internal/trend"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts svg or png, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case SVG:
		return SVG, nil
	case PNG:
		return PNG, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unsupported image format %q", s))
}

// ContentType is the HTTP media type of the format
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options sizes the image
type Options struct {
	Format Format
	Width  int
	Height int
}

// DefaultOptions is a 800x450 SVG
func DefaultOptions() Options {
	return Options{Format: SVG, Width: 800, Height: 450}
}

func (o Options) normalized() Options {
	if o.Format == "" {
		o.Format = SVG
	}
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 450
	}
	return o
}

// pointStyle renders points only, without connecting lines
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// bounds tracks the data range so degenerate ranges can be widened
type bounds struct {
	minX, maxX, minY, maxY float64
	seen                   bool
}

func (b *bounds) add(xs, ys []float64) {
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		if !b.seen {
			b.minX, b.maxX, b.minY, b.maxY = xs[i], xs[i], ys[i], ys[i]
			b.seen = true
			continue
		}
		b.minX = math.Min(b.minX, xs[i])
		b.maxX = math.Max(b.maxX, xs[i])
		b.minY = math.Min(b.minY, ys[i])
		b.maxY = math.Max(b.maxY, ys[i])
	}
}

func widen(lo, hi float64) *chart.ContinuousRange {
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// xy renders a chart of continuous series. Without data it renders an
// empty frame carrying the title.
func xy(w io.Writer, title, xName, yName string, series []chart.Series, b bounds, opts Options) error {
	opts = opts.normalized()
	if !b.seen {
		b = bounds{minX: 0, maxX: 1, minY: 0, maxY: 1, seen: true}
		series = []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
		}}
	}
	ch := chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xName, Range: widen(b.minX, b.maxX)},
		YAxis:      chart.YAxis{Name: yName, Range: widen(b.minY, b.maxY)},
		Series:     series,
	}
	named := 0
	for _, s := range series {
		if s.GetName() != "" {
			named++
		}
	}
	if named > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(opts.Format.provider(), w); err != nil {
		return errors.Wrapf(err, "failed to render %s", title)
	}
	return nil
}

func clean(xs, ys []float64) ([]float64, []float64) {
	ox := make([]float64, 0, len(xs))
	oy := make([]float64, 0, len(xs))
	for i := range xs {
		if i < len(ys) && !math.IsNaN(xs[i]) && !math.IsNaN(ys[i]) {
			ox = append(ox, xs[i])
			oy = append(oy, ys[i])
		}
	}
	return ox, oy
}

// Scatter draws y against x, one colour per hue value when hue is set
func Scatter(w io.Writer, f *frame.Frame, x, y, hue string, opts Options) error {
	var series []chart.Series
	var b bounds
	rows := f.DropNA(x, y)

	groups := []string{""}
	if hue != "" {
		groups = rows.Unique(hue)
	}
	for i, group := range groups {
		sub := rows
		if hue != "" {
			sub = rows.Filter(func(r frame.Row) bool { return r.Text(hue) == group })
		}
		xs, ys := clean(sub.Numbers(x), sub.Numbers(y))
		if len(xs) == 0 {
			continue
		}
		b.add(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    group,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(chart.GetDefaultColor(i)),
		})
	}
	return xy(w, fmt.Sprintf("%s vs %s", y, x), x, y, series, b, opts)
}

// Line draws col over Year for each country, defaulting to the first five
// entities
func Line(w io.Writer, f *frame.Frame, col string, countries []string, opts Options) error {
	if len(countries) == 0 {
		countries = f.Unique(heart.ColEntity)
		if len(countries) > 5 {
			countries = countries[:5]
		}
	}
	var series []chart.Series
	var b bounds
	for i, country := range countries {
		rows := f.Filter(func(r frame.Row) bool { return r.Text(heart.ColEntity) == country }).
			SortBy(heart.ColYear, false)
		xs, ys := clean(rows.Numbers(heart.ColYear), rows.Numbers(col))
		if len(xs) == 0 {
			continue
		}
		b.add(xs, ys)
		series = append(series, chart.ContinuousSeries{
			Name:    country,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(chart.GetDefaultColor(i)),
		})
	}
	return xy(w, fmt.Sprintf("%s Over Time by Country", col), heart.ColYear, col, series, b, opts)
}

// Trend draws observed points, the LOWESS curve and the dashed projection of
// every series
func Trend(w io.Writer, a *trend.Analysis, metric string, opts Options) error {
	var series []chart.Series
	var b bounds
	if a != nil {
		for i, s := range a.Series {
			col := chart.GetDefaultColor(i)
			ox, oy := points(s.Observed)
			sx, sy := points(s.Smoothed)
			b.add(ox, oy)
			b.add(sx, sy)
			series = append(series,
				chart.ContinuousSeries{XValues: ox, YValues: oy, Style: pointStyle(col.WithAlpha(128))},
				chart.ContinuousSeries{Name: s.Name, XValues: sx, YValues: sy, Style: lineStyle(col)},
			)
			if p := s.Projection; p != nil {
				px := []float64{p.FromX, p.Year}
				py := []float64{p.FromY, p.Value}
				b.add(px, py)
				b.add([]float64{p.Year, p.Year}, []float64{p.Lower(), p.Upper()})
				series = append(series, chart.ContinuousSeries{
					XValues: px,
					YValues: py,
					Style: chart.Style{
						StrokeWidth:     2,
						StrokeColor:     col,
						StrokeDashArray: []float64{5, 5},
					},
				})
			}
		}
	}
	return xy(w, "Trend Analysis: "+metric, "Year", metric, series, b, opts)
}

func points(ps []trend.Point) ([]float64, []float64) {
	xs := make([]float64, 0, len(ps))
	ys := make([]float64, 0, len(ps))
	for _, p := range ps {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	return clean(xs, ys)
}

// Bar draws the topN entities by col
func Bar(w io.Writer, f *frame.Frame, col string, topN int, opts Options) error {
	opts = opts.normalized()
	title := fmt.Sprintf("Top %d Countries by %s", topN, col)
	top := f.NLargest(topN, col)
	if top.IsEmpty() {
		return xy(w, title, heart.ColEntity, col, nil, bounds{}, opts)
	}
	if !top.HasColumn(heart.ColEntity) {
		return errors.InvalidInput(fmt.Sprintf("bar chart of %s needs an %s column", col, heart.ColEntity))
	}

	values := top.Numbers(col)
	names := top.Texts(heart.ColEntity)
	bars := make([]chart.Value, len(values))
	lo, hi := 0.0, 0.0
	for i, v := range values {
		bars[i] = chart.Value{Label: names[i], Value: v}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   barWidth(opts.Width, len(bars)),
		YAxis:      chart.YAxis{Range: widen(lo, hi)},
		Bars:       bars,
	}
	if err := bc.Render(opts.Format.provider(), w); err != nil {
		return errors.Wrapf(err, "failed to render %s", title)
	}
	return nil
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	bw := width / (n * 2)
	if bw > 60 {
		bw = 60
	}
	if bw < 5 {
		bw = 5
	}
	return bw
}
