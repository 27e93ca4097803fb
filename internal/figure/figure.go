// Package figure builds Plotly-compatible figures from frames. Builders are
// pure: they read frames and return new figures.
package figure

import (
	"fmt"
	"math"
	"strconv"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
)

// Trace is one Plotly trace
type Trace map[string]any

// Layout is the Plotly layout object
type Layout map[string]any

// Figure is the JSON document Plotly renders
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// New creates a figure with a title
func New(title string) *Figure {
	layout := Layout{}
	if title != "" {
		layout["title"] = map[string]any{"text": title}
	}
	return &Figure{Data: []Trace{}, Layout: layout}
}

// Empty returns a figure without traces
func Empty() *Figure {
	return New("")
}

// Add appends a trace
func (f *Figure) Add(t Trace) *Figure {
	f.Data = append(f.Data, t)
	return f
}

// IsEmpty reports whether the figure has no traces
func (f *Figure) IsEmpty() bool {
	return f == nil || len(f.Data) == 0
}

// Title returns the layout title text
func (f *Figure) Title() string {
	if t, ok := f.Layout["title"].(map[string]any); ok {
		s, _ := t["text"].(string)
		return s
	}
	return ""
}

// Set merges keys into the layout
func (f *Figure) Set(values Layout) *Figure {
	for k, v := range values {
		f.Layout[k] = v
	}
	return f
}

var transparent = Layout{
	"paper_bgcolor": "rgba(0,0,0,0)",
	"plot_bgcolor":  "rgba(0,0,0,0)",
}

func compactMargins(top int) map[string]any {
	return map[string]any{"l": 20, "r": 20, "t": top, "b": 20}
}

// nums converts values for JSON, which has no NaN
func nums(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}
	return out
}

func num(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func texts(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if v != "" {
			out[i] = v
		}
	}
	return out
}

func axis(title string) map[string]any {
	return map[string]any{"title": map[string]any{"text": title}}
}

// MapTitle labels the world map
func MapTitle(year *int, metric string) string {
	if year == nil || *year == 0 || metric == "" {
		return ""
	}
	return fmt.Sprintf("%s for %d", metric, *year)
}

// Choropleth colours countries by the metric column, which is the first
// column other than Entity, Year and Code
func Choropleth(f *frame.Frame) *Figure {
	if f.IsEmpty() {
		return Empty()
	}
	metricCol := ""
	for _, c := range f.Columns() {
		if c != heart.ColEntity && c != heart.ColYear && c != heart.ColCode {
			metricCol = c
			break
		}
	}
	if metricCol == "" {
		return Empty()
	}

	entities := f.Texts(heart.ColEntity)
	custom := make([][]any, len(entities))
	for i, e := range entities {
		custom[i] = []any{e}
	}

	fig := Empty().Add(Trace{
		"type":         "choropleth",
		"locations":    texts(f.Texts(heart.ColCode)),
		"z":            nums(f.Numbers(metricCol)),
		"locationmode": "ISO-3",
		"colorscale":   "RdYlBu",
		"reversescale": true,
		"zmin":         num(f.Quantile(metricCol, 0.1)),
		"zmax":         num(f.Quantile(metricCol, 0.9)),
		"customdata":   custom,
		"hovertemplate": "<b>%{customdata[0]}</b><br>" +
			metricCol + ": %{z:,.2f}<br><extra></extra>",
		"colorbar": map[string]any{"thickness": 15, "len": 0.7, "x": 0.95, "y": 0.5, "xanchor": "left"},
	})
	fig.Set(transparent).Set(Layout{
		"margin":     map[string]any{"l": 0, "r": 0, "t": 5, "b": 0},
		"showlegend": false,
		"hovermode":  "closest",
		"geo": map[string]any{
			"showframe":      false,
			"showcoastlines": true,
			"projection":     map[string]any{"type": "equirectangular", "scale": 1.1},
			"showland":       true,
			"landcolor":      "lightgray",
			"showocean":      true,
			"oceancolor":     "aliceblue",
		},
	})
	return fig
}

// Scatter plots y against x, one trace per hue value when hue is set and
// with marker area proportional to size when size is set. Rows missing x or
// y are skipped; hovering shows Entity and Year.
func Scatter(f *frame.Frame, x, y, hue, size string) *Figure {
	fig := New(fmt.Sprintf("%s vs %s", y, x)).Set(transparent).Set(Layout{
		"margin": compactMargins(40),
		"xaxis":  axis(x),
		"yaxis":  axis(y),
	})
	rows := f.DropNA(x, y)
	if rows.IsEmpty() {
		return fig
	}
	if hue == "" {
		return fig.Add(scatterTrace(rows, x, y, size, ""))
	}
	for _, group := range rows.Unique(hue) {
		sub := rows.Filter(func(r frame.Row) bool { return r.Text(hue) == group })
		fig.Add(scatterTrace(sub, x, y, size, group))
	}
	fig.Layout["legend"] = map[string]any{"title": map[string]any{"text": hue}}
	return fig
}

func scatterTrace(f *frame.Frame, x, y, size, name string) Trace {
	entities := f.Texts(heart.ColEntity)
	years := f.Texts(heart.ColYear)
	custom := make([][]any, f.Len())
	for i := range custom {
		var entity, year any
		if entities != nil {
			entity = entities[i]
		}
		if years != nil {
			year = years[i]
		}
		custom[i] = []any{entity, year}
	}
	t := Trace{
		"type":       "scatter",
		"mode":       "markers",
		"x":          nums(f.Numbers(x)),
		"y":          nums(f.Numbers(y)),
		"customdata": custom,
		"hovertemplate": "Entity=%{customdata[0]}<br>Year=%{customdata[1]}<br>" +
			x + "=%{x}<br>" + y + "=%{y}<extra></extra>",
	}
	if name != "" {
		t["name"] = name
	}
	if size != "" && f.HasColumn(size) {
		sizes := f.Numbers(size)
		peak := 0.0
		for _, s := range sizes {
			if !math.IsNaN(s) && s > peak {
				peak = s
			}
		}
		marker := map[string]any{"size": nums(sizes), "sizemode": "area"}
		if peak > 0 {
			marker["sizeref"] = 2 * peak / (40 * 40)
		}
		t["marker"] = marker
	}
	return t
}

// Bar shows the topN entities by col
func Bar(f *frame.Frame, col string, topN int) *Figure {
	top := f.NLargest(topN, col)
	fig := New(fmt.Sprintf("Top %d Countries by %s", topN, col)).Set(transparent).Set(Layout{
		"margin": compactMargins(40),
		"xaxis":  map[string]any{"tickangle": -45},
		"yaxis":  axis(col),
	})
	if top.IsEmpty() {
		return fig
	}
	values := nums(top.Numbers(col))
	return fig.Add(Trace{
		"type": "bar",
		"x":    texts(top.Texts(heart.ColEntity)),
		"y":    values,
		"marker": map[string]any{
			"color":      values,
			"colorscale": "Reds",
			"showscale":  true,
		},
	})
}

// DefaultLineCountries is how many entities Line shows without a selection
const DefaultLineCountries = 5

// Line draws col over Year for each country. Without countries the first
// five entities of the frame are used.
func Line(f *frame.Frame, col string, countries []string) *Figure {
	if len(countries) == 0 {
		countries = f.Unique(heart.ColEntity)
		if len(countries) > DefaultLineCountries {
			countries = countries[:DefaultLineCountries]
		}
	}
	fig := New(fmt.Sprintf("%s Over Time by Country", col)).Set(transparent).Set(Layout{
		"margin": compactMargins(40),
		"legend": map[string]any{"orientation": "h", "yanchor": "bottom", "y": 1.02, "xanchor": "right", "x": 1},
		"xaxis":  axis(heart.ColYear),
		"yaxis":  axis(col),
	})
	for _, country := range countries {
		rows := f.Filter(func(r frame.Row) bool { return r.Text(heart.ColEntity) == country }).
			DropNA(col).SortBy(heart.ColYear, false)
		if rows.IsEmpty() {
			continue
		}
		fig.Add(Trace{
			"type": "scatter",
			"mode": "lines",
			"name": country,
			"x":    nums(rows.Numbers(heart.ColYear)),
			"y":    nums(rows.Numbers(col)),
		})
	}
	return fig
}

// TimeSeries is the small tooltip chart of one country, with the selected
// year highlighted when it is non-zero and present
func TimeSeries(rows *frame.Frame, col, entity, metric string, selected int) *Figure {
	grid := map[string]any{"showgrid": true, "gridwidth": 1, "gridcolor": "lightgray", "title": nil}
	xaxis := map[string]any{"dtick": 5}
	for k, v := range grid {
		xaxis[k] = v
	}
	fig := Empty().Set(Layout{
		"margin":        map[string]any{"l": 5, "r": 5, "t": 25, "b": 5},
		"title":         map[string]any{"text": entity + "<br>" + metric, "x": 0.5, "xanchor": "center", "font": map[string]any{"size": 10}},
		"showlegend":    false,
		"paper_bgcolor": "white",
		"plot_bgcolor":  "white",
		"xaxis":         xaxis,
		"yaxis":         grid,
	})
	fig.Add(Trace{
		"type":   "scatter",
		"mode":   "lines+markers",
		"name":   metric,
		"x":      nums(rows.Numbers(heart.ColYear)),
		"y":      nums(rows.Numbers(col)),
		"line":   map[string]any{"width": 2},
		"marker": map[string]any{"size": 6},
	})
	if selected == 0 {
		return fig
	}
	years := rows.Numbers(heart.ColYear)
	values := rows.Numbers(col)
	for i, y := range years {
		if y != float64(selected) {
			continue
		}
		fig.Add(Trace{
			"type":       "scatter",
			"mode":       "markers",
			"name":       "Selected Year",
			"x":          []any{selected},
			"y":          nums(values[i : i+1]),
			"marker":     map[string]any{"color": "red", "size": 10, "symbol": "diamond"},
			"showlegend": false,
		})
		break
	}
	return fig
}

func formatTier(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
