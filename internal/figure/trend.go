package figure

import (
	"heartdash/internal/trend"
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Trend draws each series as observed markers, the LOWESS line and a dashed
// projection segment inside its 95% band
func Trend(a *trend.Analysis, metric string) *Figure {
	fig := New("Trend Analysis: " + metric).Set(transparent).Set(Layout{
		"margin":    compactMargins(40),
		"xaxis":     axis("Year"),
		"yaxis":     axis(metric),
		"hovermode": "x unified",
	})
	if a == nil {
		return fig
	}
	for i, s := range a.Series {
		color := palette[i%len(palette)]
		ox, oy := split(s.Observed)
		sx, sy := split(s.Smoothed)
		fig.Add(Trace{
			"type":        "scatter",
			"mode":        "markers",
			"name":        s.Name,
			"legendgroup": s.Name,
			"x":           nums(ox),
			"y":           nums(oy),
			"marker":      map[string]any{"color": color, "size": 5, "opacity": 0.5},
		})
		fig.Add(Trace{
			"type":        "scatter",
			"mode":        "lines",
			"name":        s.Name + " (LOWESS)",
			"legendgroup": s.Name,
			"x":           nums(sx),
			"y":           nums(sy),
			"line":        map[string]any{"color": color, "width": 2},
		})
		p := s.Projection
		if p == nil {
			continue
		}
		fig.Add(Trace{
			"type":        "scatter",
			"mode":        "lines",
			"name":        s.Name + " (band)",
			"legendgroup": s.Name,
			"showlegend":  false,
			"x":           []float64{p.FromX, p.Year, p.Year, p.FromX},
			"y":           nums([]float64{p.FromY, p.Upper(), p.Lower(), p.FromY}),
			"fill":        "toself",
			"fillcolor":   color,
			"opacity":     0.15,
			"line":        map[string]any{"width": 0},
			"hoverinfo":   "skip",
		})
		fig.Add(Trace{
			"type":        "scatter",
			"mode":        "lines+markers",
			"name":        s.Name + " (projection)",
			"legendgroup": s.Name,
			"x":           []float64{p.FromX, p.Year},
			"y":           nums([]float64{p.FromY, p.Value}),
			"line":        map[string]any{"color": color, "dash": "dash"},
		})
	}
	return fig
}

func split(points []trend.Point) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
