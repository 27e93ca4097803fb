package figure

import (
	"fmt"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
)

// Tier names of the metric split used by Sankey
var Tiers = []string{"Low", "Medium", "High"}

// Tier places v into Low, Medium or High using the 1/3 and 2/3 quantiles
func Tier(v, q1, q2 float64) string {
	switch {
	case v <= q1:
		return Tiers[0]
	case v <= q2:
		return Tiers[1]
	default:
		return Tiers[2]
	}
}

// Sankey shows how the summed metric flows from region to income group to
// metric tier
func Sankey(f *frame.Frame, col string) *Figure {
	fig := New(fmt.Sprintf("Region to Income to %s Tier", col)).Set(Layout{
		"margin": compactMargins(40),
		"font":   map[string]any{"size": 10},
	})
	rows := f.DropNA(heart.ColRegion, heart.ColIncome, col)
	if rows.IsEmpty() {
		return fig
	}

	q1 := rows.Quantile(col, 1.0/3.0)
	q2 := rows.Quantile(col, 2.0/3.0)

	var labels []string
	index := map[string]int{}
	node := func(kind, label string) int {
		key := kind + "\x00" + label
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(labels)
		labels = append(labels, label)
		return len(labels) - 1
	}
	for _, r := range rows.Unique(heart.ColRegion) {
		node("region", r)
	}
	for _, inc := range rows.Unique(heart.ColIncome) {
		node("income", inc)
	}
	for _, t := range Tiers {
		node("tier", t)
	}

	type link struct{ source, target int }
	sums := map[link]float64{}
	var order []link
	add := func(l link, v float64) {
		if _, ok := sums[l]; !ok {
			order = append(order, l)
		}
		sums[l] += v
	}
	for i := 0; i < rows.Len(); i++ {
		r := rows.Row(i)
		v := r.Num(col)
		region := node("region", r.Text(heart.ColRegion))
		income := node("income", r.Text(heart.ColIncome))
		tier := node("tier", Tier(v, q1, q2))
		add(link{region, income}, v)
		add(link{income, tier}, v)
	}

	sources := make([]int, len(order))
	targets := make([]int, len(order))
	values := make([]float64, len(order))
	for i, l := range order {
		sources[i], targets[i], values[i] = l.source, l.target, sums[l]
	}
	return fig.Add(Trace{
		"type": "sankey",
		"node": map[string]any{
			"label":     labels,
			"pad":       15,
			"thickness": 20,
		},
		"link": map[string]any{
			"source": sources,
			"target": targets,
			"value":  nums(values),
		},
		"customdata": []string{formatTier(q1), formatTier(q2)},
	})
}
