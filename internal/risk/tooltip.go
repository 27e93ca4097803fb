package risk

import (
	"strconv"

	"heartdash/domain/heart"
	"heartdash/internal/figure"
	"heartdash/internal/frame"
)

// Factor is one labelled line of the tooltip
type Factor struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Tooltip is the hover card of one country
type Tooltip struct {
	Entity    string         `json:"entity"`
	YearLabel string         `json:"year_label"`
	Estimated bool           `json:"estimated"`
	Factors   []Factor       `json:"factors"`
	Figure    *figure.Figure `json:"figure"`
}

// Empty reports whether the tooltip has nothing to show
func (t *Tooltip) Empty() bool {
	return t == nil || t.Figure == nil
}

// BuildTooltip assembles the hover card for the country with the given ISO
// code. Unknown metrics or codes give an empty tooltip. When year is not in
// the data the latest year is used.
func BuildTooltip(data *frame.Frame, code, metric, gender string, year *int) *Tooltip {
	col, ok := heart.MetricColumn(gender, metric)
	if !ok || code == "" {
		return &Tooltip{}
	}
	rows := data.Filter(func(r frame.Row) bool {
		return r.Text(heart.ColCode) == code && r.Num(heart.ColYear) >= heart.TooltipStartYear
	}).SortBy(heart.ColYear, false)
	if rows.IsEmpty() {
		return &Tooltip{}
	}

	selected := 0
	if year != nil && rowForYear(rows, *year) >= 0 {
		selected = *year
	}

	var values Values
	var estimated bool
	label := "Latest Year"
	if selected != 0 {
		values, estimated = EstimateRiskFactors(rows, selected)
		label = strconv.Itoa(selected)
	} else {
		lastYear := int(rows.Row(rows.Len() - 1).Num(heart.ColYear))
		values, estimated = EstimateRiskFactors(rows, lastYear)
	}
	if estimated {
		label += " (values estimated)"
	}

	entity := rows.Row(0).Text(heart.ColEntity)
	return &Tooltip{
		Entity:    entity,
		YearLabel: label,
		Estimated: estimated,
		Factors: []Factor{
			{"Obesity Rate", FormatValue(values.Get(heart.ColObesity), true, false)},
			{"Hypertension Prevalence", FormatValue(values.Get(heart.ColHypertension), true, estimated)},
			{"High Blood Pressure", FormatValue(values.Get(heart.ColHighBP), true, estimated)},
			{"Hypertension Control", FormatValue(values.Get(heart.ColHTNControl), true, estimated)},
			{"GDP per Capita", FormatValue(values.Get(heart.ColGDP), false, false)},
		},
		Figure: figure.TimeSeries(rows, col, entity, metric, selected),
	}
}
