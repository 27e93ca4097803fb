// Package filter reduces the heart disease dataset according to the
// dashboard selectors. The package-level functions are pure; Service adds
// memoisation over a swappable dataset.
package filter

import (
	"heartdash/domain/heart"
	"heartdash/internal"
	"heartdash/internal/frame"
)

var logger = internal.DefaultLogger.Component("Filter")

// ChoroplethColumns are the identifying columns kept next to the metric
var ChoroplethColumns = []string{heart.ColEntity, heart.ColYear, heart.ColCode}

// GeoEcoColumns follow the metric column in GeoEco results
var GeoEcoColumns = []string{heart.ColGDP, heart.ColIncome, heart.ColPopulation, heart.ColRegion}

// ByYear keeps the rows of one year. A nil year yields an empty frame.
func ByYear(f *frame.Frame, year *int) *frame.Frame {
	if year == nil {
		logger.Debug("No year selected")
		return frame.Empty()
	}
	y := float64(*year)
	out := f.Filter(func(r frame.Row) bool { return r.Num(heart.ColYear) == y })
	logger.Debug("Year filtered data shape: (%d, %d)", out.Len(), len(out.Columns()))
	return out
}

// ByRegionIncome keeps rows whose region and income group match the
// selector values. "all" or "" matches everything.
func ByRegionIncome(f *frame.Frame, region, income string) *frame.Frame {
	return f.Filter(func(r frame.Row) bool {
		return heart.MatchRegion(region, r.Text(heart.ColRegion)) &&
			heart.MatchIncome(income, r.Text(heart.ColIncome))
	})
}

// ByCountries keeps the rows of the named entities. No names keeps every row.
func ByCountries(f *frame.Frame, countries []string) *frame.Frame {
	if len(countries) == 0 {
		return f
	}
	set := make(map[string]bool, len(countries))
	for _, c := range countries {
		set[c] = true
	}
	return f.Filter(func(r frame.Row) bool { return set[r.Text(heart.ColEntity)] })
}

// Choropleth projects a year frame onto Entity, Year, Code and the metric
// column for the gender, dropping rows without a value.
func Choropleth(yearFrame *frame.Frame, metric, gender string) *frame.Frame {
	if yearFrame.IsEmpty() || metric == "" || gender == "" {
		logger.Debug("Missing required data")
		return frame.Empty()
	}
	col, ok := heart.MetricColumn(gender, metric)
	logger.Debug("Looking for column: %s", col)
	if !ok || !yearFrame.HasColumn(col) {
		logger.Warn("Column not found or invalid: %q", col)
		return frame.Empty()
	}
	cols := append(append([]string{}, ChoroplethColumns...), col)
	out := yearFrame.Select(cols...).DropNA(col)
	logger.Debug("Final data shape: (%d, %d)", out.Len(), len(out.Columns()))
	return out
}

// GeoEco applies the region, income and top-N selectors to a year frame and
// projects the result onto the geo-economic columns. The top-N cut ranks by
// the metric column; without a resolvable metric the frame is returned
// unprojected.
func GeoEco(yearFrame *frame.Frame, sel heart.Selection) *frame.Frame {
	col, ok := sel.Column()
	if !ok {
		return yearFrame
	}
	df := ByRegionIncome(yearFrame, sel.Region, sel.Income)
	if sel.TopN > 0 {
		df = df.NLargest(sel.TopN, col)
	}
	cols := append(append([]string{}, ChoroplethColumns...), col)
	cols = append(cols, GeoEcoColumns...)
	return df.Select(cols...).DropNA(col)
}

// TopEntities returns the explicitly selected countries, or else the
// entities of the n largest values of col
func TopEntities(f *frame.Frame, col string, n int, countries []string) []string {
	if len(countries) > 0 {
		return countries
	}
	return f.NLargest(n, col).Texts(heart.ColEntity)
}

// HealthcareProjection keeps the care-capacity indicators and the metric column
func HealthcareProjection(f *frame.Frame, col string) *frame.Frame {
	cols := []string{heart.ColEntity, heart.ColCode, heart.ColIncome}
	cols = append(cols, heart.HealthcareColumns...)
	return f.Select(append(cols, col)...)
}

// Validate rejects out-of-range slider values and unknown metrics
func Validate(sel heart.Selection) error {
	return sel.Validate()
}
