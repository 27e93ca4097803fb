// Package risk estimates per-country risk factors for a year and builds the
// hover tooltip of the world map.
package risk

import (
	"fmt"
	"math"

	"heartdash/domain/heart"
	"heartdash/internal/frame"

	"github.com/dustin/go-humanize"
)

// Dampening scales how strongly the death rate ratio moves risk factors
const Dampening = 0.7

// Values are the numeric cells of one country-year
type Values map[string]float64

// Get returns a value, NaN when absent
func (v Values) Get(col string) float64 {
	if x, ok := v[col]; ok {
		return x
	}
	return math.NaN()
}

func rowValues(f *frame.Frame, i int) Values {
	out := make(Values)
	row := f.Row(i)
	for _, col := range f.Columns() {
		if kind, _ := f.Kind(col); kind == frame.Numeric {
			out[col] = row.Num(col)
		}
	}
	return out
}

func rowForYear(f *frame.Frame, year int) int {
	years := f.Numbers(heart.ColYear)
	for i, y := range years {
		if y == float64(year) {
			return i
		}
	}
	return -1
}

// EstimateRiskFactors returns the risk factor values of one country for
// targetYear. Surveys exist only for the reference year, so other years are
// scaled from it by the dampened ratio of the male death rates. The flag
// reports whether the values are estimates.
func EstimateRiskFactors(rows *frame.Frame, targetYear int) (Values, bool) {
	if rows.IsEmpty() {
		return Values{}, true
	}
	last := rows.Len() - 1
	ref := rowForYear(rows, heart.ReferenceYear)

	if targetYear == heart.ReferenceYear && ref >= 0 {
		return rowValues(rows, ref), false
	}
	if ref < 0 {
		return rowValues(rows, last), true
	}

	target := rowForYear(rows, targetYear)
	if target < 0 {
		target = last
	}
	refValues := rowValues(rows, ref)
	out := rowValues(rows, target)

	refRate := refValues.Get(heart.ColMaleDeathRate)
	targetRate := out.Get(heart.ColMaleDeathRate)
	if math.IsNaN(refRate) || math.IsNaN(targetRate) || refRate == 0 {
		return out, true
	}

	ratio := targetRate / refRate
	for _, col := range heart.RiskFactorColumns {
		refValue := refValues.Get(col)
		if math.IsNaN(refValue) {
			continue
		}
		out[col] = refValue * (1 + (ratio-1)*Dampening)
	}
	return out, true
}

// FormatValue renders a tooltip value as a percentage or as dollars
func FormatValue(v float64, percent, estimate bool) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	var s string
	if percent {
		s = fmt.Sprintf("%.1f%%", v)
	} else {
		s = "$" + humanize.Comma(int64(v))
	}
	if estimate {
		s += " (est.)"
	}
	return s
}
