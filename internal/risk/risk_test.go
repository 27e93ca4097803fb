package risk

import (
	"math"
	"testing"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
	"heartdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countryRows(code string) *frame.Frame {
	return testkit.SampleFrame().Filter(func(r frame.Row) bool { return r.Text(heart.ColCode) == code })
}

func TestEstimateReferenceYear(t *testing.T) {
	values, estimated := EstimateRiskFactors(countryRows("FRA"), heart.ReferenceYear)
	assert.False(t, estimated)
	assert.Equal(t, 35.0, values.Get(heart.ColHypertension))
}

func TestEstimateScalesByDampenedRatio(t *testing.T) {
	rows := countryRows("FRA")
	values, estimated := EstimateRiskFactors(rows, 2000)
	require.True(t, estimated)

	ref2019 := rows.Filter(func(r frame.Row) bool { return r.Num(heart.ColYear) == 2019 }).Row(0)
	row2000 := rows.Filter(func(r frame.Row) bool { return r.Num(heart.ColYear) == 2000 }).Row(0)
	ratio := row2000.Num(heart.ColMaleDeathRate) / ref2019.Num(heart.ColMaleDeathRate)
	factor := 1 + (ratio-1)*Dampening

	for _, col := range heart.RiskFactorColumns {
		assert.InDelta(t, ref2019.Num(col)*factor, values.Get(col), 1e-9, col)
	}
	assert.Equal(t, row2000.Num(heart.ColGDP), values.Get(heart.ColGDP))
}

func TestEstimateWithoutReferenceRow(t *testing.T) {
	rows := countryRows("FRA").Filter(func(r frame.Row) bool { return r.Num(heart.ColYear) < 2010 })
	values, estimated := EstimateRiskFactors(rows, 2005)
	assert.True(t, estimated)
	assert.Equal(t, 2009.0, values.Get(heart.ColYear))
}

func TestEstimateMissingDeathRate(t *testing.T) {
	f := frame.FromRows(
		[]string{"Year", "m_death_rate", "obesity%"},
		[][]string{{"2010", "", "20"}, {"2019", "100", "25"}},
	)
	values, estimated := EstimateRiskFactors(f, 2010)
	assert.True(t, estimated)
	assert.Equal(t, 20.0, values.Get(heart.ColObesity))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "N/A", FormatValue(math.NaN(), true, true))
	assert.Equal(t, "12.3%", FormatValue(12.34, true, false))
	assert.Equal(t, "12.3% (est.)", FormatValue(12.34, true, true))
	assert.Equal(t, "$28,000", FormatValue(28000.9, false, false))
	assert.Equal(t, "$1,234,567 (est.)", FormatValue(1234567, false, true))
}

func TestBuildTooltip(t *testing.T) {
	data := testkit.SampleFrame()

	tip := BuildTooltip(data, "FRA", heart.MetricDeathRate, "F", intPtr(2005))
	require.False(t, tip.Empty())
	assert.Equal(t, "France", tip.Entity)
	assert.Equal(t, "2005 (values estimated)", tip.YearLabel)
	require.Len(t, tip.Factors, 5)
	assert.Equal(t, "Obesity Rate", tip.Factors[0].Label)
	assert.Equal(t, "GDP per Capita", tip.Factors[4].Label)
	assert.Contains(t, tip.Factors[1].Value, "(est.)")
	assert.NotContains(t, tip.Factors[0].Value, "(est.)")
	assert.Len(t, tip.Figure.Data, 2)

	tip = BuildTooltip(data, "FRA", heart.MetricDeathRate, "F", intPtr(2019))
	assert.Equal(t, "2019", tip.YearLabel)

	tip = BuildTooltip(data, "FRA", heart.MetricDeathRate, "F", intPtr(1975))
	assert.Equal(t, "Latest Year (values estimated)", tip.YearLabel)
	assert.Len(t, tip.Figure.Data, 1)

	assert.True(t, BuildTooltip(data, "XXX", heart.MetricDeathRate, "F", nil).Empty())
	assert.True(t, BuildTooltip(data, "FRA", "Unknown", "F", nil).Empty())
}

func intPtr(v int) *int { return &v }
