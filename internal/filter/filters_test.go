package filter

import (
	"testing"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
	"heartdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestByYear(t *testing.T) {
	f := testkit.SampleFrame()
	assert.True(t, ByYear(f, nil).IsEmpty())

	y2000 := ByYear(f, intPtr(2000))
	assert.Equal(t, len(testkit.Countries), y2000.Len())
	assert.True(t, ByYear(f, intPtr(1960)).IsEmpty())
}

func TestChoropleth(t *testing.T) {
	y2000 := ByYear(testkit.SampleFrame(), intPtr(2000))

	out := Choropleth(y2000, heart.MetricDeathRate, "F")
	assert.Equal(t, []string{"Entity", "Year", "Code", "f_death_rate"}, out.Columns())
	assert.Equal(t, y2000.Len(), out.Len())

	assert.True(t, Choropleth(y2000, "", "F").IsEmpty())
	assert.True(t, Choropleth(y2000, heart.MetricDeathRate, "").IsEmpty())
	assert.True(t, Choropleth(y2000, "Disability", "all").IsEmpty())
	assert.True(t, Choropleth(frame.Empty(), heart.MetricDeathRate, "all").IsEmpty())
}

func TestChoroplethDropsMissingMetric(t *testing.T) {
	f := frame.FromRows(
		[]string{"Entity", "Year", "Code", "deaths", "region"},
		[][]string{
			{"France", "2000", "FRA", "10", "Europe"},
			{"Chad", "2000", "TCD", "", "Africa"},
		},
	)
	out := Choropleth(f, heart.MetricDeath, "all")
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "FRA", out.Row(0).Text("Code"))
}

func TestGeoEcoAppliesRegionIncomeAndTopN(t *testing.T) {
	y2000 := ByYear(testkit.SampleFrame(), intPtr(2000))
	sel := heart.DefaultSelection()
	sel.Region = "europe"

	out := GeoEco(y2000, sel)
	assert.Equal(t, []string{"Ukraine", "Germany", "France", "Spain"}, out.Texts(heart.ColEntity))
	assert.Equal(t, []string{
		"Entity", "Year", "Code", "death_rate", "gdp_pc", "WB_Income", "Population", "region",
	}, out.Columns())

	sel.Income = "high"
	sel.TopN = 10
	out = GeoEco(y2000, sel)
	assert.Equal(t, []string{"Germany", "France", "Spain"}, out.Texts(heart.ColEntity))

	sel = heart.DefaultSelection()
	sel.TopN = 10
	assert.Equal(t, 10, GeoEco(y2000, sel).Len())
}

func TestGeoEcoWithoutMetricReturnsInput(t *testing.T) {
	y2000 := ByYear(testkit.SampleFrame(), intPtr(2000))
	sel := heart.DefaultSelection()
	sel.Metric = ""
	assert.Same(t, y2000, GeoEco(y2000, sel))
}

func TestTopEntities(t *testing.T) {
	y2000 := ByYear(testkit.SampleFrame(), intPtr(2000))
	assert.Equal(t, []string{"Ukraine", "Fiji"}, TopEntities(y2000, "death_rate", 2, nil))
	assert.Equal(t, []string{"Peru"}, TopEntities(y2000, "death_rate", 2, []string{"Peru"}))
}

func TestByRegionIncome(t *testing.T) {
	f := ByYear(testkit.SampleFrame(), intPtr(2010))
	assert.Equal(t, 3, ByRegionIncome(f, "africa", "all").Len())
	assert.Equal(t, 2, ByRegionIncome(f, "africa", "lower_middle").Len())
	assert.Equal(t, f.Len(), ByRegionIncome(f, "", "").Len())
}
