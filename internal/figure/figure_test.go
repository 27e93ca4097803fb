package figure

import (
	"encoding/json"
	"testing"

	"heartdash/domain/heart"
	"heartdash/internal/filter"
	"heartdash/internal/frame"
	"heartdash/internal/testkit"
	"heartdash/internal/trend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func year(v int) *int { return &v }

func TestMapTitle(t *testing.T) {
	assert.Equal(t, "Death Rate for 2000", MapTitle(year(2000), heart.MetricDeathRate))
	assert.Equal(t, "", MapTitle(nil, heart.MetricDeathRate))
	assert.Equal(t, "", MapTitle(year(2000), ""))
}

func TestChoropleth(t *testing.T) {
	data := filter.Choropleth(filter.ByYear(testkit.SampleFrame(), year(2000)), heart.MetricDeathRate, "all")
	fig := Choropleth(data)
	require.Len(t, fig.Data, 1)

	tr := fig.Data[0]
	assert.Equal(t, "choropleth", tr["type"])
	assert.Equal(t, "ISO-3", tr["locationmode"])
	assert.Equal(t, true, tr["reversescale"])
	assert.Contains(t, tr["hovertemplate"], "death_rate: %{z:,.2f}")
	assert.Equal(t, data.Quantile("death_rate", 0.1), tr["zmin"])
	assert.Less(t, tr["zmin"].(float64), tr["zmax"].(float64))

	_, err := json.Marshal(fig)
	require.NoError(t, err)

	assert.True(t, Choropleth(frame.Empty()).IsEmpty())
}

func TestScatterSplitsByHue(t *testing.T) {
	y2000 := filter.ByYear(testkit.SampleFrame(), year(2000))
	fig := Scatter(y2000, heart.ColObesity, "death_rate", heart.ColIncome, heart.ColPopulation)
	names := []string{}
	for _, tr := range fig.Data {
		names = append(names, tr["name"].(string))
	}
	assert.Equal(t, []string{"High income", "Lower middle income", "Low income", "Upper middle income"}, names)

	plain := Scatter(y2000, heart.ColGDP, heart.ColDeathStd, "", "")
	require.Len(t, plain.Data, 1)
	assert.Len(t, plain.Data[0]["x"], len(testkit.Countries))
}

func TestBarTakesTopN(t *testing.T) {
	y2000 := filter.ByYear(testkit.SampleFrame(), year(2000))
	fig := Bar(y2000, "death_rate", 3)
	assert.Equal(t, "Top 3 Countries by death_rate", fig.Title())
	assert.Equal(t, []any{"Ukraine", "Fiji", "Chad"}, fig.Data[0]["x"])
}

func TestLineDefaultsToFirstFiveEntities(t *testing.T) {
	f := testkit.SampleFrame()
	fig := Line(f, heart.ColPopulation, nil)
	require.Len(t, fig.Data, DefaultLineCountries)
	assert.Equal(t, "France", fig.Data[0]["name"])
	assert.Len(t, fig.Data[0]["x"], 32)

	fig = Line(f, heart.ColPopulation, []string{"Peru", "Atlantis"})
	require.Len(t, fig.Data, 1)
}

func TestSankeyTiers(t *testing.T) {
	assert.Equal(t, "Low", Tier(1, 2, 3))
	assert.Equal(t, "Medium", Tier(3, 2, 3))
	assert.Equal(t, "High", Tier(4, 2, 3))

	y2000 := filter.ByYear(testkit.SampleFrame(), year(2000))
	fig := Sankey(y2000, "death_rate")
	require.Len(t, fig.Data, 1)
	node := fig.Data[0]["node"].(map[string]any)
	labels := node["label"].([]string)
	assert.Equal(t, []string{
		"Europe", "Africa", "South America", "North America", "Asia", "Oceania",
		"High income", "Lower middle income", "Low income", "Upper middle income",
		"Low", "Medium", "High",
	}, labels)

	link := fig.Data[0]["link"].(map[string]any)
	total := 0.0
	for i, v := range link["value"].([]any) {
		if link["source"].([]int)[i] < 6 {
			total += v.(float64)
		}
	}
	expected := 0.0
	for _, v := range y2000.DropNA(heart.ColRegion).Numbers("death_rate") {
		expected += v
	}
	assert.InDelta(t, expected, total, 1e-6)
}

func TestTrendFigure(t *testing.T) {
	a, err := trend.Analyze(testkit.SampleFrame(), "death_rate", "", trend.DefaultOptions())
	require.NoError(t, err)
	fig := Trend(a, heart.MetricDeathRate)
	assert.Equal(t, "Trend Analysis: Death Rate", fig.Title())
	require.Len(t, fig.Data, 4)
	assert.Equal(t, "toself", fig.Data[2]["fill"])
	assert.Equal(t, "dash", fig.Data[3]["line"].(map[string]any)["dash"])

	assert.True(t, Trend(nil, "x").IsEmpty())
}

func TestTimeSeriesHighlightsYear(t *testing.T) {
	rows := testkit.SampleFrame().Filter(func(r frame.Row) bool { return r.Text(heart.ColCode) == "FRA" })
	fig := TimeSeries(rows, "death_rate", "France", heart.MetricDeathRate, 2005)
	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Selected Year", fig.Data[1]["name"])

	fig = TimeSeries(rows, "death_rate", "France", heart.MetricDeathRate, 1950)
	assert.Len(t, fig.Data, 1)
}

func TestInsightsAllBuildAndEncode(t *testing.T) {
	f := testkit.SampleFrame()
	for _, name := range InsightNames() {
		fig, err := Insight(name, f)
		require.NoError(t, err, name)
		assert.False(t, fig.IsEmpty(), name)
		assert.NotEmpty(t, fig.Title(), name)
		_, err = json.Marshal(fig)
		require.NoError(t, err, name)
	}

	_, err := Insight("nope", f)
	assert.Error(t, err)
}

func TestRegionDeathBarIsSortedDescending(t *testing.T) {
	fig := RegionDeathBar(testkit.SampleFrame())
	ys := fig.Data[0]["y"].([]any)
	for i := 1; i < len(ys); i++ {
		assert.GreaterOrEqual(t, ys[i-1].(float64), ys[i].(float64))
	}
}
