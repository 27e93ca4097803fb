package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Frame {
	return FromRows(
		[]string{"Entity", "Year", "region", "deaths", "note"},
		[][]string{
			{"France", "2000", "Europe", "120", "a"},
			{"Chad", "2000", "Africa", "", "b"},
			{"Peru", "2000", "South America", "80", "NA"},
			{"Spain", "2001", "Europe", "120", "c"},
			{"Kenya", "2001", "Africa", "200"},
		},
	)
}

func TestFromRowsInfersKinds(t *testing.T) {
	f := sample()
	require.Equal(t, 5, f.Len())
	assert.Equal(t, []string{"Entity", "Year", "region", "deaths", "note"}, f.Columns())

	kind, ok := f.Kind("deaths")
	require.True(t, ok)
	assert.Equal(t, Numeric, kind)
	kind, _ = f.Kind("Entity")
	assert.Equal(t, Text, kind)

	assert.True(t, math.IsNaN(f.Row(1).Num("deaths")))
	assert.False(t, f.Row(1).Has("deaths"))
	assert.False(t, f.Row(2).Has("note"))
	assert.False(t, f.Row(4).Has("note"), "short rows are padded with missing values")
	assert.Equal(t, "2000", f.Row(0).Text("Year"))
}

func TestFilterDoesNotMutate(t *testing.T) {
	f := sample()
	europe := f.Filter(func(r Row) bool { return r.Text("region") == "Europe" })
	assert.Equal(t, 2, europe.Len())
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, []string{"France", "Spain"}, europe.Texts("Entity"))
}

func TestSelectAndDropNA(t *testing.T) {
	f := sample().Select("Entity", "deaths", "missing_column").DropNA("deaths")
	assert.Equal(t, []string{"Entity", "deaths"}, f.Columns())
	assert.Equal(t, 4, f.Len())
}

func TestNLargestKeepsTieOrderAndSkipsNaN(t *testing.T) {
	top := sample().NLargest(3, "deaths")
	assert.Equal(t, []string{"Kenya", "France", "Spain"}, top.Texts("Entity"))

	all := sample().NLargest(10, "deaths")
	assert.Equal(t, 4, all.Len())
	assert.Equal(t, 0, sample().NLargest(0, "deaths").Len())
	assert.Equal(t, 0, sample().NLargest(3, "unknown").Len())
}

func TestSortByPutsMissingLast(t *testing.T) {
	sorted := sample().SortBy("deaths", false)
	assert.Equal(t, []string{"Peru", "France", "Spain", "Kenya", "Chad"}, sorted.Texts("Entity"))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"Europe", "Africa", "South America"}, sample().Unique("region"))
	assert.Equal(t, []string{"2000", "2001"}, sample().Unique("Year"))
}

func TestGroupMean(t *testing.T) {
	g := sample().GroupMean("region", "deaths")
	assert.Equal(t, []string{"Europe", "Africa", "South America"}, g.Texts("region"))
	assert.Equal(t, []float64{120, 200, 80}, g.Numbers("deaths"))

	byYear := sample().GroupMean2("Year", "region", "deaths")
	kind, _ := byYear.Kind("Year")
	assert.Equal(t, Numeric, kind)
	assert.Equal(t, 5, byYear.Len())
}

func TestAggregateSumAndEmptyGroup(t *testing.T) {
	g := sample().Filter(func(r Row) bool { return r.Text("Entity") == "Chad" }).Aggregate([]string{"region"}, "deaths", Sum)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, 0.0, g.Numbers("deaths")[0])

	m := sample().Filter(func(r Row) bool { return r.Text("Entity") == "Chad" }).GroupMean("region", "deaths")
	assert.True(t, math.IsNaN(m.Numbers("deaths")[0]))
}

func TestCorr(t *testing.T) {
	f := FromRows([]string{"a", "b", "c"}, [][]string{
		{"1", "2", "7"},
		{"2", "4", "5"},
		{"3", "6", ""},
		{"4", "8", "1"},
	})
	m := f.Corr("a", "b", "c")
	assert.InDelta(t, 1.0, m[0][1], 1e-12)
	assert.InDelta(t, -1.0, m[0][2], 1e-12)
	assert.InDelta(t, 1.0, m[2][2], 1e-12)
}

func TestQuantileMatchesLinearInterpolation(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 3.0, Quantile(values, 0.5))
	assert.InDelta(t, 1.4, Quantile(values, 0.1), 1e-12)
	assert.InDelta(t, 4.6, Quantile(values, 0.9), 1e-12)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))

	assert.InDelta(t, 110.0, sample().Quantile("deaths", 0.25), 1e-12)
}

func TestRecordsUsesNilForMissing(t *testing.T) {
	recs := sample().Select("Entity", "deaths").Records()
	require.Len(t, recs, 5)
	assert.Equal(t, "France", recs[0]["Entity"])
	assert.Equal(t, 120.0, recs[0]["deaths"])
	assert.Nil(t, recs[1]["deaths"])
}

func TestWithColumn(t *testing.T) {
	f := sample().WithColumn("double", []float64{1, 2, 3})
	assert.Equal(t, 6, len(f.Columns()))
	assert.True(t, math.IsNaN(f.Row(4).Num("double")))
	assert.False(t, sample().HasColumn("double"))
}
