package heart

import (
	"net/url"
	"testing"

	"heartdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricColumn(t *testing.T) {
	cases := []struct {
		gender, metric, want string
	}{
		{"Female", MetricPrevalencePercent, "f_prev%"},
		{"F", MetricDeathRate, "f_death_rate"},
		{"Male", MetricDeath, "m_deaths"},
		{"M", MetricPrevalenceRate, "m_prev_rate"},
		{"all", MetricDeathPercent, "deaths%"},
		{"", MetricPrevalence, "prev"},
		{"Both", MetricDeath, "deaths"},
	}
	for _, tc := range cases {
		got, ok := MetricColumn(tc.gender, tc.metric)
		require.True(t, ok, tc.metric)
		assert.Equal(t, tc.want, got)
	}

	_, ok := MetricColumn("Male", "")
	assert.False(t, ok)
	_, ok = MetricColumn("Male", "Disability")
	assert.False(t, ok)
	_, ok = MetricColumn("Male", "Prevalence Index")
	assert.False(t, ok)
}

func TestSlugAndMatchers(t *testing.T) {
	assert.Equal(t, "north_america", Slug(" North America "))
	assert.Equal(t, "upper_middle_income", Slug("Upper-middle income"))

	assert.True(t, MatchRegion("north_america", "North America"))
	assert.True(t, MatchRegion("all", "Asia"))
	assert.True(t, MatchRegion("", "Asia"))
	assert.False(t, MatchRegion("europe", "Asia"))

	assert.True(t, MatchIncome("upper_middle", "Upper middle income"))
	assert.True(t, MatchIncome("high", "High income"))
	assert.False(t, MatchIncome("low", "Lower middle income"))
	assert.True(t, MatchIncome("ALL", "Low income"))
}

func TestSelectionValidate(t *testing.T) {
	sel := DefaultSelection()
	require.NoError(t, sel.Validate())

	year := 1900
	sel.Year = &year
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(sel.Validate()))

	sel = DefaultSelection()
	sel.TopN = 105
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(sel.Validate()))

	sel.TopN = 15
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(sel.Validate()), "between slider steps")
	sel.TopN = 40
	assert.NoError(t, sel.Validate())

	sel = DefaultSelection()
	sel.Metric = "Heart Size"
	assert.Equal(t, errors.CodeUnknownMetric, errors.GetCode(sel.Validate()))
}

func TestParseSelectionRoundTrip(t *testing.T) {
	q := url.Values{}
	q.Set("year", "2015")
	q.Set("region", "europe")
	q.Set("gender", "F")
	q.Set("metric", MetricPrevalence)
	q.Set("top_n", "20")
	q.Add("country", "France")
	q.Add("country", "Spain")

	sel, err := ParseSelection(q)
	require.NoError(t, err)
	assert.Equal(t, 2015, sel.YearValue())
	assert.Equal(t, "all", sel.Income)
	assert.Equal(t, []string{"France", "Spain"}, sel.Countries)

	col, ok := sel.Column()
	require.True(t, ok)
	assert.Equal(t, "f_prev", col)

	again, err := ParseSelection(sel.Values())
	require.NoError(t, err)
	assert.Equal(t, sel.Key(), again.Key())
}

func TestParseSelectionClearsYear(t *testing.T) {
	sel, err := ParseSelection(url.Values{"year": {""}})
	require.NoError(t, err)
	assert.Nil(t, sel.Year)

	_, err = ParseSelection(url.Values{"year": {"soon"}})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
