package filter

import (
	"sync"
	"testing"
	"time"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
	"heartdash/internal/telemetry"
	"heartdash/internal/testkit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewDataset(testkit.SampleFrame(), "sample"), CacheOptions{TTL: time.Minute, MaxCost: 64})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestNewServiceNeedsData(t *testing.T) {
	_, err := NewService(nil, CacheOptions{})
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestFilterDataIsMemoised(t *testing.T) {
	svc := newTestService(t)
	hits := testutil.ToFloat64(telemetry.FilterCache.WithLabelValues("hit"))

	first := svc.FilterData(intPtr(2000), "europe", "high")
	assert.Equal(t, 3, first.Len())
	svc.cache.Wait()

	second := svc.FilterData(intPtr(2000), "Europe", "High income")
	assert.Same(t, first, second)
	assert.Equal(t, hits+1, testutil.ToFloat64(telemetry.FilterCache.WithLabelValues("hit")))
}

func TestFilterDataConcurrentCallersAgree(t *testing.T) {
	svc := newTestService(t)
	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.FilterData(intPtr(2005), "asia", "all").Len()
		}(i)
	}
	wg.Wait()
	for _, n := range results {
		assert.Equal(t, 3, n)
	}
}

func TestSwapInvalidatesCache(t *testing.T) {
	svc := newTestService(t)
	before := svc.FilterData(intPtr(2000), "all", "all")
	svc.cache.Wait()

	small := testkit.SampleFrameWith(testkit.HeartGeneratorConfig{StartYear: 2000, EndYear: 2000})
	small = small.Filter(func(r frame.Row) bool { return r.Text(heart.ColRegion) == "Oceania" })
	svc.Swap(NewDataset(small, "reloaded"))

	after := svc.FilterData(intPtr(2000), "all", "all")
	assert.Equal(t, len(testkit.Countries), before.Len())
	assert.Equal(t, 2, after.Len())
	assert.Equal(t, "reloaded", svc.Dataset().Source)
}

func TestHealthcareProjection(t *testing.T) {
	svc := newTestService(t)
	sel := heart.DefaultSelection()
	sel.Gender = "M"

	f, col, err := svc.Healthcare(sel)
	require.NoError(t, err)
	assert.Equal(t, "m_death_rate", col)
	assert.Equal(t, []string{
		"Entity", "Code", "WB_Income", "obesity%", "ct_units", "pacemaker_1m", "statin_use_k", "m_death_rate",
	}, f.Columns())

	sel.Metric = "Unknown"
	_, _, err = svc.Healthcare(sel)
	assert.Equal(t, errors.CodeUnknownMetric, errors.GetCode(err))
}

func TestTrendIgnoresYear(t *testing.T) {
	svc := newTestService(t)
	sel := heart.DefaultSelection()
	sel.Countries = []string{"France", "Spain"}

	f, err := svc.Trend(sel)
	require.NoError(t, err)
	assert.Equal(t, 64, f.Len())

	sel.Countries = nil
	sel.Region = "oceania"
	f, err = svc.Trend(sel)
	require.NoError(t, err)
	assert.Equal(t, 64, f.Len())

	bad := heart.DefaultSelection()
	bad.TopN = 7
	_, err = svc.Trend(bad)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDatasetCountriesAndYears(t *testing.T) {
	ds := NewDataset(testkit.SampleFrame(), "sample")
	countries := ds.Countries()
	assert.Len(t, countries, len(testkit.Countries)-1)
	assert.NotContains(t, countries, "World")
	assert.Equal(t, "Australia", countries[0])

	first, last := ds.Years()
	assert.Equal(t, 1990, first)
	assert.Equal(t, 2021, last)
}
