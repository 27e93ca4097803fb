package filter

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
	"heartdash/internal/telemetry"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// CacheOptions sizes the memo cache. MaxCost counts cached frames.
type CacheOptions struct {
	TTL     time.Duration
	MaxCost int64
}

// Service serves filtered views of the current dataset. Results of
// FilterData and Trend are memoised per dataset version; concurrent misses
// for the same key share one computation.
type Service struct {
	current atomic.Pointer[Dataset]
	cache   *ristretto.Cache[string, *frame.Frame]
	group   singleflight.Group
	ttl     time.Duration
}

// NewService creates a filter service over an initial dataset
func NewService(ds *Dataset, opts CacheOptions) (*Service, error) {
	if ds == nil || ds.Frame == nil {
		return nil, errors.NoData("filter service needs a dataset")
	}
	if opts.MaxCost <= 0 {
		opts.MaxCost = 256
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *frame.Frame]{
		NumCounters:        opts.MaxCost * 10,
		MaxCost:            opts.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter cache")
	}

	s := &Service{cache: cache, ttl: opts.TTL}
	s.current.Store(ds)
	telemetry.DatasetRows.Set(float64(ds.Frame.Len()))
	return s, nil
}

// Dataset returns the current snapshot
func (s *Service) Dataset() *Dataset {
	return s.current.Load()
}

// Swap replaces the dataset and drops every memoised result
func (s *Service) Swap(ds *Dataset) {
	s.current.Store(ds)
	s.cache.Clear()
	telemetry.DatasetRows.Set(float64(ds.Frame.Len()))
	logger.Info("Dataset swapped to version %d (%d rows)", ds.Version, ds.Frame.Len())
}

// Close releases the cache
func (s *Service) Close() {
	s.cache.Close()
}

// Year filters the current dataset by year
func (s *Service) Year(year *int) *frame.Frame {
	return ByYear(s.Dataset().Frame, year)
}

// FilterData filters the current dataset by year, region and income
func (s *Service) FilterData(year *int, region, income string) *frame.Frame {
	ds := s.Dataset()
	key := fmt.Sprintf("filter|v%d|%s|%s|%s", ds.Version, yearKey(year), heart.Slug(region), heart.IncomeSlug(income))
	return s.memo(key, func() *frame.Frame {
		return ByRegionIncome(ByYear(ds.Frame, year), region, income)
	})
}

// Choropleth returns the map data for a selection
func (s *Service) Choropleth(sel heart.Selection) *frame.Frame {
	return Choropleth(s.Year(sel.Year), sel.Metric, sel.Gender)
}

// GeoEco returns the geo-economic data for a selection
func (s *Service) GeoEco(sel heart.Selection) (*frame.Frame, error) {
	if err := Validate(sel); err != nil {
		return nil, err
	}
	return GeoEco(s.Year(sel.Year), sel), nil
}

// Healthcare returns the filtered healthcare indicators together with the
// resolved metric column
func (s *Service) Healthcare(sel heart.Selection) (*frame.Frame, string, error) {
	if err := Validate(sel); err != nil {
		return nil, "", err
	}
	col, ok := sel.Column()
	if !ok {
		return nil, "", errors.UnknownMetric(sel.Metric)
	}
	return HealthcareProjection(s.FilterData(sel.Year, sel.Region, sel.Income), col), col, nil
}

// Trend returns the full time series for the selected countries, region and
// income, regardless of the selected year
func (s *Service) Trend(sel heart.Selection) (*frame.Frame, error) {
	if err := Validate(sel); err != nil {
		return nil, err
	}
	ds := s.Dataset()
	countries := append([]string(nil), sel.Countries...)
	key := fmt.Sprintf("trend|v%d|%s|%s|%s", ds.Version, heart.Slug(sel.Region), heart.IncomeSlug(sel.Income), strings.Join(countries, ","))
	return s.memo(key, func() *frame.Frame {
		return ByCountries(ByRegionIncome(ds.Frame, sel.Region, sel.Income), countries)
	}), nil
}

func (s *Service) memo(key string, compute func() *frame.Frame) *frame.Frame {
	if f, ok := s.cache.Get(key); ok {
		telemetry.RecordCache(true)
		return f
	}
	telemetry.RecordCache(false)

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		f := compute()
		s.cache.SetWithTTL(key, f, 1, s.ttl)
		logger.Debug("cached %s (%d rows)", key, f.Len())
		return f, nil
	})
	return v.(*frame.Frame)
}

func yearKey(year *int) string {
	if year == nil {
		return "none"
	}
	return strconv.Itoa(*year)
}
