// Package dashboard assembles the figures of each dashboard tab from a
// selection and wires them into a reactive registry.
package dashboard

import (
	"context"

	"heartdash/domain/heart"
	"heartdash/internal"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/filter"
	"heartdash/internal/frame"
	"heartdash/internal/risk"
	"heartdash/internal/trend"

	"golang.org/x/sync/errgroup"
)

var logger = internal.DefaultLogger.Component("Dashboard")

// Dashboard builds tab content on top of a filter service
type Dashboard struct {
	svc   *filter.Service
	trend trend.Options
}

// New creates a dashboard over svc
func New(svc *filter.Service, opts trend.Options) *Dashboard {
	return &Dashboard{svc: svc, trend: opts}
}

// Service exposes the underlying filter service
func (d *Dashboard) Service() *filter.Service {
	return d.svc
}

// MapView is the World Map tab
type MapView struct {
	Title  string         `json:"title"`
	Figure *figure.Figure `json:"figure"`
}

// Map builds the choropleth for a selection
func (d *Dashboard) Map(sel heart.Selection) (*MapView, error) {
	if err := filter.Validate(sel); err != nil {
		return nil, err
	}
	return &MapView{
		Title:  figure.MapTitle(sel.Year, sel.Metric),
		Figure: figure.Choropleth(d.svc.Choropleth(sel)),
	}, nil
}

// Tooltip builds the hover card for the country with the given ISO code
func (d *Dashboard) Tooltip(code string, sel heart.Selection) *risk.Tooltip {
	return risk.BuildTooltip(d.svc.Dataset().Frame, code, sel.Metric, sel.Gender, sel.Year)
}

// GeoEcoPanels is the 2x2 grid of the Geo-Eco Features tab
type GeoEcoPanels struct {
	GDP        *figure.Figure `json:"gdp"`
	Population *figure.Figure `json:"population"`
	Metric     *figure.Figure `json:"metric"`
	Gender     *figure.Figure `json:"gender"`
}

// GeoEco builds the four geo-economic panels concurrently
func (d *Dashboard) GeoEco(ctx context.Context, sel heart.Selection) (*GeoEcoPanels, error) {
	df, err := d.svc.GeoEco(sel)
	if err != nil {
		return nil, err
	}
	if sel.Metric == "" {
		return &GeoEcoPanels{GDP: figure.Empty(), Population: figure.Empty(), Metric: figure.Empty(), Gender: figure.Empty()}, nil
	}
	col, _ := sel.Column()
	// the scatters share the bar's region and income filter but not its top N
	filtered := d.svc.FilterData(sel.Year, sel.Region, sel.Income)
	topN := sel.TopN
	if topN <= 0 {
		topN = heart.DefaultTopN
	}

	out := &GeoEcoPanels{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.GDP = figure.Scatter(filtered, heart.ColGDP, heart.ColDeathStd, heart.ColRegion, "")
		return nil
	})
	g.Go(func() error {
		// population is plotted over time, so it reads the full series
		series, err := d.svc.Trend(heart.Selection{Region: sel.Region, Income: sel.Income})
		if err != nil {
			return err
		}
		entities := filter.TopEntities(df, col, figure.DefaultLineCountries, sel.Countries)
		out.Population = figure.Line(series, heart.ColPopulation, entities)
		return nil
	})
	g.Go(func() error {
		out.Metric = figure.Bar(df, col, topN)
		return nil
	})
	g.Go(func() error {
		out.Gender = figure.Scatter(filtered, heart.ColFemaleDeaths, heart.ColMaleDeaths, heart.ColRegion, "")
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("geo-eco panels built for %s", sel.Key())
	return out, nil
}

// HealthcarePanels is the Healthcare Features tab
type HealthcarePanels struct {
	Scatters []*figure.Figure `json:"scatters"`
	Sankey   *figure.Figure   `json:"sankey"`
}

// Healthcare plots each care-capacity indicator against the metric and adds
// the region to income to tier flow
func (d *Dashboard) Healthcare(ctx context.Context, sel heart.Selection) (*HealthcarePanels, error) {
	if sel.Metric == "" {
		if err := filter.Validate(sel); err != nil {
			return nil, err
		}
		return &HealthcarePanels{Sankey: figure.Empty()}, nil
	}
	df, col, err := d.svc.Healthcare(sel)
	if err != nil {
		return nil, err
	}
	indicators := []string{heart.ColObesity, heart.ColCTUnits, heart.ColPacemaker}
	out := &HealthcarePanels{Scatters: make([]*figure.Figure, len(indicators))}

	g, _ := errgroup.WithContext(ctx)
	for i, ind := range indicators {
		g.Go(func() error {
			out.Scatters[i] = figure.Scatter(df, ind, col, heart.ColIncome, "")
			return nil
		})
	}
	g.Go(func() error {
		withRegion := d.svc.FilterData(sel.Year, sel.Region, sel.Income)
		out.Sankey = figure.Sankey(withRegion, col)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TrendView is the Trends tab
type TrendView struct {
	Figure   *figure.Figure  `json:"figure"`
	Analysis *trend.Analysis `json:"analysis"`
}

// Trends smooths and projects the metric. Selected countries are plotted
// individually, otherwise one series per region.
func (d *Dashboard) Trends(sel heart.Selection) (*TrendView, error) {
	a, err := d.Analysis(sel)
	if err != nil {
		return nil, err
	}
	return &TrendView{Figure: figure.Trend(a, sel.Metric), Analysis: a}, nil
}

// Analysis runs the trend analysis for a selection
func (d *Dashboard) Analysis(sel heart.Selection) (*trend.Analysis, error) {
	col, ok := sel.Column()
	if !ok {
		return nil, errors.UnknownMetric(sel.Metric)
	}
	df, err := d.svc.Trend(sel)
	if err != nil {
		return nil, err
	}
	if df.IsEmpty() {
		return nil, errors.NoData("no rows match the selection")
	}
	return trend.Analyze(df, col, TrendGroup(sel), d.trend)
}

// TrendGroup is Entity when countries are selected and region otherwise
func TrendGroup(sel heart.Selection) string {
	if len(sel.Countries) > 0 {
		return heart.ColEntity
	}
	return heart.ColRegion
}

// Insight builds a named insight over the whole dataset
func (d *Dashboard) Insight(name string) (*figure.Figure, error) {
	return figure.Insight(name, d.svc.Dataset().Frame)
}

// Export returns the filtered rows behind the selection's tables
func (d *Dashboard) Export(sel heart.Selection) (*frame.Frame, error) {
	if err := filter.Validate(sel); err != nil {
		return nil, err
	}
	df := d.svc.FilterData(sel.Year, sel.Region, sel.Income)
	return filter.ByCountries(df, sel.Countries), nil
}
