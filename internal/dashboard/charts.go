package dashboard

import (
	"fmt"
	"io"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/figure"
	"heartdash/internal/filter"
	"heartdash/internal/render"
)

// ChartNames are the server-rendered charts, in report order
var ChartNames = []string{"gdp", "metric", "population", "trend"}

// RenderChart draws one named chart for a selection as an image
func (d *Dashboard) RenderChart(w io.Writer, name string, sel heart.Selection, opts render.Options) error {
	if err := filter.Validate(sel); err != nil {
		return err
	}
	col, ok := sel.Column()
	if !ok {
		return errors.UnknownMetric(sel.Metric)
	}

	switch name {
	case "gdp":
		df := d.svc.FilterData(sel.Year, sel.Region, sel.Income)
		return render.Scatter(w, df, heart.ColGDP, heart.ColDeathStd, heart.ColRegion, opts)
	case "metric":
		df, err := d.svc.GeoEco(sel)
		if err != nil {
			return err
		}
		topN := sel.TopN
		if topN <= 0 {
			topN = heart.DefaultTopN
		}
		return render.Bar(w, df, col, topN, opts)
	case "population":
		df, err := d.svc.GeoEco(sel)
		if err != nil {
			return err
		}
		series, err := d.svc.Trend(heart.Selection{Region: sel.Region, Income: sel.Income})
		if err != nil {
			return err
		}
		entities := filter.TopEntities(df, col, figure.DefaultLineCountries, sel.Countries)
		return render.Line(w, series, heart.ColPopulation, entities, opts)
	case "trend":
		a, err := d.Analysis(sel)
		if err != nil {
			return err
		}
		return render.Trend(w, a, sel.Metric, opts)
	}
	return errors.NotFound(fmt.Sprintf("chart %q", name))
}
