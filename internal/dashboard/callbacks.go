package dashboard

import (
	"context"
	"strings"

	"heartdash/domain/heart"
	"heartdash/internal/figure"
	"heartdash/internal/filter"
	"heartdash/internal/frame"
	"heartdash/internal/reactive"
)

// Component properties of the dashboard layout
var (
	YearSlider      = reactive.P("year-slider", "value")
	RegionDropdown  = reactive.P("region-dropdown", "value")
	IncomeDropdown  = reactive.P("income-dropdown", "value")
	GenderDropdown  = reactive.P("gender-dropdown", "value")
	MetricDropdown  = reactive.P("metric-dropdown", "value")
	CountryDropdown = reactive.P("country-dropdown", "value")
	TopNSlider      = reactive.P("top-n-slider", "value")
	ActiveTab       = reactive.P("tabs", "active_tab")
	MapHover        = reactive.P("chloropleth-map", "hoverData")

	GeneralData    = reactive.P("general-data", "data")
	ChoroplethData = reactive.P("chloropleth_data", "data")
	MapFigure      = reactive.P("chloropleth-map", "figure")
	MapTitle       = reactive.P("map-title", "children")
	TooltipContent = reactive.P("graph-tooltip", "children")
	TooltipShow    = reactive.P("graph-tooltip", "show")
	GeoEcoPlots    = reactive.P("4x4plots", "children")
	HealthPlots    = reactive.P("healthcare-plots", "children")
	TrendPlots     = reactive.P("trend-plots", "children")
	TabContent     = reactive.P("tab-content", "children")
)

// Selectors are the sidebar and slider inputs every panel listens to
var Selectors = []reactive.Prop{
	YearSlider, RegionDropdown, IncomeDropdown, GenderDropdown,
	MetricDropdown, CountryDropdown, TopNSlider,
}

// Tabs in display order
var Tabs = []string{"intro", "map", "geo-eco", "healthcare", "trends", "insights"}

// TabLabels names each tab
var TabLabels = map[string]string{
	"intro":      "Introduction",
	"map":        "World Map",
	"geo-eco":    "Geo-Eco Features",
	"healthcare": "Healthcare Features",
	"trends":     "Trends",
	"insights":   "Insights",
}

// InitialState is the state a fresh session starts with
func InitialState() reactive.State {
	sel := heart.DefaultSelection()
	return reactive.State{
		YearSlider:      *sel.Year,
		RegionDropdown:  sel.Region,
		IncomeDropdown:  sel.Income,
		GenderDropdown:  sel.Gender,
		MetricDropdown:  sel.Metric,
		CountryDropdown: []string{},
		TopNSlider:      sel.TopN,
		ActiveTab:       "intro",
	}
}

// SelectionFrom reads a selection from callback arguments. Missing values
// fall back to the defaults, except the year which may be cleared.
func SelectionFrom(a reactive.Args) heart.Selection {
	sel := heart.DefaultSelection()
	sel.Year = a.Int(YearSlider)
	if v := a.String(RegionDropdown); v != "" {
		sel.Region = v
	}
	if v := a.String(IncomeDropdown); v != "" {
		sel.Income = v
	}
	if a.Get(GenderDropdown) != nil {
		sel.Gender = a.String(GenderDropdown)
	}
	if a.Get(MetricDropdown) != nil {
		sel.Metric = a.String(MetricDropdown)
	}
	if n := a.Int(TopNSlider); n != nil {
		sel.TopN = *n
	}
	sel.Countries = a.Strings(CountryDropdown)
	return sel
}

// StateFor writes a selection back as component values
func StateFor(sel heart.Selection) reactive.State {
	state := reactive.State{
		RegionDropdown:  sel.Region,
		IncomeDropdown:  sel.Income,
		GenderDropdown:  sel.Gender,
		MetricDropdown:  sel.Metric,
		TopNSlider:      sel.TopN,
		CountryDropdown: append([]string{}, sel.Countries...),
	}
	if sel.Year != nil {
		state[YearSlider] = *sel.Year
	} else {
		state[YearSlider] = nil
	}
	return state
}

// Register wires the dashboard callbacks into reg and validates the graph
func Register(reg *reactive.Registry, d *Dashboard) error {
	callbacks := []reactive.Callback{
		{
			Name:    "general-data",
			Inputs:  []reactive.Prop{YearSlider},
			Outputs: []reactive.Prop{GeneralData},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				return []any{d.svc.Year(a.Int(YearSlider))}, nil
			},
		},
		{
			Name:    "chloropleth-data",
			Inputs:  []reactive.Prop{GeneralData, MetricDropdown, GenderDropdown},
			Outputs: []reactive.Prop{ChoroplethData},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				yearFrame, _ := a.Get(GeneralData).(*frame.Frame)
				if yearFrame == nil {
					yearFrame = frame.Empty()
				}
				return []any{filter.Choropleth(yearFrame, a.String(MetricDropdown), a.String(GenderDropdown))}, nil
			},
		},
		{
			Name:    "chloropleth-map",
			Inputs:  []reactive.Prop{ChoroplethData},
			Outputs: []reactive.Prop{MapFigure},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				df, _ := a.Get(ChoroplethData).(*frame.Frame)
				if df == nil {
					return []any{figure.Empty()}, nil
				}
				return []any{figure.Choropleth(df)}, nil
			},
		},
		{
			Name:    "map-title",
			Inputs:  []reactive.Prop{YearSlider, MetricDropdown},
			Outputs: []reactive.Prop{MapTitle},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				return []any{figure.MapTitle(a.Int(YearSlider), a.String(MetricDropdown))}, nil
			},
		},
		{
			Name:    "tooltip",
			Inputs:  []reactive.Prop{MapHover},
			State:   []reactive.Prop{YearSlider, MetricDropdown, GenderDropdown},
			Outputs: []reactive.Prop{TooltipShow, TooltipContent},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				code := HoverCode(a.Map(MapHover))
				if code == "" {
					return []any{false, nil}, nil
				}
				tip := d.Tooltip(code, SelectionFrom(a))
				if tip.Empty() {
					return []any{false, nil}, nil
				}
				return []any{true, tip}, nil
			},
		},
		{
			Name:    "geo-eco",
			Inputs:  Selectors,
			Outputs: []reactive.Prop{GeoEcoPlots},
			Fn: func(ctx context.Context, a reactive.Args) ([]any, error) {
				panels, err := d.GeoEco(ctx, SelectionFrom(a))
				if err != nil {
					return nil, err
				}
				return []any{panels}, nil
			},
		},
		{
			Name:    "healthcare",
			Inputs:  Selectors,
			Outputs: []reactive.Prop{HealthPlots},
			Fn: func(ctx context.Context, a reactive.Args) ([]any, error) {
				panels, err := d.Healthcare(ctx, SelectionFrom(a))
				if err != nil {
					return nil, err
				}
				return []any{panels}, nil
			},
		},
		{
			Name:    "trends",
			Inputs:  Selectors,
			Outputs: []reactive.Prop{TrendPlots},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				view, err := d.Trends(SelectionFrom(a))
				if err != nil {
					// an empty selection clears the chart instead of failing the dispatch
					logger.Debug("trend unavailable: %v", err)
					return []any{&TrendView{Figure: figure.Empty()}}, nil
				}
				return []any{view}, nil
			},
		},
		{
			Name:    "tab-content",
			Inputs:  []reactive.Prop{ActiveTab},
			Outputs: []reactive.Prop{TabContent},
			Fn: func(_ context.Context, a reactive.Args) ([]any, error) {
				tab := a.String(ActiveTab)
				if _, ok := TabLabels[tab]; !ok {
					tab = Tabs[0]
				}
				return []any{tab}, nil
			},
		},
	}

	for _, cb := range callbacks {
		if err := reg.Register(cb); err != nil {
			return err
		}
	}
	return reg.Validate()
}

// HoverCode extracts the ISO code from Plotly hover data
// ({"points": [{"location": "FRA", ...}]})
func HoverCode(hover map[string]any) string {
	points, _ := hover["points"].([]any)
	if len(points) == 0 {
		return ""
	}
	p, _ := points[0].(map[string]any)
	code, _ := p["location"].(string)
	return strings.TrimSpace(code)
}

// ClientUpdates drops server-side stores, which the browser never renders
func ClientUpdates(updates reactive.State) map[string]any {
	out := make(map[string]any, len(updates))
	for prop, v := range updates {
		if _, isFrame := v.(*frame.Frame); isFrame {
			continue
		}
		out[string(prop)] = v
	}
	return out
}
