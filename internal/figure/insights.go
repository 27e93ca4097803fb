package figure

import (
	"math"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/internal/frame"
)

// InsightBuilder turns the whole dataset into one insight figure
type InsightBuilder func(f *frame.Frame) *Figure

type insight struct {
	name  string
	build InsightBuilder
}

var insights = []insight{
	{"risk_factor_heatmap", RiskFactorHeatmap},
	{"hypertension_control", HypertensionControl},
	{"population_normalized_death", PopulationNormalizedDeath},
	{"region_bar", RegionDeathBar},
	{"correlation_matrix", CorrelationMatrix},
	{"income_violin", IncomeViolin},
	{"obesity_trends", ObesityTrends},
	{"statin_scatter", StatinScatter},
	{"cvd_prevalence", CVDPrevalence},
	{"regional_death_rates", RegionalDeathRates},
	{"regional_cvd_rates", RegionalCVDRates},
	{"regional_prevalence", RegionalPrevalence},
	{"top_death_rates", TopDeathRates},
	{"deaths_by_gender", DeathsByGender},
	{"obesity_vs_deaths", ObesityVsDeaths},
}

// InsightNames lists the insight figures in display order
func InsightNames() []string {
	out := make([]string, len(insights))
	for i, in := range insights {
		out[i] = in.name
	}
	return out
}

// Insight builds the named insight figure
func Insight(name string, f *frame.Frame) (*Figure, error) {
	for _, in := range insights {
		if in.name == name {
			return in.build(f), nil
		}
	}
	return nil, errors.NotFound("insight " + name)
}

func white(fig *Figure) *Figure {
	fig.Layout["template"] = "plotly_white"
	return fig
}

func heatmap(f *frame.Frame, title, colorscale string, cols []string, round bool) *Figure {
	corr := f.Corr(cols...)
	z := make([][]any, len(corr))
	for i, row := range corr {
		if round {
			for j, v := range row {
				row[j] = math.Round(v*100) / 100
			}
		}
		z[i] = nums(row)
	}
	t := Trace{
		"type":       "heatmap",
		"z":          z,
		"x":          cols,
		"y":          cols,
		"colorscale": colorscale,
	}
	if round {
		t["texttemplate"] = "%{z}"
		t["zmin"], t["zmax"] = -1, 1
		t["colorbar"] = map[string]any{"title": map[string]any{"text": "Correlation"}}
	}
	return New(title).Add(t)
}

// RiskFactorHeatmap correlates high blood pressure, ischemic rate,
// standardized CVD and hypertension control
func RiskFactorHeatmap(f *frame.Frame) *Figure {
	cols := []string{heart.ColMaleHighBP, heart.ColIschemicRate, heart.ColCVDStd, heart.ColHTNControlAll}
	return heatmap(f, "Risk Factor Correlation Heatmap", "Viridis", cols, false).Set(Layout{
		"xaxis": axis("Risk Factors"),
		"yaxis": axis("Risk Factors"),
	})
}

// CorrelationMatrix correlates obesity, ischemic and rheumatic rates and
// pacemaker availability, rounded to two decimals
func CorrelationMatrix(f *frame.Frame) *Figure {
	cols := []string{heart.ColObesity, heart.ColIschemicRate, heart.ColRheumaticRate, heart.ColPacemaker}
	return heatmap(f, "Risk Factor Correlation Matrix", "RdBu", cols, true).Set(Layout{
		"xaxis": map[string]any{"tickangle": -45},
	})
}

func meanBar(f *frame.Frame, by, col, title, yTitle string, sortDesc, colorByKey bool) *Figure {
	means := f.GroupMean(by, col).DropNA(col)
	if sortDesc {
		means = means.SortBy(col, true)
	}
	fig := white(New(title)).Set(Layout{
		"xaxis":      map[string]any{"tickangle": -45, "title": map[string]any{"text": by}},
		"yaxis":      axis(yTitle),
		"showlegend": false,
	})
	if means.IsEmpty() {
		return fig
	}
	if !colorByKey {
		return fig.Add(Trace{"type": "bar", "x": texts(means.Texts(by)), "y": nums(means.Numbers(col))})
	}
	for i := 0; i < means.Len(); i++ {
		r := means.Row(i)
		fig.Add(Trace{
			"type": "bar",
			"name": r.Text(by),
			"x":    []string{r.Text(by)},
			"y":    nums([]float64{r.Num(col)}),
		})
	}
	return fig
}

// HypertensionControl is the mean hypertension control rate per region
func HypertensionControl(f *frame.Frame) *Figure {
	return meanBar(f, heart.ColRegion, heart.ColHTNControlAll,
		"Average Hypertension Control Rates by Region", "Hypertension Control Rate (%)", false, false)
}

// RegionDeathBar is the mean age-standardized death rate per region, highest first
func RegionDeathBar(f *frame.Frame) *Figure {
	return meanBar(f, heart.ColRegion, heart.ColDeathStd,
		"Average Age-Standardized Death Rates by Region", "Average Death Rate (per 100,000)", true, false)
}

// CVDPrevalence is the mean prevalence per income group
func CVDPrevalence(f *frame.Frame) *Figure {
	return meanBar(f, heart.ColIncome, heart.ColPrevalence,
		"CVD Prevalence by World Bank Income Group", "CVD Prevalence (%)", false, true)
}

// PopulationNormalizedDeath plots death_std / Population per entity over
// 2000-2021
func PopulationNormalizedDeath(f *frame.Frame) *Figure {
	std := f.Numbers(heart.ColDeathStd)
	pop := f.Numbers(heart.ColPopulation)
	perCapita := make([]float64, f.Len())
	for i := range perCapita {
		perCapita[i] = math.NaN()
		if std != nil && pop != nil && pop[i] != 0 {
			perCapita[i] = std[i] / pop[i]
		}
	}
	withRate := f.WithColumn(heart.ColDeathPerCapita, perCapita)
	fig := Scatter(withRate, heart.ColYear, heart.ColDeathPerCapita, heart.ColEntity, "")
	delete(fig.Layout, "legend")
	return white(fig).Set(Layout{
		"title": map[string]any{"text": "Population Normalized Death Rates Over Time"},
		"xaxis": map[string]any{"range": []int{2000, 2021}, "title": map[string]any{"text": "Year"}},
		"yaxis": axis("Death Rate per Capita"),
	})
}

// IncomeViolin shows the death rate distribution of each income group
func IncomeViolin(f *frame.Frame) *Figure {
	fig := white(New("Death Rate Distribution by Income Level")).Set(Layout{
		"xaxis": map[string]any{"tickangle": -45, "title": map[string]any{"text": "World Bank Income Level"}},
		"yaxis": axis("Death Rate (per 100,000)"),
	})
	rows := f.DropNA(heart.ColIncome, heart.ColDeathStd)
	for _, group := range rows.Unique(heart.ColIncome) {
		sub := rows.Filter(func(r frame.Row) bool { return r.Text(heart.ColIncome) == group })
		fig.Add(Trace{
			"type":     "violin",
			"name":     group,
			"x":        texts(sub.Texts(heart.ColIncome)),
			"y":        nums(sub.Numbers(heart.ColDeathStd)),
			"box":      map[string]any{"visible": true},
			"meanline": map[string]any{"visible": true},
		})
	}
	return fig
}

// ObesityTrends is the mean obesity rate per region over time
func ObesityTrends(f *frame.Frame) *Figure {
	means := f.GroupMean2(heart.ColYear, heart.ColRegion, heart.ColObesity).DropNA(heart.ColObesity)
	fig := white(New("Obesity Trends Over Time by Region")).Set(Layout{
		"xaxis":  map[string]any{"dtick": 1, "title": map[string]any{"text": "Year"}},
		"yaxis":  axis("Obesity Rate (%)"),
		"legend": map[string]any{"title": map[string]any{"text": "Region"}},
	})
	for _, region := range means.Unique(heart.ColRegion) {
		sub := means.Filter(func(r frame.Row) bool { return r.Text(heart.ColRegion) == region }).
			SortBy(heart.ColYear, false)
		fig.Add(Trace{
			"type": "scatter",
			"mode": "lines",
			"name": region,
			"x":    nums(sub.Numbers(heart.ColYear)),
			"y":    nums(sub.Numbers(heart.ColObesity)),
		})
	}
	return fig
}

// StatinScatter plots statin availability against death rate by income group
func StatinScatter(f *frame.Frame) *Figure {
	fig := Scatter(f, heart.ColStatinAvail, heart.ColDeathStd, heart.ColIncome, "")
	return white(fig).Set(Layout{
		"title":  map[string]any{"text": "Statin Availability vs Death Rate by Income Level"},
		"xaxis":  axis("Statin Availability (%)"),
		"yaxis":  axis("Death Rate (per 100,000)"),
		"legend": map[string]any{"title": map[string]any{"text": "Income Level"}},
	})
}

func genderComparison(f *frame.Frame, femaleCol, maleCol, title, yTitle string) *Figure {
	fig := white(New(title)).Set(Layout{
		"xaxis":      map[string]any{"tickangle": -45, "title": map[string]any{"text": "Region"}},
		"yaxis":      axis(yTitle),
		"showlegend": true,
		"updatemenus": []any{map[string]any{
			"buttons": []any{
				map[string]any{"args": []any{map[string]any{"visible": []bool{true, true}}}, "label": "Both", "method": "restyle"},
				map[string]any{"args": []any{map[string]any{"visible": []bool{true, false}}}, "label": "Female", "method": "restyle"},
				map[string]any{"args": []any{map[string]any{"visible": []bool{false, true}}}, "label": "Male", "method": "restyle"},
			},
			"direction":  "down",
			"showactive": true,
			"x":          0.1,
			"xanchor":    "left",
			"y":          1.15,
			"yanchor":    "top",
		}},
	})
	for _, series := range []struct{ name, col string }{{"Female", femaleCol}, {"Male", maleCol}} {
		rows := f.DropNA(heart.ColRegion, series.col)
		fig.Add(Trace{
			"type":   "scatter",
			"mode":   "markers",
			"name":   series.name,
			"x":      texts(rows.Texts(heart.ColRegion)),
			"y":      nums(rows.Numbers(series.col)),
			"marker": map[string]any{"size": 12, "symbol": "square"},
		})
	}
	return fig
}

// RegionalDeathRates compares female and male death rates per region
func RegionalDeathRates(f *frame.Frame) *Figure {
	return genderComparison(f, heart.ColFemaleDeathRt, heart.ColMaleDeathRate,
		"Regional CVD Death Rates by Gender", "Death Rate (per 100,000)")
}

// RegionalCVDRates compares standardized CVD rates per region
func RegionalCVDRates(f *frame.Frame) *Figure {
	return genderComparison(f, heart.ColFemaleCVDStd, heart.ColMaleCVDStd,
		"Regional Standardized CVD Rates by Gender", "Standardized CVD Rate")
}

// RegionalPrevalence compares prevalence percentages per region
func RegionalPrevalence(f *frame.Frame) *Figure {
	return genderComparison(f, heart.ColFemalePrevPct, heart.ColMalePrevPct,
		"Regional CVD Prevalence by Gender", "Prevalence (%)")
}

// TopDeathRates shows the ten entities with the highest mean death rate
func TopDeathRates(f *frame.Frame) *Figure {
	top := f.GroupMean(heart.ColEntity, heart.ColDeathRate).NLargest(10, heart.ColDeathRate)
	fig := white(New("Top 10 Countries with Highest CVD Death Rates")).Set(Layout{
		"xaxis": map[string]any{"tickangle": -45},
		"yaxis": axis("Death Rate per 100,000"),
	})
	if top.IsEmpty() {
		return fig
	}
	return fig.Add(Trace{
		"type":   "bar",
		"x":      texts(top.Texts(heart.ColEntity)),
		"y":      nums(top.Numbers(heart.ColDeathRate)),
		"marker": map[string]any{"color": "darkred"},
	})
}

// DeathsByGender is the mean yearly death count for each gender
func DeathsByGender(f *frame.Frame) *Figure {
	fig := white(New("Trend of Heart Disease Deaths by Gender Over Time")).Set(Layout{
		"xaxis": axis("Year"),
		"yaxis": axis("Total Deaths"),
	})
	for _, series := range []struct{ name, col, color string }{
		{"Male", heart.ColMaleDeaths, "blue"},
		{"Female", heart.ColFemaleDeaths, "pink"},
	} {
		means := f.GroupMean(heart.ColYear, series.col).DropNA(series.col).SortBy(heart.ColYear, false)
		fig.Add(Trace{
			"type": "scatter",
			"mode": "lines",
			"name": series.name,
			"x":    nums(means.Numbers(heart.ColYear)),
			"y":    nums(means.Numbers(series.col)),
			"line": map[string]any{"color": series.color},
		})
	}
	return fig
}

// ObesityVsDeaths plots obesity prevalence against total deaths by region
func ObesityVsDeaths(f *frame.Frame) *Figure {
	fig := Scatter(f, heart.ColObesity, heart.ColDeaths, heart.ColRegion, "")
	for _, t := range fig.Data {
		t["opacity"] = 0.7
	}
	return white(fig).Set(Layout{
		"title": map[string]any{"text": "Obesity Prevalence vs. Total Cardiovascular Deaths"},
	})
}
