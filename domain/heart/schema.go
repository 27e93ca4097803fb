// Package heart describes the heart-disease dataset: its columns, the
// selector vocabularies the dashboard offers and how a (gender, metric)
// selection resolves to a concrete column.
package heart

import (
	"strings"
	"unicode"
)

// Column names used by the dashboard
const (
	ColEntity     = "Entity"
	ColCode       = "Code"
	ColYear       = "Year"
	ColRegion     = "region"
	ColIncome     = "WB_Income"
	ColGDP        = "gdp_pc"
	ColPopulation = "Population"

	ColDeathStd       = "death_std"
	ColDeaths         = "deaths"
	ColDeathRate      = "death_rate"
	ColFemaleDeaths   = "f_deaths"
	ColMaleDeaths     = "m_deaths"
	ColMaleDeathRate  = "m_death_rate"
	ColFemaleDeathRt  = "f_death_rate"
	ColPrevalence     = "prev"
	ColFemalePrevPct  = "f_prev%"
	ColMalePrevPct    = "m_prev%"
	ColLifeExpectancy = "life_expectancy"

	ColObesity        = "obesity%"
	ColCTUnits        = "ct_units"
	ColPacemaker      = "pacemaker_1m"
	ColStatinUse      = "statin_use_k"
	ColStatinAvail    = "statin_avail"
	ColHypertension   = "t_htn_30-79"
	ColHighBP         = "t_high_bp_30-79"
	ColHTNControl     = "t_htn_ctrl_30-79"
	ColHTNControlAll  = "t_htn_ctrl"
	ColMaleHighBP     = "m_high_bp"
	ColIschemicRate   = "ischemic_rate"
	ColRheumaticRate  = "rheumatic_rate"
	ColCVDStd         = "t_cvd_std"
	ColFemaleCVDStd   = "f_cvd_std"
	ColMaleCVDStd     = "m_cvd_std"
	ColDeathPerCapita = "death_per_capita"
)

// HealthcareColumns are the care-capacity indicators shown on the healthcare tab
var HealthcareColumns = []string{ColObesity, ColCTUnits, ColPacemaker, ColStatinUse}

// RiskFactorColumns are the columns scaled by the risk factor estimator
var RiskFactorColumns = []string{ColObesity, ColHypertension, ColHighBP, ColHTNControl}

// Gender is a normalised gender selection
type Gender string

const (
	GenderBoth   Gender = "Both"
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
)

// ParseGender accepts both the dropdown values (F, M, all) and the labels
// (Female, Male, Both). Anything else means both genders.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "female":
		return GenderFemale
	case "m", "male":
		return GenderMale
	default:
		return GenderBoth
	}
}

// Prefix returns the column prefix for the gender
func (g Gender) Prefix() string {
	switch g {
	case GenderFemale:
		return "f_"
	case GenderMale:
		return "m_"
	default:
		return ""
	}
}

// Metric names offered by the metric selector
const (
	MetricPrevalencePercent = "Prevalence Percent"
	MetricPrevalenceRate    = "Prevalence Rate"
	MetricPrevalence        = "Prevalence"
	MetricDeathPercent      = "Death Percent"
	MetricDeathRate         = "Death Rate"
	MetricDeath             = "Death"
)

// Metrics lists the metric names in selector order
var Metrics = []string{
	MetricDeathRate,
	MetricDeath,
	MetricDeathPercent,
	MetricPrevalenceRate,
	MetricPrevalence,
	MetricPrevalencePercent,
}

// metricFamilies keys the metric table by the first letter of the metric
var metricFamilies = map[byte]map[string]string{
	'P': {
		MetricPrevalencePercent: "prev%",
		MetricPrevalenceRate:    "prev_rate",
		MetricPrevalence:        "prev",
	},
	'D': {
		MetricDeathPercent: "deaths%",
		MetricDeathRate:    "death_rate",
		MetricDeath:        "deaths",
	},
}

// MetricColumn resolves a metric selection to a dataframe column, prefixed
// for the selected gender. It reports false for an empty or unknown metric.
func MetricColumn(gender, metric string) (string, bool) {
	if metric == "" {
		return "", false
	}
	family, ok := metricFamilies[metric[0]]
	if !ok {
		return "", false
	}
	base, ok := family[metric]
	if !ok {
		return "", false
	}
	return ParseGender(gender).Prefix() + base, true
}

// Option is a labelled selector value
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AllValue selects every row for region and income selectors
const AllValue = "all"

// RegionOptions are the region dropdown entries
var RegionOptions = []Option{
	{Label: "All Regions", Value: AllValue},
	{Label: "Africa", Value: "africa"},
	{Label: "North America", Value: "north_america"},
	{Label: "South America", Value: "south_america"},
	{Label: "Asia", Value: "asia"},
	{Label: "Europe", Value: "europe"},
	{Label: "Oceania", Value: "oceania"},
}

// IncomeOptions are the World Bank income dropdown entries
var IncomeOptions = []Option{
	{Label: "All Income Levels", Value: AllValue},
	{Label: "High Income", Value: "high"},
	{Label: "Upper Middle Income", Value: "upper_middle"},
	{Label: "Lower Middle Income", Value: "lower_middle"},
	{Label: "Low Income", Value: "low"},
}

// GenderOptions are the gender dropdown entries
var GenderOptions = []Option{
	{Label: "All Genders", Value: AllValue},
	{Label: "Male", Value: "M"},
	{Label: "Female", Value: "F"},
}

// MetricOptions builds the metric dropdown entries
func MetricOptions() []Option {
	out := make([]Option, len(Metrics))
	for i, m := range Metrics {
		out[i] = Option{Label: m, Value: m}
	}
	return out
}

// Slider bounds
const (
	MinYear     = 1960
	MaxYear     = 2022
	DefaultYear = 2000

	MinTopN     = 10
	MaxTopN     = 100
	TopNStep    = 10
	DefaultTopN = 10

	// ReferenceYear is the year risk factor surveys were taken
	ReferenceYear = 2019
	// TooltipStartYear bounds the hover time series
	TooltipStartYear = 1990
)

// Slug lowercases s and collapses runs of non-alphanumerics into "_"
func Slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// MatchRegion reports whether a row's region satisfies the selector value
func MatchRegion(selected, rowRegion string) bool {
	if isAll(selected) {
		return true
	}
	return Slug(selected) == Slug(rowRegion)
}

// MatchIncome reports whether a row's income group satisfies the selector
// value. "Upper middle income" matches "upper_middle".
func MatchIncome(selected, rowIncome string) bool {
	if isAll(selected) {
		return true
	}
	return IncomeSlug(selected) == IncomeSlug(rowIncome)
}

// IncomeSlug is Slug without a trailing "_income"
func IncomeSlug(s string) string {
	return strings.TrimSuffix(Slug(s), "_income")
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, AllValue)
}
