package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"heartdash/domain/heart"
)

// HeartGeneratorConfig configures the synthetic heart disease generator
type HeartGeneratorConfig struct {
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`
	Noise     float64 `json:"noise"` // relative noise on rates, 0 for exact values
	Seed      int64   `json:"seed"`
}

// DefaultHeartConfig returns a noise-free 1990-2021 panel
func DefaultHeartConfig() HeartGeneratorConfig {
	return HeartGeneratorConfig{
		StartYear: 1990,
		EndYear:   2021,
		Seed:      42,
	}
}

// Country is one synthetic entity and its baseline values
type Country struct {
	Entity     string
	Code       string
	Region     string
	Income     string
	Population float64
	GDP        float64
	DeathRate  float64
	Obesity    float64
}

// Countries are the entities the generator emits, plus a "World" aggregate
// without a code or region.
var Countries = []Country{
	{"France", "FRA", "Europe", "High income", 58e6, 28000, 180, 10},
	{"Germany", "DEU", "Europe", "High income", 80e6, 30000, 260, 14},
	{"Spain", "ESP", "Europe", "High income", 39e6, 20000, 170, 12},
	{"Ukraine", "UKR", "Europe", "Lower middle income", 51e6, 2500, 620, 16},
	{"Nigeria", "NGA", "Africa", "Lower middle income", 95e6, 1500, 310, 5},
	{"Kenya", "KEN", "Africa", "Lower middle income", 23e6, 1200, 240, 4},
	{"Chad", "TCD", "Africa", "Low income", 6e6, 700, 330, 3},
	{"Brazil", "BRA", "South America", "Upper middle income", 150e6, 7000, 290, 11},
	{"Peru", "PER", "South America", "Upper middle income", 22e6, 4000, 150, 12},
	{"United States", "USA", "North America", "High income", 250e6, 36000, 280, 22},
	{"Mexico", "MEX", "North America", "Upper middle income", 84e6, 8000, 200, 19},
	{"India", "IND", "Asia", "Lower middle income", 870e6, 900, 270, 2},
	{"China", "CHN", "Asia", "Upper middle income", 1140e6, 1200, 300, 3},
	{"Japan", "JPN", "Asia", "High income", 123e6, 33000, 140, 3},
	{"Australia", "AUS", "Oceania", "High income", 17e6, 25000, 190, 18},
	{"Fiji", "FJI", "Oceania", "Upper middle income", 0.7e6, 3500, 400, 20},
	{"World", "", "", "", 5300e6, 5000, 250, 9},
}

// Headers is the column layout of generated data
var Headers = []string{
	heart.ColEntity, heart.ColCode, heart.ColYear, heart.ColRegion, heart.ColIncome,
	heart.ColGDP, heart.ColPopulation,
	heart.ColDeathStd, "deaths", "death_rate", "deaths%",
	"f_deaths", "f_death_rate", "f_deaths%", "m_deaths", "m_death_rate", "m_deaths%",
	"prev", "prev_rate", "prev%", "f_prev", "f_prev_rate", "f_prev%", "m_prev", "m_prev_rate", "m_prev%",
	heart.ColObesity, heart.ColCTUnits, heart.ColPacemaker, heart.ColStatinUse, heart.ColStatinAvail,
	heart.ColHypertension, heart.ColHighBP, heart.ColHTNControl, heart.ColHTNControlAll,
	heart.ColMaleHighBP, heart.ColIschemicRate, heart.ColRheumaticRate,
	heart.ColCVDStd, heart.ColFemaleCVDStd, heart.ColMaleCVDStd, heart.ColLifeExpectancy,
}

// HeartDataGenerator produces a deterministic country-year panel
type HeartDataGenerator struct {
	config HeartGeneratorConfig
	rng    *rand.Rand
}

// NewHeartDataGenerator creates a new generator
func NewHeartDataGenerator(config HeartGeneratorConfig) *HeartDataGenerator {
	return &HeartDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Rows generates one row per country and year, in the same column order as
// Headers. Risk factor surveys only exist for the reference year, and Chad
// has no GDP figures before 2000.
func (g *HeartDataGenerator) Rows() [][]string {
	var rows [][]string
	for _, c := range Countries {
		for year := g.config.StartYear; year <= g.config.EndYear; year++ {
			rows = append(rows, g.row(c, year))
		}
	}
	return rows
}

func (g *HeartDataGenerator) row(c Country, year int) []string {
	t := float64(year - g.config.StartYear)
	jitter := func() float64 {
		if g.config.Noise == 0 {
			return 1
		}
		return 1 + g.config.Noise*(2*g.rng.Float64()-1)
	}

	pop := c.Population * (1 + 0.01*t)
	deathRate := c.DeathRate * (1 - 0.01*t) * jitter()
	deaths := deathRate * pop / 1e5
	prevRate := c.DeathRate * 8 * (1 + 0.005*t) * jitter()
	prev := prevRate * pop / 1e5
	incomeLevel := incomeRank(c.Income)

	gdp := c.GDP * (1 + 0.02*t)
	if c.Code == "TCD" && year < 2000 {
		gdp = math.NaN()
	}

	htn, highBP, htnCtrl := math.NaN(), math.NaN(), math.NaN()
	if year == heart.ReferenceYear {
		htn = 25 + c.Obesity
		highBP = 20 + c.Obesity/2
		htnCtrl = 5 + 5*incomeLevel
	}

	values := []float64{
		gdp, pop,
		deathRate * 0.9, deaths, deathRate, deathRate / 10,
		deaths * 0.45, deathRate * 0.8, deathRate / 10 * 0.9,
		deaths * 0.55, deathRate * 1.2, deathRate / 10 * 1.1,
		prev, prevRate, prevRate / 1000,
		prev * 0.5, prevRate * 0.9, prevRate / 1000 * 0.9,
		prev * 0.5, prevRate * 1.1, prevRate / 1000 * 1.1,
		c.Obesity + 0.2*t, 2 + 8*incomeLevel, 1 + 30*incomeLevel, 10 + 40*incomeLevel, 20 + 20*incomeLevel,
		htn, highBP, htnCtrl, 5 + 5*incomeLevel,
		15 + c.Obesity/3, deathRate * 0.5, 10 - 2*incomeLevel,
		deathRate * 0.95, deathRate * 0.8, deathRate * 1.1, 60 + 5*incomeLevel + 0.2*t,
	}

	row := []string{c.Entity, c.Code, strconv.Itoa(year), c.Region, c.Income}
	for _, v := range values {
		row = append(row, formatCell(v))
	}
	return row
}

func incomeRank(income string) float64 {
	switch heart.Slug(income) {
	case "high_income":
		return 3
	case "upper_middle_income":
		return 2
	case "lower_middle_income":
		return 1
	default:
		return 0
	}
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
