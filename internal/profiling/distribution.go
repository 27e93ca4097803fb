package profiling

import (
	"math"
	"sort"

	"heartdash/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the location and spread of a column
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Shape describes the tails of a column. Kurtosis is excess kurtosis, so a
// normal column sits near 0.
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"excess_kurtosis"`
	// Outliers counts values beyond 1.5 IQR of the quartiles
	Outliers int `json:"outliers"`
	// CV is the coefficient of variation, 0 when the mean is 0
	CV float64 `json:"cv"`
}

// Markers is the statistical picture of one numeric column
type Markers struct {
	Summary Summary `json:"summary"`
	Shape   Shape   `json:"shape"`
}

// Describe summarises data, which must not contain NaN. Moments that need
// more values than given are left at 0.
func Describe(data []float64) (Markers, error) {
	var m Markers
	if len(data) == 0 {
		return m, errors.InvalidInput("no values to describe")
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	n := len(sorted)

	median, err := stats.Median(sorted)
	if err != nil {
		return m, err
	}
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)

	mean, std := stat.Mean(sorted, nil), 0.0
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}
	m.Summary = Summary{
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}

	m.Shape.Outliers = tukeyOutliers(sorted, q25, q75)
	if std == 0 {
		return m, nil
	}
	if n > 2 {
		m.Shape.Skewness = stat.Skew(sorted, nil)
	}
	if n > 3 {
		m.Shape.Kurtosis = stat.ExKurtosis(sorted, nil)
	}
	if mean != 0 {
		m.Shape.CV = std / math.Abs(mean)
	}
	return m, nil
}

func tukeyOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lo, hi := q25-1.5*iqr, q75+1.5*iqr
	count := 0
	for _, x := range data {
		if x < lo || x > hi {
			count++
		}
	}
	return count
}
