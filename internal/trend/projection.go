package trend

import (
	"fmt"
	"math"

	"heartdash/internal/errors"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Projection is a straight-line extrapolation of the smoothed curve
type Projection struct {
	FromX     float64 `json:"from_x"`
	FromY     float64 `json:"from_y"`
	Year      float64 `json:"year"`
	Value     float64 `json:"value"`
	Slope     float64 `json:"slope"`
	HalfWidth float64 `json:"half_width"` // 95% prediction interval half-width
}

// Lower is the lower end of the prediction band
func (p Projection) Lower() float64 { return p.Value - p.HalfWidth }

// Upper is the upper end of the prediction band
func (p Projection) Upper() float64 { return p.Value + p.HalfWidth }

// Project fits an ordinary least squares line to the last window points of
// a smoothed curve and evaluates it at targetYear. xs must be sorted.
func Project(xs, smoothed []float64, targetYear float64, window int) (Projection, error) {
	n := len(xs)
	if len(smoothed) < n {
		n = len(smoothed)
	}
	if n < 2 {
		return Projection{}, errors.NoData("projection needs at least two points")
	}
	last := xs[n-1]
	if targetYear <= last {
		return Projection{}, errors.InvalidInput(fmt.Sprintf("projection year %.0f is not after %.0f", targetYear, last))
	}
	if window < 2 {
		window = 2
	}
	if window > n {
		window = n
	}
	x := xs[n-window : n]
	y := smoothed[n-window : n]

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	p := Projection{
		FromX: last,
		FromY: smoothed[n-1],
		Year:  targetYear,
		Value: alpha + beta*targetYear,
		Slope: beta,
	}
	if math.IsNaN(p.Value) {
		return Projection{}, errors.InvalidInput("projection window has no spread in x")
	}
	p.HalfWidth = predictionHalfWidth(x, y, alpha, beta, targetYear)
	return p, nil
}

// predictionHalfWidth is t(0.975, n-2) * s * sqrt(1 + 1/n + (x0-mean)^2/Sxx).
// Two points leave no residual degrees of freedom, so the band is zero.
func predictionHalfWidth(x, y []float64, alpha, beta, x0 float64) float64 {
	n := len(x)
	if n < 3 {
		return 0
	}
	sse := 0.0
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		sse += r * r
	}
	dof := float64(n - 2)
	s := math.Sqrt(sse / dof)
	mean := stat.Mean(x, nil)
	sxx := 0.0
	for _, v := range x {
		sxx += (v - mean) * (v - mean)
	}
	if sxx == 0 {
		return 0
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.Quantile(0.975)
	return t * s * math.Sqrt(1+1/float64(n)+(x0-mean)*(x0-mean)/sxx)
}
