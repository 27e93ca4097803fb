// Package trend smooths metric time series with LOWESS and projects the
// smoothed curve to a future year.
package trend

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Point is one (x, y) pair
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultFrac and DefaultIterations match the usual LOWESS defaults
const (
	DefaultFrac       = 2.0 / 3.0
	DefaultIterations = 3
)

// Lowess fits a locally weighted linear regression at every input x. Each fit
// uses the ceil(frac*n) nearest neighbours with tricube weights; each of the
// iters robustifying passes reweights points by the bisquare of their
// residual. The input need not be sorted; the output is sorted by x. Fewer
// than three points are returned sorted but unsmoothed.
func Lowess(xs, ys []float64, frac float64, iters int) []Point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, Point{X: xs[i], Y: ys[i]})
	}
	sort.SliceStable(pts, func(a, b int) bool { return pts[a].X < pts[b].X })
	n = len(pts)
	if n < 3 {
		return pts
	}
	if frac <= 0 || frac > 1 {
		frac = DefaultFrac
	}
	if iters < 0 {
		iters = 0
	}

	k := int(math.Ceil(frac * float64(n)))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, p := range pts {
		x[i], y[i] = p.X, p.Y
	}

	// residuals below this are noise relative to the data
	scale := 0.0
	for _, v := range y {
		scale += math.Abs(v)
	}
	scale /= float64(n)

	robust := make([]float64, n)
	for i := range robust {
		robust[i] = 1
	}
	fitted := make([]float64, n)
	weights := make([]float64, n)

	for pass := 0; pass <= iters; pass++ {
		left, right := 0, k-1
		for i := 0; i < n; i++ {
			for right < n-1 && x[i]-x[left] > x[right+1]-x[i] {
				left++
				right++
			}
			h := math.Max(x[i]-x[left], x[right]-x[i])
			for j := range weights {
				weights[j] = 0
			}
			for j := left; j <= right; j++ {
				w := 1.0
				if h > 0 {
					w = tricube(math.Abs(x[j]-x[i]) / h)
				}
				weights[j] = w * robust[j]
			}
			fitted[i] = localFit(x[left:right+1], y[left:right+1], weights[left:right+1], x[i], y[i])
		}

		if pass == iters {
			break
		}
		residuals := make([]float64, n)
		for i := range residuals {
			residuals[i] = math.Abs(y[i] - fitted[i])
		}
		s, err := stats.Median(residuals)
		if err != nil || 6*s < 1e-7*scale {
			break
		}
		for i, r := range residuals {
			robust[i] = bisquare(r / (6 * s))
		}
	}

	out := make([]Point, n)
	for i := range out {
		out[i] = Point{X: x[i], Y: fitted[i]}
	}
	return out
}

// localFit evaluates the weighted least squares line at x0. A window without
// spread in x falls back to the weighted mean; a window without weight keeps
// the observed value.
func localFit(xs, ys, w []float64, x0, y0 float64) float64 {
	total := 0.0
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := range w {
		if w[j] <= 0 {
			continue
		}
		total += w[j]
		lo = math.Min(lo, xs[j])
		hi = math.Max(hi, xs[j])
	}
	if total == 0 {
		return y0
	}
	mean := stat.Mean(ys, w)
	if hi-lo == 0 {
		return mean
	}
	alpha, beta := stat.LinearRegression(xs, ys, w, false)
	v := alpha + beta*x0
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return mean
	}
	return v
}

func tricube(u float64) float64 {
	if u >= 1 {
		return 0
	}
	t := 1 - u*u*u
	return t * t * t
}

func bisquare(u float64) float64 {
	if u >= 1 {
		return 0
	}
	t := 1 - u*u
	return t * t
}
