package kriging

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Model selects the theoretical variogram family.
type Model string

const (
	Spherical   Model = "spherical"
	Exponential Model = "exponential"
	Gaussian    Model = "gaussian"
)

// ParseModel validates a variogram model name from config.
func ParseModel(name string) (Model, error) {
	switch Model(name) {
	case Spherical, Exponential, Gaussian:
		return Model(name), nil
	default:
		return "", domain.NewConfigError(fmt.Errorf("unsupported variogram model %q", name))
	}
}

// Params are the fitted variogram parameters. Sill is the partial sill; the
// total sill is Nugget+Sill.
type Params struct {
	Nugget float64
	Sill   float64
	Range  float64
}

// Semivariance evaluates the model at separation h. By convention
// gamma(0) = 0 exactly; the nugget applies only to nonzero separations,
// which is what makes the estimator exact at observation locations when the
// nugget itself is zero.
func (m Model) Semivariance(p Params, h float64) float64 {
	if h == 0 {
		return 0
	}
	switch m {
	case Spherical:
		if h >= p.Range {
			return p.Nugget + p.Sill
		}
		r := h / p.Range
		return p.Nugget + p.Sill*(1.5*r-0.5*r*r*r)
	case Exponential:
		return p.Nugget + p.Sill*(1-math.Exp(-h/(p.Range/3)))
	case Gaussian:
		d := p.Range * 4.0 / 7.0
		return p.Nugget + p.Sill*(1-math.Exp(-h*h/(d*d)))
	}
	return math.NaN()
}

// lagBin is one class of the empirical semivariogram.
type lagBin struct {
	h     float64 // mean pair separation within the bin
	gamma float64 // mean semivariance within the bin
	n     int
}

// empiricalVariogram bins the pairwise semivariances of the input points
// into nlags equal-width distance classes, dropping empty classes. The lag
// coordinate of each class is the mean pair distance, not the bin center.
func empiricalVariogram(pts []point, values []float64, nlags int) ([]lagBin, float64, error) {
	n := len(pts)
	if n < 2 {
		return nil, 0, domain.NewDataQualityError(
			fmt.Errorf("variogram needs at least 2 points, have %d", n))
	}

	var dmax float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := pts[i].distanceTo(pts[j]); d > dmax {
				dmax = d
			}
		}
	}
	if dmax == 0 {
		return nil, 0, domain.NewDataQualityError(
			fmt.Errorf("all %d points are coincident; no distance spread to bin", n))
	}

	width := dmax / float64(nlags)
	sumH := make([]float64, nlags)
	sumG := make([]float64, nlags)
	count := make([]int, nlags)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := pts[i].distanceTo(pts[j])
			k := int(d / width)
			if k >= nlags {
				k = nlags - 1 // the single pair at exactly dmax
			}
			diff := values[i] - values[j]
			sumH[k] += d
			sumG[k] += 0.5 * diff * diff
			count[k]++
		}
	}

	bins := make([]lagBin, 0, nlags)
	for k := 0; k < nlags; k++ {
		if count[k] == 0 {
			continue
		}
		bins = append(bins, lagBin{
			h:     sumH[k] / float64(count[k]),
			gamma: sumG[k] / float64(count[k]),
			n:     count[k],
		})
	}
	return bins, dmax, nil
}

// fitVariogram fits (nugget, sill, range) to the empirical bins by
// Nelder-Mead least squares. When weighting is on, far lags are
// down-weighted with a sigmoid rolling off at 70% of the maximum lag, so
// the fit prioritizes the short-range structure kriging weights depend on.
//
// With fewer than three usable bins the optimization is underdetermined;
// the fit then falls back to deterministic moment-based parameters.
func fitVariogram(model Model, bins []lagBin, dmax float64, weighted bool) Params {
	fallback := momentParams(bins, dmax)
	if len(bins) < 3 {
		return fallback
	}

	hmax := bins[len(bins)-1].h
	weights := make([]float64, len(bins))
	for i, b := range bins {
		if weighted {
			weights[i] = 1 / (1 + math.Exp((b.h-0.7*hmax)/(0.1*hmax)))
		} else {
			weights[i] = 1
		}
	}

	objective := func(x []float64) float64 {
		p := Params{Nugget: x[0], Sill: x[1], Range: x[2]}
		if p.Nugget < 0 || p.Sill <= 0 || p.Range <= 0 {
			return math.MaxFloat64
		}
		var sse float64
		for i, b := range bins {
			r := model.Semivariance(p, b.h) - b.gamma
			sse += weights[i] * r * r
		}
		return sse
	}

	problem := optimize.Problem{Func: objective}
	x0 := []float64{fallback.Nugget, fallback.Sill, fallback.Range}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return fallback
	}
	p := Params{Nugget: result.X[0], Sill: result.X[1], Range: result.X[2]}
	if p.Nugget < 0 || p.Sill <= 0 || p.Range <= 0 || math.IsNaN(p.Nugget+p.Sill+p.Range) {
		return fallback
	}
	return p
}

// momentParams derives starting (and fallback) parameters from the
// empirical bins: nugget from the shortest lag, sill from the spread, and
// range at 65% of the maximum separation.
func momentParams(bins []lagBin, dmax float64) Params {
	if len(bins) == 0 {
		return Params{Nugget: 0, Sill: 1, Range: dmax / 2}
	}
	gammas := make([]float64, len(bins))
	for i, b := range bins {
		gammas[i] = b.gamma
	}
	sort.Float64s(gammas)
	minG, maxG := gammas[0], gammas[len(gammas)-1]

	sill := maxG - minG
	if sill <= 0 {
		sill = math.Max(maxG, 1e-10)
	}
	return Params{Nugget: 0, Sill: sill, Range: 0.65 * dmax}
}
