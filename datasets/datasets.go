// Package datasets generates small synthetic problems with known structure.
// They exist for tests, examples, and benchmarks: the linear problem has an
// exact analytic answer and the circles problem is separable but nonlinear,
// which together cover the regression and classification training paths.
package datasets

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// featureSpan bounds the uniform feature draws of Linear.
const featureSpan = 5.0

// Linear returns n points whose features are drawn uniformly from
// [-featureSpan, featureSpan) and whose target is the noiseless inner
// product with coefs. The same seed always produces the same dataset.
func Linear(n int, coefs []float64, seed uint64) (*data.RegressionDataset, error) {
	const op = "datasets.Linear"
	if n < 1 {
		return nil, errors.Wrap(errors.NewValidationError("n", "must be at least 1", n), op)
	}
	if len(coefs) == 0 {
		return nil, errors.Wrap(errors.NewValidationError("coefs", "must not be empty", coefs), op)
	}

	uniform := distuv.Uniform{
		Min: -featureSpan,
		Max: featureSpan,
		Src: rand.NewPCG(seed, seed),
	}

	ds := data.NewEmptyRegressionDataset(data.RowMajor, len(coefs), nil)
	for i := 0; i < n; i++ {
		features := make([]float64, len(coefs))
		target := 0.0
		for j := range coefs {
			features[j] = uniform.Rand()
			target += coefs[j] * features[j]
		}
		if err := ds.AddPoint(data.NewPoint(features, nil), target); err != nil {
			return nil, errors.Wrap(err, op)
		}
	}
	return ds, nil
}

// Circles returns n two-dimensional points spread round-robin over
// len(radii) concentric circles centered on the origin. Point i belongs to
// class i % len(radii) and sits on radius radii[i % len(radii)], jittered
// per coordinate by zero-mean Gaussian noise. The same seed always
// produces the same dataset.
func Circles(n int, noise float64, radii []float64, seed uint64) (*data.ClassificationDataset, error) {
	const op = "datasets.Circles"
	if n < 1 {
		return nil, errors.Wrap(errors.NewValidationError("n", "must be at least 1", n), op)
	}
	if noise < 0 {
		return nil, errors.Wrap(errors.NewValidationError("noise", "must not be negative", noise), op)
	}
	if len(radii) == 0 {
		return nil, errors.Wrap(errors.NewValidationError("radii", "must not be empty", radii), op)
	}
	for _, r := range radii {
		if r <= 0 {
			return nil, errors.Wrap(errors.NewValidationError("radii", "must be positive", r), op)
		}
	}

	src := rand.NewPCG(seed, seed)
	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
	jitter := distuv.Normal{Mu: 0, Sigma: noise, Src: src}

	predicting, err := data.NewCategorical(len(radii))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	ds, err := data.NewEmptyClassificationDataset(data.RowMajor, 2, nil, predicting)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	for i := 0; i < n; i++ {
		class := i % len(radii)
		r := radii[class]
		theta := angle.Rand()
		x := r*math.Cos(theta) + jitter.Rand()
		y := r*math.Sin(theta) + jitter.Rand()
		if err := ds.AddPoint(data.NewPoint([]float64{x, y}, nil), class); err != nil {
			return nil, errors.Wrap(err, op)
		}
	}
	return ds, nil
}
