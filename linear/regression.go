// Package linear implements weighted linear regression over numeric
// features. The solver runs the normal equations, so it is exact for
// well-conditioned problems and cheap enough to serve as the strong initial
// model of a boosting chain.
package linear

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
)

// Row counts below this threshold are assembled sequentially even when a
// pool is supplied.
const designMatrixThreshold = 1000

// LinearRegression fits y = intercept + coefs . x by weighted least
// squares, solving (XᵀWX)β = XᵀWy with W the diagonal of the row weights.
// A row with weight w pulls the fit exactly as hard as w unweighted copies
// of that row. Satisfies the model.Regressor contract.
type LinearRegression struct {
	// ShowProgress enables info-level training logs.
	ShowProgress bool

	state        *model.StateManager
	coefficients *mat.VecDense
	intercept    float64
}

// NewLinearRegression creates an untrained model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{state: model.NewStateManager()}
}

// FitRegression solves the weighted normal equations on ds. Only numeric
// features are supported; datasets with categorical features are rejected.
func (lr *LinearRegression) FitRegression(ds *data.RegressionDataset, pool *parallel.Pool) error {
	const op = "LinearRegression.FitRegression"
	if ds == nil {
		return errors.Wrap(errors.NewValidationError("dataset", "must not be nil", nil), op)
	}
	if ds.Size() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if nc := ds.NumCategorical(); nc > 0 {
		return errors.Wrap(errors.NewValidationError("dataset", "categorical features are not supported", nc), op)
	}

	n := ds.Size()
	c := ds.NumNumeric()

	logger := log.GetLoggerWithName("linear.regression")
	start := time.Now()
	if lr.ShowProgress {
		logger.Info("Training linear regression",
			log.SamplesKey, n,
			log.FeaturesKey, c,
			log.WorkersKey, pool.Workers())
	}

	lr.coefficients = nil
	lr.intercept = 0
	lr.state.Reset()

	// Scaling each row and its target by sqrt(weight) turns the weighted
	// problem into an ordinary least squares one: (SX)ᵀ(SX) = XᵀWX.
	design := mat.NewDense(n, c+1, nil)
	target := mat.NewVecDense(n, nil)
	pool.RunWithThreshold(n, designMatrixThreshold, func(first, last int) {
		for i := first; i < last; i++ {
			s := math.Sqrt(ds.Weight(i))
			p := ds.Point(i)
			design.Set(i, 0, s)
			for j := 0; j < c; j++ {
				design.Set(i, j+1, s*p.Numeric[j])
			}
			target.SetVec(i, s*ds.Target(i))
		}
	})

	var designT mat.Dense
	designT.CloneFrom(design.T())

	var gram mat.Dense
	gram.Mul(&designT, design)

	var gramInv mat.Dense
	if err := gramInv.Inverse(&gram); err != nil {
		return errors.NewModelError(op, "singular matrix", errors.ErrSingularMatrix)
	}

	var moment mat.VecDense
	moment.MulVec(&designT, target)

	solution := mat.NewVecDense(c+1, nil)
	solution.MulVec(&gramInv, &moment)

	lr.intercept = solution.AtVec(0)
	lr.coefficients = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.coefficients.SetVec(j, solution.AtVec(j+1))
	}
	lr.state.SetDimensions(c, 0, n)
	lr.state.SetFitted()

	if lr.ShowProgress {
		logger.Info("Linear regression trained",
			log.FeaturesKey, c,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// Predict evaluates the fitted hyperplane at p.
func (lr *LinearRegression) Predict(p data.Point) (float64, error) {
	const op = "LinearRegression.Predict"
	if !lr.state.IsFitted() || lr.coefficients == nil {
		return 0, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	if err := lr.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return 0, err
	}
	pred := lr.intercept
	for j := 0; j < lr.coefficients.Len(); j++ {
		pred += lr.coefficients.AtVec(j) * p.Numeric[j]
	}
	return pred, nil
}

// CloneRegressor returns a deep copy, fitted coefficients included.
func (lr *LinearRegression) CloneRegressor() model.Regressor {
	c := &LinearRegression{
		ShowProgress: lr.ShowProgress,
		state:        lr.state.Clone(),
		intercept:    lr.intercept,
	}
	if lr.coefficients != nil {
		c.coefficients = mat.VecDenseCopyOf(lr.coefficients)
	}
	return c
}

// Coefficients returns a copy of the fitted feature coefficients, without
// the intercept. It returns nil before fitting.
func (lr *LinearRegression) Coefficients() []float64 {
	if lr.coefficients == nil {
		return nil
	}
	out := make([]float64, lr.coefficients.Len())
	for j := range out {
		out[j] = lr.coefficients.AtVec(j)
	}
	return out
}

// Intercept returns the fitted intercept, zero before fitting.
func (lr *LinearRegression) Intercept() float64 { return lr.intercept }

// IsFitted reports whether the model has been trained.
func (lr *LinearRegression) IsFitted() bool { return lr.state.IsFitted() }

// Score returns the weighted coefficient of determination R² on ds.
// Constant targets make R² undefined and return an error.
func (lr *LinearRegression) Score(ds *data.RegressionDataset) (float64, error) {
	const op = "LinearRegression.Score"
	if err := lr.state.RequireFitted("LinearRegression", "Score"); err != nil {
		return 0, err
	}
	if ds == nil {
		return 0, errors.Wrap(errors.NewValidationError("dataset", "must not be nil", nil), op)
	}
	if ds.Size() == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, op)
	}

	var sw, swy float64
	for i := 0; i < ds.Size(); i++ {
		sw += ds.Weight(i)
		swy += ds.Weight(i) * ds.Target(i)
	}
	mean := swy / sw

	var tss, rss float64
	for i := 0; i < ds.Size(); i++ {
		pred, err := lr.Predict(ds.Point(i))
		if err != nil {
			return 0, errors.Wrap(err, op)
		}
		w := ds.Weight(i)
		y := ds.Target(i)
		tss += w * (y - mean) * (y - mean)
		rss += w * (y - pred) * (y - pred)
	}
	if tss == 0 {
		return 0, errors.NewValueError(op, "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}
