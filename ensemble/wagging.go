// Package ensemble implements meta-learners that train many copies of a
// base learner and combine their outputs: Wagging (weight-perturbation
// averaging) and StochasticGradientBoosting (stage-wise residual fitting).
//
// Both trainers treat the base learner as a prototype. Every member or stage
// is trained on a clone, so the learner handed in at construction time is
// never mutated and the trained ensemble can itself be cloned deeply.
package ensemble

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Wagging trains every ensemble member on the full dataset, but each member
// sees its own random redraw of the row weights (Bauer and Kohavi's weight
// bagging). Members train independently, so training parallelizes across the
// supplied pool without locking.
//
// The base learner decides the ensemble's capabilities: the ensemble can
// classify when the base satisfies model.Classifier and regress when it
// satisfies model.Regressor. A successful Fit replaces all previously
// trained state, including state from the other capability.
type Wagging struct {
	// ShowProgress enables Info-level training logs.
	ShowProgress bool

	state *model.StateManager

	size  int
	noise WeightNoise

	baseClassifier model.Classifier
	baseRegressor  model.Regressor

	classifiers []model.Classifier
	regressors  []model.Regressor
	predicting  *data.Categorical
}

// WaggingOption tunes a Wagging ensemble at construction time.
type WaggingOption func(*Wagging)

// WithNoise replaces the default Normal(1, 2) weight noise.
func WithNoise(n WeightNoise) WaggingOption {
	return func(w *Wagging) { w.noise = n }
}

// NewWagging builds an ensemble of size copies of base.
//
// base must satisfy model.Classifier, model.Regressor, or both; asking the
// finished ensemble for a capability the base does not have fails at Fit
// time with a validation error.
func NewWagging(base interface{}, size int, opts ...WaggingOption) (*Wagging, error) {
	if base == nil {
		return nil, errors.NewValidationError("base", "must not be nil", nil)
	}
	classifier, _ := base.(model.Classifier)
	regressor, _ := base.(model.Regressor)
	if classifier == nil && regressor == nil {
		return nil, errors.NewValidationError("base",
			"must implement model.Classifier or model.Regressor", fmt.Sprintf("%T", base))
	}
	if size < 1 {
		return nil, errors.NewValidationError("size", "must be at least 1", size)
	}

	w := &Wagging{
		state:          model.NewStateManager(),
		size:           size,
		noise:          NormalNoise{Mean: 1, StdDev: 2},
		baseClassifier: classifier,
		baseRegressor:  regressor,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.noise == nil {
		return nil, errors.NewValidationError("noise", "must not be nil", nil)
	}
	return w, nil
}

// Size returns the configured number of ensemble members.
func (w *Wagging) Size() int { return w.size }

// IsFitted reports whether the ensemble has been trained.
func (w *Wagging) IsFitted() bool { return w.state.IsFitted() }

// FitClassification trains size clones of the base classifier, each on the
// dataset with freshly drawn row weights. Member training runs on the pool;
// a nil pool trains the members one after another on the caller goroutine.
// Any member failure aborts the fit and leaves the ensemble unfitted.
func (w *Wagging) FitClassification(ds *data.ClassificationDataset, pool *parallel.Pool) error {
	const op = "Wagging.FitClassification"
	if w.baseClassifier == nil {
		return errors.NewValidationError("base", "base learner does not support classification", nil)
	}
	if ds == nil {
		return errors.NewValidationError("ds", "must not be nil", nil)
	}
	if ds.Size() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("ensemble.wagging")
	start := time.Now()
	if w.ShowProgress {
		logger.Info("Training Wagging classifier",
			log.EnsembleSizeKey, w.size,
			log.SamplesKey, ds.Size(),
			log.FeaturesKey, ds.NumNumeric(),
			log.CategoricalsKey, ds.NumCategorical(),
			log.WorkersKey, pool.Workers())
	}

	members := make([]model.Classifier, w.size)
	memberErrs := make([]error, w.size)
	clamped := make([]int, w.size)

	pool.Run(w.size, func(first, last int) {
		for i := first; i < last; i++ {
			member := i
			memberErrs[member] = errors.SafeExecute(fmt.Sprintf("%s member %d", op, member), func() error {
				perturbed := ds.ShallowClone()
				n, err := redrawWeights(perturbed, perturbed.Size(), w.noise.Member(member))
				clamped[member] = n
				if err != nil {
					return err
				}
				learner := w.baseClassifier.CloneClassifier()
				if err := learner.FitClassification(perturbed, pool); err != nil {
					return err
				}
				members[member] = learner
				return nil
			})
		}
	})

	if err := firstMemberError(op, memberErrs); err != nil {
		w.resetTrained()
		return err
	}
	warnOnExcessiveClamping(op, clamped, ds.Size())

	w.classifiers = members
	w.regressors = nil
	w.predicting = ds.Predicting()
	w.state.SetDimensions(ds.NumNumeric(), ds.NumCategorical(), ds.Size())
	w.state.SetFitted()

	if w.ShowProgress {
		logger.Info("Wagging classifier trained",
			log.EnsembleSizeKey, w.size,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// FitRegression is the regression counterpart of FitClassification.
func (w *Wagging) FitRegression(ds *data.RegressionDataset, pool *parallel.Pool) error {
	const op = "Wagging.FitRegression"
	if w.baseRegressor == nil {
		return errors.NewValidationError("base", "base learner does not support regression", nil)
	}
	if ds == nil {
		return errors.NewValidationError("ds", "must not be nil", nil)
	}
	if ds.Size() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("ensemble.wagging")
	start := time.Now()
	if w.ShowProgress {
		logger.Info("Training Wagging regressor",
			log.EnsembleSizeKey, w.size,
			log.SamplesKey, ds.Size(),
			log.FeaturesKey, ds.NumNumeric(),
			log.CategoricalsKey, ds.NumCategorical(),
			log.WorkersKey, pool.Workers())
	}

	members := make([]model.Regressor, w.size)
	memberErrs := make([]error, w.size)
	clamped := make([]int, w.size)

	pool.Run(w.size, func(first, last int) {
		for i := first; i < last; i++ {
			member := i
			memberErrs[member] = errors.SafeExecute(fmt.Sprintf("%s member %d", op, member), func() error {
				perturbed := ds.ShallowClone()
				n, err := redrawWeights(perturbed, perturbed.Size(), w.noise.Member(member))
				clamped[member] = n
				if err != nil {
					return err
				}
				learner := w.baseRegressor.CloneRegressor()
				if err := learner.FitRegression(perturbed, pool); err != nil {
					return err
				}
				members[member] = learner
				return nil
			})
		}
	})

	if err := firstMemberError(op, memberErrs); err != nil {
		w.resetTrained()
		return err
	}
	warnOnExcessiveClamping(op, clamped, ds.Size())

	w.regressors = members
	w.classifiers = nil
	w.predicting = nil
	w.state.SetDimensions(ds.NumNumeric(), ds.NumCategorical(), ds.Size())
	w.state.SetFitted()

	if w.ShowProgress {
		logger.Info("Wagging regressor trained",
			log.EnsembleSizeKey, w.size,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// Classify returns the normalized sum of the member class distributions.
func (w *Wagging) Classify(p data.Point) ([]float64, error) {
	const op = "Wagging.Classify"
	if !w.state.IsFitted() || w.classifiers == nil {
		return nil, errors.NewNotFittedError("Wagging", "Classify")
	}
	if err := w.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return nil, err
	}

	sum := make([]float64, w.predicting.Cardinality())
	for _, member := range w.classifiers {
		dist, err := member.Classify(p)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		if len(dist) != len(sum) {
			return nil, errors.NewDimensionError(op, len(sum), len(dist), 1)
		}
		floats.Add(sum, dist)
	}

	total := floats.Sum(sum)
	if total <= 0 {
		// Every member abstained. Report full uncertainty.
		for i := range sum {
			sum[i] = 1 / float64(len(sum))
		}
		return sum, nil
	}
	floats.Scale(1/total, sum)
	return sum, nil
}

// Predict returns the arithmetic mean of the member predictions.
func (w *Wagging) Predict(p data.Point) (float64, error) {
	const op = "Wagging.Predict"
	if !w.state.IsFitted() || w.regressors == nil {
		return 0, errors.NewNotFittedError("Wagging", "Predict")
	}
	if err := w.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return 0, err
	}

	var sum float64
	for _, member := range w.regressors {
		v, err := member.Predict(p)
		if err != nil {
			return 0, errors.Wrap(err, op)
		}
		sum += v
	}
	return sum / float64(len(w.regressors)), nil
}

// CloneClassifier returns a deep copy of the ensemble, trained members
// included, typed for classification use.
func (w *Wagging) CloneClassifier() model.Classifier { return w.clone() }

// CloneRegressor returns a deep copy of the ensemble, trained members
// included, typed for regression use.
func (w *Wagging) CloneRegressor() model.Regressor { return w.clone() }

func (w *Wagging) clone() *Wagging {
	c := &Wagging{
		ShowProgress: w.ShowProgress,
		state:        w.state.Clone(),
		size:         w.size,
		noise:        w.noise,
		predicting:   w.predicting,
	}
	if w.baseClassifier != nil {
		c.baseClassifier = w.baseClassifier.CloneClassifier()
	}
	if w.baseRegressor != nil {
		c.baseRegressor = w.baseRegressor.CloneRegressor()
	}
	if w.classifiers != nil {
		c.classifiers = make([]model.Classifier, len(w.classifiers))
		for i, m := range w.classifiers {
			c.classifiers[i] = m.CloneClassifier()
		}
	}
	if w.regressors != nil {
		c.regressors = make([]model.Regressor, len(w.regressors))
		for i, m := range w.regressors {
			c.regressors[i] = m.CloneRegressor()
		}
	}
	return c
}

func (w *Wagging) resetTrained() {
	w.classifiers = nil
	w.regressors = nil
	w.predicting = nil
	w.state.Reset()
}

// redrawWeights replaces every row weight of ds with a draw from src,
// clamping non-positive draws to weightFloor. Existing weights are replaced,
// not scaled. It reports how many draws were clamped.
func redrawWeights(ds interface{ SetWeight(i int, v float64) error }, n int, src distuv.Rander) (int, error) {
	clamped := 0
	for i := 0; i < n; i++ {
		draw := src.Rand()
		if draw < weightFloor {
			draw = weightFloor
			clamped++
		}
		if err := ds.SetWeight(i, draw); err != nil {
			return clamped, err
		}
	}
	return clamped, nil
}

// firstMemberError wraps the lowest-indexed member failure, if any.
func firstMemberError(op string, memberErrs []error) error {
	for i, err := range memberErrs {
		if err != nil {
			return errors.NewModelError(op, fmt.Sprintf("member %d training failed", i), err)
		}
	}
	return nil
}

// warnOnExcessiveClamping raises a WeightClampWarning when more than half of
// all noise draws were clamped. Occasional clamps are expected for Gaussian
// noise; a majority of them means the noise barely leaves the floor and the
// members train on near-identical flat weights.
func warnOnExcessiveClamping(op string, clamped []int, rows int) {
	total := 0
	for _, n := range clamped {
		total += n
	}
	if 2*total > rows*len(clamped) {
		errors.Warn(errors.NewWeightClampWarning(op, total, weightFloor))
	}
}
