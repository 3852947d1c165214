package ensemble

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultShrinkage = 0.1
	defaultSubsample = 1.0
)

// StochasticGradientBoosting builds an additive regression model stage by
// stage. Every stage fits a clone of the base regressor to the pseudo
// residuals of the model so far, optionally on a without-replacement row
// subsample, and joins the model scaled by the shrinkage.
//
// The model starts from the weighted mean target, or from an optional
// initial regressor trained on the raw targets. Stages are inherently
// sequential; the pool handed to FitRegression is only passed through to
// the base learner for intra-stage parallelism.
type StochasticGradientBoosting struct {
	// ShowProgress enables Info-level training logs.
	ShowProgress bool

	state *model.StateManager

	base      model.Regressor
	initial   model.Regressor
	stages    int
	shrinkage float64
	fraction  float64
	seed      uint64

	f0          float64
	trainedInit model.Regressor
	members     []model.Regressor
}

// BoostOption tunes a StochasticGradientBoosting trainer at construction time.
type BoostOption func(*StochasticGradientBoosting)

// WithShrinkage sets the stage scaling factor. Must lie in (0, 1].
func WithShrinkage(v float64) BoostOption {
	return func(s *StochasticGradientBoosting) { s.shrinkage = v }
}

// WithSubsample sets the fraction of rows each stage trains on. Must lie in
// (0, 1]. A fraction of 1 trains every stage on all rows and consumes no
// randomness at all.
func WithSubsample(fraction float64) BoostOption {
	return func(s *StochasticGradientBoosting) { s.fraction = fraction }
}

// WithSeed sets the seed for the per-stage subsampling streams.
func WithSeed(seed uint64) BoostOption {
	return func(s *StochasticGradientBoosting) { s.seed = seed }
}

// WithInitialRegressor starts the additive model from strong, trained on the
// raw targets, instead of the weighted mean target. The stages then correct
// the strong learner's residuals.
func WithInitialRegressor(strong model.Regressor) BoostOption {
	return func(s *StochasticGradientBoosting) { s.initial = strong }
}

// NewStochasticGradientBoosting builds a boosting trainer that runs stages
// rounds of residual fitting with clones of base. Zero stages are allowed
// and produce a constant model.
func NewStochasticGradientBoosting(base model.Regressor, stages int, opts ...BoostOption) (*StochasticGradientBoosting, error) {
	if base == nil {
		return nil, errors.NewValidationError("base", "must not be nil", nil)
	}
	if stages < 0 {
		return nil, errors.NewValidationError("stages", "must not be negative", stages)
	}

	s := &StochasticGradientBoosting{
		state:     model.NewStateManager(),
		base:      base,
		stages:    stages,
		shrinkage: defaultShrinkage,
		fraction:  defaultSubsample,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shrinkage <= 0 || s.shrinkage > 1 {
		return nil, errors.NewValidationError("shrinkage", "must lie in (0, 1]", s.shrinkage)
	}
	if s.fraction <= 0 || s.fraction > 1 {
		return nil, errors.NewValidationError("subsample", "must lie in (0, 1]", s.fraction)
	}
	return s, nil
}

// Stages returns the configured number of boosting stages.
func (s *StochasticGradientBoosting) Stages() int { return s.stages }

// Shrinkage returns the stage scaling factor.
func (s *StochasticGradientBoosting) Shrinkage() float64 { return s.shrinkage }

// IsFitted reports whether the trainer has been trained.
func (s *StochasticGradientBoosting) IsFitted() bool { return s.state.IsFitted() }

// FitRegression trains the additive model. A stage failure aborts the whole
// run and leaves the trainer unfitted; nothing of the failed run survives.
func (s *StochasticGradientBoosting) FitRegression(ds *data.RegressionDataset, pool *parallel.Pool) (err error) {
	const op = "StochasticGradientBoosting.FitRegression"
	defer errors.Recover(&err, op)

	if ds == nil {
		return errors.NewValidationError("ds", "must not be nil", nil)
	}
	n := ds.Size()
	if n == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("ensemble.boosting")
	begin := time.Now()
	if s.ShowProgress {
		logger.Info("Training gradient boosting",
			log.EnsembleSizeKey, s.stages,
			log.ShrinkageKey, s.shrinkage,
			log.SubsampleKey, s.fraction,
			log.SamplesKey, n,
			log.FeaturesKey, ds.NumNumeric(),
			log.WorkersKey, pool.Workers())
	}

	s.resetTrained()

	// current holds the model's running prediction for every training row.
	current := make([]float64, n)

	var f0 float64
	var trainedInit model.Regressor
	if s.initial != nil {
		trainedInit = s.initial.CloneRegressor()
		if err := trainedInit.FitRegression(ds, pool); err != nil {
			return errors.NewModelError(op, "initial regressor training failed", err)
		}
		for i := 0; i < n; i++ {
			v, perr := trainedInit.Predict(ds.Point(i))
			if perr != nil {
				return errors.Wrap(perr, op)
			}
			current[i] = v
		}
		if cerr := errors.CheckNumericalStability(op, current, -1); cerr != nil {
			return cerr
		}
	} else {
		f0 = stat.Mean(ds.Targets(), ds.Weights())
		if cerr := errors.CheckScalar(op, f0, -1); cerr != nil {
			return cerr
		}
		for i := range current {
			current[i] = f0
		}
	}

	residuals := make([]float64, n)
	members := make([]model.Regressor, 0, s.stages)

	for stage := 0; stage < s.stages; stage++ {
		for i := 0; i < n; i++ {
			residuals[i] = ds.Target(i) - current[i]
		}
		stageDS, serr := ds.WithTargets(residuals)
		if serr != nil {
			return errors.Wrap(serr, op)
		}
		if s.fraction < 1 {
			stageDS, serr = stageDS.Subset(s.sampleStage(n, stage))
			if serr != nil {
				return errors.Wrap(serr, op)
			}
		}

		member := s.base.CloneRegressor()
		if terr := member.FitRegression(stageDS, pool); terr != nil {
			return errors.NewModelError(op, fmt.Sprintf("stage %d training failed", stage), terr)
		}

		for i := 0; i < n; i++ {
			v, perr := member.Predict(ds.Point(i))
			if perr != nil {
				return errors.Wrap(perr, op)
			}
			current[i] += s.shrinkage * v
		}
		if cerr := errors.CheckNumericalStability(op, current, stage); cerr != nil {
			return cerr
		}

		members = append(members, member)
		if s.ShowProgress {
			logger.Debug("stage complete", log.StageKey, stage)
		}
	}

	s.f0 = f0
	s.trainedInit = trainedInit
	s.members = members
	s.state.SetDimensions(ds.NumNumeric(), ds.NumCategorical(), n)
	s.state.SetFitted()

	if s.ShowProgress {
		logger.Info("Gradient boosting trained",
			log.EnsembleSizeKey, len(members),
			log.DurationMsKey, time.Since(begin).Milliseconds())
	}
	return nil
}

// Predict evaluates the additive model: the constant or initial-regressor
// term plus the shrinkage-scaled sum of the stage predictions.
func (s *StochasticGradientBoosting) Predict(p data.Point) (float64, error) {
	const op = "StochasticGradientBoosting.Predict"
	if err := s.state.RequireFitted("StochasticGradientBoosting", "Predict"); err != nil {
		return 0, err
	}
	if err := s.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return 0, err
	}

	sum := s.f0
	if s.trainedInit != nil {
		v, err := s.trainedInit.Predict(p)
		if err != nil {
			return 0, errors.Wrap(err, op)
		}
		sum = v
	}
	for _, member := range s.members {
		v, err := member.Predict(p)
		if err != nil {
			return 0, errors.Wrap(err, op)
		}
		sum += s.shrinkage * v
	}
	return sum, nil
}

// CloneRegressor returns a deep copy of the trainer, trained stages included.
func (s *StochasticGradientBoosting) CloneRegressor() model.Regressor {
	c := &StochasticGradientBoosting{
		ShowProgress: s.ShowProgress,
		state:        s.state.Clone(),
		base:         s.base.CloneRegressor(),
		stages:       s.stages,
		shrinkage:    s.shrinkage,
		fraction:     s.fraction,
		seed:         s.seed,
		f0:           s.f0,
	}
	if s.initial != nil {
		c.initial = s.initial.CloneRegressor()
	}
	if s.trainedInit != nil {
		c.trainedInit = s.trainedInit.CloneRegressor()
	}
	if s.members != nil {
		c.members = make([]model.Regressor, len(s.members))
		for i, m := range s.members {
			c.members[i] = m.CloneRegressor()
		}
	}
	return c
}

func (s *StochasticGradientBoosting) resetTrained() {
	s.f0 = 0
	s.trainedInit = nil
	s.members = nil
	s.state.Reset()
}

// sampleStage draws max(1, fraction*n) distinct row indices for a stage.
// Each stage derives its own PCG stream from the seed and its index, so a
// stage draws the same rows no matter how many stages run after it.
func (s *StochasticGradientBoosting) sampleStage(n, stage int) []int {
	k := int(s.fraction * float64(n))
	if k < 1 {
		k = 1
	}
	rng := rand.New(rand.NewPCG(s.seed, uint64(stage)))
	return rng.Perm(n)[:k]
}
