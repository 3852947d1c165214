// Package evaluation drives the train, predict, aggregate loop over held-out
// data: a harness is constructed with a learner prototype and a training set,
// and every evaluation call trains a fresh clone of the prototype before
// scoring it, so the prototype itself is never mutated.
//
// RegressionEvaluation aggregates absolute and squared error through the
// metrics package; ClassificationEvaluation counts disagreements between the
// most likely predicted class and the true label. PlotLearningCurve repeats a
// regression evaluation over growing prefixes of the training set and renders
// the error curve to an image file.
package evaluation

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/metrics"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
)

// RegressionSummary holds the aggregate scores of one regression evaluation.
type RegressionSummary struct {
	// MeanError is the mean absolute error over the evaluated set.
	MeanError float64
	// MSE and RMSE are the mean squared error and its square root.
	MSE  float64
	RMSE float64
	// Predictions holds the model output for every evaluated row, in row order.
	Predictions []float64
	// TrainTime and EvalTime record how long training and prediction took.
	TrainTime time.Duration
	EvalTime  time.Duration
}

// RegressionEvaluation scores a regressor on held-out data.
//
// The harness keeps the prototype and the training set; EvaluateTestSet
// trains a clone on the training set and predicts the test set. Calling it
// again retrains from scratch, so one harness can score several test sets
// independently.
type RegressionEvaluation struct {
	// ShowProgress enables Info-level evaluation logs.
	ShowProgress bool

	prototype model.Regressor
	train     *data.RegressionDataset
	trained   model.Regressor
}

// NewRegressionEvaluation builds a harness for the prototype and training set.
func NewRegressionEvaluation(prototype model.Regressor, train *data.RegressionDataset) (*RegressionEvaluation, error) {
	if prototype == nil {
		return nil, errors.NewValidationError("prototype", "must not be nil", nil)
	}
	if train == nil {
		return nil, errors.NewValidationError("train", "must not be nil", nil)
	}
	if train.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewRegressionEvaluation")
	}
	return &RegressionEvaluation{prototype: prototype, train: train}, nil
}

// TrainedModel returns the regressor trained by the most recent evaluation,
// or nil before the first one.
func (e *RegressionEvaluation) TrainedModel() model.Regressor { return e.trained }

// EvaluateTestSet trains a clone of the prototype on the training set and
// scores it on test. The pool is handed to the learner during training and
// drives the prediction loop; a nil pool keeps everything sequential.
func (e *RegressionEvaluation) EvaluateTestSet(test *data.RegressionDataset, pool *parallel.Pool) (*RegressionSummary, error) {
	const op = "RegressionEvaluation.EvaluateTestSet"
	if test == nil {
		return nil, errors.NewValidationError("test", "must not be nil", nil)
	}
	if test.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("evaluation.regression")
	if e.ShowProgress {
		logger.Info("Evaluating regressor",
			log.SamplesKey, e.train.Size(),
			log.WorkersKey, pool.Workers())
	}

	trainStart := time.Now()
	learner := e.prototype.CloneRegressor()
	if err := learner.FitRegression(e.train, pool); err != nil {
		return nil, errors.Wrap(err, op)
	}
	trainTime := time.Since(trainStart)

	evalStart := time.Now()
	preds, err := predictAll(op, learner, &test.Dataset, pool)
	if err != nil {
		return nil, err
	}
	evalTime := time.Since(evalStart)

	truths := test.Targets()
	mae, err := metrics.MAE(truths, preds)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	mse, err := metrics.MSE(truths, preds)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	rmse, err := metrics.RMSE(truths, preds)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	e.trained = learner
	if e.ShowProgress {
		logger.Info("Regressor evaluated",
			log.SamplesKey, test.Size(),
			log.MAEKey, mae,
			log.DurationMsKey, (trainTime + evalTime).Milliseconds())
	}
	return &RegressionSummary{
		MeanError:   mae,
		MSE:         mse,
		RMSE:        rmse,
		Predictions: preds,
		TrainTime:   trainTime,
		EvalTime:    evalTime,
	}, nil
}

// ClassificationSummary holds the aggregate scores of one classification
// evaluation.
type ClassificationSummary struct {
	// Misclassified counts rows whose most likely predicted class differs
	// from the true label.
	Misclassified int
	// ErrorRate and Accuracy are Misclassified divided by the row count and
	// its complement.
	ErrorRate float64
	Accuracy  float64
	// Predicted holds the most likely class for every evaluated row.
	Predicted []int
	// TrainTime and EvalTime record how long training and prediction took.
	TrainTime time.Duration
	EvalTime  time.Duration
}

// ClassificationEvaluation scores a classifier on held-out data. It follows
// the same train-a-clone contract as RegressionEvaluation.
type ClassificationEvaluation struct {
	// ShowProgress enables Info-level evaluation logs.
	ShowProgress bool

	prototype model.Classifier
	train     *data.ClassificationDataset
	trained   model.Classifier
}

// NewClassificationEvaluation builds a harness for the prototype and
// training set.
func NewClassificationEvaluation(prototype model.Classifier, train *data.ClassificationDataset) (*ClassificationEvaluation, error) {
	if prototype == nil {
		return nil, errors.NewValidationError("prototype", "must not be nil", nil)
	}
	if train == nil {
		return nil, errors.NewValidationError("train", "must not be nil", nil)
	}
	if train.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewClassificationEvaluation")
	}
	return &ClassificationEvaluation{prototype: prototype, train: train}, nil
}

// TrainedModel returns the classifier trained by the most recent evaluation,
// or nil before the first one.
func (e *ClassificationEvaluation) TrainedModel() model.Classifier { return e.trained }

// EvaluateTestSet trains a clone of the prototype on the training set and
// scores it on test. Passing the training set itself measures training error.
func (e *ClassificationEvaluation) EvaluateTestSet(test *data.ClassificationDataset, pool *parallel.Pool) (*ClassificationSummary, error) {
	const op = "ClassificationEvaluation.EvaluateTestSet"
	if test == nil {
		return nil, errors.NewValidationError("test", "must not be nil", nil)
	}
	if test.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if test.NumClasses() != e.train.NumClasses() {
		return nil, errors.NewValidationError("test",
			fmt.Sprintf("class count differs from training set (%d)", e.train.NumClasses()),
			test.NumClasses())
	}

	logger := log.GetLoggerWithName("evaluation.classification")
	if e.ShowProgress {
		logger.Info("Evaluating classifier",
			log.SamplesKey, e.train.Size(),
			log.WorkersKey, pool.Workers())
	}

	trainStart := time.Now()
	learner := e.prototype.CloneClassifier()
	if err := learner.FitClassification(e.train, pool); err != nil {
		return nil, errors.Wrap(err, op)
	}
	trainTime := time.Since(trainStart)

	evalStart := time.Now()
	predicted, err := classifyAll(op, learner, test, pool)
	if err != nil {
		return nil, err
	}
	evalTime := time.Since(evalStart)

	truths := test.Labels()
	misses, err := metrics.Disagreements(truths, predicted)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	rate, err := metrics.ErrorRate(truths, predicted)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	e.trained = learner
	if e.ShowProgress {
		logger.Info("Classifier evaluated",
			log.SamplesKey, test.Size(),
			log.AccuracyKey, 1-rate,
			log.DurationMsKey, (trainTime + evalTime).Milliseconds())
	}
	return &ClassificationSummary{
		Misclassified: misses,
		ErrorRate:     rate,
		Accuracy:      1 - rate,
		Predicted:     predicted,
		TrainTime:     trainTime,
		EvalTime:      evalTime,
	}, nil
}

// predictAll runs the regressor over every row of ds. Rows are predicted in
// parallel chunks; a fitted regressor's Predict is a pure read, so the only
// shared writes are to disjoint slots of the output slice.
func predictAll(op string, r model.Regressor, ds *data.Dataset, pool *parallel.Pool) ([]float64, error) {
	n := ds.Size()
	preds := make([]float64, n)
	rowErrs := make([]error, n)
	pool.Run(n, func(first, last int) {
		for i := first; i < last; i++ {
			v, err := r.Predict(ds.Point(i))
			if err != nil {
				rowErrs[i] = errors.Wrap(err, fmt.Sprintf("%s: row %d", op, i))
				continue
			}
			preds[i] = v
		}
	})
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return preds, nil
}

// classifyAll runs the classifier over every row of ds and reduces each class
// distribution to its most likely label.
func classifyAll(op string, c model.Classifier, ds *data.ClassificationDataset, pool *parallel.Pool) ([]int, error) {
	n := ds.Size()
	predicted := make([]int, n)
	rowErrs := make([]error, n)
	pool.Run(n, func(first, last int) {
		for i := first; i < last; i++ {
			dist, err := c.Classify(ds.Point(i))
			if err != nil {
				rowErrs[i] = errors.Wrap(err, fmt.Sprintf("%s: row %d", op, i))
				continue
			}
			predicted[i] = metrics.MostLikely(dist)
		}
	})
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return predicted, nil
}
