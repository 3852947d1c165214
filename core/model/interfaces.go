// Package model provides the base learner contracts shared by all trainers.
// This file complements the state management in state_manager.go and base.go.
package model

import (
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
)

// Classifier is the contract for learners that can be trained on labeled
// data and produce a class-probability distribution for a point.
//
// Capability is expressed through interface satisfaction: an ensemble
// trainer asks for a Classifier when it is used for classification and
// reports a validation error when its base learner does not satisfy it.
type Classifier interface {
	// FitClassification trains the learner on the dataset. The pool bounds
	// intra-learner concurrency; a nil pool means sequential execution.
	// Implementations must honor per-row weights.
	FitClassification(ds *data.ClassificationDataset, pool *parallel.Pool) error

	// Classify returns the class-probability distribution for a point.
	// The returned slice has one entry per class of the predicting
	// descriptor and sums to 1 for a fitted learner.
	Classify(p data.Point) ([]float64, error)

	// CloneClassifier returns a deep copy, trained state included.
	// Training the copy must never mutate the original.
	CloneClassifier() Classifier
}

// Regressor is the contract for learners that can be trained on
// real-valued targets and predict a scalar for a point.
type Regressor interface {
	// FitRegression trains the learner on the dataset. The pool bounds
	// intra-learner concurrency; a nil pool means sequential execution.
	// Implementations must honor per-row weights.
	FitRegression(ds *data.RegressionDataset, pool *parallel.Pool) error

	// Predict returns the predicted target value for a point.
	Predict(p data.Point) (float64, error)

	// CloneRegressor returns a deep copy, trained state included.
	// Training the copy must never mutate the original.
	CloneRegressor() Regressor
}
