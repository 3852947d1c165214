// Package ensgo provides ensemble learning for Go: meta-trainers that build
// committees of weight-perturbed or residual-fitted base learners over a
// schema-aware dataset layer.
//
// The library centers on two ensemble trainers. Wagging trains every member
// on the full dataset under freshly drawn row weights and averages the
// member outputs. StochasticGradientBoosting fits a sequence of regressors
// to the residuals of the model built so far and sums the scaled stages.
// Both accept any learner that satisfies the model.Classifier or
// model.Regressor contract; CART decision trees and weighted linear
// regression ship in the box.
//
// # Features
//
//   - Weight-aware training end to end: every learner honors per-row weights
//   - Pluggable base learners through small Classifier/Regressor interfaces
//   - Deterministic behavior under fixed seeds, parallel or sequential
//   - Row-major and column-major dataset stores behind one abstraction
//   - Structured error types and structured logging throughout
//
// # Installation
//
// Install ensgo using go get:
//
//	go get github.com/YuminosukeSato/ensgo
//
// # Quick Start
//
// Boosting shallow regression trees on a toy problem:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/ensgo/data"
//	    "github.com/YuminosukeSato/ensgo/ensemble"
//	    "github.com/YuminosukeSato/ensgo/tree"
//	)
//
//	func main() {
//	    // Create training data: y = 3x + 1.
//	    ds := data.NewEmptyRegressionDataset(data.RowMajor, 1, nil)
//	    for i := 0; i < 8; i++ {
//	        x := float64(i)
//	        if err := ds.AddPoint(data.NewPoint([]float64{x}, nil), 3*x+1); err != nil {
//	            log.Fatal(err)
//	        }
//	    }
//
//	    // Create and train the ensemble.
//	    base := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(2))
//	    booster, err := ensemble.NewStochasticGradientBoosting(base, 25)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := booster.FitRegression(ds, nil); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Make a prediction.
//	    pred, err := booster.Predict(data.NewPoint([]float64{4.5}, nil))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("prediction: %.2f\n", pred)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - data: dataset stores, points, categorical schemas, weights
//   - ensemble: Wagging and StochasticGradientBoosting meta-trainers
//   - tree: CART decision-tree classifier and regressor
//   - linear: weighted linear regression
//   - metrics: regression and classification error metrics
//   - evaluation: train/test harness and learning-curve plotting
//   - datasets: synthetic dataset generators for experiments and tests
//   - core/model: learner contracts and fitted-state management
//   - core/parallel: chunked worker pools used by all trainers
//   - pkg/errors: structured error types and warning routing
//   - pkg/log: structured logging facade
//
// # Concurrency
//
// Training methods take a *parallel.Pool that bounds their concurrency. A
// nil pool runs everything on the caller goroutine; a pool of N workers lets
// Wagging train members and the trees search splits N ways in parallel.
// Results are identical either way for a fixed seed.
package ensgo
