// Package metrics provides evaluation metrics over prediction slices.
// Regression metrics compare true and predicted target values;
// classification metrics compare label assignments. Ill-defined statistics
// raise an UndefinedMetricWarning and return their documented fallback
// instead of failing, so evaluation loops keep running.
package metrics

import (
	"math"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// checkPair validates that yTrue and yPred are non-empty and aligned.
func checkPair(op string, nTrue, nPred int) error {
	if nTrue == 0 {
		return errors.NewValueError(op, "empty input")
	}
	if nPred != nTrue {
		return errors.NewDimensionError(op, nTrue, nPred, 0)
	}
	return nil
}

// MSE computes the mean squared error between true and predicted values.
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE computes the root mean squared error between true and predicted
// values.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error between true and predicted values.
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// MeanAbsoluteValue computes the mean of |v| over values. Useful as a scale
// reference when judging a regression error.
func MeanAbsoluteValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewValueError("MeanAbsoluteValue", "empty input")
	}
	var sum float64
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values)), nil
}

// R2Score computes the coefficient of determination. When yTrue has no
// variance the score is ill-defined: a warning is raised and 0 is returned.
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2Score", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}

	var mean float64
	for _, y := range yTrue {
		mean += y
	}
	mean /= float64(len(yTrue))

	var tss, rss float64
	for i := range yTrue {
		tss += (yTrue[i] - mean) * (yTrue[i] - mean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}
	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "zero variance in yTrue", 0))
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// MAPE computes the mean absolute percentage error, skipping rows whose
// true value is zero. All-zero true values make the metric meaningless and
// return an error.
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAPE", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i := range yTrue {
		if yTrue[i] == 0 {
			continue
		}
		sum += math.Abs(yTrue[i]-yPred[i]) / math.Abs(yTrue[i])
		valid++
	}
	if valid == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore computes 1 - Var(yTrue - yPred) / Var(yTrue).
// When yTrue has no variance the score is ill-defined: a warning is raised
// and 0 is returned.
func ExplainedVarianceScore(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("ExplainedVarianceScore", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}

	n := float64(len(yTrue))
	var trueMean, diffMean float64
	for i := range yTrue {
		trueMean += yTrue[i]
		diffMean += yTrue[i] - yPred[i]
	}
	trueMean /= n
	diffMean /= n

	var trueVar, diffVar float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		trueVar += (yTrue[i] - trueMean) * (yTrue[i] - trueMean)
		diffVar += (diff - diffMean) * (diff - diffMean)
	}
	if trueVar == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("ExplainedVarianceScore", "zero variance in yTrue", 0))
		return 0, nil
	}
	return 1 - diffVar/trueVar, nil
}
