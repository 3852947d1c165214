package metrics

import (
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// MostLikely returns the index of the largest value in a class
// distribution. Ties go to the lower index. An empty distribution
// returns -1.
func MostLikely(dist []float64) int {
	if len(dist) == 0 {
		return -1
	}
	best := 0
	for i, p := range dist {
		if p > dist[best] {
			best = i
		}
	}
	return best
}

// Disagreements counts the positions where the true and predicted labels
// differ.
func Disagreements(yTrue, yPred []int) (int, error) {
	if err := checkPair("Disagreements", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	n := 0
	for i := range yTrue {
		if yTrue[i] != yPred[i] {
			n++
		}
	}
	return n, nil
}

// ErrorRate returns the fraction of labels predicted incorrectly.
func ErrorRate(yTrue, yPred []int) (float64, error) {
	d, err := Disagreements(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "ErrorRate")
	}
	return float64(d) / float64(len(yTrue)), nil
}

// Accuracy returns the fraction of labels predicted correctly.
func Accuracy(yTrue, yPred []int) (float64, error) {
	rate, err := ErrorRate(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "Accuracy")
	}
	return 1 - rate, nil
}
