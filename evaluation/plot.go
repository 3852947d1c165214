package evaluation

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// CurvePoint is one measurement on a learning curve: the mean absolute error
// reached on the test set after training on TrainSize rows.
type CurvePoint struct {
	TrainSize int
	MeanError float64
}

// PlotLearningCurve trains the prototype on growing prefixes of the training
// set, scores each fit on the test set, and writes the resulting error curve
// to path. The image format follows the file extension (".png", ".pdf",
// ".svg"). The measured points are returned alongside the file.
//
// Each fraction in (0, 1] selects the first max(1, fraction*Size) rows of
// the training set. Rows are taken in dataset order; shuffle the dataset
// first if its ordering is not exchangeable.
func PlotLearningCurve(prototype model.Regressor, train, test *data.RegressionDataset, fractions []float64, pool *parallel.Pool, path string) ([]CurvePoint, error) {
	const op = "evaluation.PlotLearningCurve"
	if prototype == nil {
		return nil, errors.NewValidationError("prototype", "must not be nil", nil)
	}
	if train == nil || test == nil {
		return nil, errors.NewValidationError("dataset", "train and test must not be nil", nil)
	}
	if len(fractions) == 0 {
		return nil, errors.NewValidationError("fractions", "must not be empty", nil)
	}
	if path == "" {
		return nil, errors.NewValidationError("path", "must not be empty", nil)
	}
	for _, f := range fractions {
		if f <= 0 || f > 1 {
			return nil, errors.NewValidationError("fractions", "must be in (0, 1]", f)
		}
	}

	ordered := append([]float64(nil), fractions...)
	sort.Float64s(ordered)

	points := make([]CurvePoint, 0, len(ordered))
	for _, f := range ordered {
		size := int(f * float64(train.Size()))
		if size < 1 {
			size = 1
		}
		indices := make([]int, size)
		for i := range indices {
			indices[i] = i
		}
		prefix, err := train.Subset(indices)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}

		eval, err := NewRegressionEvaluation(prototype, prefix)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		summary, err := eval.EvaluateTestSet(test, pool)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		points = append(points, CurvePoint{TrainSize: size, MeanError: summary.MeanError})
	}

	if err := renderCurve(points, path); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return points, nil
}

func renderCurve(points []CurvePoint, path string) error {
	p := plot.New()
	p.Title.Text = "Learning Curve"
	p.X.Label.Text = "Training samples"
	p.Y.Label.Text = "Mean absolute error"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.TrainSize)
		xys[i].Y = pt.MeanError
	}
	if err := plotutil.AddLinePoints(p, "MAE", xys); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
