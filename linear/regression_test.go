package linear

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

func regressionDataset(t *testing.T, rows [][]float64, targets []float64) *data.RegressionDataset {
	t.Helper()
	if len(rows) == 0 || len(rows) != len(targets) {
		t.Fatalf("bad fixture: %d rows, %d targets", len(rows), len(targets))
	}
	ds := data.NewEmptyRegressionDataset(data.RowMajor, len(rows[0]), nil)
	for i, r := range rows {
		if err := ds.AddPoint(data.NewPoint(r, nil), targets[i]); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	return ds
}

func TestLinearRegressionExactRecovery(t *testing.T) {
	// y = 3 + 2*x1 - x2 over a small grid, noiseless.
	var rows [][]float64
	var targets []float64
	for x1 := 0; x1 < 3; x1++ {
		for x2 := 0; x2 < 3; x2++ {
			rows = append(rows, []float64{float64(x1), float64(x2)})
			targets = append(targets, 3+2*float64(x1)-float64(x2))
		}
	}
	ds := regressionDataset(t, rows, targets)

	lr := NewLinearRegression()
	if lr.IsFitted() {
		t.Fatal("new model reports fitted")
	}
	if err := lr.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}

	if got := lr.Intercept(); math.Abs(got-3) > 1e-9 {
		t.Errorf("intercept = %g, want 3", got)
	}
	coefs := lr.Coefficients()
	if len(coefs) != 2 {
		t.Fatalf("got %d coefficients, want 2", len(coefs))
	}
	if math.Abs(coefs[0]-2) > 1e-9 || math.Abs(coefs[1]+1) > 1e-9 {
		t.Errorf("coefficients = %v, want [2 -1]", coefs)
	}

	pred, err := lr.Predict(data.NewPoint([]float64{5, 7}, nil))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if want := 3.0 + 2*5 - 7; math.Abs(pred-want) > 1e-9 {
		t.Errorf("Predict = %g, want %g", pred, want)
	}

	score, err := lr.Score(ds)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("Score = %g, want 1", score)
	}
}

// A row with weight w must influence the fit exactly like w copies of the
// same row.
func TestLinearRegressionWeightEquivalence(t *testing.T) {
	weighted := regressionDataset(t,
		[][]float64{{0}, {1}, {2}},
		[]float64{0, 1, 5})
	if err := weighted.SetWeight(1, 3); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}

	duplicated := regressionDataset(t,
		[][]float64{{0}, {1}, {1}, {1}, {2}},
		[]float64{0, 1, 1, 1, 5})

	a := NewLinearRegression()
	if err := a.FitRegression(weighted, nil); err != nil {
		t.Fatalf("weighted fit: %v", err)
	}
	b := NewLinearRegression()
	if err := b.FitRegression(duplicated, nil); err != nil {
		t.Fatalf("duplicated fit: %v", err)
	}

	if got, want := a.Intercept(), b.Intercept(); math.Abs(got-want) > 1e-9 {
		t.Errorf("intercepts differ: weighted %g, duplicated %g", got, want)
	}
	ca, cb := a.Coefficients(), b.Coefficients()
	if math.Abs(ca[0]-cb[0]) > 1e-9 {
		t.Errorf("slopes differ: weighted %g, duplicated %g", ca[0], cb[0])
	}
}

func TestLinearRegressionSingularMatrix(t *testing.T) {
	// The second feature is exactly twice the first, so the gram matrix
	// has no inverse.
	ds := regressionDataset(t,
		[][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}},
		[]float64{1, 2, 3, 4})

	lr := NewLinearRegression()
	err := lr.FitRegression(ds, nil)
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Fatalf("FitRegression error = %v, want ErrSingularMatrix", err)
	}
	var me *errors.ModelError
	if !errors.As(err, &me) {
		t.Fatalf("FitRegression error = %v, want ModelError", err)
	}
	if lr.IsFitted() {
		t.Fatal("model reports fitted after singular failure")
	}
}

func TestLinearRegressionValidation(t *testing.T) {
	lr := NewLinearRegression()

	var ve *errors.ValidationError
	if err := lr.FitRegression(nil, nil); !errors.As(err, &ve) {
		t.Fatalf("nil dataset error = %v, want ValidationError", err)
	}

	empty := data.NewEmptyRegressionDataset(data.RowMajor, 1, nil)
	if err := lr.FitRegression(empty, nil); !errors.Is(err, errors.ErrEmptyData) {
		t.Fatalf("empty dataset error = %v, want ErrEmptyData", err)
	}

	kind, err := data.NewCategorical(2)
	if err != nil {
		t.Fatalf("categorical: %v", err)
	}
	withCats := data.NewEmptyRegressionDataset(data.RowMajor, 1, []*data.Categorical{kind})
	if err := withCats.AddPoint(data.NewPoint([]float64{1}, []int{0}), 1); err != nil {
		t.Fatalf("AddPoint: %v", err)
	}
	if err := lr.FitRegression(withCats, nil); !errors.As(err, &ve) {
		t.Fatalf("categorical dataset error = %v, want ValidationError", err)
	}

	var nf *errors.NotFittedError
	if _, err := lr.Predict(data.NewPoint([]float64{1}, nil)); !errors.As(err, &nf) {
		t.Fatalf("unfitted Predict error = %v, want NotFittedError", err)
	}

	ds := regressionDataset(t, [][]float64{{0}, {1}, {2}}, []float64{0, 1, 2})
	if err := lr.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	var de *errors.DimensionError
	if _, err := lr.Predict(data.NewPoint([]float64{1, 2}, nil)); !errors.As(err, &de) {
		t.Fatalf("shape mismatch error = %v, want DimensionError", err)
	}
}

func TestLinearRegressionCloneIsolation(t *testing.T) {
	up := regressionDataset(t, [][]float64{{0}, {1}, {2}, {3}}, []float64{0, 1, 2, 3})
	down := regressionDataset(t, [][]float64{{0}, {1}, {2}, {3}}, []float64{0, -1, -2, -3})

	lr := NewLinearRegression()
	if err := lr.FitRegression(up, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	clone := lr.CloneRegressor()
	if err := clone.FitRegression(down, nil); err != nil {
		t.Fatalf("clone fit: %v", err)
	}

	probe := data.NewPoint([]float64{10}, nil)
	orig, err := lr.Predict(probe)
	if err != nil {
		t.Fatalf("original Predict: %v", err)
	}
	flipped, err := clone.Predict(probe)
	if err != nil {
		t.Fatalf("clone Predict: %v", err)
	}
	if math.Abs(orig-10) > 1e-9 {
		t.Errorf("original drifted after clone retrain: %g", orig)
	}
	if math.Abs(flipped+10) > 1e-9 {
		t.Errorf("retrained clone predicts %g, want -10", flipped)
	}
}

func TestLinearRegressionScoreUndefined(t *testing.T) {
	ds := regressionDataset(t, [][]float64{{0}, {1}, {2}}, []float64{5, 5, 5})
	lr := NewLinearRegression()
	if err := lr.FitRegression(ds, nil); err != nil {
		t.Fatalf("FitRegression: %v", err)
	}
	var ve *errors.ValueError
	if _, err := lr.Score(ds); !errors.As(err, &ve) {
		t.Fatalf("Score error = %v, want ValueError", err)
	}
}
