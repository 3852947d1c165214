package ensemble

import (
	"sync"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// trainRun captures what one learner clone saw during a training call.
type trainRun struct {
	weights []float64
	targets []float64
	labels  []int
}

// recorder collects training runs across learner clones. Clones share it by
// pointer, so pooled training needs the mutex.
type recorder struct {
	mu   sync.Mutex
	runs []trainRun
}

func (r *recorder) add(run trainRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

// meanRegressor predicts the weighted mean target of its training set.
type meanRegressor struct {
	rec    *recorder
	mean   float64
	fitted bool
}

func (m *meanRegressor) FitRegression(ds *data.RegressionDataset, _ *parallel.Pool) error {
	if m.rec != nil {
		m.rec.add(trainRun{weights: ds.Weights(), targets: ds.Targets()})
	}
	m.mean = stat.Mean(ds.Targets(), ds.Weights())
	m.fitted = true
	return nil
}

func (m *meanRegressor) Predict(data.Point) (float64, error) {
	if !m.fitted {
		return 0, errors.New("meanRegressor: not fitted")
	}
	return m.mean, nil
}

func (m *meanRegressor) CloneRegressor() model.Regressor {
	c := *m
	return &c
}

// constRegressor always predicts value, which makes boosting arithmetic
// exactly checkable.
type constRegressor struct {
	rec   *recorder
	value float64
}

func (c *constRegressor) FitRegression(ds *data.RegressionDataset, _ *parallel.Pool) error {
	if c.rec != nil {
		c.rec.add(trainRun{weights: ds.Weights(), targets: ds.Targets()})
	}
	return nil
}

func (c *constRegressor) Predict(data.Point) (float64, error) { return c.value, nil }

func (c *constRegressor) CloneRegressor() model.Regressor {
	clone := *c
	return &clone
}

// tallyClassifier learns the weighted class frequencies of its training set
// and answers every point with that distribution.
type tallyClassifier struct {
	rec    *recorder
	dist   []float64
	fitted bool
}

func (t *tallyClassifier) FitClassification(ds *data.ClassificationDataset, _ *parallel.Pool) error {
	if t.rec != nil {
		t.rec.add(trainRun{weights: ds.Weights(), labels: ds.Labels()})
	}
	dist := make([]float64, ds.NumClasses())
	total := 0.0
	for i := 0; i < ds.Size(); i++ {
		dist[ds.Label(i)] += ds.Weight(i)
		total += ds.Weight(i)
	}
	for i := range dist {
		dist[i] /= total
	}
	t.dist = dist
	t.fitted = true
	return nil
}

func (t *tallyClassifier) Classify(data.Point) ([]float64, error) {
	if !t.fitted {
		return nil, errors.New("tallyClassifier: not fitted")
	}
	return append([]float64(nil), t.dist...), nil
}

func (t *tallyClassifier) CloneClassifier() model.Classifier {
	c := *t
	if t.dist != nil {
		c.dist = append([]float64(nil), t.dist...)
	}
	return &c
}

// failingRegressor fails every training call with cause.
type failingRegressor struct{ cause error }

func (f *failingRegressor) FitRegression(*data.RegressionDataset, *parallel.Pool) error {
	return f.cause
}

func (f *failingRegressor) Predict(data.Point) (float64, error) { return 0, f.cause }

func (f *failingRegressor) CloneRegressor() model.Regressor {
	c := *f
	return &c
}

// flakyRegressor fails on the n-th training call, counted across clones.
type flakyRegressor struct {
	calls  *int32
	failOn int32
}

func (f *flakyRegressor) FitRegression(*data.RegressionDataset, *parallel.Pool) error {
	if atomic.AddInt32(f.calls, 1) == f.failOn {
		return errors.New("injected stage failure")
	}
	return nil
}

func (f *flakyRegressor) Predict(data.Point) (float64, error) { return 0, nil }

func (f *flakyRegressor) CloneRegressor() model.Regressor {
	c := *f
	return &c
}

// panickyRegressor panics during training.
type panickyRegressor struct{}

func (panickyRegressor) FitRegression(*data.RegressionDataset, *parallel.Pool) error {
	panic("injected training panic")
}

func (panickyRegressor) Predict(data.Point) (float64, error) { return 0, nil }

func (p panickyRegressor) CloneRegressor() model.Regressor { return p }

// makeRegression builds an all-numeric dataset whose values encode the row
// index: features {i, 2i}, target 3i, weights left at 1.
func makeRegression(t *testing.T, n int) *data.RegressionDataset {
	t.Helper()
	ds := data.NewEmptyRegressionDataset(data.RowMajor, 2, nil)
	for i := 0; i < n; i++ {
		p := data.NewPoint([]float64{float64(i), float64(2 * i)}, nil)
		if err := ds.AddPoint(p, float64(3*i)); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	return ds
}

func makeClassification(t *testing.T, n int) *data.ClassificationDataset {
	t.Helper()
	predicting, err := data.NewNamedCategorical("class", []string{"neg", "pos"})
	if err != nil {
		t.Fatalf("predicting: %v", err)
	}
	ds, err := data.NewEmptyClassificationDataset(data.RowMajor, 2, nil, predicting)
	if err != nil {
		t.Fatalf("empty dataset: %v", err)
	}
	for i := 0; i < n; i++ {
		p := data.NewPoint([]float64{float64(i), float64(2 * i)}, nil)
		if err := ds.AddPoint(p, i%2); err != nil {
			t.Fatalf("AddPoint(%d): %v", i, err)
		}
	}
	return ds
}

func float64sEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
