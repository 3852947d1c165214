package data

import (
	"math"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// RegressionDataset is a dataset whose rows carry a continuous target.
type RegressionDataset struct {
	Dataset
	targets []float64
}

// NewRegressionDataset wraps a populated store with its targets.
// len(targets) must equal store.Size().
func NewRegressionDataset(store Store, targets []float64) (*RegressionDataset, error) {
	if len(targets) != store.Size() {
		return nil, errors.NewDimensionError("NewRegressionDataset", store.Size(), len(targets), 0)
	}
	return &RegressionDataset{
		Dataset: Dataset{store: store, weights: onesWeights(store.Size())},
		targets: append([]float64(nil), targets...),
	}, nil
}

// NewEmptyRegressionDataset creates an empty regression dataset over a
// fresh store of the given layout, to be filled with AddPoint.
func NewEmptyRegressionDataset(layout Layout, numNumeric int, categories []*Categorical) *RegressionDataset {
	return &RegressionDataset{
		Dataset: Dataset{store: NewStore(layout, numNumeric, categories)},
	}
}

// Target returns the target value of row i.
func (r *RegressionDataset) Target(i int) float64 { return r.targets[i] }

// Targets returns a copy of the target array.
func (r *RegressionDataset) Targets() []float64 {
	return append([]float64(nil), r.targets...)
}

// SetTarget rewrites the target of row i. NaN targets are rejected so
// residual construction cannot poison a training run silently.
func (r *RegressionDataset) SetTarget(i int, v float64) error {
	if i < 0 || i >= len(r.targets) {
		return errors.NewIndexError("RegressionDataset.SetTarget", i, len(r.targets))
	}
	if math.IsNaN(v) {
		return errors.NewValueError("RegressionDataset.SetTarget", "target: NaN")
	}
	r.targets[i] = v
	return nil
}

// AddPoint appends a point with its target and the default weight 1.0.
func (r *RegressionDataset) AddPoint(p Point, target float64) error {
	if math.IsNaN(target) {
		return errors.NewValueError("RegressionDataset.AddPoint", "target: NaN")
	}
	if err := r.store.Add(p); err != nil {
		return err
	}
	r.weights = append(r.weights, 1)
	r.targets = append(r.targets, target)
	return nil
}

// Subset builds a new regression dataset containing exactly the
// requested rows in the requested order; weights and targets travel with
// their rows.
func (r *RegressionDataset) Subset(indices []int) (*RegressionDataset, error) {
	store, err := subsetStore("RegressionDataset.Subset", r.store, indices)
	if err != nil {
		return nil, err
	}
	return &RegressionDataset{
		Dataset: Dataset{store: store, weights: gatherFloats(r.weights, indices)},
		targets: gatherFloats(r.targets, indices),
	}, nil
}

// ShallowClone returns a dataset sharing this one's feature store but
// owning fresh weight and target arrays.
func (r *RegressionDataset) ShallowClone() *RegressionDataset {
	return &RegressionDataset{
		Dataset: Dataset{store: r.store, weights: r.Weights()},
		targets: r.Targets(),
	}
}

// WithTargets returns a dataset sharing this one's feature store, with a
// fresh weight copy and the supplied targets. Boosting stages use it to
// retarget the features at the current pseudo-residuals without copying
// feature storage.
func (r *RegressionDataset) WithTargets(targets []float64) (*RegressionDataset, error) {
	if len(targets) != r.Size() {
		return nil, errors.NewDimensionError("RegressionDataset.WithTargets", r.Size(), len(targets), 0)
	}
	return &RegressionDataset{
		Dataset: Dataset{store: r.store, weights: r.Weights()},
		targets: append([]float64(nil), targets...),
	}, nil
}

// Clone returns a fully independent deep copy.
func (r *RegressionDataset) Clone() *RegressionDataset {
	return &RegressionDataset{
		Dataset: Dataset{store: r.store.Clone(), weights: r.Weights()},
		targets: r.Targets(),
	}
}

// AsLayout rebuilds the dataset on a store with the requested layout.
func (r *RegressionDataset) AsLayout(layout Layout) (*RegressionDataset, error) {
	store, err := convertStore("RegressionDataset.AsLayout", r.store, layout)
	if err != nil {
		return nil, err
	}
	return &RegressionDataset{
		Dataset: Dataset{store: store, weights: r.Weights()},
		targets: r.Targets(),
	}, nil
}
