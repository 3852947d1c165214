package data

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// Dataset is a logical view over one store plus an index-aligned array
// of per-row weights (default 1.0, always positive). Datasets are
// immutable snapshots except for weight mutation; derivations (Subset,
// AsLayout, clones) never touch the source.
type Dataset struct {
	store   Store
	weights []float64
}

// NewDataset wraps a store, assigning every row the default weight 1.0.
func NewDataset(store Store) *Dataset {
	return &Dataset{store: store, weights: onesWeights(store.Size())}
}

// NewDatasetWithWeights wraps a store with caller-supplied weights.
func NewDatasetWithWeights(store Store, weights []float64) (*Dataset, error) {
	if len(weights) != store.Size() {
		return nil, errors.NewDimensionError("NewDatasetWithWeights", store.Size(), len(weights), 0)
	}
	ws := make([]float64, len(weights))
	for i, w := range weights {
		if err := checkWeight("NewDatasetWithWeights", w); err != nil {
			return nil, err
		}
		ws[i] = w
	}
	return &Dataset{store: store, weights: ws}, nil
}

func onesWeights(n int) []float64 {
	ws := make([]float64, n)
	for i := range ws {
		ws[i] = 1
	}
	return ws
}

func checkWeight(op string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return errors.NewValueError(op, fmt.Sprintf("weight: %v (must be positive and finite)", w))
	}
	return nil
}

// Size returns the number of rows.
func (d *Dataset) Size() int { return d.store.Size() }

// NumNumeric returns the numeric feature count of the schema.
func (d *Dataset) NumNumeric() int { return d.store.NumNumeric() }

// NumCategorical returns the categorical feature count of the schema.
func (d *Dataset) NumCategorical() int { return len(d.store.Categories()) }

// Categories returns the categorical descriptors of the schema.
func (d *Dataset) Categories() []*Categorical { return d.store.Categories() }

// Layout reports the physical layout of the backing store.
func (d *Dataset) Layout() Layout { return d.store.Layout() }

// Store exposes the backing store for layout-aware callers.
func (d *Dataset) Store() Store { return d.store }

// Point returns the point at row i. Panics when i is out of range, like
// Store.Point.
func (d *Dataset) Point(i int) Point { return d.store.Point(i) }

// Weight returns the weight of row i.
func (d *Dataset) Weight(i int) float64 { return d.weights[i] }

// SetWeight rewrites the weight of row i. The weight must stay positive
// and finite.
func (d *Dataset) SetWeight(i int, w float64) error {
	if i < 0 || i >= len(d.weights) {
		return errors.NewIndexError("Dataset.SetWeight", i, len(d.weights))
	}
	if err := checkWeight("Dataset.SetWeight", w); err != nil {
		return err
	}
	d.weights[i] = w
	return nil
}

// Weights returns a copy of the weight array.
func (d *Dataset) Weights() []float64 {
	return append([]float64(nil), d.weights...)
}

// AddPoint appends a point with the default weight 1.0.
func (d *Dataset) AddPoint(p Point) error {
	if err := d.store.Add(p); err != nil {
		return err
	}
	d.weights = append(d.weights, 1)
	return nil
}

// Subset builds a new dataset containing exactly the requested rows in
// the requested order. Duplicates are permitted and produce duplicated
// rows; every index must fall in [0, Size()). Weights are carried along
// per selected index. The source is never mutated.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	store, err := subsetStore("Dataset.Subset", d.store, indices)
	if err != nil {
		return nil, err
	}
	return &Dataset{store: store, weights: gatherFloats(d.weights, indices)}, nil
}

// ShallowClone returns a dataset sharing this one's store but owning a
// fresh copy of the weight array. Ensemble members redraw weights on
// shallow clones so feature storage is shared while the mutable state
// stays private per member.
func (d *Dataset) ShallowClone() *Dataset {
	return &Dataset{store: d.store, weights: d.Weights()}
}

// Clone returns a fully independent deep copy.
func (d *Dataset) Clone() *Dataset {
	return &Dataset{store: d.store.Clone(), weights: d.Weights()}
}

// AsLayout rebuilds the dataset on a store with the requested layout.
// Points are deep-copied even when the layout already matches, so the
// result never aliases this dataset's feature storage.
func (d *Dataset) AsLayout(layout Layout) (*Dataset, error) {
	store, err := convertStore("Dataset.AsLayout", d.store, layout)
	if err != nil {
		return nil, err
	}
	return &Dataset{store: store, weights: d.Weights()}, nil
}

// subsetStore materializes the layout-aware row gather shared by all
// dataset types.
//
// Row-major: fetch each requested row directly, O(k) appends.
//
// Column-major: build a lookup from original row position to the output
// positions requesting it, then make one pass over the store's stable
// row order, deep-copying each selected row into its output slots. One
// linear scan beats k random column gathers for large index lists, and
// the positions list keeps duplicate indices correct.
func subsetStore(op string, src Store, indices []int) (Store, error) {
	n := src.Size()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewIndexError(op, idx, n)
		}
	}

	out := src.EmptyClone()

	if src.Layout() == RowMajor {
		for _, idx := range indices {
			if err := out.Add(src.Point(idx)); err != nil {
				return nil, errors.Wrap(err, op)
			}
		}
		return out, nil
	}

	lookup := make(map[int][]int, len(indices))
	for pos, idx := range indices {
		lookup[idx] = append(lookup[idx], pos)
	}

	gathered := make([]Point, len(indices))
	for i := 0; i < n; i++ {
		positions, ok := lookup[i]
		if !ok {
			continue
		}
		p := src.Point(i)
		gathered[positions[0]] = p
		for _, pos := range positions[1:] {
			gathered[pos] = p.Clone()
		}
	}

	for _, p := range gathered {
		if err := out.Add(p); err != nil {
			return nil, errors.Wrap(err, op)
		}
	}
	return out, nil
}

// convertStore rebuilds src on the requested layout with deep-copied rows.
func convertStore(op string, src Store, layout Layout) (Store, error) {
	out := NewStore(layout, src.NumNumeric(), src.Categories())
	for i := 0; i < src.Size(); i++ {
		if err := out.Add(src.Point(i).Clone()); err != nil {
			return nil, errors.Wrap(err, op)
		}
	}
	return out, nil
}

// gatherFloats selects values by index, preserving order and duplicates.
func gatherFloats(src []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for pos, idx := range indices {
		out[pos] = src[idx]
	}
	return out
}

// gatherInts selects values by index, preserving order and duplicates.
func gatherInts(src []int, indices []int) []int {
	out := make([]int, len(indices))
	for pos, idx := range indices {
		out[pos] = src[idx]
	}
	return out
}
