package data

import (
	"fmt"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// ClassificationDataset is a dataset whose rows carry a class label drawn
// from a predicting categorical descriptor.
type ClassificationDataset struct {
	Dataset
	predicting *Categorical
	labels     []int
}

// NewClassificationDataset wraps a populated store with its labels.
// len(labels) must equal store.Size() and every label must fall inside
// the predicting descriptor's domain.
func NewClassificationDataset(store Store, predicting *Categorical, labels []int) (*ClassificationDataset, error) {
	if predicting == nil {
		return nil, errors.NewValidationError("predicting", "must not be nil", nil)
	}
	if len(labels) != store.Size() {
		return nil, errors.NewDimensionError("NewClassificationDataset", store.Size(), len(labels), 0)
	}
	for i, label := range labels {
		if !predicting.Valid(label) {
			return nil, errors.NewValueError("NewClassificationDataset",
				fmt.Sprintf("label at row %d: %d outside [0, %d)", i, label, predicting.Cardinality()))
		}
	}
	return &ClassificationDataset{
		Dataset:    Dataset{store: store, weights: onesWeights(store.Size())},
		predicting: predicting,
		labels:     append([]int(nil), labels...),
	}, nil
}

// NewEmptyClassificationDataset creates an empty labeled dataset over a
// fresh store of the given layout, to be filled with AddPoint.
func NewEmptyClassificationDataset(layout Layout, numNumeric int, categories []*Categorical, predicting *Categorical) (*ClassificationDataset, error) {
	if predicting == nil {
		return nil, errors.NewValidationError("predicting", "must not be nil", nil)
	}
	return &ClassificationDataset{
		Dataset:    Dataset{store: NewStore(layout, numNumeric, categories)},
		predicting: predicting,
	}, nil
}

// Predicting returns the descriptor of the class variable.
func (c *ClassificationDataset) Predicting() *Categorical { return c.predicting }

// NumClasses returns the cardinality of the class variable.
func (c *ClassificationDataset) NumClasses() int { return c.predicting.Cardinality() }

// Label returns the class label of row i.
func (c *ClassificationDataset) Label(i int) int { return c.labels[i] }

// Labels returns a copy of the label array.
func (c *ClassificationDataset) Labels() []int {
	return append([]int(nil), c.labels...)
}

// AddPoint appends a labeled point with the default weight 1.0.
func (c *ClassificationDataset) AddPoint(p Point, label int) error {
	if !c.predicting.Valid(label) {
		return errors.NewValueError("ClassificationDataset.AddPoint",
			fmt.Sprintf("label: %d outside [0, %d)", label, c.predicting.Cardinality()))
	}
	if err := c.store.Add(p); err != nil {
		return err
	}
	c.weights = append(c.weights, 1)
	c.labels = append(c.labels, label)
	return nil
}

// Subset builds a new labeled dataset containing exactly the requested
// rows in the requested order; weights and labels travel with their rows.
func (c *ClassificationDataset) Subset(indices []int) (*ClassificationDataset, error) {
	store, err := subsetStore("ClassificationDataset.Subset", c.store, indices)
	if err != nil {
		return nil, err
	}
	return &ClassificationDataset{
		Dataset:    Dataset{store: store, weights: gatherFloats(c.weights, indices)},
		predicting: c.predicting,
		labels:     gatherInts(c.labels, indices),
	}, nil
}

// ShallowClone returns a dataset sharing this one's feature store but
// owning fresh weight and label arrays.
func (c *ClassificationDataset) ShallowClone() *ClassificationDataset {
	return &ClassificationDataset{
		Dataset:    Dataset{store: c.store, weights: c.Weights()},
		predicting: c.predicting,
		labels:     c.Labels(),
	}
}

// Clone returns a fully independent deep copy.
func (c *ClassificationDataset) Clone() *ClassificationDataset {
	return &ClassificationDataset{
		Dataset:    Dataset{store: c.store.Clone(), weights: c.Weights()},
		predicting: c.predicting,
		labels:     c.Labels(),
	}
}

// AsLayout rebuilds the dataset on a store with the requested layout.
func (c *ClassificationDataset) AsLayout(layout Layout) (*ClassificationDataset, error) {
	store, err := convertStore("ClassificationDataset.AsLayout", c.store, layout)
	if err != nil {
		return nil, err
	}
	return &ClassificationDataset{
		Dataset:    Dataset{store: store, weights: c.Weights()},
		predicting: c.predicting,
		labels:     c.Labels(),
	}, nil
}
