// Package data provides the dataset storage abstraction for ensemble
// training: points with mixed numeric and categorical features, physical
// stores in row-major or column-major layout, and labeled dataset views
// with per-row weights, index subsetting, and layout-aware cloning.
package data

import (
	"fmt"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// Categorical describes the value domain of one categorical feature.
// A descriptor is immutable after construction and shared by pointer
// across every point of a schema.
type Categorical struct {
	name   string
	values []string
	n      int
}

// NewCategorical creates a descriptor with the given cardinality and
// auto-generated value labels.
func NewCategorical(cardinality int) (*Categorical, error) {
	if cardinality < 1 {
		return nil, errors.NewValidationError("cardinality", "must be at least 1", cardinality)
	}
	return &Categorical{n: cardinality}, nil
}

// NewNamedCategorical creates a descriptor from a feature name and its
// value labels. The cardinality is the number of labels.
func NewNamedCategorical(name string, values []string) (*Categorical, error) {
	if len(values) < 1 {
		return nil, errors.NewValidationError("values", "must name at least 1 category", len(values))
	}
	vals := make([]string, len(values))
	copy(vals, values)
	return &Categorical{name: name, values: vals, n: len(vals)}, nil
}

// Cardinality returns the number of categories in the domain.
func (c *Categorical) Cardinality() int {
	return c.n
}

// Name returns the feature name, or "" for an unnamed descriptor.
func (c *Categorical) Name() string {
	return c.name
}

// Value returns the label of category i. Unnamed descriptors
// auto-generate "category_i" labels.
func (c *Categorical) Value(i int) string {
	if i >= 0 && i < len(c.values) {
		return c.values[i]
	}
	return fmt.Sprintf("category_%d", i)
}

// Valid reports whether v falls inside the domain [0, Cardinality()).
func (c *Categorical) Valid(v int) bool {
	return v >= 0 && v < c.n
}
