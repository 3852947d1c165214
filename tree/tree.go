// Package tree implements CART decision-tree base learners over the data
// package's mixed numeric and categorical points. Both learners honor
// per-row weights, which is what makes them usable inside weight-resampling
// ensembles, and both satisfy the core/model contracts so they can serve as
// ensemble members directly.
package tree

import (
	"sort"

	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// Criterion names for the classifier. The regressor always minimizes the
// weighted squared error.
const (
	CriterionGini    = "gini"
	CriterionEntropy = "entropy"
	CriterionMSE     = "squared_error"
)

type config struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	criterion       string
}

func defaultConfig() config {
	return config{
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
}

// Option tunes a decision tree at construction time.
type Option func(*config)

// WithMaxDepth bounds the tree depth. Zero leaves the depth unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of rows a node needs before a
// split is considered.
func WithMinSamplesSplit(n int) Option {
	return func(c *config) { c.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum number of rows each side of a split
// must keep.
func WithMinSamplesLeaf(n int) Option {
	return func(c *config) { c.minSamplesLeaf = n }
}

// WithCriterion selects the impurity criterion. The classifier accepts
// "gini" (default) and "entropy"; the regressor accepts "squared_error".
func WithCriterion(name string) Option {
	return func(c *config) { c.criterion = name }
}

func (c config) validate(op string) error {
	if c.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must not be negative", c.maxDepth)
	}
	if c.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", c.minSamplesSplit)
	}
	if c.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", c.minSamplesLeaf)
	}
	return nil
}

// node is one node of a fitted tree. Internal nodes route points by a
// numeric threshold or a categorical equality test; leaves carry the
// prediction payload for their kind of tree.
type node struct {
	leaf bool

	// Routing. numeric selects which feature array the test reads.
	numeric   bool
	feature   int
	threshold float64 // numeric: left when value <= threshold
	match     int     // categorical: left when value == match

	left  *node
	right *node

	// Leaf payloads.
	value float64   // regression mean
	dist  []float64 // classification distribution, sums to 1
}

func (n *node) route(p data.Point) *node {
	if n.numeric {
		if p.Numeric[n.feature] <= n.threshold {
			return n.left
		}
		return n.right
	}
	if p.Categorical[n.feature] == n.match {
		return n.left
	}
	return n.right
}

func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	c := *n
	if n.dist != nil {
		c.dist = append([]float64(nil), n.dist...)
	}
	c.left = n.left.clone()
	c.right = n.right.clone()
	return &c
}

// split describes the best cut found for one feature.
type split struct {
	valid     bool
	gain      float64
	numeric   bool
	feature   int
	threshold float64
	match     int
}

// better reports whether s should replace best. Ties break toward the
// already-chosen split, and the caller scans features in index order, so the
// choice does not depend on how the search was scheduled.
func (s split) better(best split) bool {
	if !s.valid {
		return false
	}
	if !best.valid {
		return true
	}
	return s.gain > best.gain
}

// findBestSplit evaluates every feature, distributing the per-feature work
// over the pool, and reduces to the single best split in feature order.
// evalNumeric and evalCategorical score one feature each and may be called
// concurrently for different features.
func findBestSplit(
	pool *parallel.Pool,
	numNumeric, numCategorical int,
	evalNumeric func(feature int) split,
	evalCategorical func(feature int) split,
) split {
	total := numNumeric + numCategorical
	candidates := make([]split, total)

	pool.Run(total, func(first, last int) {
		for f := first; f < last; f++ {
			if f < numNumeric {
				candidates[f] = evalNumeric(f)
			} else {
				candidates[f] = evalCategorical(f - numNumeric)
			}
		}
	})

	var best split
	for _, cand := range candidates {
		if cand.better(best) {
			best = cand
		}
	}
	return best
}

// sortByFeature orders rows ascending by one numeric feature. rows is
// reordered in place.
func sortByFeature(rows []int, points []data.Point, feature int) {
	sort.Slice(rows, func(a, b int) bool {
		return points[rows[a]].Numeric[feature] < points[rows[b]].Numeric[feature]
	})
}

// partition splits rows into the left and right side of s.
func partition(rows []int, points []data.Point, s split) (left, right []int) {
	for _, r := range rows {
		p := points[r]
		var goesLeft bool
		if s.numeric {
			goesLeft = p.Numeric[s.feature] <= s.threshold
		} else {
			goesLeft = p.Categorical[s.feature] == s.match
		}
		if goesLeft {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

// gatherPoints materializes every row of the store once, so the split search
// does not repeatedly gather columns from column-major stores.
func gatherPoints(store data.Store) []data.Point {
	points := make([]data.Point, store.Size())
	for i := range points {
		points[i] = store.Point(i)
	}
	return points
}
