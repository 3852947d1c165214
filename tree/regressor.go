package tree

import (
	"time"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
)

// DecisionTreeRegressor is a binary CART tree for regression. Splits
// minimize the weighted squared error and leaves predict the weighted mean
// target of their training rows.
type DecisionTreeRegressor struct {
	// ShowProgress enables info-level training logs.
	ShowProgress bool

	state *model.StateManager
	cfg   config
	root  *node
}

// NewDecisionTreeRegressor creates an untrained regression tree.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DecisionTreeRegressor{
		state: model.NewStateManager(),
		cfg:   cfg,
	}
}

// FitRegression grows the tree on ds. Per-feature split search runs on
// pool; a nil pool searches sequentially.
func (t *DecisionTreeRegressor) FitRegression(ds *data.RegressionDataset, pool *parallel.Pool) error {
	const op = "DecisionTreeRegressor.FitRegression"
	if err := t.cfg.validate(op); err != nil {
		return errors.Wrap(err, op)
	}
	if c := t.cfg.criterion; c != "" && c != CriterionMSE {
		return errors.Wrap(errors.NewValidationError("criterion", "must be \"squared_error\"", c), op)
	}
	if ds == nil {
		return errors.Wrap(errors.NewValidationError("dataset", "must not be nil", nil), op)
	}
	if ds.Size() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("tree.regressor")
	start := time.Now()
	if t.ShowProgress {
		logger.Info("Training decision tree regressor",
			log.SamplesKey, ds.Size(),
			log.FeaturesKey, ds.NumNumeric(),
			log.CategoricalsKey, ds.NumCategorical(),
			log.WorkersKey, pool.Workers())
	}

	t.root = nil
	t.state.Reset()

	b := &regressorBuilder{
		cfg:        t.cfg,
		points:     gatherPoints(ds.Store()),
		targets:    ds.Targets(),
		weights:    ds.Weights(),
		numNumeric: ds.NumNumeric(),
		categories: ds.Categories(),
		pool:       pool,
	}
	rows := make([]int, ds.Size())
	for i := range rows {
		rows[i] = i
	}
	t.root = b.build(rows, 0)
	t.state.SetDimensions(ds.NumNumeric(), ds.NumCategorical(), ds.Size())
	t.state.SetFitted()

	if t.ShowProgress {
		depth, leaves := nodeStats(t.root)
		logger.Info("Decision tree regressor trained",
			log.TreeDepthKey, depth,
			log.TreeLeavesKey, leaves,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// Predict routes p to a leaf and returns its weighted mean target.
func (t *DecisionTreeRegressor) Predict(p data.Point) (float64, error) {
	const op = "DecisionTreeRegressor.Predict"
	if !t.state.IsFitted() || t.root == nil {
		return 0, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	if err := t.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return 0, err
	}
	n := t.root
	for !n.leaf {
		n = n.route(p)
	}
	return n.value, nil
}

// CloneRegressor returns a deep copy, fitted tree included.
func (t *DecisionTreeRegressor) CloneRegressor() model.Regressor {
	return &DecisionTreeRegressor{
		ShowProgress: t.ShowProgress,
		state:        t.state.Clone(),
		cfg:          t.cfg,
		root:         t.root.clone(),
	}
}

// IsFitted reports whether the tree has been trained.
func (t *DecisionTreeRegressor) IsFitted() bool { return t.state.IsFitted() }

// regressorBuilder carries the training data through the recursive build.
type regressorBuilder struct {
	cfg        config
	points     []data.Point
	targets    []float64
	weights    []float64
	numNumeric int
	categories []*data.Categorical
	pool       *parallel.Pool
}

// targetMoments accumulates the weighted target moments of rows: the weight
// sum, the weighted target sum, and the weighted sum of squared targets.
func (b *regressorBuilder) targetMoments(rows []int) (sw, swy, swy2 float64) {
	for _, r := range rows {
		w := b.weights[r]
		y := b.targets[r]
		sw += w
		swy += w * y
		swy2 += w * y * y
	}
	return sw, swy, swy2
}

// weightedSSE is the weighted squared error around the weighted mean,
// computed from the moments. Floating point can push the difference a hair
// below zero for near-constant targets; clamp so gains stay comparable.
func weightedSSE(sw, swy, swy2 float64) float64 {
	if sw <= 0 {
		return 0
	}
	sse := swy2 - swy*swy/sw
	if sse < 0 {
		return 0
	}
	return sse
}

func (b *regressorBuilder) build(rows []int, depth int) *node {
	sw, swy, swy2 := b.targetMoments(rows)
	leaf := &node{leaf: true, value: swy / sw}

	if len(rows) < b.cfg.minSamplesSplit {
		return leaf
	}
	if b.cfg.maxDepth > 0 && depth >= b.cfg.maxDepth {
		return leaf
	}
	parentSSE := weightedSSE(sw, swy, swy2)
	if parentSSE <= 0 {
		return leaf
	}

	best := findBestSplit(b.pool, b.numNumeric, len(b.categories),
		func(f int) split { return b.evalNumeric(rows, sw, swy, swy2, parentSSE, f) },
		func(f int) split { return b.evalCategorical(rows, sw, swy, swy2, parentSSE, f) })
	if !best.valid {
		return leaf
	}

	left, right := partition(rows, b.points, best)
	n := &node{
		numeric:   best.numeric,
		feature:   best.feature,
		threshold: best.threshold,
		match:     best.match,
	}
	n.left = b.build(left, depth+1)
	n.right = b.build(right, depth+1)
	return n
}

// evalNumeric scans candidate thresholds between the distinct sorted values
// of one numeric feature, keeping running left-side moments. rows is copied
// so concurrent feature evaluations never reorder the shared slice.
func (b *regressorBuilder) evalNumeric(rows []int, sw, swy, swy2, parentSSE float64, feature int) split {
	sorted := append([]int(nil), rows...)
	sortByFeature(sorted, b.points, feature)

	var lsw, lswy, lswy2 float64
	var best split
	for i := 0; i < len(sorted)-1; i++ {
		r := sorted[i]
		w := b.weights[r]
		y := b.targets[r]
		lsw += w
		lswy += w * y
		lswy2 += w * y * y

		v := b.points[r].Numeric[feature]
		next := b.points[sorted[i+1]].Numeric[feature]
		if v == next {
			continue
		}
		if i+1 < b.cfg.minSamplesLeaf || len(sorted)-i-1 < b.cfg.minSamplesLeaf {
			continue
		}
		gain := parentSSE - weightedSSE(lsw, lswy, lswy2) - weightedSSE(sw-lsw, swy-lswy, swy2-lswy2)
		if gain <= 0 {
			continue
		}
		cand := split{
			valid:     true,
			gain:      gain,
			numeric:   true,
			feature:   feature,
			threshold: v + (next-v)/2,
		}
		if cand.better(best) {
			best = cand
		}
	}
	return best
}

// evalCategorical tries the one-vs-rest split for every value of one
// categorical feature.
func (b *regressorBuilder) evalCategorical(rows []int, sw, swy, swy2, parentSSE float64, feature int) split {
	card := b.categories[feature].Cardinality()
	vsw := make([]float64, card)
	vswy := make([]float64, card)
	vswy2 := make([]float64, card)
	sizeOf := make([]int, card)
	for _, r := range rows {
		v := b.points[r].Categorical[feature]
		w := b.weights[r]
		y := b.targets[r]
		vsw[v] += w
		vswy[v] += w * y
		vswy2[v] += w * y * y
		sizeOf[v]++
	}

	var best split
	for v := 0; v < card; v++ {
		if sizeOf[v] < b.cfg.minSamplesLeaf || len(rows)-sizeOf[v] < b.cfg.minSamplesLeaf {
			continue
		}
		gain := parentSSE - weightedSSE(vsw[v], vswy[v], vswy2[v]) - weightedSSE(sw-vsw[v], swy-vswy[v], swy2-vswy2[v])
		if gain <= 0 {
			continue
		}
		cand := split{
			valid:   true,
			gain:    gain,
			feature: feature,
			match:   v,
		}
		if cand.better(best) {
			best = cand
		}
	}
	return best
}
