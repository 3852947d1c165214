package tree

import (
	"math"
	"time"

	"github.com/YuminosukeSato/ensgo/core/model"
	"github.com/YuminosukeSato/ensgo/core/parallel"
	"github.com/YuminosukeSato/ensgo/data"
	"github.com/YuminosukeSato/ensgo/pkg/errors"
	"github.com/YuminosukeSato/ensgo/pkg/log"
)

// DecisionTreeClassifier is a binary CART tree for classification. Splits
// minimize the weighted Gini impurity (or entropy), so rows with larger
// weights pull the tree harder. Configuration problems surface at fit time,
// matching the constructor's option-only signature.
type DecisionTreeClassifier struct {
	// ShowProgress enables info-level training logs.
	ShowProgress bool

	state      *model.StateManager
	cfg        config
	root       *node
	predicting *data.Categorical
}

// NewDecisionTreeClassifier creates an untrained classification tree.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DecisionTreeClassifier{
		state: model.NewStateManager(),
		cfg:   cfg,
	}
}

// impurityFunc scores the weighted class counts of one side of a split.
type impurityFunc func(counts []float64, total float64) float64

func giniImpurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := c / total
		sumSq += p * p
	}
	return 1 - sumSq
}

func entropyImpurity(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	e := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		e -= p * math.Log2(p)
	}
	return e
}

func classifierImpurity(criterion string) (impurityFunc, error) {
	switch criterion {
	case "", CriterionGini:
		return giniImpurity, nil
	case CriterionEntropy:
		return entropyImpurity, nil
	default:
		return nil, errors.NewValidationError("criterion", "must be \"gini\" or \"entropy\"", criterion)
	}
}

// FitClassification grows the tree on ds. Per-feature split search runs on
// pool; a nil pool searches sequentially.
func (t *DecisionTreeClassifier) FitClassification(ds *data.ClassificationDataset, pool *parallel.Pool) error {
	const op = "DecisionTreeClassifier.FitClassification"
	if err := t.cfg.validate(op); err != nil {
		return errors.Wrap(err, op)
	}
	impurity, err := classifierImpurity(t.cfg.criterion)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if ds == nil {
		return errors.Wrap(errors.NewValidationError("dataset", "must not be nil", nil), op)
	}
	if ds.Size() == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	logger := log.GetLoggerWithName("tree.classifier")
	start := time.Now()
	if t.ShowProgress {
		logger.Info("Training decision tree classifier",
			log.SamplesKey, ds.Size(),
			log.FeaturesKey, ds.NumNumeric(),
			log.CategoricalsKey, ds.NumCategorical(),
			log.WorkersKey, pool.Workers())
	}

	t.root = nil
	t.predicting = nil
	t.state.Reset()

	b := &classifierBuilder{
		cfg:        t.cfg,
		impurity:   impurity,
		points:     gatherPoints(ds.Store()),
		labels:     ds.Labels(),
		weights:    ds.Weights(),
		classes:    ds.NumClasses(),
		numNumeric: ds.NumNumeric(),
		categories: ds.Categories(),
		pool:       pool,
	}
	rows := make([]int, ds.Size())
	for i := range rows {
		rows[i] = i
	}
	t.root = b.build(rows, 0)
	t.predicting = ds.Predicting()
	t.state.SetDimensions(ds.NumNumeric(), ds.NumCategorical(), ds.Size())
	t.state.SetFitted()

	if t.ShowProgress {
		depth, leaves := nodeStats(t.root)
		logger.Info("Decision tree classifier trained",
			log.TreeDepthKey, depth,
			log.TreeLeavesKey, leaves,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}
	return nil
}

// Classify routes p to a leaf and returns a copy of that leaf's class
// distribution, indexed by the training labels.
func (t *DecisionTreeClassifier) Classify(p data.Point) ([]float64, error) {
	const op = "DecisionTreeClassifier.Classify"
	if !t.state.IsFitted() || t.root == nil {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Classify")
	}
	if err := t.state.CheckPoint(op, p.NumNumeric(), p.NumCategorical()); err != nil {
		return nil, err
	}
	n := t.root
	for !n.leaf {
		n = n.route(p)
	}
	return append([]float64(nil), n.dist...), nil
}

// CloneClassifier returns a deep copy, fitted tree included.
func (t *DecisionTreeClassifier) CloneClassifier() model.Classifier {
	return &DecisionTreeClassifier{
		ShowProgress: t.ShowProgress,
		state:        t.state.Clone(),
		cfg:          t.cfg,
		root:         t.root.clone(),
		predicting:   t.predicting,
	}
}

// IsFitted reports whether the tree has been trained.
func (t *DecisionTreeClassifier) IsFitted() bool { return t.state.IsFitted() }

// classifierBuilder carries the training data through the recursive build.
// Rows are addressed by index so child nodes reuse the materialized points.
type classifierBuilder struct {
	cfg        config
	impurity   impurityFunc
	points     []data.Point
	labels     []int
	weights    []float64
	classes    int
	numNumeric int
	categories []*data.Categorical
	pool       *parallel.Pool
}

func (b *classifierBuilder) build(rows []int, depth int) *node {
	counts, total := b.classCounts(rows)
	leaf := &node{leaf: true, dist: normalizeCounts(counts, total)}

	if len(rows) < b.cfg.minSamplesSplit {
		return leaf
	}
	if b.cfg.maxDepth > 0 && depth >= b.cfg.maxDepth {
		return leaf
	}
	parentImp := b.impurity(counts, total)
	if parentImp == 0 {
		return leaf
	}

	best := findBestSplit(b.pool, b.numNumeric, len(b.categories),
		func(f int) split { return b.evalNumeric(rows, counts, total, parentImp, f) },
		func(f int) split { return b.evalCategorical(rows, counts, total, parentImp, f) })
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

func (b *classifierBuilder) classCounts(rows []int) ([]float64, float64) {
	counts := make([]float64, b.classes)
	total := 0.0
	for _, r := range rows {
		w := b.weights[r]
		counts[b.labels[r]] += w
		total += w
	}
	return counts, total
}

// splitGain is the weighted impurity decrease of cutting parent into
// left and right. Right-side counts are derived by subtraction.
func (b *classifierBuilder) splitGain(parent, left []float64, parentImp, parentW, leftW float64, right []float64) float64 {
	rightW := parentW - leftW
	for c := range right {
		right[c] = parent[c] - left[c]
	}
	return parentImp*parentW - b.impurity(left, leftW)*leftW - b.impurity(right, rightW)*rightW
}

// evalNumeric scans candidate thresholds between the distinct sorted values
// of one numeric feature. rows is copied so concurrent feature evaluations
// never reorder the shared slice.
func (b *classifierBuilder) evalNumeric(rows []int, parent []float64, parentW, parentImp float64, feature int) split {
	sorted := append([]int(nil), rows...)
	sortByFeature(sorted, b.points, feature)

	left := make([]float64, b.classes)
	right := make([]float64, b.classes)
	leftW := 0.0
	var best split
	for i := 0; i < len(sorted)-1; i++ {
		r := sorted[i]
		left[b.labels[r]] += b.weights[r]
		leftW += b.weights[r]

		v := b.points[r].Numeric[feature]
		next := b.points[sorted[i+1]].Numeric[feature]
		if v == next {
			continue
		}
		if i+1 < b.cfg.minSamplesLeaf || len(sorted)-i-1 < b.cfg.minSamplesLeaf {
			continue
		}
		gain := b.splitGain(parent, left, parentImp, parentW, leftW, right)
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
func (b *classifierBuilder) evalCategorical(rows []int, parent []float64, parentW, parentImp float64, feature int) split {
	card := b.categories[feature].Cardinality()
	counts := make([][]float64, card)
	for v := range counts {
		counts[v] = make([]float64, b.classes)
	}
	weightOf := make([]float64, card)
	sizeOf := make([]int, card)
	for _, r := range rows {
		v := b.points[r].Categorical[feature]
		counts[v][b.labels[r]] += b.weights[r]
		weightOf[v] += b.weights[r]
		sizeOf[v]++
	}

	right := make([]float64, b.classes)
	var best split
	for v := 0; v < card; v++ {
		if sizeOf[v] < b.cfg.minSamplesLeaf || len(rows)-sizeOf[v] < b.cfg.minSamplesLeaf {
			continue
		}
		gain := b.splitGain(parent, counts[v], parentImp, parentW, weightOf[v], right)
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

func normalizeCounts(counts []float64, total float64) []float64 {
	dist := make([]float64, len(counts))
	if total <= 0 {
		for i := range dist {
			dist[i] = 1 / float64(len(dist))
		}
		return dist
	}
	for i, c := range counts {
		dist[i] = c / total
	}
	return dist
}

// nodeStats reports the depth and leaf count of a fitted tree.
func nodeStats(n *node) (depth, leaves int) {
	if n == nil {
		return 0, 0
	}
	if n.leaf {
		return 1, 1
	}
	ld, ll := nodeStats(n.left)
	rd, rl := nodeStats(n.right)
	if rd > ld {
		ld = rd
	}
	return ld + 1, ll + rl
}
