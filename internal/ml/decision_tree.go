package ml

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cockroachdb/errors"
)

// DecisionTree is a CART classifier stored as a flat node array; node 0 is the root.
type DecisionTree struct {
	Nodes    []TreeNode `json:"nodes"`
	NClasses int        `json:"n_classes"`
}

// TreeNode routes a sample left when features[FeatureIdx] <= Threshold.
// Leaves carry the class distribution of the training samples that reached them.
type TreeNode struct {
	FeatureIdx   int       `json:"feature_idx"`
	Threshold    float64   `json:"threshold"`
	LeftChild    int       `json:"left_child"`
	RightChild   int       `json:"right_child"`
	IsLeaf       bool      `json:"is_leaf"`
	Distribution []float64 `json:"distribution,omitempty"`
}

// TreeConfig bounds tree growth. Zero values mean unlimited depth, a minimum
// of two samples per split and every feature considered at each split.
type TreeConfig struct {
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
}

// PredictProba returns the class distribution of the leaf x falls into.
func (dt *DecisionTree) PredictProba(x SparseVector) ([]float64, error) {
	if len(dt.Nodes) == 0 {
		return nil, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Distribution, nil
		}
		if node.FeatureIdx < 0 || (x.Dim > 0 && node.FeatureIdx >= x.Dim) {
			return nil, errors.New("feature index out of range")
		}
		next := node.RightChild
		if x.At(node.FeatureIdx) <= node.Threshold {
			next = node.LeftChild
		}
		// children always follow their parent, so every step moves forward
		if next <= idx || next >= len(dt.Nodes) {
			return nil, errors.New("invalid tree state")
		}
		idx = next
	}
}

// Validate checks the structure of a deserialized tree: every split points
// forward to existing nodes and tests a known feature, every leaf holds one
// probability per class.
func (dt *DecisionTree) Validate(nFeatures int) error {
	if len(dt.Nodes) == 0 {
		return errors.New("tree is empty")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if len(node.Distribution) != dt.NClasses {
				return errors.Newf("leaf %d has %d probabilities, want %d", i, len(node.Distribution), dt.NClasses)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return errors.Newf("node %d splits on unknown feature %d", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.Nodes) {
				return errors.Newf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// Predict returns the majority class of the leaf x falls into.
func (dt *DecisionTree) Predict(x SparseVector) (int, error) {
	proba, err := dt.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

// trainingSet is a column-major view of the sparse design matrix, shared
// read-only by every tree of a forest.
type trainingSet struct {
	columns   [][]columnEntry
	labels    []int
	nClasses  int
	nFeatures int
}

type columnEntry struct {
	sample int
	value  float64
}

func newTrainingSet(features []SparseVector, labels []int, nFeatures int) (*trainingSet, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.Newf("features and labels size mismatch: %d != %d", len(features), len(labels))
	}
	if nFeatures <= 0 {
		return nil, errors.New("feature dimension must be positive")
	}

	nClasses := 0
	for _, label := range labels {
		if label < 0 {
			return nil, errors.Newf("negative class label %d", label)
		}
		if label+1 > nClasses {
			nClasses = label + 1
		}
	}

	columns := make([][]columnEntry, nFeatures)
	for sample, vec := range features {
		for i, idx := range vec.Indices {
			if idx < 0 || idx >= nFeatures {
				return nil, errors.Newf("sample %d has column %d outside dimension %d", sample, idx, nFeatures)
			}
			columns[idx] = append(columns[idx], columnEntry{sample: sample, value: vec.Values[i]})
		}
	}

	return &trainingSet{
		columns:   columns,
		labels:    labels,
		nClasses:  nClasses,
		nFeatures: nFeatures,
	}, nil
}

// treeBuilder holds the scratch space for growing one tree.
type treeBuilder struct {
	set      *trainingSet
	weights  []float64
	cfg      TreeConfig
	rng      *rand.Rand
	features []int
	mark     []int
	stamp    int
	values   []float64
	nodes    []TreeNode
}

type sampleValue struct {
	value  float64
	label  int
	weight float64
}

func fitTree(set *trainingSet, weights []float64, cfg TreeConfig, rng *rand.Rand) *DecisionTree {
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MaxFeatures <= 0 || cfg.MaxFeatures > set.nFeatures {
		cfg.MaxFeatures = set.nFeatures
	}

	b := &treeBuilder{
		set:      set,
		weights:  weights,
		cfg:      cfg,
		rng:      rng,
		features: make([]int, set.nFeatures),
		mark:     make([]int, len(set.labels)),
		values:   make([]float64, len(set.labels)),
	}
	for i := range b.features {
		b.features[i] = i
	}

	samples := make([]int, 0, len(weights))
	for s, w := range weights {
		if w > 0 {
			samples = append(samples, s)
		}
	}
	b.build(samples, 0)
	return &DecisionTree{Nodes: b.nodes, NClasses: set.nClasses}
}

// build appends the subtree for samples and returns its root index.
func (b *treeBuilder) build(samples []int, depth int) int {
	counts := b.classCounts(samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1})

	if (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) || len(samples) < b.cfg.MinSamplesSplit || isPure(counts) {
		b.makeLeaf(idx, counts)
		return idx
	}

	feature, threshold, ok := b.findBestSplit(samples, counts)
	if !ok {
		b.makeLeaf(idx, counts)
		return idx
	}

	left, right := b.partition(samples, feature, threshold)
	if len(left) == 0 || len(right) == 0 {
		b.makeLeaf(idx, counts)
		return idx
	}

	leftIdx := b.build(left, depth+1)
	rightIdx := b.build(right, depth+1)
	b.nodes[idx] = TreeNode{
		FeatureIdx: feature,
		Threshold:  threshold,
		LeftChild:  leftIdx,
		RightChild: rightIdx,
	}
	return idx
}

func (b *treeBuilder) makeLeaf(idx int, counts []float64) {
	total := sum(counts)
	dist := make([]float64, len(counts))
	for i, c := range counts {
		if total > 0 {
			dist[i] = c / total
		}
	}
	b.nodes[idx] = TreeNode{
		FeatureIdx:   -1,
		LeftChild:    -1,
		RightChild:   -1,
		IsLeaf:       true,
		Distribution: dist,
	}
}

func (b *treeBuilder) classCounts(samples []int) []float64 {
	counts := make([]float64, b.set.nClasses)
	for _, s := range samples {
		counts[b.set.labels[s]] += b.weights[s]
	}
	return counts
}

// findBestSplit draws candidate features without replacement until MaxFeatures
// have been inspected and at least one usable split exists, or the features
// run out.
func (b *treeBuilder) findBestSplit(samples []int, counts []float64) (int, float64, bool) {
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	n := len(b.features)
	for k := 0; k < n; k++ {
		if k >= b.cfg.MaxFeatures && bestFeature != -1 {
			break
		}
		j := k + b.rng.Intn(n-k)
		b.features[k], b.features[j] = b.features[j], b.features[k]
		feature := b.features[k]

		threshold, impurity, ok := b.evaluateFeature(feature, samples, counts)
		if ok && impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = feature
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// evaluateFeature sweeps the sorted values of one feature inside the node and
// returns the midpoint threshold with the lowest weighted gini impurity.
// Samples without a stored entry count as a single block at value 0.
func (b *treeBuilder) evaluateFeature(feature int, samples []int, counts []float64) (float64, float64, bool) {
	b.stamp++
	for _, s := range samples {
		b.mark[s] = b.stamp
	}

	nonzero := make([]sampleValue, 0)
	zeroCounts := append([]float64(nil), counts...)
	for _, e := range b.set.columns[feature] {
		if b.mark[e.sample] != b.stamp {
			continue
		}
		label := b.set.labels[e.sample]
		w := b.weights[e.sample]
		nonzero = append(nonzero, sampleValue{value: e.value, label: label, weight: w})
		zeroCounts[label] -= w
	}
	if len(nonzero) == 0 {
		return 0, 0, false
	}
	sort.Slice(nonzero, func(i, j int) bool { return nonzero[i].value < nonzero[j].value })

	zeroWeight := sum(zeroCounts)
	zeroPlaced := zeroWeight <= 1e-12
	total := sum(counts)
	left := make([]float64, len(counts))
	right := make([]float64, len(counts))

	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64
	found := false
	prev := 0.0
	havePrev := false

	consider := func(next float64) {
		if !havePrev || next <= prev {
			return
		}
		leftWeight := sum(left)
		rightWeight := total - leftWeight
		if leftWeight <= 0 || rightWeight <= 0 {
			return
		}
		for c := range counts {
			right[c] = counts[c] - left[c]
		}
		impurity := (leftWeight*gini(left, leftWeight) + rightWeight*gini(right, rightWeight)) / total
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestThreshold = midpoint(prev, next)
			found = true
		}
	}

	i := 0
	for {
		switch {
		case !zeroPlaced && (i >= len(nonzero) || nonzero[i].value > 0):
			consider(0)
			for c := range left {
				left[c] += zeroCounts[c]
			}
			zeroPlaced = true
			prev, havePrev = 0, true
		case i < len(nonzero):
			v := nonzero[i].value
			consider(v)
			for i < len(nonzero) && nonzero[i].value == v {
				left[nonzero[i].label] += nonzero[i].weight
				i++
			}
			prev, havePrev = v, true
		default:
			return bestThreshold, bestImpurity, found
		}
	}
}

func (b *treeBuilder) partition(samples []int, feature int, threshold float64) ([]int, []int) {
	b.stamp++
	for _, s := range samples {
		b.mark[s] = b.stamp
		b.values[s] = 0
	}
	for _, e := range b.set.columns[feature] {
		if b.mark[e.sample] == b.stamp {
			b.values[e.sample] = e.value
		}
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if b.values[s] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

func midpoint(lo, hi float64) float64 {
	mid := lo + (hi-lo)/2
	if mid >= hi {
		return lo
	}
	return mid
}

func gini(counts []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []float64) bool {
	nonEmpty := 0
	for _, c := range counts {
		if c > 1e-12 {
			nonEmpty++
		}
	}
	return nonEmpty <= 1
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// argmax returns the first index holding the largest value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
