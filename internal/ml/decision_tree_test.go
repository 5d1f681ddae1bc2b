package ml

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func dense(values ...float64) SparseVector {
	entries := make(map[int]float64)
	for i, v := range values {
		entries[i] = v
	}
	return newSparseVector(len(values), entries)
}

func toyDataset() ([]SparseVector, []int) {
	features := []SparseVector{
		dense(0.1, 0.0),
		dense(0.2, 0.0),
		dense(0.0, 0.1),
		dense(0.9, 0.8),
		dense(0.8, 0.9),
		dense(0.7, 0.0),
	}
	labels := []int{0, 0, 0, 1, 1, 1}
	return features, labels
}

func TestDecisionTreeTrainPredict(t *testing.T) {
	req := require.New(t)
	features, labels := toyDataset()

	set, err := newTrainingSet(features, labels, 2)
	req.NoError(err)
	weights := sampleWeights(len(labels), false, rand.New(rand.NewSource(1)))
	tree := fitTree(set, weights, TreeConfig{}, rand.New(rand.NewSource(1)))

	req.Equal(2, tree.NClasses)
	for i, x := range features {
		label, err := tree.Predict(x)
		req.NoError(err)
		req.Equal(labels[i], label, "sample %d", i)
	}

	proba, err := tree.PredictProba(dense(0.15, 0))
	req.NoError(err)
	req.Len(proba, 2)
	req.InDelta(1.0, proba[0]+proba[1], 1e-9)
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	req := require.New(t)
	features, labels := toyDataset()

	set, err := newTrainingSet(features, labels, 2)
	req.NoError(err)
	weights := sampleWeights(len(labels), false, nil)
	tree := fitTree(set, weights, TreeConfig{MaxDepth: 1}, rand.New(rand.NewSource(3)))

	// a stump has a root and two leaves at most
	req.LessOrEqual(len(tree.Nodes), 3)
}

func TestDecisionTreeUntrained(t *testing.T) {
	tree := &DecisionTree{}
	_, err := tree.Predict(dense(1))
	require.Error(t, err)
}

// cyclicTree routes x[0] <= 1 to node 1, whose left child is itself
func cyclicTree() *DecisionTree {
	leaf := TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, IsLeaf: true, Distribution: []float64{1, 0}}
	return &DecisionTree{
		NClasses: 2,
		Nodes: []TreeNode{
			{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 2},
			{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 2},
			leaf,
		},
	}
}

func TestDecisionTreeRejectsBackwardChild(t *testing.T) {
	req := require.New(t)
	tree := cyclicTree()

	_, err := tree.PredictProba(dense(0.5))
	req.Error(err)

	// the right branch is well formed
	proba, err := tree.PredictProba(dense(2))
	req.NoError(err)
	req.Equal([]float64{1, 0}, proba)
}

func TestDecisionTreeValidate(t *testing.T) {
	features, labels := toyDataset()
	set, err := newTrainingSet(features, labels, 2)
	require.NoError(t, err)
	fitted := fitTree(set, sampleWeights(len(labels), false, nil), TreeConfig{MinSamplesSplit: 2, MaxFeatures: 2}, rand.New(rand.NewSource(1)))
	require.NoError(t, fitted.Validate(2))

	leaf := TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, IsLeaf: true, Distribution: []float64{0, 1}}
	tests := []struct {
		name string
		tree *DecisionTree
	}{
		{"empty", &DecisionTree{NClasses: 2}},
		{"self loop", cyclicTree()},
		{"child out of range", &DecisionTree{NClasses: 2, Nodes: []TreeNode{{FeatureIdx: 0, LeftChild: 1, RightChild: 5}, leaf}}},
		{"unknown feature", &DecisionTree{NClasses: 2, Nodes: []TreeNode{{FeatureIdx: 7, LeftChild: 1, RightChild: 2}, leaf, leaf}}},
		{"short distribution", &DecisionTree{NClasses: 3, Nodes: []TreeNode{leaf}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.tree.Validate(2))
		})
	}
}

func TestTrainingSetValidation(t *testing.T) {
	req := require.New(t)

	_, err := newTrainingSet(nil, nil, 2)
	req.Error(err)

	_, err = newTrainingSet([]SparseVector{dense(1, 2)}, []int{0, 1}, 2)
	req.Error(err)

	_, err = newTrainingSet([]SparseVector{dense(1, 2)}, []int{-1}, 2)
	req.Error(err)

	_, err = newTrainingSet([]SparseVector{dense(1, 2, 3)}, []int{0}, 2)
	req.Error(err)
}

func TestEvaluateFeatureHandlesZeroBlock(t *testing.T) {
	req := require.New(t)
	// the informative feature is zero for every negative sample
	features := []SparseVector{
		dense(0, 1),
		dense(0, 1),
		dense(0.5, 1),
		dense(0.6, 1),
	}
	labels := []int{0, 0, 1, 1}
	set, err := newTrainingSet(features, labels, 2)
	req.NoError(err)

	b := &treeBuilder{
		set:     set,
		weights: []float64{1, 1, 1, 1},
		mark:    make([]int, 4),
		values:  make([]float64, 4),
	}
	samples := []int{0, 1, 2, 3}
	counts := b.classCounts(samples)

	threshold, impurity, ok := b.evaluateFeature(0, samples, counts)
	req.True(ok)
	req.InDelta(0.25, threshold, 1e-12)
	req.InDelta(0.0, impurity, 1e-12)

	// a constant column offers no split
	_, _, ok = b.evaluateFeature(1, samples, counts)
	req.False(ok)
}

func TestRandomForestFitPredict(t *testing.T) {
	req := require.New(t)
	features, labels := toyDataset()

	cfg := DefaultForestConfig()
	cfg.NEstimators = 51
	forest := NewRandomForest(cfg)
	req.NoError(forest.Fit(context.Background(), features, labels, 2))

	req.Len(forest.Trees, 51)
	req.Equal(2, forest.NClasses)

	proba, err := forest.PredictProba(dense(0.85, 0.85))
	req.NoError(err)
	req.Len(proba, 2)
	req.InDelta(1.0, proba[0]+proba[1], 1e-9)
	for _, p := range proba {
		req.GreaterOrEqual(p, 0.0)
		req.LessOrEqual(p, 1.0)
	}

	label, err := forest.Predict(dense(0.85, 0.85))
	req.NoError(err)
	req.Equal(1, label)

	_, err = forest.Predict(dense(1, 2, 3))
	req.Error(err)
}

func TestRandomForestIsReproducible(t *testing.T) {
	req := require.New(t)
	features, labels := toyDataset()

	sequential := DefaultForestConfig()
	sequential.NEstimators = 10
	parallel := sequential
	parallel.Jobs = 4

	a := NewRandomForest(sequential)
	b := NewRandomForest(parallel)
	req.NoError(a.Fit(context.Background(), features, labels, 2))
	req.NoError(b.Fit(context.Background(), features, labels, 2))

	for i := range a.Trees {
		req.Equal(a.Trees[i].Nodes, b.Trees[i].Nodes, "tree %d", i)
	}
}

func TestRandomForestSingleClass(t *testing.T) {
	req := require.New(t)
	cfg := DefaultForestConfig()
	cfg.NEstimators = 3
	forest := NewRandomForest(cfg)
	req.NoError(forest.Fit(context.Background(), []SparseVector{dense(1), dense(2)}, []int{0, 0}, 1))

	proba, err := forest.PredictProba(dense(5))
	req.NoError(err)
	req.Equal([]float64{1}, proba)
}

func TestRandomForestCancelled(t *testing.T) {
	features, labels := toyDataset()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	forest := NewRandomForest(DefaultForestConfig())
	require.Error(t, forest.Fit(ctx, features, labels, 2))
}

func TestEvaluateAndSplit(t *testing.T) {
	req := require.New(t)
	features, labels := toyDataset()

	cfg := DefaultForestConfig()
	cfg.NEstimators = 51
	forest := NewRandomForest(cfg)
	req.NoError(forest.Fit(context.Background(), features, labels, 2))

	m := Evaluate(forest, features, labels, 1)
	req.Equal(len(features), m.Samples)
	req.Equal(1.0, m.Accuracy)
	req.Equal(1.0, m.Precision)
	req.Equal(1.0, m.Recall)
	req.Equal(3, m.Confusion[1][1])
	req.Equal(3, m.Confusion[0][0])

	train, test := SplitIndices(10, 0.2, 42)
	req.Len(train, 8)
	req.Len(test, 2)

	train, test = SplitIndices(10, 0, 42)
	req.Len(train, 10)
	req.Empty(test)
}
