package ml

import (
	"context"
	"math"
	"math/rand"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// ForestConfig configures random forest training.
type ForestConfig struct {
	NEstimators     int   `json:"n_estimators"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MaxFeatures     int   `json:"max_features"` // 0 means sqrt(n_features)
	Bootstrap       bool  `json:"bootstrap"`
	Seed            int64 `json:"seed"`
	Jobs            int   `json:"-"`
}

// DefaultForestConfig matches the production model: 200 bootstrapped trees, seed 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators:     200,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		Seed:            42,
		Jobs:            1,
	}
}

// RandomForest averages the leaf distributions of independently grown trees.
// A fitted forest is immutable and safe for concurrent use.
type RandomForest struct {
	Config    ForestConfig    `json:"config"`
	Trees     []*DecisionTree `json:"trees"`
	NClasses  int             `json:"n_classes"`
	NFeatures int             `json:"n_features"`
}

// NewRandomForest returns an unfitted forest.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 1
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	return &RandomForest{Config: cfg}
}

// Fit grows every tree on a bootstrap sample of (features, labels). Tree seeds
// are drawn from Config.Seed before any tree is grown, so the result does not
// depend on Jobs.
func (f *RandomForest) Fit(ctx context.Context, features []SparseVector, labels []int, nFeatures int) error {
	set, err := newTrainingSet(features, labels, nFeatures)
	if err != nil {
		return err
	}

	maxFeatures := f.Config.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(nFeatures)))))
	}
	treeCfg := TreeConfig{
		MaxDepth:        f.Config.MaxDepth,
		MinSamplesSplit: f.Config.MinSamplesSplit,
		MaxFeatures:     maxFeatures,
	}

	master := rand.New(rand.NewSource(f.Config.Seed))
	seeds := make([]int64, f.Config.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*DecisionTree, f.Config.NEstimators)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.Config.Jobs)
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			weights := sampleWeights(len(labels), f.Config.Bootstrap, rng)
			trees[i] = fitTree(set, weights, treeCfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "failed to grow forest")
	}

	f.Trees = trees
	f.NClasses = set.nClasses
	f.NFeatures = nFeatures
	return nil
}

// PredictProba averages the class distributions of all trees.
func (f *RandomForest) PredictProba(x SparseVector) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, errors.New("model not trained")
	}
	if x.Dim != f.NFeatures {
		return nil, errors.Newf("feature dimension mismatch: got %d, model expects %d", x.Dim, f.NFeatures)
	}

	proba := make([]float64, f.NClasses)
	for i, tree := range f.Trees {
		dist, err := tree.PredictProba(x)
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d", i)
		}
		for c := 0; c < len(dist) && c < len(proba); c++ {
			proba[c] += dist[c]
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the class with the highest averaged probability.
func (f *RandomForest) Predict(x SparseVector) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

// sampleWeights draws a bootstrap sample as per-row multiplicities.
func sampleWeights(n int, bootstrap bool, rng *rand.Rand) []float64 {
	weights := make([]float64, n)
	if !bootstrap {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}
	for i := 0; i < n; i++ {
		weights[rng.Intn(n)]++
	}
	return weights
}
