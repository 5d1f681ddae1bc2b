// Package training fits the vectorizer and classifier from a labelled dataset.
package training

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/artifact"
	"github.com/mikey/phishguard/internal/dataset"
	"github.com/mikey/phishguard/internal/ml"
	"github.com/mikey/phishguard/internal/textproc"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Options configures a training run
type Options struct {
	NgramMin    int
	NgramMax    int
	MaxFeatures int
	Forest      ml.ForestConfig
	// TestRatio is the share of rows held out for evaluation; 0 trains on everything
	TestRatio      float64
	ClassifierPath string
	VectorizerPath string
}

// DefaultOptions returns the production settings: unigrams and bigrams,
// 5000 terms, 200 trees seeded with 42
func DefaultOptions() Options {
	return Options{
		NgramMin:       1,
		NgramMax:       2,
		MaxFeatures:    5000,
		Forest:         ml.DefaultForestConfig(),
		ClassifierPath: "phishing_detector.model",
		VectorizerPath: "vectorizer.model",
	}
}

// Result describes a finished training run
type Result struct {
	Vectorizer   *ml.TfidfVectorizer
	Forest       *ml.RandomForest
	Records      int
	TrainRecords int
	UsedBody     bool
	Metrics      *ml.Metrics
	Duration     time.Duration
}

// Trainer runs the training pipeline
type Trainer struct {
	opts   Options
	logger *zap.Logger
}

// NewTrainer creates a trainer
func NewTrainer(opts Options, logger *zap.Logger) *Trainer {
	return &Trainer{opts: opts, logger: logger}
}

// Run trains from source and writes both artifacts
func (t *Trainer) Run(ctx context.Context, source dataset.Source) (*Result, error) {
	result, err := t.Train(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := t.Save(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Train loads the dataset and fits the vectorizer and forest without saving them
func (t *Trainer) Train(ctx context.Context, source dataset.Source) (*Result, error) {
	start := time.Now()

	table, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dataset from %s", source.Name())
	}
	if !table.HasBody {
		t.logger.Warn("Dataset has no body column, training on subject and urls while predictions use subject and body",
			zap.String("source", source.Name()))
	}

	docs := Documents(table)
	labels := table.Labels()

	trainIdx, testIdx := ml.SplitIndices(len(docs), t.opts.TestRatio, t.opts.Forest.Seed)
	if len(testIdx) == 0 {
		trainIdx = lo.Range(len(docs))
	}
	if len(trainIdx) == 0 {
		return nil, errors.Wrap(dataset.ErrEmpty, "no rows left for training")
	}
	trainDocs, trainLabels := pick(docs, labels, trainIdx)

	t.logger.Info("Fitting vectorizer",
		zap.Int("documents", len(trainDocs)),
		zap.Int("ngram_min", t.opts.NgramMin),
		zap.Int("ngram_max", t.opts.NgramMax),
		zap.Int("max_features", t.opts.MaxFeatures))
	vectorizer := ml.NewTfidfVectorizer(t.opts.NgramMin, t.opts.NgramMax, t.opts.MaxFeatures)
	features, err := vectorizer.FitTransform(trainDocs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fit vectorizer")
	}

	t.logger.Info("Fitting random forest",
		zap.Int("trees", t.opts.Forest.NEstimators),
		zap.Int64("seed", t.opts.Forest.Seed),
		zap.Int("features", vectorizer.Dim()),
		zap.Int("jobs", t.opts.Forest.Jobs))
	forest := ml.NewRandomForest(t.opts.Forest)
	if err := forest.Fit(ctx, features, trainLabels, vectorizer.Dim()); err != nil {
		return nil, errors.Wrap(err, "failed to fit classifier")
	}

	result := &Result{
		Vectorizer:   vectorizer,
		Forest:       forest,
		Records:      len(docs),
		TrainRecords: len(trainDocs),
		UsedBody:     table.HasBody,
	}

	if len(testIdx) > 0 {
		testDocs, testLabels := pick(docs, labels, testIdx)
		testFeatures, err := vectorizer.TransformAll(testDocs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to vectorize hold-out set")
		}
		metrics := ml.Evaluate(forest, testFeatures, testLabels, 1)
		result.Metrics = &metrics
		t.logger.Info("Hold-out evaluation",
			zap.Int("samples", metrics.Samples),
			zap.Float64("accuracy", metrics.Accuracy),
			zap.Float64("precision", metrics.Precision),
			zap.Float64("recall", metrics.Recall),
			zap.Float64("f1", metrics.F1))
	}

	result.Duration = time.Since(start)
	t.logger.Info("Training complete", zap.Duration("duration", result.Duration))
	return result, nil
}

// Save writes both artifacts of result
func (t *Trainer) Save(result *Result) error {
	if err := artifact.SaveClassifier(t.opts.ClassifierPath, result.Forest); err != nil {
		return errors.Wrap(err, "failed to save classifier")
	}
	if err := artifact.SaveVectorizer(t.opts.VectorizerPath, result.Vectorizer); err != nil {
		return errors.Wrap(err, "failed to save vectorizer")
	}
	t.logger.Info("Saved model artifacts",
		zap.String("classifier", t.opts.ClassifierPath),
		zap.String("vectorizer", t.opts.VectorizerPath))
	return nil
}

// Documents builds the normalized training text of every record: the subject
// followed by the body when the dataset has one, otherwise the urls
func Documents(table *dataset.Table) []string {
	return lo.Map(table.Records, func(r dataset.Record, _ int) string {
		text := r.URLs
		if table.HasBody {
			text = r.Body
		}
		return textproc.Normalize(textproc.Combine(r.Subject, text))
	})
}

func pick(docs []string, labels []int, idx []int) ([]string, []int) {
	return lo.Map(idx, func(i int, _ int) string { return docs[i] }),
		lo.Map(idx, func(i int, _ int) int { return labels[i] })
}
