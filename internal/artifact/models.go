package artifact

import (
	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/ml"
	"go.uber.org/zap"
)

// SaveVectorizer persists a fitted vectorizer
func SaveVectorizer(path string, v *ml.TfidfVectorizer) error {
	if v == nil || v.Dim() == 0 {
		return errors.New("vectorizer is not fitted")
	}
	return save(path, KindVectorizer, v)
}

// LoadVectorizer reads a vectorizer saved by SaveVectorizer
func LoadVectorizer(path string) (*ml.TfidfVectorizer, error) {
	var v ml.TfidfVectorizer
	if err := load(path, KindVectorizer, &v); err != nil {
		return nil, err
	}
	if len(v.Vocabulary) == 0 || len(v.IDF) != len(v.Vocabulary) {
		return nil, errors.Newf("vectorizer in %s is corrupt: %d terms, %d weights", path, len(v.Vocabulary), len(v.IDF))
	}
	return &v, nil
}

// SaveClassifier persists a fitted forest
func SaveClassifier(path string, f *ml.RandomForest) error {
	if f == nil || len(f.Trees) == 0 {
		return errors.New("classifier is not trained")
	}
	return save(path, KindClassifier, f)
}

// LoadClassifier reads a forest saved by SaveClassifier
func LoadClassifier(path string) (*ml.RandomForest, error) {
	var f ml.RandomForest
	if err := load(path, KindClassifier, &f); err != nil {
		return nil, err
	}
	if len(f.Trees) == 0 || f.NFeatures <= 0 || f.NClasses <= 0 {
		return nil, errors.Newf("classifier in %s is corrupt", path)
	}
	for i, tree := range f.Trees {
		if tree == nil {
			return nil, errors.Newf("classifier in %s is corrupt: tree %d is missing", path, i)
		}
		if err := tree.Validate(f.NFeatures); err != nil {
			return nil, errors.Wrapf(err, "classifier in %s is corrupt: tree %d", path, i)
		}
	}
	return &f, nil
}

// LoadPair loads both artifacts. Either both are returned in a Ready result
// or the result is Unready and carries the first failure.
func LoadPair(classifierPath, vectorizerPath string, logger *zap.Logger) core.LoadResult {
	classifier, err := LoadClassifier(classifierPath)
	if err != nil {
		err = errors.Wrap(err, "failed to load classifier")
		logger.Error("Failed to load classifier", zap.String("path", classifierPath), zap.Error(err))
		return core.Failed(err)
	}

	vectorizer, err := LoadVectorizer(vectorizerPath)
	if err != nil {
		err = errors.Wrap(err, "failed to load vectorizer")
		logger.Error("Failed to load vectorizer", zap.String("path", vectorizerPath), zap.Error(err))
		return core.Failed(err)
	}

	if vectorizer.Dim() != classifier.NFeatures {
		err := errors.Newf("vectorizer produces %d features, classifier expects %d", vectorizer.Dim(), classifier.NFeatures)
		logger.Error("Artifacts do not match", zap.Error(err))
		return core.Failed(err)
	}

	logger.Info("Loaded model artifacts",
		zap.String("classifier", classifierPath),
		zap.String("vectorizer", vectorizerPath),
		zap.Int("features", vectorizer.Dim()),
		zap.Int("trees", len(classifier.Trees)))
	return core.Loaded(vectorizer, classifier)
}
