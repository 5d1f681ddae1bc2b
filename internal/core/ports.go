//go:generate mockgen -source=ports.go -destination=../mocks/mock_ports.go -package=mocks

package core

import (
	"github.com/mikey/phishguard/internal/ml"
)

// Vectorizer turns normalized text into a feature vector.
// Implementations must be safe for concurrent use.
type Vectorizer interface {
	Transform(text string) (ml.SparseVector, error)
}

// Classifier assigns a class to a feature vector.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(x ml.SparseVector) (int, error)
}

// ProbabilityEstimator is implemented by classifiers that can report class probabilities
type ProbabilityEstimator interface {
	PredictProba(x ml.SparseVector) ([]float64, error)
}

// ProbabilisticClassifier is a Classifier that also estimates probabilities
type ProbabilisticClassifier interface {
	Classifier
	ProbabilityEstimator
}
