package ml

import (
	"math"
	"math/rand"
)

// Predictor is anything that can label a single vector.
type Predictor interface {
	Predict(x SparseVector) (int, error)
}

// Metrics summarises binary classification quality for the positive class.
type Metrics struct {
	Samples   int
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	// Confusion[actual][predicted], 0 = negative, 1 = positive
	Confusion [2][2]int
}

// Evaluate scores model on a labelled set. Rows the model fails on are skipped.
func Evaluate(model Predictor, features []SparseVector, labels []int, positive int) Metrics {
	m := Metrics{}
	if len(features) == 0 {
		return m
	}

	var correct int
	for i, x := range features {
		label, err := model.Predict(x)
		if err != nil {
			continue
		}
		m.Samples++
		if label == labels[i] {
			correct++
		}
		m.Confusion[boolIndex(labels[i] == positive)][boolIndex(label == positive)]++
	}
	if m.Samples == 0 {
		return m
	}

	truePositive := m.Confusion[1][1]
	predictedPositive := m.Confusion[0][1] + truePositive
	actualPositive := m.Confusion[1][0] + truePositive

	m.Accuracy = float64(correct) / float64(m.Samples)
	if predictedPositive > 0 {
		m.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		m.Recall = float64(truePositive) / float64(actualPositive)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// SplitIndices shuffles row indices with seed and splits off testRatio of them.
// A ratio outside (0, 1) keeps every row for training.
func SplitIndices(n int, testRatio float64, seed int64) (train, test []int) {
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)
	if testRatio <= 0 || testRatio >= 1 {
		return indices, nil
	}

	split := int(math.Round(float64(n) * (1 - testRatio)))
	return indices[:split], indices[split:]
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
