package core_test

import (
	"context"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/ml"
	"github.com/mikey/phishguard/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var someVector = ml.SparseVector{Dim: 4, Indices: []int{1}, Values: []float64{1}}

func TestDetect_ReadyLabels(t *testing.T) {
	tests := []struct {
		name  string
		class int
		label string
	}{
		{name: "phishing", class: 1, label: core.LabelPhishing},
		{name: "safe", class: 0, label: core.LabelSafe},
		{name: "unknown class maps to safe", class: 7, label: core.LabelSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)

			vectorizer := mocks.NewMockVectorizer(ctrl)
			classifier := mocks.NewMockClassifier(ctrl)
			vectorizer.EXPECT().Transform(gomock.Any()).Return(someVector, nil)
			classifier.EXPECT().Predict(someVector).Return(tt.class, nil)

			detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
			req.True(detector.Ready())

			prediction, err := detector.Detect(context.Background(), "Verify your account", "click here")
			req.NoError(err)
			req.Equal(tt.label, prediction.Label)
			req.Equal(tt.class == core.PhishingClass, prediction.IsPhishing())
			req.Nil(prediction.Confidence)
		})
	}
}

func TestDetect_NormalizesCombinedText(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	vectorizer := mocks.NewMockVectorizer(ctrl)
	classifier := mocks.NewMockClassifier(ctrl)
	vectorizer.EXPECT().Transform("urgent: verify url now").Return(someVector, nil)
	classifier.EXPECT().Predict(gomock.Any()).Return(1, nil)

	detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
	_, err := detector.Detect(context.Background(), "URGENT:  Verify", "https://evil.example/x\nnow")
	req.NoError(err)
}

func TestDetect_EmptyInput(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	vectorizer := mocks.NewMockVectorizer(ctrl)
	classifier := mocks.NewMockClassifier(ctrl)
	vectorizer.EXPECT().Transform("").Return(ml.SparseVector{Dim: 4}, nil)
	classifier.EXPECT().Predict(gomock.Any()).Return(0, nil)

	detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
	prediction, err := detector.Detect(context.Background(), "", "")
	req.NoError(err)
	req.Contains([]string{core.LabelPhishing, core.LabelSafe}, prediction.Label)
}

func TestDetect_Unready(t *testing.T) {
	req := require.New(t)
	loadErr := errors.New("open vectorizer.model: no such file or directory")
	detector := core.NewPhishingDetector(core.Failed(loadErr), zap.NewNop())

	req.False(detector.Ready())
	req.Equal(core.Unready, detector.State())

	for i := 0; i < 3; i++ {
		prediction, err := detector.Detect(context.Background(), "subject", "body")
		req.Nil(prediction)
		req.Error(err)
		req.True(errors.Is(err, core.ErrModelUnavailable))
		req.Equal(core.KindModelUnavailable, core.KindOf(err))
	}
}

func TestLoaded_RequiresBothArtifacts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	result := core.Loaded(mocks.NewMockVectorizer(ctrl), nil)
	req.Equal(core.Unready, result.State)
	req.Nil(result.Vectorizer)
	req.ErrorIs(result.Err, core.ErrModelUnavailable)

	detector := core.NewPhishingDetector(core.LoadResult{State: core.Ready}, zap.NewNop())
	req.False(detector.Ready())
}

func TestDetect_Confidence(t *testing.T) {
	tests := []struct {
		name     string
		proba    []float64
		probaErr error
		want     *float64
	}{
		{name: "two classes", proba: []float64{0.25, 0.75}, want: ptr(0.75)},
		{name: "single class", proba: []float64{1}, want: ptr(1)},
		{name: "estimation error", probaErr: errors.New("boom"), want: nil},
		{name: "out of range", proba: []float64{-0.5, 1.5}, want: nil},
		{name: "nan", proba: []float64{math.NaN(), math.NaN()}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)

			vectorizer := mocks.NewMockVectorizer(ctrl)
			classifier := mocks.NewMockProbabilisticClassifier(ctrl)
			vectorizer.EXPECT().Transform(gomock.Any()).Return(someVector, nil)
			classifier.EXPECT().Predict(someVector).Return(1, nil)
			classifier.EXPECT().PredictProba(someVector).Return(tt.proba, tt.probaErr)

			detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
			prediction, err := detector.Detect(context.Background(), "s", "b")
			req.NoError(err)
			req.Equal(core.LabelPhishing, prediction.Label)
			if tt.want == nil {
				req.Nil(prediction.Confidence)
				return
			}
			req.NotNil(prediction.Confidence)
			req.InDelta(*tt.want, *prediction.Confidence, 1e-9)
			req.GreaterOrEqual(*prediction.Confidence, 0.0)
			req.LessOrEqual(*prediction.Confidence, 1.0)
		})
	}
}

func TestDetect_Failures(t *testing.T) {
	t.Run("vectorize", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		vectorizer := mocks.NewMockVectorizer(ctrl)
		classifier := mocks.NewMockClassifier(ctrl)
		vectorizer.EXPECT().Transform(gomock.Any()).Return(ml.SparseVector{}, errors.New("vectorizer is not fitted"))

		detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
		_, err := detector.Detect(context.Background(), "s", "b")
		req.Error(err)
		req.Equal(core.KindVectorize, core.KindOf(err))
		req.Contains(err.Error(), "vectorizer is not fitted")
	})

	t.Run("classify", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		vectorizer := mocks.NewMockVectorizer(ctrl)
		classifier := mocks.NewMockClassifier(ctrl)
		vectorizer.EXPECT().Transform(gomock.Any()).Return(someVector, nil)
		classifier.EXPECT().Predict(someVector).Return(0, errors.New("dimension mismatch"))

		detector := core.NewPhishingDetector(core.Loaded(vectorizer, classifier), zap.NewNop())
		_, err := detector.Detect(context.Background(), "s", "b")
		req.Equal(core.KindClassify, core.KindOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		detector := core.NewPhishingDetector(
			core.Loaded(mocks.NewMockVectorizer(ctrl), mocks.NewMockClassifier(ctrl)), zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := detector.Detect(ctx, "s", "b")
		req.Equal(core.KindInvalidRequest, core.KindOf(err))
	})

	t.Run("nil email", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		detector := core.NewPhishingDetector(
			core.Loaded(mocks.NewMockVectorizer(ctrl), mocks.NewMockClassifier(ctrl)), zap.NewNop())

		_, err := detector.DetectEmail(context.Background(), nil)
		req.Equal(core.KindInvalidRequest, core.KindOf(err))
	})
}

func TestDetect_RealModel(t *testing.T) {
	req := require.New(t)

	docs := []string{
		"verify your account url now",
		"urgent password reset url",
		"your account is suspended click url",
		"lunch meeting tomorrow at noon",
		"quarterly report attached for review",
		"team offsite schedule next week",
	}
	labels := []int{1, 1, 1, 0, 0, 0}

	vectorizer := ml.NewTfidfVectorizer(1, 2, 5000)
	features, err := vectorizer.FitTransform(docs)
	req.NoError(err)

	cfg := ml.DefaultForestConfig()
	cfg.NEstimators = 31
	forest := ml.NewRandomForest(cfg)
	req.NoError(forest.Fit(context.Background(), features, labels, vectorizer.Dim()))

	detector := core.NewPhishingDetector(core.Loaded(vectorizer, forest), zap.NewNop())
	prediction, err := detector.Detect(context.Background(), "", "")
	req.NoError(err)
	req.Contains([]string{core.LabelPhishing, core.LabelSafe}, prediction.Label)
	req.NotNil(prediction.Confidence)
	req.GreaterOrEqual(*prediction.Confidence, 0.0)
	req.LessOrEqual(*prediction.Confidence, 1.0)
}

func ptr(f float64) *float64 {
	return &f
}
