package core

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/ml"
	"github.com/mikey/phishguard/internal/textproc"
	"go.uber.org/zap"
)

// PhishingDetector is the core service for phishing detection. Its state is
// fixed at construction: a detector built from an Unready LoadResult fails
// every call with ErrModelUnavailable.
type PhishingDetector struct {
	vectorizer Vectorizer
	classifier Classifier
	state      LoadState
	loadErr    error
	logger     *zap.Logger
}

// NewPhishingDetector creates a detector from a load result
func NewPhishingDetector(result LoadResult, logger *zap.Logger) *PhishingDetector {
	d := &PhishingDetector{
		state:   Unready,
		loadErr: result.Err,
		logger:  logger,
	}
	if result.State == Ready && result.Vectorizer != nil && result.Classifier != nil {
		d.vectorizer = result.Vectorizer
		d.classifier = result.Classifier
		d.state = Ready
		d.loadErr = nil
	}

	if d.state == Ready {
		logger.Info("Phishing detector ready")
	} else {
		logger.Error("Phishing detector unavailable, every prediction will fail", zap.Error(d.loadErr))
	}
	return d
}

// State returns the readiness of the detector
func (d *PhishingDetector) State() LoadState {
	return d.state
}

// Ready reports whether both artifacts are loaded
func (d *PhishingDetector) Ready() bool {
	return d.state == Ready
}

// Detect classifies an email given its subject and body
func (d *PhishingDetector) Detect(ctx context.Context, subject, body string) (*Prediction, error) {
	if d.state != Ready {
		err := ErrModelUnavailable
		if d.loadErr != nil {
			err = errors.WithSecondaryError(ErrModelUnavailable, d.loadErr)
		}
		return nil, NewPredictionError(KindModelUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewPredictionError(KindInvalidRequest, err)
	}

	text := textproc.Normalize(textproc.Combine(subject, body))

	x, err := d.vectorizer.Transform(text)
	if err != nil {
		return nil, NewPredictionError(KindVectorize, errors.Wrap(err, "failed to vectorize text"))
	}

	class, err := d.classifier.Predict(x)
	if err != nil {
		return nil, NewPredictionError(KindClassify, errors.Wrap(err, "failed to classify text"))
	}

	prediction := &Prediction{
		Label:      LabelFor(class),
		Class:      class,
		Confidence: d.confidence(x),
		AnalyzedAt: time.Now(),
	}

	fields := []zap.Field{
		zap.String("result", prediction.Label),
		zap.Int("subject_length", len(subject)),
		zap.Int("body_length", len(body)),
	}
	if prediction.Confidence != nil {
		fields = append(fields, zap.Float64("confidence", *prediction.Confidence))
	}
	d.logger.Info("Prediction", fields...)

	return prediction, nil
}

// DetectEmail classifies a parsed email
func (d *PhishingDetector) DetectEmail(ctx context.Context, email *Email) (*Prediction, error) {
	if email == nil {
		return nil, NewPredictionError(KindInvalidRequest, errors.New("email is nil"))
	}
	return d.Detect(ctx, email.Subject, email.Body)
}

// confidence returns P(phishing), or the top class probability for a
// single-class model. Failures are not fatal and yield nil.
func (d *PhishingDetector) confidence(x ml.SparseVector) *float64 {
	estimator, ok := d.classifier.(ProbabilityEstimator)
	if !ok {
		d.logger.Debug("Classifier does not estimate probabilities")
		return nil
	}

	proba, err := estimator.PredictProba(x)
	if err != nil || len(proba) == 0 {
		d.logger.Debug("Probability estimation failed", zap.Error(err))
		return nil
	}

	p := proba[0]
	if len(proba) > PhishingClass {
		p = proba[PhishingClass]
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		d.logger.Debug("Probability out of range", zap.Float64("probability", p))
		return nil
	}
	return &p
}
