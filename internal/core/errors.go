package core

import (
	"github.com/cockroachdb/errors"
)

// ErrorKind classifies detection failures
type ErrorKind int

const (
	KindModelUnavailable ErrorKind = iota + 1
	KindInvalidRequest
	KindVectorize
	KindClassify
)

func (k ErrorKind) String() string {
	switch k {
	case KindModelUnavailable:
		return "model_unavailable"
	case KindInvalidRequest:
		return "invalid_request"
	case KindVectorize:
		return "vectorize"
	case KindClassify:
		return "classify"
	default:
		return "unknown"
	}
}

// ErrModelUnavailable is returned for every detection while the detector is unready
var ErrModelUnavailable = errors.New("model or vectorizer not loaded")

// PredictionError carries the kind of a detection failure
type PredictionError struct {
	Kind ErrorKind
	Err  error
}

func (e *PredictionError) Error() string {
	return e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// NewPredictionError wraps err with a kind, keeping a stack trace
func NewPredictionError(kind ErrorKind, err error) *PredictionError {
	return &PredictionError{Kind: kind, Err: errors.WithStack(err)}
}

// KindOf returns the kind of err, or 0 when err is not a PredictionError
func KindOf(err error) ErrorKind {
	var predErr *PredictionError
	if errors.As(err, &predErr) {
		return predErr.Kind
	}
	return 0
}
