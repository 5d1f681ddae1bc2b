//go:generate mockgen -source=email_filter.go -destination=../mocks/mock_email_filter.go -package=mocks

package ports

import (
	"context"

	"github.com/mikey/phishguard/internal/core"
)

// EmailFilter is a front end that feeds emails to the phishing detector
type EmailFilter interface {
	// ProcessEmail classifies an email and returns the prediction
	ProcessEmail(ctx context.Context, email *core.Email) (*core.Prediction, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}

// Detector is the prediction operation every filter relies on
type Detector interface {
	Detect(ctx context.Context, subject, body string) (*core.Prediction, error)
	DetectEmail(ctx context.Context, email *core.Email) (*core.Prediction, error)
	Ready() bool
}
