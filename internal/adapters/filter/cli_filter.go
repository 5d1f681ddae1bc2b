package filter

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/ports"
	"github.com/mikey/phishguard/internal/textproc"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	detector      ports.Detector
	textProcessor *textproc.TextProcessor
	logger        *zap.Logger
	out           io.Writer
	verbose       bool
	maxBodySize   int
}

// NewCliFilter creates a new CLI filter writing its report to out
func NewCliFilter(
	detector ports.Detector,
	textProcessor *textproc.TextProcessor,
	logger *zap.Logger,
	out io.Writer,
	verbose bool,
	maxBodySize int,
) *CliFilter {
	return &CliFilter{
		detector:      detector,
		textProcessor: textProcessor,
		logger:        logger,
		out:           out,
		verbose:       verbose,
		maxBodySize:   maxBodySize,
	}
}

// ReadEmail parses a raw RFC 5322 message
func (f *CliFilter) ReadEmail(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email")
	}

	email := parseEmail(msg, f.logger)
	email.From = msg.Header.Get("From")
	if to := msg.Header.Get("To"); to != "" {
		email.To = strings.Split(to, ",")
		for i := range email.To {
			email.To[i] = strings.TrimSpace(email.To[i])
		}
	}
	email.Body = f.textProcessor.ProcessText(email.Body, f.maxBodySize)
	return email, nil
}

// ProcessEmail classifies an email and prints the report
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.Prediction, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))
	fmt.Fprintf(f.out, "Language: %s\n", detectLanguage(email.Subject+" "+email.Body))

	if f.verbose {
		preview := []rune(email.Body)
		if len(preview) > 500 {
			preview = append(preview[:500], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", string(preview))
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	startTime := time.Now()
	prediction, err := f.detector.DetectEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Result: %s\n", prediction.Label)
	if prediction.Confidence != nil {
		fmt.Fprintf(f.out, "Phishing probability: %.4f\n", *prediction.Confidence)
	} else {
		fmt.Fprintf(f.out, "Phishing probability: n/a\n")
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return prediction, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}

// detectLanguage names the likely language of text, for display only
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "unknown"
	}
	return fmt.Sprintf("%s (%.2f)", info.Lang.String(), info.Confidence)
}
