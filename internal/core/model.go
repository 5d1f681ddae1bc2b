package core

import (
	"time"
)

// Labels returned to callers
const (
	LabelPhishing = "Phishing Email"
	LabelSafe     = "Safe Email"
)

// PhishingClass is the classifier output that means phishing
const PhishingClass = 1

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Prediction is the outcome of a successful detection
type Prediction struct {
	Label string
	Class int
	// Confidence is the estimated probability of phishing; nil when the
	// classifier cannot estimate probabilities
	Confidence *float64
	AnalyzedAt time.Time
}

// IsPhishing reports whether the prediction is the phishing label
func (p *Prediction) IsPhishing() bool {
	return p.Class == PhishingClass
}

// LabelFor maps a classifier output to its label
func LabelFor(class int) string {
	if class == PhishingClass {
		return LabelPhishing
	}
	return LabelSafe
}
