// Package textproc holds the text handling shared by training and serving.
package textproc

import (
	"regexp"
	"strings"
)

// URLPlaceholder replaces every URL-like substring during normalization.
const URLPlaceholder = "url"

var (
	urlPattern        = regexp.MustCompile(`http\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, folds newlines, replaces URLs with URLPlaceholder,
// collapses whitespace runs and trims the result. Training and every serving
// entry point must go through this function so features line up.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "\n", " ")
	text = urlPattern.ReplaceAllString(text, URLPlaceholder)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Combine joins two raw fields the way the classifier was trained on them.
func Combine(first, second string) string {
	return first + " " + second
}
