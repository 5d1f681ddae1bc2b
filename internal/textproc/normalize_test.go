package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"lowercase and trim", "  Verify YOUR Account  ", "verify your account"},
		{"newlines become spaces", "line one\nline two\r\nthree", "line one line two three"},
		{"http url replaced", "click http://bad.example/login now", "click url now"},
		{"https url replaced", "Go to HTTPS://Bank.example/x?a=1", "go to url"},
		{"url glued to newline", "see http://a.example\nthen", "see url then"},
		{"tabs collapse", "a\t\t b", "a b"},
		{"bare http kept", "http", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	req := require.New(t)
	inputs := []string{
		"",
		"Urgent: verify your account http://bad.example/login",
		"  MIXED\ncase\t\twith   spaces https://x.example/a?b=c  ",
		"urlhttp://nested.example url",
		"ÉTÉ Überweisung\nhttp://xn--bcher-kva.example",
	}
	for _, input := range inputs {
		once := Normalize(input)
		req.Equal(once, Normalize(once), "input %q", input)
	}
}

func TestNormalizeRemovesRawURLs(t *testing.T) {
	req := require.New(t)
	inputs := []string{
		"Urgent: verify your account http://bad.example/login",
		"two links https://a.example and http://b.example/c",
		"HTTP://SHOUTING.EXAMPLE",
	}
	for _, input := range inputs {
		out := Normalize(input)
		req.Contains(out, URLPlaceholder)
		req.NotContains(out, "http://")
		req.NotContains(out, "https://")
		req.NotContains(out, ".example")
	}
}

func TestCombine(t *testing.T) {
	require.Equal(t, "subject body", Combine("subject", "body"))
	require.Equal(t, "", Normalize(Combine("", "")))
}

func TestTextProcessor(t *testing.T) {
	req := require.New(t)
	tp := NewTextProcessor(zap.NewNop())

	req.Equal("short", tp.TruncateText("short", 10))
	req.Equal("abc", tp.TruncateText("abcdef", 3))
	// "é" is two bytes; cutting in the middle drops the partial rune
	req.Equal("a", tp.TruncateText("aé", 2))

	invalid := "ok" + string([]byte{0xff}) + "done"
	req.Equal("okdone", tp.SanitizeUTF8(invalid))

	long := strings.Repeat("x", 20)
	req.Len(tp.ProcessText(long, 5), 5)
}
