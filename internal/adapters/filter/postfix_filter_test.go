package filter

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emersion/go-smtp"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/mocks"
	"github.com/mikey/phishguard/internal/textproc"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const rawPhish = "From: attacker@evil.example\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: Verify your\r\n account\r\n" +
	"\r\n" +
	"Click http://evil.example/login now\r\n"

func filterConfig() config.FilterConfig {
	return config.FilterConfig{
		Type:          "postfix",
		ListenAddress: "127.0.0.1:0",
		MaxBodySize:   1 << 16,
		SubjectPrefix: "[PHISHING] ",
		Headers: config.HeaderConfig{
			Status:     "X-Phishing-Status",
			Confidence: "X-Phishing-Confidence",
			Error:      "X-Phishing-Error",
		},
	}
}

func newTestFilter(detector *mocks.MockDetector, cfg config.FilterConfig) *PostfixFilter {
	logger := zap.NewNop()
	return NewPostfixFilter(detector, textproc.NewTextProcessor(logger), logger, cfg)
}

func phishing(confidence float64) *core.Prediction {
	return &core.Prediction{Label: core.LabelPhishing, Class: 1, Confidence: &confidence}
}

func TestFilterMessageAddsHeaders(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, email *core.Email) (*core.Prediction, error) {
			req.Equal("Verify your account", email.Subject)
			req.Equal("Click http://evil.example/login now\r\n", email.Body)
			req.Equal("attacker@evil.example", email.From)
			req.Equal([]string{"victim@example.com"}, email.To)
			return phishing(0.91234), nil
		})

	f := newTestFilter(detector, filterConfig())
	v, err := f.filterMessage(context.Background(), []byte(rawPhish), "attacker@evil.example", []string{"victim@example.com"})
	req.NoError(err)
	req.False(v.rejected)

	out := string(v.message)
	req.True(strings.HasPrefix(out, "X-Phishing-Status: phishing\r\nX-Phishing-Confidence: 0.9123\r\n"), out)
	req.Contains(out, "Subject: Verify your\r\n account\r\n")
	req.True(strings.HasSuffix(out, "\r\n\r\nClick http://evil.example/login now\r\n"), out)
}

func TestFilterMessageModifiesSubject(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(phishing(0.8), nil)

	cfg := filterConfig()
	cfg.ModifySubject = true
	v, err := newTestFilter(detector, cfg).filterMessage(context.Background(), []byte(rawPhish), "a@b", []string{"c@d"})
	req.NoError(err)

	out := string(v.message)
	req.Contains(out, "Subject: [PHISHING] Verify your account\r\n")
	req.NotContains(out, "\r\n account\r\n")
	req.Contains(out, "From: attacker@evil.example\r\n")
}

func TestFilterMessageSafe(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(&core.Prediction{Label: core.LabelSafe}, nil)

	cfg := filterConfig()
	cfg.ModifySubject = true
	cfg.BlockPhishing = true
	raw := "Subject: Lunch\nFrom: friend@example.com\n\nNoon?\n"
	v, err := newTestFilter(detector, cfg).filterMessage(context.Background(), []byte(raw), "friend@example.com", nil)
	req.NoError(err)
	req.False(v.rejected)
	req.Equal("X-Phishing-Status: safe\r\nSubject: Lunch\r\nFrom: friend@example.com\r\n\r\nNoon?\n", string(v.message))
}

func TestFilterMessageBlocks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(phishing(0.99), nil)

	cfg := filterConfig()
	cfg.BlockPhishing = true
	v, err := newTestFilter(detector, cfg).filterMessage(context.Background(), []byte(rawPhish), "a@b", nil)
	req.NoError(err)
	req.True(v.rejected)
	req.Nil(v.message)
}

func TestFilterMessagePassesOnDetectionError(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(nil,
		core.NewPredictionError(core.KindModelUnavailable, core.ErrModelUnavailable))

	cfg := filterConfig()
	cfg.BlockPhishing = true
	v, err := newTestFilter(detector, cfg).filterMessage(context.Background(), []byte(rawPhish), "a@b", nil)
	req.NoError(err)
	req.False(v.rejected)
	req.True(strings.HasPrefix(string(v.message),
		"X-Phishing-Status: unknown\r\nX-Phishing-Error: model or vectorizer not loaded\r\n"))
}

func TestRewriteSubject(t *testing.T) {
	req := require.New(t)

	out := rewriteSubject([]byte("Subject: =?utf-8?q?Caf=C3=A9?=\r\nTo: x\r\n"), "[P] ")
	req.Equal("Subject: =?utf-8?q?[P]_Caf=C3=A9?=\r\nTo: x\r\n", string(out))

	out = rewriteSubject([]byte("Subject: [P] already\r\n"), "[P] ")
	req.Equal("Subject: [P] already\r\n", string(out))

	out = rewriteSubject([]byte("To: x\r\n"), "[P] ")
	req.Equal("To: x\r\nSubject: [P]\r\n", string(out))
}

// capturingBackend is a minimal SMTP server standing in for Postfix
type capturingBackend struct {
	mu       sync.Mutex
	messages [][]byte
	received chan struct{}
}

func (b *capturingBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &capturingSession{backend: b}, nil
}

type capturingSession struct {
	backend *capturingBackend
}

func (s *capturingSession) Reset() {}
func (s *capturingSession) Logout() error { return nil }
func (s *capturingSession) Mail(string, *smtp.MailOptions) error { return nil }
func (s *capturingSession) Rcpt(string, *smtp.RcptOptions) error { return nil }
func (s *capturingSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, data)
	s.backend.mu.Unlock()
	s.backend.received <- struct{}{}
	return nil
}

func startPostfix(t *testing.T) (*capturingBackend, string, int) {
	t.Helper()
	backend := &capturingBackend{received: make(chan struct{}, 4)}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { server.Close() })

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return backend, host, p
}

func sendMail(addr, from string, to []string, data string) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return err
	}
	if err := c.Mail(from, nil); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return err
		}
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(data)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func TestPostfixFilterEndToEnd(t *testing.T) {
	req := require.New(t)
	backend, host, port := startPostfix(t)

	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().Ready().Return(true).AnyTimes()
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(phishing(0.75), nil)

	cfg := filterConfig()
	cfg.Postfix = config.PostfixConfig{Enabled: true, Address: host, Port: port}
	f := newTestFilter(detector, cfg)
	req.NoError(f.Start())
	defer f.Stop()

	req.NoError(sendMail(f.Addr(), "attacker@evil.example", []string{"victim@example.com"}, rawPhish))

	select {
	case <-backend.received:
	case <-time.After(5 * time.Second):
		t.Fatal("message was not re-injected")
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	req.Len(backend.messages, 1)
	req.True(bytes.HasPrefix(backend.messages[0], []byte("X-Phishing-Status: phishing\r\n")))
}

func TestPostfixFilterRejects(t *testing.T) {
	req := require.New(t)

	ctrl := gomock.NewController(t)
	detector := mocks.NewMockDetector(ctrl)
	detector.EXPECT().Ready().Return(true).AnyTimes()
	detector.EXPECT().DetectEmail(gomock.Any(), gomock.Any()).Return(phishing(0.99), nil)

	cfg := filterConfig()
	cfg.BlockPhishing = true
	f := newTestFilter(detector, cfg)
	req.NoError(f.Start())
	defer f.Stop()

	err := sendMail(f.Addr(), "attacker@evil.example", []string{"victim@example.com"}, rawPhish)
	req.Error(err)

	var smtpErr *smtp.SMTPError
	req.True(errors.As(err, &smtpErr))
	req.Equal(550, smtpErr.Code)
}
