package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emersion/go-smtp"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/ports"
	"github.com/mikey/phishguard/internal/textproc"
	"go.uber.org/zap"
)

// PostfixFilter implements a Postfix content filter. Every message is
// classified, tagged with headers and handed back to Postfix.
type PostfixFilter struct {
	detector      ports.Detector
	textProcessor *textproc.TextProcessor
	logger        *zap.Logger
	cfg           config.FilterConfig
	server        *smtp.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	detector ports.Detector,
	textProcessor *textproc.TextProcessor,
	logger *zap.Logger,
	cfg config.FilterConfig,
) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[PHISHING] "
	}

	return &PostfixFilter{
		detector:      detector,
		textProcessor: textProcessor,
		logger:        logger,
		cfg:           cfg,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", f.cfg.ListenAddress)
	}
	f.mu.Lock()
	f.listener = ln
	f.mu.Unlock()

	f.logger.Info("Postfix filter starting",
		zap.String("address", ln.Addr().String()),
		zap.Bool("ready", f.detector.Ready()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Addr returns the bound address once started
func (f *PostfixFilter) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener != nil {
		return f.listener.Addr().String()
	}
	return f.cfg.ListenAddress
}

// ProcessEmail classifies an email without the SMTP round trip
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.Prediction, error) {
	return f.detector.DetectEmail(ctx, email)
}

// verdict is the outcome of filtering one message
type verdict struct {
	prediction *core.Prediction
	err        error
	rejected   bool
	message    []byte
}

// filterMessage classifies a raw message and returns it with the phishing
// headers prepended. A failed detection never drops the message: it passes
// with an error header instead.
func (f *PostfixFilter) filterMessage(ctx context.Context, raw []byte, sender string, recipients []string) (*verdict, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email message")
	}

	email := parseEmail(msg, f.logger)
	email.From = sender
	email.To = recipients
	email.Body = f.textProcessor.ProcessText(email.Body, f.cfg.MaxBodySize)

	v := &verdict{}
	v.prediction, v.err = f.detector.DetectEmail(ctx, email)
	if v.err != nil {
		f.logger.Error("Failed to classify email",
			zap.Error(v.err),
			zap.String("sender", sender),
			zap.String("sender_domain", senderDomain(sender)))
	}

	phishing := v.err == nil && v.prediction.IsPhishing()
	if phishing && f.cfg.BlockPhishing {
		v.rejected = true
		return v, nil
	}

	var headers bytes.Buffer
	if v.err != nil {
		fmt.Fprintf(&headers, "%s: unknown\r\n", f.cfg.Headers.Status)
		fmt.Fprintf(&headers, "%s: %s\r\n", f.cfg.Headers.Error, sanitizeHeaderValue(v.err.Error()))
	} else {
		fmt.Fprintf(&headers, "%s: %s\r\n", f.cfg.Headers.Status, statusValue(v.prediction))
		if v.prediction.Confidence != nil {
			fmt.Fprintf(&headers, "%s: %.4f\r\n", f.cfg.Headers.Confidence, *v.prediction.Confidence)
		}
	}

	header, body := splitMessage(raw)
	if phishing && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		header = rewriteSubject(header, f.cfg.SubjectPrefix)
	}

	var out bytes.Buffer
	out.Grow(headers.Len() + len(raw) + 4)
	out.Write(headers.Bytes())
	out.Write(header)
	out.WriteString("\r\n")
	out.Write(body)
	v.message = out.Bytes()
	return v, nil
}

// parseEmail builds an Email from a parsed message
func parseEmail(msg *mail.Message, logger *zap.Logger) *core.Email {
	email := &core.Email{Headers: make(map[string][]string, len(msg.Header))}
	for key, values := range msg.Header {
		email.Headers[key] = values
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}
	email.Subject = subject

	text, err := extractTextFromMessage(msg)
	if err != nil {
		logger.Warn("Failed to extract text content, classifying the subject only", zap.Error(err))
	}
	email.Body = text
	return email
}

func statusValue(p *core.Prediction) string {
	if p.IsPhishing() {
		return "phishing"
	}
	return "safe"
}

func senderDomain(sender string) string {
	if i := strings.LastIndexByte(sender, '@'); i >= 0 && i < len(sender)-1 {
		return sender[i+1:]
	}
	return "unknown"
}

// sanitizeHeaderValue keeps a value on a single header line
func sanitizeHeaderValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitMessage returns the raw header block (each line CRLF terminated) and
// the body. Bare LF line endings are accepted.
func splitMessage(raw []byte) ([]byte, []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return bytes.ReplaceAll(raw[:i+1], []byte("\n"), []byte("\r\n")), raw[i+2:]
	}
	return raw, nil
}

// rewriteSubject prefixes the Subject header unless the prefix is already
// there. Folded continuation lines are joined into the new value.
func rewriteSubject(header []byte, prefix string) []byte {
	lines := strings.SplitAfter(string(header), "\r\n")
	var out strings.Builder
	found := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if found || !ok || isContinuation(line) || !strings.EqualFold(strings.TrimSpace(name), "Subject") {
			out.WriteString(line)
			continue
		}

		found = true
		subject := strings.TrimSpace(value)
		for i+1 < len(lines) && isContinuation(lines[i+1]) {
			i++
			subject += " " + strings.TrimSpace(lines[i])
		}
		if decoded, err := decodeEncodedHeader(subject); err == nil {
			subject = decoded
		}
		if !strings.HasPrefix(subject, prefix) {
			subject = prefix + subject
		}
		out.WriteString("Subject: " + encodeHeaderValue(subject) + "\r\n")
	}

	if !found {
		out.WriteString("Subject: " + encodeHeaderValue(strings.TrimSpace(prefix)) + "\r\n")
	}
	return []byte(out.String())
}

func isContinuation(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

func encodeHeaderValue(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("utf-8", s)
		}
	}
	return s
}

// sendToPostfix re-injects a message into Postfix using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.cfg.Postfix.Address, strconv.Itoa(f.cfg.Postfix.Port))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return errors.Wrap(err, "failed to connect to Postfix")
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to set connection deadline")
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return errors.Wrap(err, "EHLO failed")
	}
	if err := c.Mail(sender, nil); err != nil {
		return errors.Wrap(err, "MAIL FROM failed")
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "DATA command failed")
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return errors.Wrap(err, "failed to send email data")
	}
	if err := wc.Close(); err != nil {
		return errors.Wrap(err, "failed to close data writer")
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and forwards it
func (s *smtpSession) Data(r io.Reader) error {
	logger := s.filter.logger

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	v, err := s.filter.filterMessage(ctx, raw, s.sender, s.recipients)
	if err != nil {
		logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	if v.rejected {
		logger.Info("Rejecting phishing email",
			zap.String("from", s.sender),
			zap.String("sender_domain", senderDomain(s.sender)),
			zap.Float64p("confidence", v.prediction.Confidence))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Rejected as phishing",
		}
	}

	if s.filter.cfg.Postfix.Enabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, v.message); err != nil {
			logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	fields := []zap.Field{
		zap.String("from", s.sender),
		zap.String("sender_domain", senderDomain(s.sender)),
	}
	if v.prediction != nil {
		fields = append(fields,
			zap.String("result", v.prediction.Label),
			zap.Float64p("confidence", v.prediction.Confidence))
	} else {
		fields = append(fields, zap.NamedError("detection_error", v.err))
	}
	logger.Info("Processed email", fields...)
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
