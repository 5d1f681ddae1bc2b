package filter

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Nesting limit for multipart bodies
const maxMultipartDepth = 8

var (
	htmlTag    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	htmlHref   = regexp.MustCompile(`(?i)href\s*=\s*["']?([^"'\s>]+)`)
	wordDecode = &mime.WordDecoder{CharsetReader: charsetReader}
)

// charsetReader decodes r from the named charset to UTF-8
func charsetReader(charset string, r io.Reader) (io.Reader, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", charset)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded words such as =?iso-8859-1?q?...?=
func decodeEncodedHeader(value string) (string, error) {
	decoded, err := wordDecode.DecodeHeader(value)
	if err != nil {
		return value, errors.Wrap(err, "failed to decode header")
	}
	return decoded, nil
}

// extractTextFromMessage returns the readable text of a message. Plain text
// parts are preferred; HTML parts are used with their tags stripped when no
// plain text exists.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	var plain, html []string
	err := collectText(msg.Header, msg.Body, 0, &plain, &html)
	if err != nil && len(plain) == 0 && len(html) == 0 {
		return "", err
	}

	if len(plain) > 0 {
		return strings.Join(plain, "\n"), nil
	}
	if len(html) > 0 {
		return strings.Join(html, "\n"), nil
	}
	return "", nil
}

// partHeader is the subset of header access shared by messages and parts
type partHeader interface {
	Get(key string) string
}

func collectText(header partHeader, body io.Reader, depth int, plain, html *[]string) error {
	contentType := header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if contentType == "" || err != nil {
		mediaType, params = "", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxMultipartDepth {
			return errors.New("multipart nesting too deep")
		}
		boundary := params["boundary"]
		if boundary == "" {
			return errors.New("multipart body without boundary")
		}

		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "failed to read multipart body")
			}
			if isAttachment(part.Header.Get("Content-Disposition")) {
				continue
			}
			// Errors in one part do not discard the text of the others
			_ = collectText(part.Header, part, depth+1, plain, html)
		}
	}

	data, err := io.ReadAll(decodeTransfer(body, header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return errors.Wrap(err, "failed to read body")
	}

	if mediaType == "" {
		// Untyped parts are sniffed
		mediaType = mimetype.Detect(data).String()
		mediaType, params, _ = mime.ParseMediaType(mediaType)
		if params == nil {
			params = map[string]string{}
		}
	}

	switch mediaType {
	case "text/plain":
		text, err := toUTF8(data, params["charset"])
		if err != nil {
			return err
		}
		*plain = append(*plain, text)
	case "text/html":
		text, err := toUTF8(data, params["charset"])
		if err != nil {
			return err
		}
		*html = append(*html, stripHTML(text))
	}
	return nil
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so base64 line breaks do not confuse the decoder
type newlineStripper struct {
	r io.Reader
}

func (n newlineStripper) Read(p []byte) (int, error) {
	for {
		count, err := n.r.Read(p)
		kept := 0
		for _, b := range p[:count] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

func toUTF8(data []byte, charset string) (string, error) {
	r, err := charsetReader(charset, bytes.NewReader(data))
	if err != nil {
		// Unknown charsets fall back to the raw bytes
		return string(data), nil
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode charset")
	}
	return string(decoded), nil
}

// stripHTML keeps the visible text and the link targets of an HTML body
func stripHTML(s string) string {
	fields := strings.Fields(htmlTag.ReplaceAllString(s, " "))
	for _, m := range htmlHref.FindAllStringSubmatch(s, -1) {
		fields = append(fields, m[1])
	}
	return strings.Join(fields, " ")
}
