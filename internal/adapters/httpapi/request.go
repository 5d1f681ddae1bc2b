package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const maxFieldLength = 100000

var validate = validator.New()

// ErrUnsupportedContentType is returned for bodies that are neither JSON nor a form
var ErrUnsupportedContentType = errors.New("unsupported content type")

// PredictRequest is the input of both prediction endpoints
type PredictRequest struct {
	Subject string `json:"subject" validate:"max=100000"`
	Body    string `json:"body" validate:"max=100000"`
}

// PredictResponse is the JSON answer of /predict
type PredictResponse struct {
	Result     string   `json:"result"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ErrorResponse is the JSON answer of /predict on failure
type ErrorResponse struct {
	Error string `json:"error"`
	Trace string `json:"trace"`
}

// HealthResponse is the answer of /health
type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

type bodyKind int

const (
	bodyUnsupported bodyKind = iota
	bodyJSON
	bodyForm
)

// classifyContentType decides how to read a request body. A request without
// a Content-Type header is sniffed.
func classifyContentType(header string, peek []byte) (bodyKind, string) {
	mediaType := ""
	if header != "" {
		parsed, _, err := mime.ParseMediaType(header)
		if err != nil {
			return bodyUnsupported, header
		}
		mediaType = parsed
	} else if len(peek) > 0 {
		mediaType = mimetype.Detect(peek).String()
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}

	switch {
	case mediaType == "application/json", strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"):
		return bodyJSON, mediaType
	case mediaType == "application/x-www-form-urlencoded", mediaType == "multipart/form-data":
		return bodyForm, mediaType
	default:
		return bodyUnsupported, mediaType
	}
}

// decodePredictRequest reads subject and body from a JSON or form request.
// Missing and null fields default to the empty string.
func decodePredictRequest(r *http.Request) (PredictRequest, error) {
	var req PredictRequest

	var raw []byte
	contentType := r.Header.Get("Content-Type")
	if contentType == "" && r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return req, errors.Wrap(err, "failed to read request body")
		}
		raw = data
		r.Body = io.NopCloser(bytes.NewReader(data))
	}

	kind, mediaType := classifyContentType(contentType, raw)
	switch kind {
	case bodyJSON:
		if err := decodeJSON(r.Body, &req); err != nil {
			return req, err
		}
	case bodyForm:
		if err := parseForm(r, mediaType); err != nil {
			return req, err
		}
		req.Subject = r.PostFormValue("subject")
		req.Body = r.PostFormValue("body")
	default:
		if mediaType == "" {
			mediaType = "empty"
		}
		return req, errors.Wrapf(ErrUnsupportedContentType, "cannot read %s body, send JSON or a form", mediaType)
	}

	if err := validate.Struct(req); err != nil {
		return req, errors.Wrapf(err, "fields may hold at most %d characters", maxFieldLength)
	}
	return req, nil
}

func decodeJSON(body io.Reader, req *PredictRequest) error {
	if body == nil {
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(body)
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return errors.Wrap(err, "failed to decode JSON body")
	}
	// The body must hold exactly one value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	if fields == nil {
		return errors.New("JSON body must be an object")
	}

	for name, dst := range map[string]*string{"subject": &req.Subject, "body": &req.Body} {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return errors.Newf("field %q must be a string", name)
		}
	}
	return nil
}

func parseForm(r *http.Request, mediaType string) error {
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFieldLength * 4); err != nil {
			return errors.Wrap(err, "failed to parse multipart form")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "failed to parse form")
	}
	return nil
}
