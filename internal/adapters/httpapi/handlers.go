package httpapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/mikey/phishguard/internal/core"
	"go.uber.org/zap"
)

//go:embed templates/index.html static
var assetFS embed.FS

var indexTemplate = template.Must(template.ParseFS(assetFS, "templates/index.html"))

// staticFS holds the browser client served under /static/
var staticFS = mustSub(assetFS, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// pageData is rendered by the index template
type pageData struct {
	Subject    string
	Body       string
	Result     string
	Class      string
	Confidence string
	Ready      bool
}

// RegisterHandlers registers every route on mux
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleIndexSubmit)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, pageData{Ready: s.detector.Ready()})
}

// handleIndexSubmit is the classic form fallback: it re-renders the page with
// the label, or the error prefixed with "Error: "
func (s *Server) handleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
		Ready:   s.detector.Ready(),
	}
	s.logger.Info("Received form submission",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Int("subject_length", len(data.Subject)),
		zap.Int("body_length", len(data.Body)))

	prediction, err := s.detector.Detect(r.Context(), data.Subject, data.Body)
	if err != nil {
		s.logger.Error("Prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		data.Result = "Error: " + err.Error()
		data.Class = "error"
	} else {
		data.Result = prediction.Label
		data.Class = "safe"
		if prediction.IsPhishing() {
			data.Class = "phishing"
		}
		if prediction.Confidence != nil {
			data.Confidence = strconv.FormatFloat(roundConfidence(*prediction.Confidence), 'f', -1, 64)
		}
	}

	s.renderIndex(w, r, data)
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("Failed to render page",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	req, err := decodePredictRequest(r)
	if err != nil {
		s.logger.Warn("Invalid prediction request",
			zap.String("request_id", requestID),
			zap.String("content_type", r.Header.Get("Content-Type")),
			zap.Error(err))
		writeError(w, err)
		return
	}

	prediction, err := s.detector.Detect(r.Context(), req.Subject, req.Body)
	if err != nil {
		s.logger.Error("Prediction failed",
			zap.String("request_id", requestID),
			zap.Stringer("kind", core.KindOf(err)),
			zap.Error(err))
		writeError(w, err)
		return
	}

	resp := PredictResponse{Result: prediction.Label}
	if prediction.Confidence != nil {
		c := roundConfidence(*prediction.Confidence)
		resp.Confidence = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := s.detector.Ready()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: "ok", Ready: ready})
}

// roundConfidence rounds to 4 decimals
func roundConfidence(c float64) float64 {
	return math.Round(c*10000) / 10000
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with 500 and the error message plus its stack trace
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: err.Error(),
		Trace: trace(err),
	})
}

// trace renders the error chain with stack frames
func trace(err error) string {
	return strings.TrimSpace(fmt.Sprintf("%+v", err))
}
