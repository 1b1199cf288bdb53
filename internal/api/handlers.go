package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ivlev/chess2video/internal/config"
	"github.com/ivlev/chess2video/internal/notation"
	"github.com/ivlev/chess2video/internal/source"
	"github.com/ivlev/chess2video/internal/theory"
	"github.com/ivlev/chess2video/internal/timeline"
)

type parseResponse struct {
	Document *theory.Document `json:"document"`
	Report   *notation.Report `json:"report"`
}

type errorResponse struct {
	Error  string           `json:"error"`
	Report *notation.Report `json:"report,omitempty"`
}

// readDocument parses the request body. The optional "ext" query parameter
// names the document format of the body (md, html, pdf, docx); plain text
// is assumed otherwise. It writes the error response itself and returns
// ok=false when the request cannot continue.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*theory.Document, *notation.Report, bool) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	text, err := source.Decode(body, r.URL.Query().Get("ext"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxBodyBytes), http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	doc, rep := notation.NewParser().Parse(text)
	if err := doc.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Report: rep})
		return nil, nil, false
	}
	return doc, rep, true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	doc, rep, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Document: doc, Report: rep})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	cfg, err := timingFromQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, _, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, timeline.NewPlan(doc, cfg.Timing()))
}

// timingFromQuery applies fps, move_duration, intro_duration and
// outro_duration over the defaults and validates the result.
func timingFromQuery(r *http.Request) (*config.Config, error) {
	cfg := config.Default()
	q := r.URL.Query()

	if v := q.Get("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid fps %q", v)
		}
		cfg.FPS = n
	}
	for key, dst := range map[string]*float64{
		"move_duration":  &cfg.MoveDuration,
		"intro_duration": &cfg.IntroDuration,
		"outro_duration": &cfg.OutroDuration,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", key, v)
		}
		*dst = f
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Server) handleDocumentSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := theory.Schema()
	if err != nil {
		s.log.Error("schema generation failed", "error", err)
		jsonError(w, "schema unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
