package httpapi

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ondc-conformance/internal/anchor"
	"ondc-conformance/internal/metrics"
	"ondc-conformance/internal/model"
	"ondc-conformance/internal/processing"
	"ondc-conformance/internal/verr"
)

// maxBodyBytes caps a decompressed request body.
const maxBodyBytes = 64 << 20

var validate = validator.New()

// ReportWriter receives reports that carry at least one violation.
type ReportWriter interface {
	Append(r *model.ValidationReport) error
}

// Server exposes the engine over HTTP. Anchors, Reports and History are optional.
type Server struct {
	Engine  *processing.Engine
	Anchors anchor.Sink
	Reports ReportWriter
	History ReportReader
}

// statusParams are the query parameters of the on_status route.
type statusParams struct {
	State string `validate:"omitempty,printascii,max=64"`
}

// Response is the body of every validation route.
type Response struct {
	ReportID string                 `json:"report_id"`
	Valid    bool                   `json:"valid"`
	Errors   []verr.ValidationError `json:"errors"`
}

// RegisterRoutes wires the validation, anchor and operational routes.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ondc/on_search/validate", s.onSearchHandler).Methods(http.MethodPost)
	r.HandleFunc("/ondc/on_status/validate", s.onStatusHandler).Methods(http.MethodPost)
	r.HandleFunc("/ondc/on_confirm", s.onConfirmHandler).Methods(http.MethodPut)
	if s.History != nil {
		r.HandleFunc("/ondc/reports", s.listReportsHandler).Methods(http.MethodGet)
		r.HandleFunc("/ondc/reports/stats", s.reportStatsHandler).Methods(http.MethodGet)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) onSearchHandler(w http.ResponseWriter, r *http.Request) {
	s.serveValidation(w, r, processing.Request{Kind: model.KindOnSearch})
}

func (s *Server) onStatusHandler(w http.ResponseWriter, r *http.Request) {
	params := statusParams{State: r.URL.Query().Get("state")}
	if err := validate.Struct(params); err != nil {
		http.Error(w, "invalid state parameter: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.serveValidation(w, r, processing.Request{Kind: model.KindOnStatus, Stage: params.State})
}

func (s *Server) serveValidation(w http.ResponseWriter, r *http.Request, req processing.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req.Body = body

	report, err := s.Engine.Validate(r.Context(), req)
	if errors.Is(err, verr.ErrParse) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		zap.S().Errorw("validation failed", "kind", req.Kind, "error", err)
		http.Error(w, "validation failed", http.StatusInternalServerError)
		return
	}

	if !report.Valid && s.Reports != nil {
		if err := s.Reports.Append(report); err != nil {
			zap.S().Warnw("could not store report", "report_id", report.ID, "error", err)
		}
	}
	writeJSON(w, r, http.StatusOK, Response{ReportID: report.ID, Valid: report.Valid, Errors: report.Errors})
}

func (s *Server) onConfirmHandler(w http.ResponseWriter, r *http.Request) {
	if s.Anchors == nil {
		http.Error(w, "on_confirm storage is not configured", http.StatusNotImplemented)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	a, err := s.Anchors.Put(r.Context(), body)
	if errors.Is(err, verr.ErrParse) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		zap.S().Errorw("could not store on_confirm", "error", err)
		http.Error(w, "could not store on_confirm", http.StatusInternalServerError)
		return
	}
	zap.S().Infow("stored on_confirm", "transaction_id", a.TransactionID, "order_id", a.OrderID)
	writeJSON(w, r, http.StatusOK, map[string]string{"transaction_id": a.TransactionID, "order_id": a.OrderID})
}

// readBody reads the request body, inflating it when it is gzip encoded.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := io.Reader(r.Body)
	if enc := r.Header.Get("Content-Encoding"); strings.EqualFold(enc, "gzip") {
		gr, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "failed to decompress gzip body", http.StatusBadRequest)
			return nil, false
		}
		defer gr.Close()
		reader = gr
	}
	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if len(body) > maxBodyBytes {
		http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return body, true
}

// writeJSON answers gzip-compressed when the client accepts it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
		return
	}
	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(status)
	gw := gzip.NewWriter(w)
	defer gw.Close()
	_ = json.NewEncoder(gw).Encode(v)
}
