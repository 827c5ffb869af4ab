package chi

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/contractops/slaquery/internal/domain"
	healthuc "github.com/contractops/slaquery/internal/usecase/health"
	ingestuc "github.com/contractops/slaquery/internal/usecase/ingest"
	queryuc "github.com/contractops/slaquery/internal/usecase/query"
)

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeUnauthorized     = "unauthorized"
	codeValidationFailed = "validation_failed"
	codeRateLimited      = "rate_limited"
	codeUpstreamError    = "upstream_error"
	codeInternalError    = "internal_error"
)

// Exporter streams an index as JSON lines for the backup download.
type Exporter interface {
	Export(ctx context.Context, index string, w io.Writer) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the query pipeline over HTTP.
type Server struct {
	query         *queryuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	exporter      Exporter
	defaultIndex  string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	query *queryuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	exporter Exporter,
	defaultIndex string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		query:        query,
		ingest:       ingest,
		health:       health,
		exporter:     exporter,
		defaultIndex: defaultIndex,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrQueryRequired, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDocumentInvalid, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrSearchProviderError, http.StatusBadGateway, codeUpstreamError),
	}
	return s
}

// searchRequest is the caller-facing query shape.
type searchRequest struct {
	Query string `json:"query"`
}

// searchResponse is the caller-facing result shape. Field order and the
// string-typed cached flag are load-bearing for existing consumers.
type searchResponse struct {
	Response string  `json:"response"`
	Cached   string  `json:"cached"`
	Time     float64 `json:"time"`
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.query.Resolve(r.Context(), identityFromRequest(r), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Response: result.Response,
		Cached:   strconv.FormatBool(result.Cached),
		Time:     result.Elapsed,
	})
}

type uploadRequest struct {
	Documents []uploadDocument `json:"documents"`
}

type uploadDocument struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

type messageResponse struct {
	Message string `json:"msg"`
}

// UploadDocuments handles POST /api/documents.
func (s *Server) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := make([]domain.SourceDocument, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = domain.SourceDocument{
			Title:    d.Title,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
	}

	if err := s.ingest.Upload(r.Context(), docs); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "Documents uploaded successfully"})
}

// Backup handles GET /api/backup. The index export is zipped and streamed as
// a timestamped download.
func (s *Server) Backup(w http.ResponseWriter, r *http.Request) {
	index := r.URL.Query().Get("index")
	if index == "" {
		index = s.defaultIndex
	}

	timestamp := time.Now().Format("20060102_150405")
	backupName := fmt.Sprintf("backup_%s_%s.json", index, timestamp)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backupName+".zip"))

	zw := zip.NewWriter(w)
	entry, err := zw.Create(backupName)
	if err != nil {
		s.logger.Error("failed to create zip entry", zap.Error(err))
		return
	}

	// Headers are already on the wire; an export failure past this point can
	// only truncate the download.
	if err := s.exporter.Export(r.Context(), index, entry); err != nil {
		s.logger.Error("index export failed", zap.String("index", index), zap.Error(err))
		return
	}

	if err := zw.Close(); err != nil {
		s.logger.Error("failed to finalize zip archive", zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}{string(report.Status), checks})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRateLimited,
		domain.ErrQueryRequired,
		domain.ErrDocumentInvalid,
		domain.ErrEmbeddingProviderError,
		domain.ErrSearchProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
