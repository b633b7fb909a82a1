// Package chi exposes the query and introspection services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/query/operation"
	"github.com/pagegrid/storelens/internal/domain/query/request"
	"github.com/pagegrid/storelens/internal/metrics"
	healthuc "github.com/pagegrid/storelens/internal/usecase/health"
	queryuc "github.com/pagegrid/storelens/internal/usecase/query"
	schemauc "github.com/pagegrid/storelens/internal/usecase/schema"
	"github.com/pagegrid/storelens/internal/version"
)

// Error codes returned to clients.
const (
	codeInvalidBody          = "invalid_body"
	codeMissingField         = "missing_field"
	codeInvalidRange         = "invalid_range"
	codeInvalidOperation     = "invalid_operation"
	codeMalformedQuery       = "malformed_query"
	codeUnauthorized         = "unauthorized"
	codeCollectionNotAllowed = "collection_not_allowed"
	codeOperatorNotAllowed   = "operator_not_allowed"
	codeStageNotAllowed      = "stage_not_allowed"
	codeCollectionNotFound   = "collection_not_found"
	codeModelNotFound        = "model_not_found"
	codeNotFound             = "not_found"
	codeRateLimited          = "rate_limited"
	codeStoreError           = "store_error"
	codeStoreUnavailable     = "store_unavailable"
	codeStoreTimeout         = "store_timeout"
	codeInternal             = "internal"
)

// errorMapping binds a domain sentinel to an HTTP status and client code.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

// Server serves the HTTP API.
type Server struct {
	schema   *schemauc.Service
	query    *queryuc.Service
	health   *healthuc.Service
	logger   *zap.Logger
	mappings []errorMapping
}

// NewServer creates an HTTP API server.
func NewServer(
	schema *schemauc.Service,
	query *queryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		schema: schema,
		query:  query,
		health: health,
		logger: logger,
		mappings: []errorMapping{
			{domain.ErrCollectionNotAllowed, http.StatusForbidden, codeCollectionNotAllowed},
			{domain.ErrOperatorNotAllowed, http.StatusForbidden, codeOperatorNotAllowed},
			{domain.ErrStageNotAllowed, http.StatusForbidden, codeStageNotAllowed},
			{domain.ErrMissingField, http.StatusBadRequest, codeMissingField},
			{domain.ErrInvalidRange, http.StatusBadRequest, codeInvalidRange},
			{domain.ErrUnsupportedOperation, http.StatusBadRequest, codeInvalidOperation},
			{domain.ErrMalformedQuery, http.StatusBadRequest, codeMalformedQuery},
			{domain.ErrCollectionNotFound, http.StatusNotFound, codeCollectionNotFound},
			{domain.ErrModelNotFound, http.StatusNotFound, codeModelNotFound},
			{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
			{domain.ErrStoreTimeout, http.StatusGatewayTimeout, codeStoreTimeout},
			{domain.ErrStore, http.StatusInternalServerError, codeStoreError},
		},
	}
}

// Mount registers the API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/collections", s.ListCollections)
		r.Get("/collections/{collection}", s.GetCollection)
		r.Post("/query", s.ExecuteQuery)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
}

// ListCollections handles GET /api/v1/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	summaries := s.schema.List(r.Context())

	items := make([]collectionItem, len(summaries))
	for i, sum := range summaries {
		items[i] = summaryToItem(sum)
	}

	writeJSON(w, http.StatusOK, collectionListResponse{Items: items})
}

// GetCollection handles GET /api/v1/collections/{collection}.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	detail, err := s.schema.Detail(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// ExecuteQuery handles POST /api/v1/query.
func (s *Server) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}

	in := request.Input{
		Collection:     req.Collection,
		Operation:      req.Operation,
		Filter:         req.Filter,
		Projection:     req.Projection,
		Sort:           req.Sort,
		Limit:          req.Limit,
		Skip:           req.Skip,
		TimeoutSeconds: req.TimeoutSeconds,
		Keyword:        req.Keyword,
		Pipeline:       req.Pipeline,
		Field:          req.Field,
	}

	start := time.Now()
	res, err := s.query.Execute(r.Context(), in)
	if err != nil {
		s.recordQueryError(in, err)
		s.handleDomainError(w, err)
		return
	}

	collection, op := queryLabels(in)
	metrics.QueriesTotal.WithLabelValues(collection, op, "ok").Inc()
	metrics.QueryDuration.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, queryResultToResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, check := range report.Checks {
		checks[name] = string(check)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// classify resolves a domain error to its HTTP status and client code.
func (s *Server) classify(err error) (int, string, bool) {
	for _, m := range s.mappings {
		if errors.Is(err, m.sentinel) {
			return m.status, m.code, true
		}
	}
	return http.StatusInternalServerError, codeInternal, false
}

// handleDomainError writes the mapped error response. Domain error
// messages are built for clients, so they pass through unchanged; only
// unclassified errors are masked.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	status, code, known := s.classify(err)
	if !known {
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, status, code, "internal error")
		return
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("store error", zap.String("code", code), zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.String("code", code), zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

func (s *Server) recordQueryError(in request.Input, err error) {
	collection, op := queryLabels(in)
	if errors.Is(err, domain.ErrCollectionNotAllowed) {
		// Arbitrary client-supplied names must not become label values.
		collection = "denied"
	}
	status, code, _ := s.classify(err)
	if status < http.StatusInternalServerError {
		metrics.QueriesTotal.WithLabelValues(collection, op, "rejected").Inc()
		metrics.QueriesRejectedTotal.WithLabelValues(collection, code).Inc()
		return
	}
	metrics.QueriesTotal.WithLabelValues(collection, op, "error").Inc()
}

// queryLabels derives bounded metric labels: past the allowlist gate a
// collection name is one of the fixed registry entries, and unknown
// operation names collapse to a constant.
func queryLabels(in request.Input) (string, string) {
	op := operation.Operation(in.Operation)
	if in.Operation == "" {
		op = operation.Find
	}
	opLabel := string(op)
	if !op.IsValid() {
		opLabel = "invalid"
	}

	collection := in.Collection
	if collection == "" {
		collection = "none"
	}
	return collection, opLabel
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
