// Package chi is the HTTP transport: routing, DTO mapping, and domain
// error to status code translation.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/domain"
	"github.com/refindlab/refind/internal/domain/item"
	"github.com/refindlab/refind/internal/domain/submission"
	cataloguc "github.com/refindlab/refind/internal/usecase/catalog"
	healthuc "github.com/refindlab/refind/internal/usecase/health"
	searchuc "github.com/refindlab/refind/internal/usecase/search"
	semanticuc "github.com/refindlab/refind/internal/usecase/semantic"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into HTTP handlers.
type Server struct {
	catalog       *cataloguc.Service
	search        *searchuc.Service
	semantic      *semanticuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalog *cataloguc.Service,
	search *searchuc.Service,
	semantic *semanticuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog:  catalog,
		search:   search,
		semantic: semantic,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, codeItemNotFound),
		sentinelHandler(domain.ErrInvalidItem, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidKind, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrAnalysisUnavailable, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrCompletionUnavailable, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	for _, kind := range []item.Kind{item.Lost, item.Found} {
		kind := kind
		r.Route("/"+string(kind), func(r chi.Router) {
			r.Post("/", s.handleCreateItem(kind))
			r.Get("/", s.handleListItems(kind))
			r.Get("/{id}", s.handleGetItem(kind))
			r.Post("/{id}/refresh", s.handleRefreshItem(kind))
		})
	}

	r.Post("/search", s.handleSearch)
	r.Post("/search/image", s.handleImageSearch)

	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", s.handleCreateSubmission)
		r.Get("/", s.handleListSubmissions)
		r.Get("/search", s.handleSearchSubmissions)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handleCreateItem(kind item.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}

		it, err := s.catalog.Create(r.Context(), kind, cataloguc.Draft{
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			ImagePath:   req.ImagePath,
		})
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, itemToResponse(it))
	}
}

func (s *Server) handleListItems(kind item.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.catalog.List(r.Context(), kind)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		out := make([]itemResponse, len(items))
		for i := range items {
			out[i] = itemToResponse(items[i])
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleGetItem(kind item.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		it, err := s.catalog.Get(r.Context(), kind, id)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, itemToResponse(it))
	}
}

func (s *Server) handleRefreshItem(kind item.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		it, err := s.catalog.Refresh(r.Context(), kind, id)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, itemToResponse(it))
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kind, err := item.ParseKind(req.Kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.Search(r.Context(), searchuc.Query{
		Text:       req.Query,
		Kind:       kind,
		Location:   req.Location,
		Categories: req.Categories,
		Colors:     req.Colors,
		Limit:      req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]matchResponse, len(results))
	for i := range results {
		out[i] = matchToResponse(results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:     out,
		Total:       len(out),
		Suggestions: s.semantic.Suggestions(r.Context(), req.Query, len(out)),
	})
}

func (s *Server) handleImageSearch(w http.ResponseWriter, r *http.Request) {
	var req imageSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ImagePath == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image_path is required")
		return
	}

	scope, err := searchuc.ParseScope(req.Scope)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, err := s.search.SearchByImage(r.Context(), req.ImagePath, scope, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]matchResponse, len(results))
	for i := range results {
		out[i] = matchToResponse(results[i])
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: out, Total: len(out)})
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sub, err := s.semantic.Submit(r.Context(), submission.Submission{
		Text:    req.Text,
		Name:    req.Name,
		Contact: req.Contact,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionToResponse(sub))
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.semantic.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]submissionResponse, len(subs))
	for i := range subs {
		out[i] = submissionToResponse(subs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearchSubmissions(w http.ResponseWriter, r *http.Request) {
	matches, err := s.semantic.SearchStored(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]submissionMatchResponse, len(matches))
	for i := range matches {
		out[i] = submissionMatchToResponse(matches[i])
	}
	writeJSON(w, http.StatusOK, submissionSearchResponse{Results: out, Total: len(out)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrSubmissionNotFound,
		domain.ErrInvalidItem,
		domain.ErrInvalidKind,
		domain.ErrEmbeddingProviderError,
		domain.ErrAnalysisUnavailable,
		domain.ErrCompletionUnavailable,
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
