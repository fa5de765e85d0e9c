// Package api serves the Smart Match HTTP API: matching, profile storage,
// vocabulary, stats and health routes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seniorcare/smartmatch/internal/adapters/repository"
	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SaveFamily upserts f, assigning an ID when it has none.
	SaveFamily(ctx context.Context, f model.FamilyProfile) (model.FamilyProfile, error)
	Family(ctx context.Context, id string) (model.FamilyProfile, error)
	// SaveCaregiver upserts c, assigning an ID when it has none.
	SaveCaregiver(ctx context.Context, c model.CaregiverProfile) (model.CaregiverProfile, error)
	Caregiver(ctx context.Context, id string) (model.CaregiverProfile, error)
	ListCaregivers(ctx context.Context, filter repository.Filter) ([]model.CaregiverProfile, error)

	// MatchFamily ranks the stored caregivers passing filter for a stored family.
	MatchFamily(ctx context.Context, familyID string, filter repository.Filter, sel matching.Selection) ([]model.MatchResult, error)
	// Match ranks caregivers supplied by the caller.
	Match(ctx context.Context, family *model.FamilyProfile, caregivers []model.CaregiverProfile) ([]model.MatchResult, error)
	// MatchCaregiver scores one stored caregiver for one stored family.
	MatchCaregiver(ctx context.Context, familyID, caregiverID string) (model.MatchResult, error)

	Weights() matching.Weights
	Vocabulary() vocabulary.Document
	// Ready returns nil once backing stores answer.
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps          Dependencies
	schemas       *schemas
	maxLimit      int
	healthHandler *HealthHandler
	stats         StatsProvider
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxMatchLimit caps the limit query parameter on list and match routes.
func WithMaxMatchLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		deps:          deps,
		schemas:       mustCompileSchemas(),
		maxLimit:      defaultMaxLimit,
		healthHandler: NewHealthHandler(deps),
		stats:         statsProvider,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", "healthz", s.healthHandler.HandleHealth)
	s.handle(mux, "GET /readyz", "readyz", s.healthHandler.HandleReady)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	s.handle(mux, "GET /stats", "stats", s.handleStats)
	s.handle(mux, "GET /vocabulary", "vocabulary", s.handleVocabulary)

	s.handle(mux, "GET /caregivers/match", "match_family", s.handleMatchFamily)
	s.handle(mux, "GET /caregivers/{id}/match", "match_caregiver", s.handleMatchCaregiver)
	s.handle(mux, "POST /match", "match", s.handleMatch)

	s.handle(mux, "POST /families", "families", s.handleCreateFamily)
	s.handle(mux, "PUT /families/{id}", "families", s.handlePutFamily)
	s.handle(mux, "GET /families/{id}", "families", s.handleGetFamily)

	s.handle(mux, "GET /caregivers", "caregivers", s.handleListCaregivers)
	s.handle(mux, "POST /caregivers", "caregivers", s.handleCreateCaregiver)
	s.handle(mux, "PUT /caregivers/{id}", "caregivers", s.handlePutCaregiver)
	s.handle(mux, "GET /caregivers/{id}", "caregivers", s.handleGetCaregiver)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrIDMismatch),
		errors.Is(err, ErrMissingParam),
		errors.Is(err, matching.ErrNilFamily),
		errors.Is(err, matching.ErrMissingCaregiverID),
		errors.Is(err, repository.ErrMissingID),
		errors.Is(err, repository.ErrInvalidFilter):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
