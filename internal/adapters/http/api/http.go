// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/screening/internal/app"
	"github.com/okian/screening/internal/domain/form"
	"github.com/okian/screening/internal/domain/screening"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScreeningDependencies
	SessionDependencies
}

// ScreeningDependencies covers one-shot calculations and the grade table.
type ScreeningDependencies interface {
	Calculate(ctx context.Context, raw screening.RawInput) (screening.Result, error)
	Grades() []screening.GradeEntry
}

// SessionDependencies covers form sessions.
type SessionDependencies interface {
	CreateSession(ctx context.Context) (string, form.View, error)
	Session(ctx context.Context, id string) (form.View, error)
	EditExamScore(ctx context.Context, id, raw string) (form.View, error)
	EditGrade(ctx context.Context, id string, slot int, label string) (form.View, error)
	Submit(ctx context.Context, id string) (form.View, error)
	ResetSession(ctx context.Context, id string) (form.View, error)
	DeleteSession(ctx context.Context, id string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	screeningHandler *ScreeningHandler
	sessionHandler   *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		screeningHandler: NewScreeningHandler(deps),
		sessionHandler:   NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /grades", MetricsMiddleware(s.screeningHandler.HandleGetGrades, "grades"))
	mux.HandleFunc("POST /screenings", MetricsMiddleware(s.screeningHandler.HandlePostScreening, "screenings"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "sessions"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleDelete, "sessions"))
	mux.HandleFunc("PUT /sessions/{id}/exam", MetricsMiddleware(s.sessionHandler.HandleSetExam, "sessions"))
	mux.HandleFunc("PUT /sessions/{id}/grades/{slot}", MetricsMiddleware(s.sessionHandler.HandleSetGrade, "sessions"))
	mux.HandleFunc("POST /sessions/{id}/submit", MetricsMiddleware(s.sessionHandler.HandleSubmit, "sessions"))
	mux.HandleFunc("POST /sessions/{id}/reset", MetricsMiddleware(s.sessionHandler.HandleReset, "sessions"))
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

// writeServiceError translates service and validation errors to responses.
// Validation failures carry the user-facing message rather than the error
// chain.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, screening.ErrOutOfRangeScore), errors.Is(err, screening.ErrIncompleteGrades):
		rejected := WrapKind(op, ErrRejected, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    screening.KindOf(rejected),
			Message: screening.FormatError(rejected),
		})
	case errors.Is(err, app.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, app.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, "too_many_sessions", WrapKind(op, ErrOverloaded, err))
	case errors.Is(err, app.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

const maxBodyBytes = 1 << 16
