package api

import (
	"net/http"
	"strconv"

	"github.com/okian/screening/internal/domain/form"
)

// SessionHandler handles form session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionResponse struct {
	ID string `json:"id"`
	form.View
}

type fieldRequest struct {
	Value rawValue `json:"value"`
}

// HandleCreate handles POST /sessions requests.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	id, view, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, View: view})
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	id := r.PathValue("id")
	view, err := h.deps.Session(r.Context(), id)
	h.respond(w, op, id, view, err)
}

// HandleDelete handles DELETE /sessions/{id} requests.
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetExam handles PUT /sessions/{id}/exam requests.
func (h *SessionHandler) HandleSetExam(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_exam"
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id := r.PathValue("id")
	view, err := h.deps.EditExamScore(r.Context(), id, string(req.Value))
	h.respond(w, op, id, view, err)
}

// HandleSetGrade handles PUT /sessions/{id}/grades/{slot} requests. Slots are
// numbered from 1.
func (h *SessionHandler) HandleSetGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_grade"
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id := r.PathValue("id")
	view, err := h.deps.EditGrade(r.Context(), id, slot-1, string(req.Value))
	h.respond(w, op, id, view, err)
}

// HandleSubmit handles POST /sessions/{id}/submit requests.
func (h *SessionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_session"
	id := r.PathValue("id")
	view, err := h.deps.Submit(r.Context(), id)
	h.respond(w, op, id, view, err)
}

// HandleReset handles POST /sessions/{id}/reset requests.
func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	id := r.PathValue("id")
	view, err := h.deps.ResetSession(r.Context(), id)
	h.respond(w, op, id, view, err)
}

func (h *SessionHandler) respond(w http.ResponseWriter, op, id string, view form.View, err error) {
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: view})
}
