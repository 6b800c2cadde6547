package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/observability"
)

// Backend is everything the REST handlers persist to
type Backend interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	CreateSession(ctx context.Context, session *models.Session) (string, error)
	UpdateSession(ctx context.Context, objectID string, endTime time.Time, durationMs int64) error
	DeleteSession(ctx context.Context, clientID int64) error

	ListLabels(ctx context.Context) ([]string, error)
	CreateLabel(ctx context.Context, name string) error
	DeleteLabel(ctx context.Context, name string) error

	GetSettings(ctx context.Context) (map[string]string, error)
	SaveSettings(ctx context.Context, values map[string]string) error
}

type Server struct {
	store Backend
	token string
}

// NewServer wires the routes. Every /api route requires token.
func NewServer(store Backend, token string) http.Handler {
	s := &Server{store: store, token: token}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/labels", s.handleListLabels)
	api.HandleFunc("POST /api/labels", s.handleCreateLabel)
	api.HandleFunc("DELETE /api/labels/{name}", s.handleDeleteLabel)

	api.HandleFunc("GET /api/sessions", s.handleListSessions)
	api.HandleFunc("POST /api/sessions", s.handleCreateSession)
	api.HandleFunc("PUT /api/sessions/{id}", s.handleUpdateSession)
	api.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	api.HandleFunc("GET /api/settings", s.handleGetSettings)
	api.HandleFunc("POST /api/settings", s.handleSaveSettings)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/", withAuth(token, api))

	return chainMiddlewares(mux, withLogging, withRequestID, withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type labelRequest struct {
	Name string `json:"name"`
}

type createSessionRequest struct {
	ID        int64      `json:"id"`
	Label     string     `json:"label"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  *int64     `json:"duration"`
}

type createSessionResponse struct {
	Success   bool           `json:"success"`
	SessionID string         `json:"sessionId"`
	Session   models.Session `json:"session"`
}

type updateSessionRequest struct {
	EndTime  *time.Time `json:"endTime"`
	Duration *int64     `json:"duration"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "Timesheet API is running"})
}

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.store.ListLabels(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get labels", err)
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		badRequest(w, "Label name is required")
		return
	}

	err := s.store.CreateLabel(r.Context(), req.Name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "Label created"})
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "Label already exists")
	case errors.Is(err, apperr.ErrValidation):
		badRequest(w, "Label name is required")
	default:
		internalError(w, r, "Failed to create label", err)
	}
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteLabel(r.Context(), r.PathValue("name"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Label deleted"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "Label not found")
	default:
		internalError(w, r, "Failed to delete label", err)
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get sessions", err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid session payload")
		return
	}
	if req.Label == "" || req.StartTime == nil {
		badRequest(w, "Label and startTime are required")
		return
	}

	session := models.Session{
		ClientID:  req.ID,
		Label:     req.Label,
		StartTime: *req.StartTime,
		EndTime:   req.EndTime,
	}
	if req.Duration != nil {
		session.DurationMs = *req.Duration
	}

	id, err := s.store.CreateSession(r.Context(), &session)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createSessionResponse{Success: true, SessionID: id, Session: session})
	case errors.Is(err, apperr.ErrValidation):
		badRequest(w, "Label and startTime are required")
	default:
		internalError(w, r, "Failed to create session", err)
	}
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EndTime == nil || req.Duration == nil {
		badRequest(w, "endTime and duration are required")
		return
	}

	err := s.store.UpdateSession(r.Context(), r.PathValue("id"), *req.EndTime, *req.Duration)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Session updated"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	default:
		internalError(w, r, "Failed to update session", err)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	// deletion is keyed by the client id, a unix-millis number
	clientID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	err = s.store.DeleteSession(r.Context(), clientID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Session deleted"})
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	default:
		internalError(w, r, "Failed to delete session", err)
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		badRequest(w, "Settings must be a JSON object")
		return
	}

	values := make(map[string]string, len(raw))
	for key, v := range raw {
		if str, ok := v.(string); ok {
			values[key] = str
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			badRequest(w, "Settings must be a JSON object")
			return
		}
		values[key] = string(encoded)
	}

	if err := s.store.SaveSettings(r.Context(), values); err != nil {
		internalError(w, r, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Settings saved"})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.LoggerFromContext(r.Context()).Error(msg, slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, msg)
}
