package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/balkashynov/timesheet/internal/api"
	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/db"
	"github.com/balkashynov/timesheet/internal/models"
)

const testToken = "secret-token"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return api.NewServer(db.NewStore(gdb), testToken)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("timesheet-auth", testToken)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"OK"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		header string
		value  string
		query  string
		want   int
	}{
		{"missing", "", "", "", http.StatusUnauthorized},
		{"wrong", "timesheet-auth", "nope", "", http.StatusUnauthorized},
		{"primary header", "timesheet-auth", testToken, "", http.StatusOK},
		{"alt header", "x-timesheet-auth", testToken, "", http.StatusOK},
		{"query", "", "", "?auth=" + testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/labels"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestEmptyServerTokenRejectsEverything(t *testing.T) {
	srv := api.NewServer(nil, "")
	req := httptest.NewRequest(http.MethodGet, "/api/labels", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestLabelEndpoints(t *testing.T) {
	srv := newTestServer(t)

	if w := do(t, srv, http.MethodPost, "/api/labels", `{"name":"Writing"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, http.MethodPost, "/api/labels", `{"name":"Writing"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/labels", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty: expected 400, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/labels", `{"name":"Deep Work"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}

	w := do(t, srv, http.MethodGet, "/api/labels", "")
	var labels []string
	if err := json.Unmarshal(w.Body.Bytes(), &labels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(labels) != 2 || labels[0] != "Writing" || labels[1] != "Deep Work" {
		t.Fatalf("unexpected labels %v", labels)
	}

	if w := do(t, srv, http.MethodDelete, "/api/labels/Deep%20Work", ""); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodDelete, "/api/labels/Deep%20Work", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete again: expected 404, got %d", w.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	older := `{"id":1760864400000,"label":"Writing","startTime":"2026-10-19T09:00:00Z","endTime":"2026-10-19T09:00:05Z","duration":5000}`
	newer := `{"id":1760868000000,"label":"Reading","startTime":"2026-10-19T10:00:00Z","endTime":"2026-10-19T10:01:00Z","duration":60000}`

	w := do(t, srv, http.MethodPost, "/api/sessions", older)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Success   bool           `json:"success"`
		SessionID string         `json:"sessionId"`
		Session   models.Session `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.Success || created.SessionID == "" || created.Session.ObjectID != created.SessionID {
		t.Fatalf("unexpected create response %+v", created)
	}

	if w := do(t, srv, http.MethodPost, "/api/sessions", newer); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/sessions", `{"id":1,"label":"Writing"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing startTime: expected 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/sessions", "")
	var sessions []models.Session
	if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Label != "Reading" || sessions[1].DurationMs != 5000 {
		t.Fatalf("unexpected sessions %+v", sessions)
	}

	update := `{"endTime":"2026-10-19T09:00:10Z","duration":10000}`
	if w := do(t, srv, http.MethodPut, "/api/sessions/"+created.SessionID, update); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPut, "/api/sessions/unknown", update); w.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPut, "/api/sessions/"+created.SessionID, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("update without fields: expected 400, got %d", w.Code)
	}

	if w := do(t, srv, http.MethodDelete, "/api/sessions/1760864400000", ""); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodDelete, "/api/sessions/1760864400000", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete again: expected 404, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodDelete, "/api/sessions/not-a-number", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete by object id: expected 404, got %d", w.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/settings", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "{}" {
		t.Fatalf("expected empty object, got %d %s", w.Code, w.Body.String())
	}

	if w := do(t, srv, http.MethodPost, "/api/settings", `{"theme":"dark","dailyGoal":8}`); w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/settings", `{"theme":"light"}`); w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", w.Code)
	}

	w = do(t, srv, http.MethodGet, "/api/settings", "")
	var settings map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings["theme"] != "light" || settings["dailyGoal"] != "8" {
		t.Fatalf("unexpected settings %v", settings)
	}
}

type failingBackend struct {
	api.Backend
}

func (failingBackend) ListSessions(context.Context) ([]models.Session, error) {
	return nil, fmt.Errorf("list sessions: %w", apperr.ErrUnavailable)
}

func TestStoreFailureIs500(t *testing.T) {
	srv := api.NewServer(failingBackend{}, testToken)
	w := do(t, srv, http.MethodGet, "/api/sessions", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to get sessions") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
