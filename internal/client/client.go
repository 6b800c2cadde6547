package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
)

// Client talks to the timesheet REST backend
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends an authenticated request and decodes a JSON reply into out.
// The token goes in both auth headers and the auth query parameter.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("build url: %v: %w", err, apperr.ErrUnavailable)
	}
	q := u.Query()
	q.Set("auth", c.token)
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %v: %w", err, apperr.ErrUnavailable)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("timesheet-auth", c.token)
	req.Header.Set("x-timesheet-auth", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", method, endpoint, err, apperr.ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %v: %w", err, apperr.ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid JSON response from server: %v: %w", err, apperr.ErrUnavailable)
	}
	return nil
}

// statusError maps an HTTP failure onto the app taxonomy, keeping the
// server's message when it sent one
func statusError(status int, raw []byte) error {
	var body errorBody
	msg := string(raw)
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}

	var kind error
	switch status {
	case http.StatusBadRequest:
		kind = apperr.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = apperr.ErrUnauthorized
	case http.StatusNotFound:
		kind = apperr.ErrNotFound
	case http.StatusConflict:
		kind = apperr.ErrConflict
	default:
		kind = apperr.ErrUnavailable
	}
	return fmt.Errorf("%s: %w", msg, kind)
}

// Health checks the backend without credentials
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %v: %w", err, apperr.ErrUnavailable)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %v: %w", err, apperr.ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: HTTP error! status: %d: %w", resp.StatusCode, apperr.ErrUnavailable)
	}
	return nil
}

// Labels API

func (c *Client) ListLabels(ctx context.Context) ([]string, error) {
	var labels []string
	if err := c.do(ctx, http.MethodGet, "/api/labels", nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func (c *Client) CreateLabel(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/labels", map[string]string{"name": name}, nil)
}

func (c *Client) DeleteLabel(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/api/labels/"+url.PathEscape(name), nil, nil)
}

// Sessions API

func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (c *Client) CreateSession(ctx context.Context, session *models.Session) (string, error) {
	var resp createSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", session, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("server did not return a session id: %w", apperr.ErrUnavailable)
	}
	session.ObjectID = resp.SessionID
	return resp.SessionID, nil
}

func (c *Client) UpdateSession(ctx context.Context, objectID string, endTime time.Time, durationMs int64) error {
	body := map[string]any{"endTime": endTime, "duration": durationMs}
	return c.do(ctx, http.MethodPut, "/api/sessions/"+url.PathEscape(objectID), body, nil)
}

func (c *Client) DeleteSession(ctx context.Context, clientID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+strconv.FormatInt(clientID, 10), nil, nil)
}

// Settings API

func (c *Client) GetSettings(ctx context.Context) (map[string]string, error) {
	settings := map[string]string{}
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *Client) SaveSettings(ctx context.Context, values map[string]string) error {
	return c.do(ctx, http.MethodPost, "/api/settings", values, nil)
}
