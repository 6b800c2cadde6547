package tracker

import (
	"context"
	"time"

	"github.com/balkashynov/timesheet/internal/models"
)

// SessionStore is the durable collection of completed sessions
type SessionStore interface {
	// ListSessions returns every session, newest start time first
	ListSessions(ctx context.Context) ([]models.Session, error)
	// CreateSession persists session and returns its store-assigned id
	CreateSession(ctx context.Context, session *models.Session) (string, error)
	// DeleteSession removes the session with the given client id
	DeleteSession(ctx context.Context, clientID int64) error
}

// ActiveStore keeps the single in-progress session across restarts
type ActiveStore interface {
	SaveActive(ctx context.Context, session models.ActiveSession) error
	LoadActive(ctx context.Context) (models.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// SelectionStore is implemented by active stores that also remember the selected label
type SelectionStore interface {
	SaveSelected(ctx context.Context, label string) error
	LoadSelected(ctx context.Context) (string, error)
}

// Clock abstracts time to keep the controller deterministic in tests
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
