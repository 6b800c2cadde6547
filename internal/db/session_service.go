package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
)

// ListSessions returns all sessions, most recent start first
func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session

	err := s.db.WithContext(ctx).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, storeError("list sessions", err)
	}

	return sessions, nil
}

// CreateSession stores a session and returns its generated object id
func (s *Store) CreateSession(ctx context.Context, session *models.Session) (string, error) {
	if strings.TrimSpace(session.Label) == "" || session.StartTime.IsZero() {
		return "", fmt.Errorf("label and startTime are required: %w", apperr.ErrValidation)
	}

	// Keep stored timestamps in one zone so text ordering matches time ordering
	session.StartTime = session.StartTime.UTC()
	if session.EndTime != nil {
		end := session.EndTime.UTC()
		session.EndTime = &end
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return "", storeError("create session", err)
	}

	return session.ObjectID, nil
}

// UpdateSession sets the end of a stored session by its object id
func (s *Store) UpdateSession(ctx context.Context, objectID string, endTime time.Time, durationMs int64) error {
	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("object_id = ?", objectID).
		Updates(map[string]any{
			"end_time":    endTime.UTC(),
			"duration_ms": durationMs,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return storeError("update session", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", objectID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteSession removes the session with the given client id
func (s *Store) DeleteSession(ctx context.Context, clientID int64) error {
	result := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&models.Session{})
	if result.Error != nil {
		return storeError("delete session", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session %d: %w", clientID, apperr.ErrNotFound)
	}
	return nil
}
