package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveSession is the in-progress interval kept only in local state
type ActiveSession struct {
	ID        int64     `json:"id"` // client id, creation time in unix millis
	Label     string    `json:"label"`
	StartTime time.Time `json:"startTime"`
}

// Session represents a completed time tracking session
type Session struct {
	ObjectID  string    `gorm:"primaryKey;column:object_id" json:"_id,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ClientID   int64      `gorm:"column:client_id;index" json:"id"`
	Label      string     `gorm:"not null;index" json:"label"`
	StartTime  time.Time  `gorm:"not null;index" json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	DurationMs int64      `gorm:"column:duration_ms" json:"duration"`
}

// Complete turns an active session into a completed record ending at end.
// The second return value reports whether the duration had to be clamped to zero.
func (a ActiveSession) Complete(end time.Time) (Session, bool) {
	duration := end.Sub(a.StartTime).Milliseconds()
	clamped := false
	if duration < 0 {
		duration = 0
		clamped = true
	}
	return Session{
		ClientID:   a.ID,
		Label:      a.Label,
		StartTime:  a.StartTime,
		EndTime:    &end,
		DurationMs: duration,
	}, clamped
}

// BeforeCreate assigns the store-side object id
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ObjectID == "" {
		s.ObjectID = uuid.NewString()
	}
	return nil
}
