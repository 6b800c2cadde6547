package models

import (
	"time"
)

// Label is a user-defined category time is tracked against
type Label struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Setting is a single key of the settings document
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
