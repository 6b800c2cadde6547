package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/parser"
)

// ListLabels returns label names in creation order
func (s *Store) ListLabels(ctx context.Context) ([]string, error) {
	var labels []models.Label
	if err := s.db.WithContext(ctx).Order("created_at ASC, rowid ASC").Find(&labels).Error; err != nil {
		return nil, storeError("list labels", err)
	}

	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return names, nil
}

// CreateLabel adds a label, rejecting duplicates
func (s *Store) CreateLabel(ctx context.Context, name string) error {
	name, err := parser.NormalizeLabel(name)
	if err != nil {
		return fmt.Errorf("%v: %w", err, apperr.ErrValidation)
	}

	// Check if label already exists
	var existing models.Label
	err = s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return fmt.Errorf("label %q: %w", name, apperr.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storeError("find label", err)
	}

	if err := s.db.WithContext(ctx).Create(&models.Label{Name: name}).Error; err != nil {
		return storeError("create label", err)
	}
	return nil
}

// DeleteLabel removes a label. Sessions that reference it are kept.
func (s *Store) DeleteLabel(ctx context.Context, name string) error {
	result := s.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Label{})
	if result.Error != nil {
		return storeError("delete label", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("label %q: %w", name, apperr.ErrNotFound)
	}
	return nil
}
