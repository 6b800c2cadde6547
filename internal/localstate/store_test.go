package localstate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/localstate"
	"github.com/balkashynov/timesheet/internal/models"
	"github.com/balkashynov/timesheet/internal/tracker"
)

var (
	_ tracker.ActiveStore    = (*localstate.FileStore)(nil)
	_ tracker.SelectionStore = (*localstate.FileStore)(nil)
	_ tracker.ActiveStore    = (*localstate.MemoryStore)(nil)
	_ tracker.SelectionStore = (*localstate.MemoryStore)(nil)
)

func TestFileStoreActiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	store := localstate.NewFileStore(dir)

	if _, err := store.LoadActive(ctx); !errors.Is(err, apperr.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}

	start := time.Date(2026, 10, 19, 9, 30, 0, 250_000_000, time.UTC)
	want := models.ActiveSession{ID: start.UnixMilli(), Label: "Writing", StartTime: start}
	if err := store.SaveActive(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a new store over the same dir simulates a restart
	got, err := localstate.NewFileStore(dir).LoadActive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != want.ID || got.Label != want.Label || !got.StartTime.Equal(want.StartTime) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("second clear must be a no-op: %v", err)
	}
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperr.ErrNoActiveSession) {
		t.Fatalf("expected no active session after clear, got %v", err)
	}
}

func TestFileStoreCorruptActive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "timesheet-current-session.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := localstate.NewFileStore(dir).LoadActive(context.Background())
	if err == nil || errors.Is(err, apperr.ErrNoActiveSession) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileStoreSelectedLabel(t *testing.T) {
	ctx := context.Background()
	store := localstate.NewFileStore(t.TempDir())

	label, err := store.LoadSelected(ctx)
	if err != nil || label != "" {
		t.Fatalf("expected empty selection, got %q %v", label, err)
	}
	if err := store.SaveSelected(ctx, "Deep Work"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if label, _ := store.LoadSelected(ctx); label != "Deep Work" {
		t.Fatalf("expected Deep Work, got %q", label)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := localstate.NewMemoryStore()
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperr.ErrNoActiveSession) {
		t.Fatalf("expected no active session")
	}
	_ = store.SaveActive(ctx, models.ActiveSession{ID: 1, Label: "x"})
	if got, err := store.LoadActive(ctx); err != nil || got.ID != 1 {
		t.Fatalf("unexpected %+v %v", got, err)
	}
	_ = store.ClearActive(ctx)
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperr.ErrNoActiveSession) {
		t.Fatalf("expected cleared")
	}
}
