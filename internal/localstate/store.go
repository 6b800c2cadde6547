package localstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
)

const (
	activeFile   = "timesheet-current-session.json"
	selectedFile = "timesheet-selected-label"
)

// FileStore mirrors the running session and the selected label into a
// state directory so a restart can pick them back up.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) SaveActive(_ context.Context, session models.ActiveSession) error {
	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	return s.write(activeFile, payload)
}

func (s *FileStore) LoadActive(_ context.Context) (models.ActiveSession, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, activeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return models.ActiveSession{}, apperr.ErrNoActiveSession
		}
		return models.ActiveSession{}, fmt.Errorf("read active session: %w", err)
	}
	active := models.ActiveSession{}
	if err := json.Unmarshal(payload, &active); err != nil {
		return models.ActiveSession{}, fmt.Errorf("decode active session: %w", err)
	}
	if active.ID == 0 {
		return models.ActiveSession{}, apperr.ErrNoActiveSession
	}
	return active, nil
}

func (s *FileStore) ClearActive(_ context.Context) error {
	if err := os.Remove(filepath.Join(s.dir, activeFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

func (s *FileStore) SaveSelected(_ context.Context, label string) error {
	return s.write(selectedFile, []byte(label))
}

func (s *FileStore) LoadSelected(_ context.Context) (string, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, selectedFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read selected label: %w", err)
	}
	return strings.TrimSpace(string(payload)), nil
}

// write replaces name atomically so a crash never leaves half a file behind
func (s *FileStore) write(name string, payload []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// MemoryStore keeps local state in process only
type MemoryStore struct {
	mu       sync.Mutex
	active   *models.ActiveSession
	selected string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveActive(_ context.Context, session models.ActiveSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = &session
	return nil
}

func (m *MemoryStore) LoadActive(_ context.Context) (models.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return models.ActiveSession{}, apperr.ErrNoActiveSession
	}
	return *m.active, nil
}

func (m *MemoryStore) ClearActive(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = nil
	return nil
}

func (m *MemoryStore) SaveSelected(_ context.Context, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = label
	return nil
}

func (m *MemoryStore) LoadSelected(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected, nil
}
