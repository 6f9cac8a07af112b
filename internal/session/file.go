package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the session file inside the config directory.
const FileName = "session.json"

// ErrIncomplete is returned when saving a session that lacks part of the
// credential group.
var ErrIncomplete = errors.New("session is incomplete")

type record struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"token_expires_at,omitempty"` // epoch millis
	User         *User  `json:"user,omitempty"`
}

// FileStore persists a Session as a single JSON file with mode 0600.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the session group. A missing, unreadable or partial group is
// reported as absent; partial and corrupt files are removed.
func (f *FileStore) Load() (Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, false, f.clearLocked()
	}

	s := Session{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	}
	if rec.ExpiresAt > 0 {
		s.ExpiresAt = time.UnixMilli(rec.ExpiresAt)
	}
	if rec.User != nil {
		s.User = *rec.User
	}
	if !s.Complete() {
		return Session{}, false, f.clearLocked()
	}
	return s, true, nil
}

// Save writes the whole group atomically.
func (f *FileStore) Save(s Session) error {
	if !s.Complete() {
		return ErrIncomplete
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	user := s.User
	data, err := json.MarshalIndent(record{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt.UnixMilli(),
		User:         &user,
	}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the whole group. Clearing an absent session is not an error.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearLocked()
}

func (f *FileStore) clearLocked() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
