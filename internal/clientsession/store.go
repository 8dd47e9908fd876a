// Package clientsession keeps the signed-in state of a client between runs.
package clientsession

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
)

const appDir = "vibe-journal"

// Session is the client's view of a signed-in user.
type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      uuid.UUID `json:"user_id"`
	SessionID   uuid.UUID `json:"session_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether s carries a token that has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && s.UserID != uuid.Nil && now.Before(s.ExpiresAt)
}

// ConfigDir returns $XDG_CONFIG_HOME/vibe-journal, falling back to ~/.config/vibe-journal.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDir)
}

// FileStore persists a Session as JSON in a single file.
type FileStore struct{ path string }

// NewFileStore stores the session under dir. An empty dir means ConfigDir().
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = ConfigDir()
	}
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

// Path is the session file location.
func (st *FileStore) Path() string { return st.path }

// Save writes s with owner-only permissions.
func (st *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(st.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Load reads the stored session. A missing file yields (nil, nil).
func (st *FileStore) Load() (*Session, error) {
	b, err := os.ReadFile(st.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Remove deletes the session file; removing an absent file is not an error.
func (st *FileStore) Remove() error {
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
