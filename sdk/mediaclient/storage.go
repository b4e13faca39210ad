package mediaclient

import (
	"os"
	"strings"
	"sync"
)

// TokenStorage is the injected persistence capability for the bearer token.
// Implementations must be safe for concurrent use.
type TokenStorage interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemoryStorage keeps the token in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStorage creates an empty in-memory token store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Token returns the stored token, empty when absent.
func (s *MemoryStorage) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token.
func (s *MemoryStorage) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the token.
func (s *MemoryStorage) Clear() error {
	return s.SetToken("")
}

// FileStorage keeps the token in a single file, surviving process restarts.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a token store backed by the given file path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Token reads the stored token, empty when the file is missing or unreadable.
func (s *FileStorage) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetToken writes the token, readable only by the owner.
func (s *FileStorage) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the token file. A missing file counts as cleared.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
