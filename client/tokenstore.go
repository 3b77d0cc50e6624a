package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileTokenStore is a TokenStore backed by a single JSON file, giving the
// registrar a cache that survives restarts on this device.
type FileTokenStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

// NewFileTokenStore opens (or creates) the store at path
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	s := &FileTokenStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading token store: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			// A corrupt store only costs one redundant registration
			s.values = make(map[string]string)
		}
	}
	return s, nil
}

// Get returns the stored value for key, or "" when absent
func (s *FileTokenStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores a value and flushes the file
func (s *FileTokenStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encoding token store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating token store dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token store: %w", err)
	}
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for hosts that manage their
// own persistence (and for tests)
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

func (s *MemoryTokenStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *MemoryTokenStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
