// Package clientstore is the durable key/value space the storefront and
// admin clients keep between runs: bearer tokens, the admin profile snapshot
// and the cart.
package clientstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const (
	KeyToken      = "token"
	KeyAdminToken = "admin_token"
	KeyAdminInfo  = "admin_info"
	KeyCart       = "cart"
)

var ErrNotFound = errors.New("clientstore: key not found")

type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// GetJSON decodes the value under key into dst. Callers treat any error,
// including ErrNotFound, as "use the default".
func GetJSON(s Store, key string, dst any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

func SetJSON(s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(b))
}

type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: map[string]string{}} }

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// FileStore keeps every key in one JSON object on disk. Each write replaces
// the file through a rename so a crash never leaves half a document. A
// missing or unreadable file reads as empty.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (s *FileStore) load() map[string]string {
	m := map[string]string{}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]string{}
	}
	return m
}

func (s *FileStore) save(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".kicks-state-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[key] = value
	return s.save(m)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}
