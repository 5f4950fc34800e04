package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists settings by key. Load reports found=false when nothing
// was stored under key.
type Store interface {
	Load(key string, into Settings) (found bool, err error)
	Save(key string, s Settings) error
}

// HCLStore keeps one <key>.hcl file per settings type in Dir.
type HCLStore struct {
	Dir string
}

// NewHCLStore creates a store rooted at dir.
func NewHCLStore(dir string) *HCLStore {
	return &HCLStore{Dir: dir}
}

// Path returns the file a key is stored in.
func (s *HCLStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".hcl")
}

// Load implements Store.
func (s *HCLStore) Load(key string, into Settings) (bool, error) {
	path := s.Path(key)
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := Decode(src, path, into); err != nil {
		return false, err
	}
	return true, nil
}

// Save implements Store.
func (s *HCLStore) Save(key string, st Settings) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", s.Dir, err)
	}
	path := s.Path(key)
	if err := os.WriteFile(path, Encode(st), 0o644); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// MemoryStore keeps encoded settings in memory. It is used by tests and by
// hosts that do not persist anything.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load implements Store.
func (m *MemoryStore) Load(key string, into Settings) (bool, error) {
	m.mu.Lock()
	src, ok := m.docs[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := Decode(src, key+".hcl", into); err != nil {
		return false, err
	}
	return true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(key string, s Settings) error {
	doc := Encode(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = doc
	return nil
}

// Put stores a raw document under key.
func (m *MemoryStore) Put(key string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), doc...)
}

// Document returns the raw document stored under key.
func (m *MemoryStore) Document(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	return doc, ok
}
