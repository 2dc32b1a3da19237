package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StorageKey is the key the Plan list is kept under.
const StorageKey = "ai-travel-plans"

// Storage is a string key/value store in the shape of browser local storage.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Persister loads and saves the whole Plan list at once.
type Persister interface {
	Load() ([]Plan, error)
	Save(plans []Plan) error
}

// StoragePersister keeps the list as one JSON array under a single key and
// removes the key when the list is empty.
type StoragePersister struct {
	storage Storage
	key     string
}

func NewStoragePersister(s Storage) *StoragePersister {
	return &StoragePersister{storage: s, key: StorageKey}
}

func (p *StoragePersister) Load() ([]Plan, error) {
	raw, ok, err := p.storage.GetItem(p.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.key, err)
	}
	if !ok {
		return nil, nil
	}
	var plans []Plan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.key, err)
	}
	return plans, nil
}

func (p *StoragePersister) Save(plans []Plan) error {
	if len(plans) == 0 {
		return p.storage.RemoveItem(p.key)
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.key, err)
	}
	return p.storage.SetItem(p.key, string(raw))
}

// FileStorage keeps one file per key in a directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStorage) GetItem(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// SetItem writes through a temp file and rename so readers never see a torn value.
func (s *FileStorage) SetItem(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (s *FileStorage) RemoveItem(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]string{}}
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
