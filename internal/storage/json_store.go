package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Document is the on-disk layout of a JSONStore file
type Document struct {
	Version int               `json:"version"`
	Slots   map[string]string `json:"slots"`
}

// JSONStore keeps every slot in a single JSON document that is rewritten on each write.
//
// Concurrency note:
//   - JSONStore is safe for use by multiple goroutines.
//   - Running multiple processes against the same file is not supported; callers take
//     an instance lock (see internal/lockfile) before loading.
type JSONStore struct {
	mu   sync.Mutex
	path string
	doc  *Document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &Document{
		Version: 1,
		Slots:   make(map[string]string),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w at %s", ErrNotInitialized, s.path)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Slots == nil {
		doc.Slots = make(map[string]string)
	}
	s.doc = doc

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes a temporary file and renames it over the document, so a crash
// mid-write never leaves a truncated file behind
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNotLoaded
	}

	value, ok := s.doc.Slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (s *JSONStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNotLoaded
	}

	prev, existed := s.doc.Slots[key]
	s.doc.Slots[key] = string(value)
	if err := s.save(); err != nil {
		// Keep the document in step with what is on disk
		if existed {
			s.doc.Slots[key] = prev
		} else {
			delete(s.doc.Slots, key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return ErrNotLoaded
	}

	prev, existed := s.doc.Slots[key]
	if !existed {
		return nil
	}
	delete(s.doc.Slots, key)
	if err := s.save(); err != nil {
		s.doc.Slots[key] = prev
		return err
	}
	return nil
}

func (s *JSONStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNotLoaded
	}

	keys := make([]string, 0, len(s.doc.Slots))
	for k := range s.doc.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetConfigPath returns the path to the underlying storage file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
