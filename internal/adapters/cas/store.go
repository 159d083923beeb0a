// Package cas implements the run history store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/runbook/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.RunStore using a flat JSON file keyed by target name.
// The file is read lazily on first access.
type Store struct {
	path   string
	mu     sync.RWMutex
	loaded bool
	cache  map[string]domain.RunRecord
}

// NewStore creates a new RunStore backed by the file at the given path.
func NewStore(path string) *Store {
	return &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.RunRecord),
	}
}

// ensureLoaded reads the history file once. Callers hold the write lock.
func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return errors.Join(domain.ErrStoreReadFailed, zerr.With(err, "path", s.path))
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.cache); err != nil {
			return errors.Join(domain.ErrStoreUnmarshalFailed, zerr.With(err, "path", s.path))
		}
	}

	s.loaded = true
	return nil
}

// save writes the whole history. Callers hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrStoreMarshalFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return errors.Join(domain.ErrStoreCreateFailed, zerr.With(err, "dir", dir))
	}

	if err := os.WriteFile(s.path, data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "path", s.path))
	}

	return nil
}

// Get retrieves the last run record for a target.
func (s *Store) Get(target string) (*domain.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	rec, ok := s.cache[target]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put stores the run record and persists the history.
func (s *Store) Put(record domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.cache[record.Target] = record
	return s.save()
}
