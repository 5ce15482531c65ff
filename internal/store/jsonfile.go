package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"OptionPrisma/internal/model"
)

// JSONFileStore keeps every record in one JSON array on disk and rewrites
// the whole file on each mutation. Adequate for low volume only.
type JSONFileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONFileStore creates the parent directory and an empty file if needed.
func NewJSONFileStore(filePath string) (*JSONFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, &model.StorageError{Op: "init", Err: err}
	}
	s := &JSONFileStore{filePath: filePath}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *JSONFileStore) Save(_ context.Context, rec *model.SimulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	for _, r := range recs {
		if r.SimulationID == rec.SimulationID {
			return duplicate(rec.SimulationID)
		}
	}
	return s.write(append(recs, rec))
}

func (s *JSONFileStore) Get(_ context.Context, id string) (*model.SimulationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		if r.SimulationID == id {
			return r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *JSONFileStore) List(_ context.Context) ([]*model.SimulationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONFileStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return false, err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.SimulationID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return false, nil
	}
	return true, s.write(kept)
}

func (s *JSONFileStore) Close() error { return nil }

// read loads the file. A missing file is an empty store.
func (s *JSONFileStore) read() ([]*model.SimulationRecord, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &model.StorageError{Op: "read", Err: err}
	}
	var recs []*model.SimulationRecord
	if len(data) == 0 {
		return recs, nil
	}
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, &model.StorageError{Op: "decode", Err: err}
	}
	return recs, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *JSONFileStore) write(recs []*model.SimulationRecord) error {
	if recs == nil {
		recs = []*model.SimulationRecord{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return &model.StorageError{Op: "encode", Err: err}
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &model.StorageError{Op: "write", Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return &model.StorageError{Op: "write", Err: fmt.Errorf("rename temp file: %w", err)}
	}
	return nil
}
