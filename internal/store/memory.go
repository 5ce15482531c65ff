package store

import (
	"context"
	"sync"

	"OptionPrisma/internal/model"
)

// MemoryStore keeps records in process memory. Used for tests and
// throwaway runs.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*model.SimulationRecord
	seq  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*model.SimulationRecord)}
}

func (m *MemoryStore) Save(_ context.Context, rec *model.SimulationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.SimulationID]; ok {
		return duplicate(rec.SimulationID)
	}
	m.seq = append(m.seq, rec.SimulationID)
	m.recs[rec.SimulationID] = cloneRecord(rec)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*model.SimulationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*model.SimulationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.SimulationRecord, 0, len(m.seq))
	for _, id := range m.seq {
		out = append(out, cloneRecord(m.recs[id]))
	}
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[id]; !ok {
		return false, nil
	}
	delete(m.recs, id)
	for i, v := range m.seq {
		if v == id {
			m.seq = append(m.seq[:i], m.seq[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryStore) Close() error { return nil }
