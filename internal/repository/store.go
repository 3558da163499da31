package repository

import (
	"context"
	"sync"

	"github.com/akave-ai/protokoll/internal/model"
)

// Store is the append-only sequence of ingested records.
type Store interface {
	// Append stores rec and returns its zero-based position.
	Append(ctx context.Context, rec model.Record) (int64, error)
	// List returns every record in insertion order.
	List(ctx context.Context) ([]model.Record, error)
}

// Memory keeps records for the lifetime of the process. It never evicts.
type Memory struct {
	mu      sync.RWMutex
	records []model.Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, rec model.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return int64(len(m.records) - 1), nil
}

func (m *Memory) List(_ context.Context) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}
