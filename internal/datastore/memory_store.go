package datastore

import (
	"context"
	"sync"

	"github.com/aleister1102/meshhound/internal/models"
)

// MemoryStore keeps the last snapshot in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.FileRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) ([]models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.FileRecord(nil), m.records...), nil
}

func (m *MemoryStore) Save(_ context.Context, records []models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.FileRecord(nil), records...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
