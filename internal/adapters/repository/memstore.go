package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Waqar080206/usar-ranklist/internal/domain/model"
	"github.com/Waqar080206/usar-ranklist/pkg/metrics"
)

// MemStore is an in-memory Store keyed by roll number.
//
// Reads hand out copy-on-read snapshots; writers invalidate the cached
// snapshot so List stays O(1) between ingest bursts.
type MemStore struct {
	mu       sync.RWMutex
	records  map[string]model.StudentRecord
	order    []string // insertion order, keeps List deterministic
	snapshot []model.StudentRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(_ context.Context) *MemStore {
	return &MemStore{records: make(map[string]model.StudentRecord)}
}

// Put inserts or replaces a record.
func (s *MemStore) Put(_ context.Context, rec model.StudentRecord) (bool, error) {
	if rec.RollNo == "" {
		return false, fmt.Errorf("put: empty roll number")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.records[rec.RollNo]
	if !exists {
		s.order = append(s.order, rec.RollNo)
	}
	s.records[rec.RollNo] = rec
	s.snapshot = nil
	metrics.UpdateStoreRecords(len(s.records))
	return !exists, nil
}

// Get returns the record for a roll number.
func (s *MemStore) Get(_ context.Context, rollNo string) (model.StudentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[rollNo]
	if !ok {
		return model.StudentRecord{}, fmt.Errorf("%w: %s", ErrNotFound, rollNo)
	}
	return rec, nil
}

// List returns a snapshot of all records in insertion order.
func (s *MemStore) List(_ context.Context) ([]model.StudentRecord, error) {
	s.mu.RLock()
	if s.snapshot != nil {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		snap := make([]model.StudentRecord, 0, len(s.records))
		for _, roll := range s.order {
			snap = append(snap, s.records[roll])
		}
		s.snapshot = snap
	}
	return s.snapshot, nil
}

// Count returns the number of stored records.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
