package memstore

import (
	"sync"

	"sdkgen/internal/domain"
)

// MemoryStore is a port.ResultStore that keeps generation state for the
// lifetime of the process only.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.ClassRecord
	results map[string]*domain.GroupedResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.ClassRecord),
		results: make(map[string]*domain.GroupedResult),
	}
}

func (s *MemoryStore) PutRecord(rec domain.ClassRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Class] = rec
	return nil
}

func (s *MemoryStore) GetRecord(class string) (domain.ClassRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[class]
	return rec, ok, nil
}

func (s *MemoryStore) ListRecords() ([]domain.ClassRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]domain.ClassRecord, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *MemoryStore) DeleteRecord(class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, class)
	delete(s.results, class)
	return nil
}

func (s *MemoryStore) PutRecordWithResult(rec domain.ClassRecord, result *domain.GroupedResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Class] = rec
	s.results[rec.Class] = result
	return nil
}

// GetResult returns nil when class has no stored result.
func (s *MemoryStore) GetResult(class string) (*domain.GroupedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[class], nil
}

func (s *MemoryStore) Close() error {
	return nil
}
