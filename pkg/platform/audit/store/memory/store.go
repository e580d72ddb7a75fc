package memory

import (
	"context"
	"sync"

	"github.com/populist-vote/platform-sub000/pkg/domain"
	audit "github.com/populist-vote/platform-sub000/pkg/platform/audit"
)

// InMemoryStore keeps audit records in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func (s *InMemoryStore) Append(_ context.Context, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *InMemoryStore) ListByRun(_ context.Context, runID domain.RunID) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return r.RunID == runID }), nil
}

func (s *InMemoryStore) ListQuestionable(_ context.Context, runID domain.RunID) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return r.RunID == runID && r.Kind.IsQuestionable() }), nil
}

// ListAll returns every record across runs.
func (s *InMemoryStore) ListAll() []audit.Record {
	return s.filter(func(audit.Record) bool { return true })
}

// CountByKind tallies the records of one kind across runs.
func (s *InMemoryStore) CountByKind(kind audit.Kind) int {
	return len(s.filter(func(r audit.Record) bool { return r.Kind == kind }))
}

func (s *InMemoryStore) filter(keep func(audit.Record) bool) []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
