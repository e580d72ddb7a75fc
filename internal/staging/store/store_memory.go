package store

import (
	"context"
	"sync"

	"github.com/populist-vote/platform-sub000/internal/staging/models"
)

// InMemoryStore serves a fixed batch until truncated.
type InMemoryStore struct {
	mu        sync.Mutex
	batch     models.Batch
	truncated bool
}

func NewInMemory(batch models.Batch) *InMemoryStore {
	return &InMemoryStore{batch: batch}
}

func (s *InMemoryStore) LoadBatch(_ context.Context) (*models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Batch{
		Offices:        append([]models.Office(nil), s.batch.Offices...),
		Politicians:    append([]models.Politician(nil), s.batch.Politicians...),
		Races:          append([]models.Race(nil), s.batch.Races...),
		RaceCandidates: append([]models.RaceCandidate(nil), s.batch.RaceCandidates...),
	}
	return &b, nil
}

func (s *InMemoryStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = models.Batch{}
	s.truncated = true
	return nil
}

// Truncated reports whether Truncate has been called.
func (s *InMemoryStore) Truncated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.truncated
}
