package race

import (
	"context"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// InMemory is a map-backed race store for tests.
type InMemory struct {
	mu     sync.Mutex
	bySlug map[string]*models.Race
}

func NewInMemory() *InMemory {
	return &InMemory{bySlug: make(map[string]*models.Race)}
}

func (s *InMemory) UpsertBySlug(_ context.Context, r models.Race) (models.Race, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.bySlug[r.Slug]; ok {
		existing.MergeFrom(r)
		existing.UpdatedAt = now
		return *existing, false, nil
	}
	if r.ID.IsNil() {
		r.ID = domain.NewRaceID()
	}
	if r.IsSpecialElection == nil {
		special := false
		r.IsSpecialElection = &special
	}
	r.CreatedAt, r.UpdatedAt = now, now
	s.bySlug[r.Slug] = &r
	return r, true, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (models.Race, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.bySlug[slug]
	if !ok {
		return models.Race{}, sentinel.ErrNotFound
	}
	return *r, nil
}

// Count returns the number of stored races.
func (s *InMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySlug)
}
