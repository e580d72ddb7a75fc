package office

import (
	"context"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// InMemory is a map-backed office store for tests.
type InMemory struct {
	mu     sync.Mutex
	bySlug map[string]*models.Office
}

func NewInMemory() *InMemory {
	return &InMemory{bySlug: make(map[string]*models.Office)}
}

func (s *InMemory) UpsertBySlug(_ context.Context, o models.Office) (models.Office, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.bySlug[o.Slug]; ok {
		existing.MergeFrom(o)
		existing.UpdatedAt = now
		return *existing, false, nil
	}
	if o.ID.IsNil() {
		o.ID = domain.NewOfficeID()
	}
	o.CreatedAt, o.UpdatedAt = now, now
	s.bySlug[o.Slug] = &o
	return o, true, nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (models.Office, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.bySlug[slug]
	if !ok {
		return models.Office{}, sentinel.ErrNotFound
	}
	return *o, nil
}

// Count returns the number of stored offices.
func (s *InMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySlug)
}
