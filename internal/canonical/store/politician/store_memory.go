package politician

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// InMemory is a slice-backed politician store for tests. Rows keep insertion
// order, which stands in for created_at ordering.
type InMemory struct {
	mu   sync.RWMutex
	rows []*models.Politician
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) FindByEmail(_ context.Context, email string) ([]models.Politician, error) {
	key := normalize.Email(email)
	if key == "" {
		return nil, nil
	}
	return s.filter(func(p *models.Politician) bool { return normalize.Email(p.Email) == key }), nil
}

func (s *InMemory) FindByPhone(_ context.Context, phone string) ([]models.Politician, error) {
	key := normalize.Phone(phone)
	if key == "" {
		return nil, nil
	}
	return s.filter(func(p *models.Politician) bool { return normalize.Phone(p.Phone) == key }), nil
}

func (s *InMemory) FindBySlugPrefix(_ context.Context, base string) ([]models.Politician, error) {
	base = normalize.Slug(base)
	if base == "" {
		return nil, nil
	}
	return s.filter(func(p *models.Politician) bool { return normalize.IsNumberedVariant(p.Slug, base) }), nil
}

func (s *InMemory) FindByRefKey(_ context.Context, refKey string) (models.Politician, error) {
	if refKey == "" {
		return models.Politician{}, sentinel.ErrNotFound
	}
	return s.first(func(p *models.Politician) bool { return p.RefKey == refKey })
}

func (s *InMemory) FindByID(_ context.Context, id domain.PoliticianID) (models.Politician, error) {
	return s.first(func(p *models.Politician) bool { return p.ID == id })
}

func (s *InMemory) SlugExists(_ context.Context, slug string) (bool, error) {
	return len(s.filter(func(p *models.Politician) bool { return p.Slug == slug })) > 0, nil
}

func (s *InMemory) Insert(_ context.Context, p models.Politician) (models.Politician, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.RefKey != "" {
		for _, existing := range s.rows {
			if existing.RefKey == p.RefKey {
				return models.Politician{}, fmt.Errorf("insert politician %s: %w", p.Slug, sentinel.ErrConflict)
			}
		}
	}
	if p.ID.IsNil() {
		p.ID = domain.NewPoliticianID()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.rows = append(s.rows, &p)
	return p, nil
}

func (s *InMemory) UpdateFields(_ context.Context, id domain.PoliticianID, in models.Politician) (models.Politician, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var target *models.Politician
	for _, p := range s.rows {
		if p.ID == id {
			target = p
			break
		}
	}
	if target == nil {
		return models.Politician{}, sentinel.ErrNotFound
	}
	if in.RefKey != "" {
		for _, p := range s.rows {
			if p.RefKey == in.RefKey {
				in.RefKey = ""
				break
			}
		}
	}
	target.MergeFrom(in)
	target.UpdatedAt = time.Now()
	return *target, nil
}

// All returns every row in insertion order.
func (s *InMemory) All() []models.Politician {
	return s.filter(func(*models.Politician) bool { return true })
}

// Seed inserts rows as they are, for test fixtures.
func (s *InMemory) Seed(rows ...models.Politician) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rows {
		p := rows[i]
		if p.ID.IsNil() {
			p.ID = domain.NewPoliticianID()
		}
		s.rows = append(s.rows, &p)
	}
}

func (s *InMemory) filter(keep func(*models.Politician) bool) []models.Politician {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Politician
	for _, p := range s.rows {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (s *InMemory) first(match func(*models.Politician) bool) (models.Politician, error) {
	rows := s.filter(match)
	if len(rows) == 0 {
		return models.Politician{}, sentinel.ErrNotFound
	}
	return rows[0], nil
}
