package address

import (
	"context"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// InMemory is a map-backed address store for tests.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[domain.AddressID]*models.Address
	byKey map[normalize.AddressKey]domain.AddressID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:  make(map[domain.AddressID]*models.Address),
		byKey: make(map[normalize.AddressKey]domain.AddressID),
	}
}

func (s *InMemory) FindByNaturalKey(_ context.Context, key normalize.AddressKey) (*models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	a := *s.byID[id]
	return &a, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.AddressID) (*models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemory) InsertIfAbsent(_ context.Context, addr models.Address) (*models.Address, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := addr.Key()
	if id, ok := s.byKey[key]; ok {
		a := *s.byID[id]
		return &a, false, nil
	}
	if addr.ID.IsNil() {
		addr.ID = domain.NewAddressID()
	}
	addr.CreatedAt = time.Now()
	s.byID[addr.ID] = &addr
	s.byKey[key] = addr.ID
	cp := addr
	return &cp, true, nil
}

// Count returns the number of stored addresses.
func (s *InMemory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
