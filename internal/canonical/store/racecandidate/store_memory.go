package racecandidate

import (
	"context"
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
)

type pair struct {
	race      domain.RaceID
	candidate domain.PoliticianID
}

// InMemory is a map-backed link store for tests.
type InMemory struct {
	mu       sync.Mutex
	links    []models.RaceCandidate
	byPair   map[pair]struct{}
	byRefKey map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		byPair:   make(map[pair]struct{}),
		byRefKey: make(map[string]struct{}),
	}
}

func (s *InMemory) Insert(_ context.Context, link models.RaceCandidate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{race: link.RaceID, candidate: link.CandidateID}
	if _, ok := s.byPair[k]; ok {
		return false, nil
	}
	if link.RefKey != "" {
		if _, ok := s.byRefKey[link.RefKey]; ok {
			return false, nil
		}
		s.byRefKey[link.RefKey] = struct{}{}
	}
	s.byPair[k] = struct{}{}
	link.CreatedAt = time.Now()
	s.links = append(s.links, link)
	return true, nil
}

func (s *InMemory) ListByRace(_ context.Context, raceID domain.RaceID) ([]models.RaceCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RaceCandidate
	for _, l := range s.links {
		if l.RaceID == raceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Count returns the number of stored links.
func (s *InMemory) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}
