// Package racecandidate persists race/politician links.
package racecandidate

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Store is implemented by PostgresStore and InMemory.
type Store interface {
	// Insert adds the link unless the pair or its ref_key already exists.
	Insert(ctx context.Context, link models.RaceCandidate) (inserted bool, err error)
	ListByRace(ctx context.Context, raceID domain.RaceID) ([]models.RaceCandidate, error)
}
