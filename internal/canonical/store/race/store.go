// Package race persists canonical races, keyed by slug.
package race

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
)

// Store is implemented by PostgresStore and InMemory.
type Store interface {
	UpsertBySlug(ctx context.Context, r models.Race) (out models.Race, inserted bool, err error)
	FindBySlug(ctx context.Context, slug string) (models.Race, error)
}
