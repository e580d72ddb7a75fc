// Package office persists canonical offices, keyed by slug.
package office

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
)

// Store is implemented by PostgresStore and InMemory.
type Store interface {
	// UpsertBySlug inserts the office or COALESCE-merges it into the row with
	// the same slug. inserted reports which happened.
	UpsertBySlug(ctx context.Context, o models.Office) (out models.Office, inserted bool, err error)
	FindBySlug(ctx context.Context, slug string) (models.Office, error)
}
