// Package politician persists canonical politicians and serves the lookups
// the identity tiers need.
package politician

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Store is implemented by PostgresStore and InMemory. Lookups return rows in
// creation order so tier decisions are deterministic.
type Store interface {
	// FindByEmail matches on the normalized email.
	FindByEmail(ctx context.Context, email string) ([]models.Politician, error)
	// FindByPhone matches on the digits-only phone.
	FindByPhone(ctx context.Context, phone string) ([]models.Politician, error)
	// FindBySlugPrefix returns rows whose slug is base or base-<digits>.
	FindBySlugPrefix(ctx context.Context, base string) ([]models.Politician, error)
	FindByRefKey(ctx context.Context, refKey string) (models.Politician, error)
	FindByID(ctx context.Context, id domain.PoliticianID) (models.Politician, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Insert fails with sentinel.ErrConflict when the ref_key is taken.
	Insert(ctx context.Context, p models.Politician) (models.Politician, error)
	// UpdateFields COALESCE-merges in into the row. Slug is never changed and
	// ref_key is only filled when empty and unused elsewhere.
	UpdateFields(ctx context.Context, id domain.PoliticianID, in models.Politician) (models.Politician, error)
}
