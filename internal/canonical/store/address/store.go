// Package address persists canonical addresses keyed by their normalized
// natural key.
package address

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

// Store is implemented by PostgresStore and InMemory.
type Store interface {
	FindByNaturalKey(ctx context.Context, key normalize.AddressKey) (*models.Address, error)
	FindByID(ctx context.Context, id domain.AddressID) (*models.Address, error)
	// InsertIfAbsent inserts addr unless a row with the same natural key
	// exists, and returns whichever row now owns the key.
	InsertIfAbsent(ctx context.Context, addr models.Address) (*models.Address, bool, error)
}
