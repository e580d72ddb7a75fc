// Package store reads one source's staging tables and clears them after a
// clean merge.
package store

import (
	"context"

	"github.com/populist-vote/platform-sub000/internal/staging/models"
)

// Store is the staging side of one source.
type Store interface {
	LoadBatch(ctx context.Context) (*models.Batch, error)
	// Truncate empties every staging table of the source atomically.
	Truncate(ctx context.Context) error
}
