//go:build integration

package address_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/internal/canonical/store/address"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
	"github.com/populist-vote/platform-sub000/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *address.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = address.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "race_candidates", "politician", "address")
	s.Require().NoError(err)
}

// TestConcurrentInsertIfAbsent verifies that the unique natural-key index
// makes concurrent inserts of one address converge on a single row.
func (s *PostgresStoreSuite) TestConcurrentInsertIfAbsent() {
	ctx := context.Background()
	const goroutines = 30

	var wg sync.WaitGroup
	var insertedCount atomic.Int32
	ids := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, inserted, err := s.store.InsertIfAbsent(ctx, models.Address{
				Line1: "500 Congress Ave", City: "Austin", State: "TX", PostalCode: "78701",
			})
			if !s.NoError(err) {
				return
			}
			if inserted {
				insertedCount.Add(1)
			}
			ids <- a.ID.String()
		}()
	}
	wg.Wait()
	close(ids)

	s.Equal(int32(1), insertedCount.Load())
	distinct := map[string]struct{}{}
	for id := range ids {
		distinct[id] = struct{}{}
	}
	s.Len(distinct, 1)
}

func (s *PostgresStoreSuite) TestLookups() {
	ctx := context.Background()
	a, inserted, err := s.store.InsertIfAbsent(ctx, models.Address{
		Line1: "1 Peña Blvd", Line2: "Suite 2", City: "Denver", State: "CO",
	})
	s.Require().NoError(err)
	s.True(inserted)

	found, err := s.store.FindByNaturalKey(ctx, normalize.NewAddressKey("1 PENA BLVD", "denver", "co", "us"))
	s.Require().NoError(err)
	s.Equal(a.ID, found.ID)
	s.Equal("Suite 2", found.Line2)
	s.Equal("", found.County)

	byID, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("1 Peña Blvd", byID.Line1)

	_, err = s.store.FindByNaturalKey(ctx, normalize.NewAddressKey("2 Other", "Denver", "CO", ""))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
