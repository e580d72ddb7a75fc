package politician

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

type PoliticianStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PoliticianStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPoliticianStoreSuite(t *testing.T) {
	suite.Run(t, new(PoliticianStoreSuite))
}

func (s *PoliticianStoreSuite) insert(p models.Politician) models.Politician {
	out, err := s.store.Insert(s.ctx, p)
	s.Require().NoError(err)
	return out
}

// TestLookups verifies the normalized lookups the identity tiers rely on.
func (s *PoliticianStoreSuite) TestLookups() {
	jane := s.insert(models.Politician{Slug: "jane-doe", Email: "Jane@Example.com", Phone: "+1 (612) 555-0100"})
	s.insert(models.Politician{Slug: "jane-doe-1"})
	s.insert(models.Politician{Slug: "jane-doe-smith"})
	s.insert(models.Politician{Slug: "jane-doe-1a"})

	s.Run("email is case and whitespace insensitive", func() {
		got, err := s.store.FindByEmail(s.ctx, "  jane@example.COM ")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(jane.ID, got[0].ID)
	})

	s.Run("phone compares digits", func() {
		got, err := s.store.FindByPhone(s.ctx, "612.555.0100")
		s.Require().NoError(err)
		s.Len(got, 1)
	})

	s.Run("blank keys never match", func() {
		got, err := s.store.FindByEmail(s.ctx, "  ")
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("slug prefix returns base and numbered variants only", func() {
		got, err := s.store.FindBySlugPrefix(s.ctx, "jane-doe")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("jane-doe", got[0].Slug)
		s.Equal("jane-doe-1", got[1].Slug)
	})

	s.Run("slug exists", func() {
		ok, err := s.store.SlugExists(s.ctx, "jane-doe-1")
		s.Require().NoError(err)
		s.True(ok)
		ok, err = s.store.SlugExists(s.ctx, "jane-doe-2")
		s.Require().NoError(err)
		s.False(ok)
	})
}

// TestRefKey verifies ref_key uniqueness and lookup.
func (s *PoliticianStoreSuite) TestRefKey() {
	s.insert(models.Politician{Slug: "john-roe", RefKey: "mn-sos-2024|john-roe"})

	_, err := s.store.Insert(s.ctx, models.Politician{Slug: "john-roe-1", RefKey: "mn-sos-2024|john-roe"})
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.FindByRefKey(s.ctx, "mn-sos-2024|john-roe")
	s.Require().NoError(err)
	s.Equal("john-roe", got.Slug)

	_, err = s.store.FindByRefKey(s.ctx, "")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestUpdateFields verifies COALESCE semantics and slug immutability.
func (s *PoliticianStoreSuite) TestUpdateFields() {
	addr := domain.NewAddressID()
	p := s.insert(models.Politician{Slug: "ann-lee", FirstName: "Ann", Party: "DFL"})

	got, err := s.store.UpdateFields(s.ctx, p.ID, models.Politician{
		Slug:               "ann-lee-2",
		RefKey:             "tx-sos-2024|ann-lee",
		Email:              "ann@example.com",
		ResidenceAddressID: &addr,
	})
	s.Require().NoError(err)
	s.Equal("ann-lee", got.Slug)
	s.Equal("Ann", got.FirstName)
	s.Equal("DFL", got.Party)
	s.Equal("ann@example.com", got.Email)
	s.Equal("tx-sos-2024|ann-lee", got.RefKey)
	s.Require().NotNil(got.ResidenceAddressID)
	s.Equal(addr, *got.ResidenceAddressID)

	s.Run("ref_key used elsewhere is not copied", func() {
		other := s.insert(models.Politician{Slug: "bob-ray"})
		got, err := s.store.UpdateFields(s.ctx, other.ID, models.Politician{RefKey: "tx-sos-2024|ann-lee"})
		s.Require().NoError(err)
		s.Empty(got.RefKey)
	})

	s.Run("unknown id", func() {
		_, err := s.store.UpdateFields(s.ctx, domain.NewPoliticianID(), models.Politician{})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
