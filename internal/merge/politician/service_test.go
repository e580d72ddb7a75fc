package politician

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AddressReader,AddressMerger,AuditRecorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	"github.com/populist-vote/platform-sub000/internal/merge/politician/mocks"
	"github.com/populist-vote/platform-sub000/internal/source"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// =============================================================================
// Politician Resolver Test Suite
// =============================================================================
// The resolver is the only place two people could be merged by mistake. These
// tests pin the tier order, which store calls each tier makes, and which audit
// records it leaves behind.

type ResolverSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	addresses *mocks.MockAddressReader
	merger    *mocks.MockAddressMerger
	auditor   *mocks.MockAuditRecorder
	service   *Service
	run       *mergemodels.RunContext
	ctx       context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.addresses = mocks.NewMockAddressReader(s.ctrl)
	s.merger = mocks.NewMockAddressMerger(s.ctrl)
	s.auditor = mocks.NewMockAuditRecorder(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = New(s.store, s.addresses, s.merger, s.auditor, WithLogger(logger))
	s.Require().NoError(err)
	s.run = s.runFor("mn")
	s.ctx = context.Background()
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) runFor(key string) *mergemodels.RunContext {
	src, err := source.Lookup(key)
	s.Require().NoError(err)
	return mergemodels.NewRunContext(src)
}

func stagedID() domain.StagingID {
	return domain.StagingID(domain.NewPoliticianID())
}

func (s *ResolverSuite) expectEmit(event audit.Event) *gomock.Call {
	return s.auditor.EXPECT().Emit(gomock.Any(), gomock.AssignableToTypeOf(event))
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ResolverSuite) TestNew() {
	s.Run("nil store", func() {
		_, err := New(nil, s.addresses, s.merger, s.auditor)
		s.ErrorContains(err, "politician store is required")
	})
	s.Run("nil address reader", func() {
		_, err := New(s.store, nil, s.merger, s.auditor)
		s.ErrorContains(err, "address reader is required")
	})
	s.Run("nil merger", func() {
		_, err := New(s.store, s.addresses, nil, s.auditor)
		s.ErrorContains(err, "address merger is required")
	})
	s.Run("nil auditor", func() {
		_, err := New(s.store, s.addresses, s.merger, nil)
		s.ErrorContains(err, "audit recorder is required")
	})
}

func (s *ResolverSuite) TestMissingSlug() {
	_, err := s.service.Resolve(s.ctx, s.run, stagingmodels.Politician{ID: stagedID(), Email: "a@b.c"})
	s.True(dErrors.HasCode(err, dErrors.CodeMissingRequiredField))
}

// =============================================================================
// Tier 1: email
// =============================================================================

func (s *ResolverSuite) TestEmailTier() {
	s.Run("email hit merges regardless of slug", func() {
		existing := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe-2", Email: "jane@x.com"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "jane-doe", Email: " Jane@X.com "}

		s.store.EXPECT().FindByEmail(gomock.Any(), "jane@x.com").Return([]models.Politician{existing}, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), existing.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.PoliticianID, in models.Politician) (models.Politician, error) {
				s.Equal("jane@x.com", in.Email)
				s.Equal("mn-sos-2024|jane-doe", in.RefKey)
				s.Empty(in.Slug, "slug is never rewritten")
				return existing, nil
			})
		s.expectEmit(audit.ExactMatchEvent{}).
			DoAndReturn(func(ctx context.Context, event audit.Event) error {
				e := event.(audit.ExactMatchEvent)
				s.Equal("email", e.Tier)
				s.Equal(existing.ID, e.CanonicalID)
				runID, sourceID, ok := audit.RunFrom(ctx)
				s.True(ok)
				s.Equal(s.run.RunID, runID)
				s.Equal("mn-sos-2024", sourceID)
				return nil
			})

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierEmail}, decisions[0].Outcome)
		s.Equal(existing.ID, *decisions[0].CanonicalID)
	})

	s.Run("store failure aborts", func() {
		s.store.EXPECT().FindByEmail(gomock.Any(), "a@b.c").Return(nil, errors.New("connection reset"))

		_, err := s.service.Resolve(s.ctx, s.run, stagingmodels.Politician{ID: stagedID(), Slug: "a-b", Email: "a@b.c"})
		s.True(dErrors.HasCode(err, dErrors.CodeDatabase))
		s.False(dErrors.IsRecordError(err))
	})
}

// =============================================================================
// Tier 2: phone
// =============================================================================

func (s *ResolverSuite) TestPhoneTier() {
	s.Run("compatible slug merges", func() {
		existing := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe-1", Phone: "651-555-0100"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "jane-doe", Phone: "(651) 555-0100"}

		s.store.EXPECT().FindByPhone(gomock.Any(), "6515550100").Return([]models.Politician{existing}, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), existing.ID, gomock.Any()).Return(existing, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierPhone}, decisions[0].Outcome)
	})

	s.Run("incompatible slug is vetoed and falls through to insert", func() {
		surveyor := models.Politician{ID: domain.NewPoliticianID(), Slug: "john-smith-surveyor", Phone: "555-1234", HomeState: "TX"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "john-smith", Phone: "555-1234", HomeState: "TX"}
		inserted := domain.NewPoliticianID()

		s.store.EXPECT().FindByPhone(gomock.Any(), "5551234").Return([]models.Politician{surveyor}, nil)
		s.expectEmit(audit.QuestionablePhoneEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				e := event.(audit.QuestionablePhoneEvent)
				s.Equal(surveyor.ID, e.CanonicalID)
				s.Equal("5551234", e.Phone)
				return nil
			})
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "john-smith").Return(nil, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|john-smith").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("john-smith", p.Slug)
				s.Equal("mn-sos-2024|john-smith", p.RefKey)
				s.Equal("TX", p.HomeState)
				p.ID = inserted
				return p, nil
			})

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierPhone}, decisions[0].Outcome)
		s.Equal(surveyor.ID, *decisions[0].CanonicalID)
		s.Equal(mergemodels.NewInsert{}, decisions[1].Outcome)

		id, ok := mergemodels.Resolved(decisions)
		s.True(ok)
		s.Equal(inserted, id)
	})

	s.Run("phone veto skips the slug tier", func() {
		sameSlug := models.Politician{ID: domain.NewPoliticianID(), Slug: "ann-lee"}
		other := models.Politician{ID: domain.NewPoliticianID(), Slug: "bo-diaz", Phone: "5550000"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "ann-lee", Phone: "555-0000"}

		s.store.EXPECT().FindByPhone(gomock.Any(), "5550000").Return([]models.Politician{other}, nil)
		s.expectEmit(audit.QuestionablePhoneEvent{}).Return(nil)
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "ann-lee").Return([]models.Politician{sameSlug}, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|ann-lee").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().SlugExists(gomock.Any(), "ann-lee").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "ann-lee-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierPhone}, decisions[0].Outcome)
		s.Equal(mergemodels.NewInsert{}, decisions[1].Outcome)
	})
}

// =============================================================================
// Tier 3: slug
// =============================================================================

func (s *ResolverSuite) TestSlugTier() {
	s.Run("vetoes state mismatch, logs questionable, stops at address match", func() {
		residence := domain.NewAddressID()
		vetoed := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe", HomeState: "WI"}
		noAddress := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe-1", HomeState: "MN"}
		match := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe-2", ResidenceAddressID: &residence}
		never := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe-3"}
		staged := stagingmodels.Politician{
			ID: stagedID(), Slug: "jane-doe", HomeState: "mn",
			ResidenceAddress: &stagingmodels.Address{Line1: " 100 MAIN ST ", City: "duluth", State: "mn"},
		}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "jane-doe").
			Return([]models.Politician{vetoed, noAddress, match, never}, nil)
		s.expectEmit(audit.QuestionableSlugEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				e := event.(audit.QuestionableSlugEvent)
				s.Equal(noAddress.ID, e.CanonicalID)
				s.Equal(reasonAddressMissing, e.Reason)
				return nil
			})
		s.addresses.EXPECT().FindByID(gomock.Any(), residence).
			Return(&models.Address{ID: residence, Line1: "100 Main St", City: "Duluth", State: "MN", Country: "US"}, nil)
		s.merger.EXPECT().MergeOrInsert(gomock.Any(), staged.ResidenceAddress).Return(residence, false, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), match.ID, gomock.Any()).Return(match, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierSlug}, decisions[0].Outcome)
		s.Equal(noAddress.ID, *decisions[0].CanonicalID)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierSlugAddress}, decisions[1].Outcome)
		s.Equal(match.ID, *decisions[1].CanonicalID)
	})

	s.Run("different address is questionable and the record is inserted", func() {
		residence, other := domain.NewAddressID(), domain.NewAddressID()
		candidate := models.Politician{ID: domain.NewPoliticianID(), Slug: "jane-doe", ResidenceAddressID: &other}
		staged := stagingmodels.Politician{
			ID: stagedID(), Slug: "jane-doe",
			ResidenceAddress: &stagingmodels.Address{Line1: "1 Elm", City: "Ely", State: "MN"},
		}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "jane-doe").Return([]models.Politician{candidate}, nil)
		s.addresses.EXPECT().FindByID(gomock.Any(), other).
			Return(&models.Address{ID: other, Line1: "9 Oak", City: "Ely", State: "MN"}, nil)
		s.expectEmit(audit.QuestionableSlugEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(reasonAddressMismatch, event.(audit.QuestionableSlugEvent).Reason)
				return nil
			})
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|jane-doe").Return(models.Politician{}, sentinel.ErrNotFound)
		s.merger.EXPECT().MergeOrInsert(gomock.Any(), staged.ResidenceAddress).Return(residence, true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "jane-doe").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "jane-doe-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("jane-doe-1", p.Slug)
				s.Require().NotNil(p.ResidenceAddressID)
				s.Equal(residence, *p.ResidenceAddressID)
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				e := event.(audit.SlugCollisionEvent)
				s.Equal("jane-doe-1", e.InsertedSlug)
				s.Equal(1, e.CandidateCount)
				s.Equal("slug jane-doe disambiguated to jane-doe-1", e.Note)
				return nil
			})

		decisions, err := s.service.Resolve(s.ctx, s.runFor("mn"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierSlug}, decisions[0].Outcome)
		s.Equal(mergemodels.NewInsert{}, decisions[1].Outcome)
	})
}

func (s *ResolverSuite) TestExactSlugEscapeHatch() {
	candidate := models.Politician{ID: domain.NewPoliticianID(), Slug: "bo-diaz", HomeState: "TX"}
	staged := stagingmodels.Politician{ID: stagedID(), Slug: "bo-diaz", HomeState: "TX", TreatExactSlugAsSame: true}

	s.Run("honored for a flagged source", func() {
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "bo-diaz").Return([]models.Politician{candidate}, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), candidate.ID, gomock.Any()).Return(candidate, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.runFor("tx"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierExactSlug}, decisions[0].Outcome)
	})

	s.Run("exact slug wins over numbered variants fetched first", func() {
		variant := models.Politician{ID: domain.NewPoliticianID(), Slug: "bo-diaz-1", HomeState: "TX"}
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "bo-diaz").Return([]models.Politician{variant, candidate}, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), candidate.ID, gomock.Any()).Return(candidate, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.runFor("tx"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierExactSlug}, decisions[0].Outcome)
		s.Equal(candidate.ID, *decisions[0].CanonicalID)
	})

	s.Run("state veto still applies", func() {
		elsewhere := candidate
		elsewhere.HomeState = "OK"
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "bo-diaz").Return([]models.Politician{elsewhere}, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "tx-sos-2024|bo-diaz").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().SlugExists(gomock.Any(), "bo-diaz").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "bo-diaz-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.runFor("tx"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.NewInsert{}, decisions[0].Outcome)
	})

	s.Run("ignored for sources that do not honor the flag", func() {
		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "bo-diaz").Return([]models.Politician{candidate}, nil)
		s.expectEmit(audit.QuestionableSlugEvent{}).Return(nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|bo-diaz").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().SlugExists(gomock.Any(), "bo-diaz").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "bo-diaz-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierSlug}, decisions[0].Outcome)
	})
}

// =============================================================================
// Tier 4: insert
// =============================================================================

func (s *ResolverSuite) TestInsertTier() {
	s.Run("ref_key from an earlier run updates instead of inserting", func() {
		earlier := models.Politician{ID: domain.NewPoliticianID(), Slug: "cy-fox", RefKey: "mn-sos-2024|cy-fox"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "cy-fox"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "cy-fox").Return(nil, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|cy-fox").Return(earlier, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), earlier.ID, gomock.Any()).Return(earlier, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierRefKey}, decisions[0].Outcome)
	})

	s.Run("own earlier insert is not flagged as questionable", func() {
		earlier := models.Politician{ID: domain.NewPoliticianID(), Slug: "gus-orr-1", RefKey: "mn-sos-2024|gus-orr"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "gus-orr"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "gus-orr").Return([]models.Politician{earlier}, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|gus-orr").Return(earlier, nil)
		s.store.EXPECT().UpdateFields(gomock.Any(), earlier.ID, gomock.Any()).Return(earlier, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierRefKey}, decisions[0].Outcome)
	})

	s.Run("staged ref_key is kept", func() {
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "cy-fox", RefKey: "filing-8841"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "cy-fox").Return(nil, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "filing-8841").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().SlugExists(gomock.Any(), "cy-fox").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("filing-8841", p.RefKey)
				p.ID = domain.NewPoliticianID()
				return p, nil
			})

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Equal(mergemodels.NewInsert{}, decisions[0].Outcome)
	})

	s.Run("accept-collision source keeps the staged slug", func() {
		taken := models.Politician{ID: domain.NewPoliticianID(), Slug: "dee-park", HomeState: "CO"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "dee-park", HomeState: "NM"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "dee-park").Return([]models.Politician{taken}, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), "co-sos-2024|dee-park").Return(models.Politician{}, sentinel.ErrNotFound)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("dee-park", p.Slug)
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal("slug dee-park accepted as-is", event.(audit.SlugCollisionEvent).Note)
				return nil
			})

		decisions, err := s.service.Resolve(s.ctx, s.runFor("co"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.NewInsert{}, decisions[0].Outcome)
	})

	s.Run("ref_key conflict on insert resolves to the concurrent row", func() {
		winner := models.Politician{ID: domain.NewPoliticianID(), Slug: "eve-ng", RefKey: "mn-sos-2024|eve-ng"}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "eve-ng"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "eve-ng").Return(nil, nil)
		gomock.InOrder(
			s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|eve-ng").Return(models.Politician{}, sentinel.ErrNotFound),
			s.store.EXPECT().FindByRefKey(gomock.Any(), "mn-sos-2024|eve-ng").Return(winner, nil),
		)
		s.store.EXPECT().SlugExists(gomock.Any(), "eve-ng").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(models.Politician{}, sentinel.ErrConflict)
		s.store.EXPECT().UpdateFields(gomock.Any(), winner.ID, gomock.Any()).Return(winner, nil)
		s.expectEmit(audit.ExactMatchEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.run, staged)
		s.Require().NoError(err)
		s.Equal(mergemodels.ExactMatch{Tier: mergemodels.TierRefKey}, decisions[0].Outcome)
	})
}

// =============================================================================
// ref_key recognition
// =============================================================================

func (s *ResolverSuite) TestRefKeyIsNotIdentityOnItsOwn() {
	const key = "mn-sos-2024|john-smith"

	s.Run("second record of a run sharing a synthesized key goes through the slug tier", func() {
		run := s.runFor("mn")
		s.Require().True(run.RefKeys.Claim(key, stagedID()))
		first := models.Politician{ID: domain.NewPoliticianID(), Slug: "john-smith", HomeState: "MN", RefKey: key}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "john-smith", HomeState: "MN"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "john-smith").Return([]models.Politician{first}, nil)
		s.expectEmit(audit.QuestionableSlugEvent{}).Return(nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("john-smith-1", p.Slug)
				s.Equal("mn-sos-2024|john-smith-1", p.RefKey)
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierSlug}, decisions[0].Outcome)
		s.Equal(first.ID, *decisions[0].CanonicalID)
		s.Equal(mergemodels.NewInsert{}, decisions[1].Outcome)
	})

	s.Run("earlier row holding the key in another home state is left alone", func() {
		earlier := models.Politician{ID: domain.NewPoliticianID(), Slug: "john-smith", HomeState: "MN", RefKey: key}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "john-smith", HomeState: "WI"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "john-smith").Return([]models.Politician{earlier}, nil)
		s.store.EXPECT().FindByRefKey(gomock.Any(), key).Return(earlier, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				s.Equal("WI", p.HomeState)
				s.Equal("mn-sos-2024|john-smith-1", p.RefKey)
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.runFor("mn"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.NewInsert{}, decisions[0].Outcome)
	})

	s.Run("earlier row holding the key at another residence is questionable", func() {
		residence, other := domain.NewAddressID(), domain.NewAddressID()
		earlier := models.Politician{ID: domain.NewPoliticianID(), Slug: "john-smith", RefKey: key, ResidenceAddressID: &other}
		staged := stagingmodels.Politician{
			ID: stagedID(), Slug: "john-smith",
			ResidenceAddress: &stagingmodels.Address{Line1: "77 Pine", City: "Duluth", State: "MN"},
		}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "john-smith").Return([]models.Politician{earlier}, nil)
		s.addresses.EXPECT().FindByID(gomock.Any(), other).
			Return(&models.Address{ID: other, Line1: "1 Elm", City: "Duluth", State: "MN"}, nil).
			AnyTimes()
		s.expectEmit(audit.QuestionableSlugEvent{}).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(reasonAddressMismatch, event.(audit.QuestionableSlugEvent).Reason)
				return nil
			})
		s.store.EXPECT().FindByRefKey(gomock.Any(), key).Return(earlier, nil)
		s.merger.EXPECT().MergeOrInsert(gomock.Any(), staged.ResidenceAddress).Return(residence, true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith-1").Return(false, nil)
		s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
				p.ID = domain.NewPoliticianID()
				return p, nil
			})
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, s.runFor("mn"), staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 2)
		s.Equal(mergemodels.QuestionableSkipped{Tier: mergemodels.TierSlug}, decisions[0].Outcome)
		s.Equal(mergemodels.NewInsert{}, decisions[1].Outcome)
	})

	s.Run("taken fallback key inserts without one", func() {
		run := s.runFor("mn")
		s.Require().True(run.RefKeys.Claim(key, stagedID()))
		first := models.Politician{ID: domain.NewPoliticianID(), Slug: "john-smith", HomeState: "MN", RefKey: key}
		staged := stagingmodels.Politician{ID: stagedID(), Slug: "john-smith", HomeState: "WI"}

		s.store.EXPECT().FindBySlugPrefix(gomock.Any(), "john-smith").Return([]models.Politician{first}, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith").Return(true, nil)
		s.store.EXPECT().SlugExists(gomock.Any(), "john-smith-1").Return(false, nil)
		gomock.InOrder(
			s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
					s.Equal("mn-sos-2024|john-smith-1", p.RefKey)
					return models.Politician{}, sentinel.ErrConflict
				}),
			s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p models.Politician) (models.Politician, error) {
					s.Empty(p.RefKey)
					p.ID = domain.NewPoliticianID()
					return p, nil
				}),
		)
		s.expectEmit(audit.SlugCollisionEvent{}).Return(nil)

		decisions, err := s.service.Resolve(s.ctx, run, staged)
		s.Require().NoError(err)
		s.Require().Len(decisions, 1)
		s.Equal(mergemodels.NewInsert{}, decisions[0].Outcome)
	})
}

func (s *ResolverSuite) TestAuditFailureIsFatal() {
	existing := models.Politician{ID: domain.NewPoliticianID(), Slug: "fay-wu", Email: "fay@wu.org"}
	s.store.EXPECT().FindByEmail(gomock.Any(), "fay@wu.org").Return([]models.Politician{existing}, nil)
	s.store.EXPECT().UpdateFields(gomock.Any(), existing.ID, gomock.Any()).Return(existing, nil)
	s.expectEmit(audit.ExactMatchEvent{}).Return(errors.New("audit table unavailable"))

	_, err := s.service.Resolve(s.ctx, s.run, stagingmodels.Politician{ID: stagedID(), Slug: "fay-wu", Email: "fay@wu.org"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDatabase))
}
