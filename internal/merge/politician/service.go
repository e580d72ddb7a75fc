// Package politician decides, for each staged candidate, whether it is a
// person already in the canonical registry or a new one.
//
// Tiers run strictly in order and the first decision ends evaluation:
//
//  1. email: a normalized email hit always merges.
//  2. phone: a hit merges only when the slugs are compatible. Incompatible
//     hits are audited as questionable and the slug tier is skipped.
//  3. slug: candidates sharing the base slug merge only on a residence
//     address match. Everything else is audited as questionable.
//  4. insert: a new row with a free slug and a stable ref_key.
//
// A ref_key identifies a record only while nothing contradicts it. Two staged
// records of one run that share a synthesized key are different people as far
// as the key is concerned; only the first may be recognized through it.
package politician

import (
	"context"
	"errors"
	"log/slog"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	"github.com/populist-vote/platform-sub000/internal/source"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

// Store is the canonical politician store.
type Store interface {
	FindByEmail(ctx context.Context, email string) ([]models.Politician, error)
	FindByPhone(ctx context.Context, phone string) ([]models.Politician, error)
	FindBySlugPrefix(ctx context.Context, base string) ([]models.Politician, error)
	FindByRefKey(ctx context.Context, refKey string) (models.Politician, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Insert(ctx context.Context, p models.Politician) (models.Politician, error)
	UpdateFields(ctx context.Context, id domain.PoliticianID, in models.Politician) (models.Politician, error)
}

// AddressReader loads canonical addresses for residence comparison.
type AddressReader interface {
	FindByID(ctx context.Context, id domain.AddressID) (*models.Address, error)
}

// AddressMerger resolves staged addresses to canonical ids.
type AddressMerger interface {
	MergeOrInsert(ctx context.Context, staged *stagingmodels.Address) (domain.AddressID, bool, error)
}

// AuditRecorder appends match audit records. A failure is fatal for the run.
type AuditRecorder interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the politician resolver.
type Service struct {
	store     Store
	addresses AddressReader
	merger    AddressMerger
	auditor   AuditRecorder
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, addresses AddressReader, merger AddressMerger, auditor AuditRecorder, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("politician store is required")
	}
	if addresses == nil {
		return nil, errors.New("address reader is required")
	}
	if merger == nil {
		return nil, errors.New("address merger is required")
	}
	if auditor == nil {
		return nil, errors.New("audit recorder is required")
	}
	s := &Service{
		store:     store,
		addresses: addresses,
		merger:    merger,
		auditor:   auditor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// record is one staged politician on its way through the tiers.
type record struct {
	run    *mergemodels.RunContext
	src    source.Source
	staged stagingmodels.Politician
	// refKey is empty when an earlier record of the run already claimed the
	// key this record would use.
	refKey string
}

func newRecord(run *mergemodels.RunContext, staged stagingmodels.Politician) record {
	r := record{run: run, src: run.Source, staged: staged}
	if key := refKeyFor(run.Source, staged); run.RefKeys.Claim(key, staged.ID) {
		r.refKey = key
	}
	return r
}

// Resolve runs the tiers for one staged politician. The returned list holds
// every questionable candidate that was logged, followed by the terminal
// ExactMatch or NewInsert decision.
func (s *Service) Resolve(ctx context.Context, run *mergemodels.RunContext, staged stagingmodels.Politician) ([]mergemodels.Decision, error) {
	if normalize.Slug(staged.Slug) == "" {
		return nil, dErrors.Newf(dErrors.CodeMissingRequiredField, "staging politician %s has no slug", staged.ID)
	}
	ctx = audit.WithRun(ctx, run.RunID, run.Source.ID)
	r := newRecord(run, staged)

	d, ok, err := s.matchEmail(ctx, r)
	if err != nil {
		return nil, err
	}
	if ok {
		return []mergemodels.Decision{d}, nil
	}

	d, rejected, ok, err := s.matchPhone(ctx, r)
	if err != nil {
		return nil, err
	}
	if ok {
		return []mergemodels.Decision{d}, nil
	}
	decisions := rejected

	candidates, err := s.store.FindBySlugPrefix(ctx, normalize.BaseSlug(staged.Slug))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to find slug candidates")
	}
	if len(rejected) == 0 {
		questionable, d, ok, err := s.matchSlug(ctx, r, candidates)
		decisions = append(decisions, questionable...)
		if err != nil {
			return nil, err
		}
		if ok {
			return append(decisions, d), nil
		}
	}

	d, err = s.insert(ctx, r, candidates)
	if err != nil {
		return nil, err
	}
	return append(decisions, d), nil
}

// canonicalFields maps a staged politician onto the canonical shape, merging
// its addresses on the way. Slug and ref_key are left to the caller.
func (s *Service) canonicalFields(ctx context.Context, staged stagingmodels.Politician) (models.Politician, error) {
	residence, err := s.mergeAddress(ctx, staged.ResidenceAddress)
	if err != nil {
		return models.Politician{}, err
	}
	campaign, err := s.mergeAddress(ctx, staged.CampaignAddress)
	if err != nil {
		return models.Politician{}, err
	}
	return models.Politician{
		FirstName:          staged.FirstName,
		MiddleName:         staged.MiddleName,
		LastName:           staged.LastName,
		Suffix:             staged.Suffix,
		PreferredName:      staged.PreferredName,
		Email:              normalize.Email(staged.Email),
		Phone:              staged.Phone,
		HomeState:          normalize.State(staged.HomeState),
		Party:              staged.Party,
		ResidenceAddressID: residence,
		CampaignAddressID:  campaign,
	}, nil
}

func (s *Service) mergeAddress(ctx context.Context, staged *stagingmodels.Address) (*domain.AddressID, error) {
	if staged.IsEmpty() {
		return nil, nil
	}
	id, _, err := s.merger.MergeOrInsert(ctx, staged)
	if err != nil {
		return nil, err
	}
	if id.IsNil() {
		return nil, nil
	}
	return &id, nil
}

// merge updates target from r's staged record with COALESCE semantics and
// records the exact match. The canonical snapshot is taken before the update.
func (s *Service) merge(ctx context.Context, r record, target models.Politician, tier mergemodels.Tier, fields []string, note string) (mergemodels.Decision, error) {
	staged := r.staged
	in, err := s.canonicalFields(ctx, staged)
	if err != nil {
		return mergemodels.Decision{}, err
	}
	in.RefKey = r.refKey

	if _, err := s.store.UpdateFields(ctx, target.ID, in); err != nil {
		return mergemodels.Decision{}, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to update politician "+target.ID.String())
	}
	if err := s.emit(ctx, audit.ExactMatchEvent{
		Tier:          string(tier),
		MatchedFields: fields,
		StagingID:     staged.ID,
		CanonicalID:   target.ID,
		Staging:       staged,
		Canonical:     target,
		Note:          note,
	}); err != nil {
		return mergemodels.Decision{}, err
	}

	s.logger.InfoContext(ctx, "politician merged",
		"event", audit.KindExactMatch,
		"tier", tier,
		"staging_id", staged.ID,
		"canonical_id", target.ID,
	)
	id := target.ID
	return mergemodels.Decision{CanonicalID: &id, Outcome: mergemodels.ExactMatch{Tier: tier}}, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to record "+string(event.Kind())+" audit")
	}
	return nil
}
