package politician

import (
	"context"
	"errors"
	"fmt"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

const (
	reasonPhoneSlugMismatch = "phone matches but slugs are incompatible"
	reasonAddressMismatch   = "slug matches but residence address differs"
	reasonAddressMissing    = "slug matches but a residence address is missing"
)

// matchEmail accepts any canonical politician with the same normalized email.
func (s *Service) matchEmail(ctx context.Context, r record) (mergemodels.Decision, bool, error) {
	email := normalize.Email(r.staged.Email)
	if email == "" {
		return mergemodels.Decision{}, false, nil
	}
	hits, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return mergemodels.Decision{}, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to find politicians by email")
	}
	if len(hits) == 0 {
		return mergemodels.Decision{}, false, nil
	}
	var note string
	if len(hits) > 1 {
		note = fmt.Sprintf("%d canonical politicians share this email; merged into the first", len(hits))
	}
	d, err := s.merge(ctx, r, hits[0], mergemodels.TierEmail, []string{"email"}, note)
	if err != nil {
		return mergemodels.Decision{}, false, err
	}
	return d, true, nil
}

// matchPhone accepts a phone hit only when the slugs are compatible. When
// every hit is incompatible, each is audited as questionable and returned in
// rejected; the caller then skips the slug tier.
func (s *Service) matchPhone(ctx context.Context, r record) (d mergemodels.Decision, rejected []mergemodels.Decision, ok bool, err error) {
	staged := r.staged
	phone := normalize.Phone(staged.Phone)
	if phone == "" {
		return d, nil, false, nil
	}
	hits, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return d, nil, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to find politicians by phone")
	}

	for _, hit := range hits {
		if !normalize.SlugsCompatible(staged.Slug, hit.Slug) {
			continue
		}
		d, err = s.merge(ctx, r, hit, mergemodels.TierPhone, []string{"phone", "slug"}, "")
		if err != nil {
			return d, nil, false, err
		}
		return d, nil, true, nil
	}

	for _, hit := range hits {
		if err := s.emit(ctx, audit.QuestionablePhoneEvent{
			StagingID:     staged.ID,
			CanonicalID:   hit.ID,
			CandidateSlug: hit.Slug,
			Phone:         phone,
			Reason:        reasonPhoneSlugMismatch,
			Staging:       staged,
			Canonical:     hit,
		}); err != nil {
			return d, nil, false, err
		}
		s.logQuestionable(ctx, audit.KindQuestionablePhone, staged, hit, reasonPhoneSlugMismatch)
		rejected = append(rejected, questionable(hit.ID, mergemodels.TierPhone))
	}
	return d, rejected, false, nil
}

// matchSlug walks the slug candidates in fetch order. A home-state conflict
// vetoes a candidate outright. An address match merges and stops; anything
// else is audited as questionable and the walk continues.
//
// When the source honors the exact-slug flag and the record carries it, the
// exact-slug candidate is looked for first and merges without corroboration.
func (s *Service) matchSlug(ctx context.Context, r record, candidates []models.Politician) ([]mergemodels.Decision, mergemodels.Decision, bool, error) {
	staged := r.staged
	slug := normalize.Slug(staged.Slug)

	self, err := s.ownRow(ctx, r, candidates)
	if err != nil {
		return nil, mergemodels.Decision{}, false, err
	}
	isSelf := func(c models.Politician) bool { return self != nil && c.ID == *self }

	if r.src.HonorExactSlugFlag && staged.TreatExactSlugAsSame {
		for _, c := range candidates {
			if isSelf(c) || normalize.Slug(c.Slug) != slug || normalize.StatesConflict(staged.HomeState, c.HomeState) {
				continue
			}
			d, err := s.merge(ctx, r, c, mergemodels.TierExactSlug, []string{"slug"},
				"exact slug accepted without corroboration for "+r.src.ID)
			if err != nil {
				return nil, mergemodels.Decision{}, false, err
			}
			return nil, d, true, nil
		}
	}

	var skipped []mergemodels.Decision
	for _, c := range candidates {
		// The insert tier recognizes this record's own row by ref_key.
		if isSelf(c) {
			continue
		}
		if normalize.StatesConflict(staged.HomeState, c.HomeState) {
			s.logger.DebugContext(ctx, "slug candidate vetoed",
				"staging_id", staged.ID,
				"canonical_id", c.ID,
				"staging_state", staged.HomeState,
				"canonical_state", c.HomeState,
			)
			continue
		}

		same, err := s.sameResidence(ctx, staged.ResidenceAddress, c.ResidenceAddressID)
		if err != nil {
			return skipped, mergemodels.Decision{}, false, err
		}
		if same {
			d, err := s.merge(ctx, r, c, mergemodels.TierSlugAddress, []string{"slug", "residence_address"}, "")
			if err != nil {
				return skipped, mergemodels.Decision{}, false, err
			}
			return skipped, d, true, nil
		}

		reason := reasonAddressMismatch
		if staged.ResidenceAddress.IsEmpty() || c.ResidenceAddressID == nil {
			reason = reasonAddressMissing
		}
		if err := s.emit(ctx, audit.QuestionableSlugEvent{
			StagingID:     staged.ID,
			CanonicalID:   c.ID,
			CandidateSlug: c.Slug,
			Reason:        reason,
			Staging:       staged,
			Canonical:     c,
		}); err != nil {
			return skipped, mergemodels.Decision{}, false, err
		}
		s.logQuestionable(ctx, audit.KindQuestionableSlug, staged, c, reason)
		skipped = append(skipped, questionable(c.ID, mergemodels.TierSlug))
	}
	return skipped, mergemodels.Decision{}, false, nil
}

// ownRow returns the candidate this record inserted on an earlier run: it
// carries the record's claimed ref_key and nothing on it contradicts the
// staged fields.
func (s *Service) ownRow(ctx context.Context, r record, candidates []models.Politician) (*domain.PoliticianID, error) {
	if r.refKey == "" {
		return nil, nil
	}
	for _, c := range candidates {
		if c.RefKey != r.refKey {
			continue
		}
		contradicted, err := s.contradicts(ctx, r.staged, c)
		if err != nil || contradicted {
			return nil, err
		}
		id := c.ID
		return &id, nil
	}
	return nil, nil
}

// contradicts reports whether existing cannot be the staged person: the home
// states conflict, or both sides carry an email, phone or residence and they
// differ. A shared ref_key alone never outweighs these.
func (s *Service) contradicts(ctx context.Context, staged stagingmodels.Politician, existing models.Politician) (bool, error) {
	if normalize.StatesConflict(staged.HomeState, existing.HomeState) {
		return true, nil
	}
	if differ(normalize.Email(staged.Email), normalize.Email(existing.Email)) {
		return true, nil
	}
	if differ(normalize.Phone(staged.Phone), normalize.Phone(existing.Phone)) {
		return true, nil
	}
	if staged.ResidenceAddress.IsEmpty() || existing.ResidenceAddressID == nil {
		return false, nil
	}
	same, err := s.sameResidence(ctx, staged.ResidenceAddress, existing.ResidenceAddressID)
	if err != nil {
		return false, err
	}
	return !same, nil
}

func differ(a, b string) bool {
	return a != "" && b != "" && a != b
}

// sameResidence compares line 1, city and state of the staged residence with
// the candidate's canonical residence. A missing side never matches.
func (s *Service) sameResidence(ctx context.Context, staged *stagingmodels.Address, canonicalID *domain.AddressID) (bool, error) {
	if staged.IsEmpty() || canonicalID == nil {
		return false, nil
	}
	addr, err := s.addresses.FindByID(ctx, *canonicalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load residence address")
	}
	stagedKey := normalize.NewAddressKey(staged.Line1, staged.City, staged.State, staged.Country)
	return normalize.SameResidence(stagedKey, addr.Key()), nil
}

func (s *Service) logQuestionable(ctx context.Context, kind audit.Kind, staged stagingmodels.Politician, candidate models.Politician, reason string) {
	s.logger.InfoContext(ctx, "questionable match skipped",
		"event", kind,
		"staging_id", staged.ID,
		"staging_slug", staged.Slug,
		"canonical_id", candidate.ID,
		"canonical_slug", candidate.Slug,
		"reason", reason,
	)
}

func questionable(id domain.PoliticianID, tier mergemodels.Tier) mergemodels.Decision {
	return mergemodels.Decision{CanonicalID: &id, Outcome: mergemodels.QuestionableSkipped{Tier: tier}}
}
