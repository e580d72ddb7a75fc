package politician

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	"github.com/populist-vote/platform-sub000/internal/source"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

// insert creates a new canonical politician unless a row already carries the
// record's ref_key and agrees with it, in which case it is an earlier run's
// insert and is updated instead. candidates are the slug-tier candidates;
// when there were any, the insert is audited as a slug collision.
func (s *Service) insert(ctx context.Context, r record, candidates []models.Politician) (mergemodels.Decision, error) {
	staged := r.staged
	refKey := r.refKey
	if refKey != "" {
		d, ok, taken, err := s.matchRefKey(ctx, r)
		if err != nil || ok {
			return d, err
		}
		if taken {
			refKey = ""
		}
	}

	in, err := s.canonicalFields(ctx, staged)
	if err != nil {
		return mergemodels.Decision{}, err
	}
	slug, err := s.assignSlug(ctx, r.src.SlugPolicy, normalize.Slug(staged.Slug))
	if err != nil {
		return mergemodels.Decision{}, err
	}
	if refKey == "" {
		refKey = fallbackRefKey(r, slug)
	}
	in.Slug = slug
	in.RefKey = refKey

	created, err := s.store.Insert(ctx, in)
	if errors.Is(err, sentinel.ErrConflict) {
		if refKey != "" && refKey == r.refKey {
			// Another worker inserted the same ref_key between lookup and insert.
			d, ok, _, ferr := s.matchRefKey(ctx, r)
			if ferr != nil || ok {
				return d, ferr
			}
		}
		// The key is held by a different person; keep the row without one.
		in.RefKey = ""
		created, err = s.store.Insert(ctx, in)
	}
	if err != nil {
		return mergemodels.Decision{}, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to insert politician "+slug)
	}

	if len(candidates) > 0 {
		if err := s.emit(ctx, audit.SlugCollisionEvent{
			StagingID:      staged.ID,
			CanonicalID:    created.ID,
			InsertedSlug:   slug,
			CandidateCount: len(candidates),
			Staging:        staged,
			Note:           collisionNote(r.src.SlugPolicy, staged.Slug, slug),
		}); err != nil {
			return mergemodels.Decision{}, err
		}
	}

	s.logger.InfoContext(ctx, "politician inserted",
		"event", "new_insert",
		"tier", mergemodels.TierInsert,
		"staging_id", staged.ID,
		"canonical_id", created.ID,
		"slug", slug,
		"ref_key", created.RefKey,
		"slug_candidates", len(candidates),
	)
	id := created.ID
	return mergemodels.Decision{CanonicalID: &id, Outcome: mergemodels.NewInsert{}}, nil
}

// matchRefKey looks up the row holding the record's ref_key. It merges only
// when nothing on that row contradicts the staged fields; otherwise taken is
// set and the key must not be reused.
func (s *Service) matchRefKey(ctx context.Context, r record) (d mergemodels.Decision, ok, taken bool, err error) {
	existing, err := s.store.FindByRefKey(ctx, r.refKey)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return d, false, false, nil
		}
		return d, false, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to find politician by ref_key")
	}
	contradicted, err := s.contradicts(ctx, r.staged, existing)
	if err != nil {
		return d, false, false, err
	}
	if contradicted {
		s.logger.InfoContext(ctx, "ref_key holder disagrees with staged record",
			"staging_id", r.staged.ID,
			"canonical_id", existing.ID,
			"ref_key", r.refKey,
		)
		return d, false, true, nil
	}
	d, err = s.merge(ctx, r, existing, mergemodels.TierRefKey, []string{"ref_key"}, "recognized from an earlier run of "+r.src.ID)
	if err != nil {
		return d, false, false, err
	}
	return d, true, false, nil
}

// assignSlug returns the slug the new row is inserted under. Disambiguating
// sources append -1, -2, … until the slug is free.
func (s *Service) assignSlug(ctx context.Context, policy source.SlugPolicy, slug string) (string, error) {
	if policy == source.SlugPolicyAcceptCollision {
		return slug, nil
	}
	for n := 0; ; n++ {
		candidate := slug
		if n > 0 {
			candidate = fmt.Sprintf("%s-%d", slug, n)
		}
		taken, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeDatabase, "failed to check slug "+candidate)
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

// refKeyFor keeps a staged ref_key or synthesizes "source-id|slug" so a re-run
// of the same source recognizes the record.
func refKeyFor(src source.Source, staged stagingmodels.Politician) string {
	if k := strings.TrimSpace(staged.RefKey); k != "" {
		return k
	}
	return src.RefKey(staged.Slug)
}

// fallbackRefKey keys a row whose own ref_key belongs to someone else. A
// synthesized key moves to the assigned slug; a staged key is not rewritten.
func fallbackRefKey(r record, slug string) string {
	if strings.TrimSpace(r.staged.RefKey) != "" {
		return ""
	}
	key := r.src.RefKey(slug)
	if key == refKeyFor(r.src, r.staged) || !r.run.RefKeys.Claim(key, r.staged.ID) {
		return ""
	}
	return key
}

func collisionNote(policy source.SlugPolicy, staged, inserted string) string {
	if policy == source.SlugPolicyAcceptCollision {
		return "slug " + inserted + " accepted as-is"
	}
	if normalize.Slug(staged) != inserted {
		return "slug " + normalize.Slug(staged) + " disambiguated to " + inserted
	}
	return "slug " + inserted + " was free; numbered variants exist"
}
