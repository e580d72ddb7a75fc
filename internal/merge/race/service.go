// Package race upserts staged races, pointing them at offices resolved earlier
// in the same run.
package race

import (
	"context"
	"errors"
	"log/slog"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

type Store interface {
	UpsertBySlug(ctx context.Context, r models.Race) (models.Race, bool, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("race store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upsert inserts or merges the race by slug. The staged office reference must
// have been resolved by the office stage of this run.
func (s *Service) Upsert(ctx context.Context, staged stagingmodels.Race, offices *mergemodels.OfficeIDMap) (models.Race, bool, error) {
	slug := normalize.Slug(staged.Slug)
	if slug == "" {
		return models.Race{}, false, dErrors.Newf(dErrors.CodeMissingRequiredField, "staging race %s has no slug", staged.ID)
	}
	if staged.OfficeID.IsNil() {
		return models.Race{}, false, dErrors.Newf(dErrors.CodeMissingRequiredField, "staging race %s has no office", slug)
	}
	officeID, ok := offices.Get(staged.OfficeID)
	if !ok {
		return models.Race{}, false, dErrors.Newf(dErrors.CodeReferentialIntegrity,
			"staging race %s references office %s which was not resolved in this run", slug, staged.OfficeID)
	}

	out, inserted, err := s.store.UpsertBySlug(ctx, models.Race{
		Slug:              slug,
		RefKey:            staged.RefKey,
		OfficeID:          officeID,
		Title:             staged.Title,
		RaceType:          staged.RaceType,
		VoteType:          staged.VoteType,
		Party:             staged.Party,
		State:             normalize.State(staged.State),
		Description:       staged.Description,
		ElectionDate:      staged.ElectionDate,
		IsSpecialElection: staged.IsSpecialElection,
		NumElect:          staged.NumElect,
	})
	if err != nil {
		return models.Race{}, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to upsert race "+slug)
	}
	s.logger.DebugContext(ctx, "race upserted",
		"slug", slug,
		"race_id", out.ID,
		"office_id", officeID,
		"inserted", inserted,
	)
	return out, inserted, nil
}
