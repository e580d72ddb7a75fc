// Package office upserts staged offices into the canonical registry by slug.
package office

import (
	"context"
	"errors"
	"log/slog"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

type Store interface {
	UpsertBySlug(ctx context.Context, o models.Office) (models.Office, bool, error)
}

// Service resolves offices. Slugs are computed upstream and are trusted to be
// unique per real office, so there is no ambiguity tier.
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
		return nil, errors.New("office store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upsert inserts the office or merges it into the row with the same slug.
// Known attributes never regress to unknown.
func (s *Service) Upsert(ctx context.Context, staged stagingmodels.Office) (models.Office, bool, error) {
	slug := normalize.Slug(staged.Slug)
	if slug == "" {
		return models.Office{}, false, dErrors.Newf(dErrors.CodeMissingRequiredField, "staging office %s has no slug", staged.ID)
	}

	out, inserted, err := s.store.UpsertBySlug(ctx, models.Office{
		Slug:           slug,
		RefKey:         staged.RefKey,
		Title:          staged.Title,
		Name:           staged.Name,
		Subtitle:       staged.Subtitle,
		OfficeType:     staged.OfficeType,
		Chamber:        staged.Chamber,
		DistrictType:   staged.DistrictType,
		District:       staged.District,
		PoliticalScope: staged.PoliticalScope,
		ElectionScope:  staged.ElectionScope,
		State:          normalize.State(staged.State),
		County:         staged.County,
		Municipality:   staged.Municipality,
		Seat:           staged.Seat,
		TermLength:     staged.TermLength,
	})
	if err != nil {
		return models.Office{}, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to upsert office "+slug)
	}
	s.logger.DebugContext(ctx, "office upserted",
		"slug", slug,
		"office_id", out.ID,
		"inserted", inserted,
	)
	return out, inserted, nil
}
