// Package link attaches resolved politicians to resolved races.
package link

import (
	"context"
	"errors"
	"log/slog"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
)

type Store interface {
	Insert(ctx context.Context, link models.RaceCandidate) (bool, error)
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
		return nil, errors.New("race candidate store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Link inserts the race/politician link unless it already exists. A staged
// politician that never resolved is skipped rather than treated as an error;
// an unresolved race is a referential integrity error.
func (s *Service) Link(ctx context.Context, staged stagingmodels.RaceCandidate, races *mergemodels.RaceIDMap, politicians *mergemodels.PoliticianIDMap) (mergemodels.LinkOutcome, error) {
	if staged.RaceID.IsNil() || staged.CandidateID.IsNil() {
		return "", dErrors.New(dErrors.CodeMissingRequiredField, "staging race candidate needs both race and candidate")
	}
	candidateID, ok := politicians.Get(staged.CandidateID)
	if !ok {
		s.logger.InfoContext(ctx, "race candidate skipped",
			"staging_race_id", staged.RaceID,
			"staging_candidate_id", staged.CandidateID,
			"reason", "candidate not resolved",
		)
		return mergemodels.LinkSkipped, nil
	}
	raceID, ok := races.Get(staged.RaceID)
	if !ok {
		return "", dErrors.Newf(dErrors.CodeReferentialIntegrity,
			"staging race %s was not resolved in this run", staged.RaceID)
	}

	inserted, err := s.store.Insert(ctx, models.RaceCandidate{
		RaceID:      raceID,
		CandidateID: candidateID,
		RefKey:      staged.RefKey,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeDatabase, "failed to link race candidate")
	}
	if !inserted {
		return mergemodels.LinkExisting, nil
	}
	return mergemodels.LinkInserted, nil
}
