// Package testutil provides shared helpers for unit and integration tests.
package testutil

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// StagingID returns a fresh source-local id.
func StagingID() domain.StagingID {
	return domain.StagingID(uuid.New())
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BatchBuilder assembles a staging batch in the order records are added.
type BatchBuilder struct {
	batch models.Batch
}

func NewBatch() *BatchBuilder {
	return &BatchBuilder{}
}

func (b *BatchBuilder) Office(slug string, mutate ...func(*models.Office)) domain.StagingID {
	o := models.Office{ID: StagingID(), Slug: slug}
	for _, fn := range mutate {
		fn(&o)
	}
	b.batch.Offices = append(b.batch.Offices, o)
	return o.ID
}

func (b *BatchBuilder) Politician(slug string, mutate ...func(*models.Politician)) domain.StagingID {
	p := models.Politician{ID: StagingID(), Slug: slug}
	for _, fn := range mutate {
		fn(&p)
	}
	b.batch.Politicians = append(b.batch.Politicians, p)
	return p.ID
}

func (b *BatchBuilder) Race(slug string, office domain.StagingID, mutate ...func(*models.Race)) domain.StagingID {
	r := models.Race{ID: StagingID(), Slug: slug, OfficeID: office}
	for _, fn := range mutate {
		fn(&r)
	}
	b.batch.Races = append(b.batch.Races, r)
	return r.ID
}

func (b *BatchBuilder) Link(race, candidate domain.StagingID) {
	b.batch.RaceCandidates = append(b.batch.RaceCandidates, models.RaceCandidate{RaceID: race, CandidateID: candidate})
}

// Build returns a copy of the batch.
func (b *BatchBuilder) Build() models.Batch {
	return models.Batch{
		Offices:        append([]models.Office(nil), b.batch.Offices...),
		Politicians:    append([]models.Politician(nil), b.batch.Politicians...),
		Races:          append([]models.Race(nil), b.batch.Races...),
		RaceCandidates: append([]models.RaceCandidate(nil), b.batch.RaceCandidates...),
	}
}
