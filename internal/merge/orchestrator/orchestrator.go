// Package orchestrator drives one merge run: offices, then politicians, then
// races, then race-candidate links. Later stages consume the id maps built by
// earlier ones, so the order is fixed.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	mergemodels "github.com/populist-vote/platform-sub000/internal/merge/models"
	"github.com/populist-vote/platform-sub000/internal/platform/metrics"
	"github.com/populist-vote/platform-sub000/internal/source"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/keylock"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
)

var tracer = otel.Tracer("candidate-merge/orchestrator")

// StagingStore is the staging side of one source.
type StagingStore interface {
	LoadBatch(ctx context.Context) (*stagingmodels.Batch, error)
	Truncate(ctx context.Context) error
}

type OfficeResolver interface {
	Upsert(ctx context.Context, staged stagingmodels.Office) (models.Office, bool, error)
}

type PoliticianResolver interface {
	Resolve(ctx context.Context, run *mergemodels.RunContext, staged stagingmodels.Politician) ([]mergemodels.Decision, error)
}

type RaceResolver interface {
	Upsert(ctx context.Context, staged stagingmodels.Race, offices *mergemodels.OfficeIDMap) (models.Race, bool, error)
}

type Linker interface {
	Link(ctx context.Context, staged stagingmodels.RaceCandidate, races *mergemodels.RaceIDMap, politicians *mergemodels.PoliticianIDMap) (mergemodels.LinkOutcome, error)
}

// Orchestrator sequences the merge stages for one staging batch at a time.
// It holds no per-run state; everything a run builds lives in its RunContext.
type Orchestrator struct {
	offices     OfficeResolver
	politicians PoliticianResolver
	races       RaceResolver
	links       Linker
	logger      *slog.Logger
	metrics     *metrics.Metrics
	workers     int
	truncate    bool
	slugLocks   *keylock.Sharded
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithPoliticianWorkers bounds the politician stage worker pool. One worker
// keeps the stage sequential in staging order.
func WithPoliticianWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTruncateStaging controls whether staging is emptied after a run with no
// errors.
func WithTruncateStaging(enabled bool) Option {
	return func(o *Orchestrator) {
		o.truncate = enabled
	}
}

func New(offices OfficeResolver, politicians PoliticianResolver, races RaceResolver, links Linker, opts ...Option) (*Orchestrator, error) {
	if offices == nil || politicians == nil || races == nil || links == nil {
		return nil, errors.New("office, politician, race and link resolvers are required")
	}
	o := &Orchestrator{
		offices:     offices,
		politicians: politicians,
		races:       races,
		links:       links,
		logger:      slog.Default(),
		workers:     1,
		truncate:    true,
		slugLocks:   keylock.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run merges the staging batch of src. Per-record errors are counted and the
// run continues; any other error aborts it and is returned together with the
// stats gathered so far.
func (o *Orchestrator) Run(ctx context.Context, src source.Source, staging StagingStore) (*mergemodels.RunStats, error) {
	run := mergemodels.NewRunContext(src)
	stats := mergemodels.NewRunStats(run)
	ctx = audit.WithRun(ctx, run.RunID, src.ID)
	logger := o.logger.With("run_id", run.RunID, "source_id", src.ID)

	ctx, span := tracer.Start(ctx, "merge.run", trace.WithAttributes(
		attribute.String("source.id", src.ID),
		attribute.String("run.id", run.RunID.String()),
	))
	defer span.End()

	err := o.run(ctx, run, stats, staging, logger)
	stats.Duration = time.Since(run.StartedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "merge aborted")
		logger.ErrorContext(ctx, "merge aborted", "error", err)
		return stats, err
	}
	if o.metrics != nil {
		o.metrics.MarkSuccess()
	}
	logger.InfoContext(ctx, "merge finished",
		"processed", stats.Processed(),
		"skipped", stats.Skipped(),
		"errored", stats.Errored(),
		"duration", stats.Duration,
	)
	return stats, nil
}

func (o *Orchestrator) run(ctx context.Context, run *mergemodels.RunContext, stats *mergemodels.RunStats, staging StagingStore, logger *slog.Logger) error {
	batch, err := staging.LoadBatch(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to load staging batch")
	}
	logger.InfoContext(ctx, "staging batch loaded",
		"offices", len(batch.Offices),
		"politicians", len(batch.Politicians),
		"races", len(batch.Races),
		"race_candidates", len(batch.RaceCandidates),
	)

	stages := []struct {
		stage mergemodels.Stage
		size  int
		fn    func(context.Context) error
	}{
		{mergemodels.StageOffices, len(batch.Offices), func(ctx context.Context) error {
			return o.mergeOffices(ctx, run, stats, batch.Offices, logger)
		}},
		{mergemodels.StagePoliticians, len(batch.Politicians), func(ctx context.Context) error {
			return o.mergePoliticians(ctx, run, stats, batch.Politicians, logger)
		}},
		{mergemodels.StageRaces, len(batch.Races), func(ctx context.Context) error {
			return o.mergeRaces(ctx, run, stats, batch.Races, logger)
		}},
		{mergemodels.StageLinks, len(batch.RaceCandidates), func(ctx context.Context) error {
			return o.mergeLinks(ctx, run, stats, batch.RaceCandidates, logger)
		}},
	}
	for _, st := range stages {
		if err := o.stage(ctx, st.stage, st.size, st.fn); err != nil {
			return err
		}
	}

	if !o.truncate {
		return nil
	}
	if n := stats.Errored(); n > 0 {
		logger.WarnContext(ctx, "staging kept for inspection", "errored", n)
		return nil
	}
	err = o.stage(ctx, mergemodels.StageTruncate, 0, func(ctx context.Context) error {
		if err := staging.Truncate(ctx); err != nil {
			return dErrors.Wrap(err, dErrors.CodeDatabase, "failed to truncate staging")
		}
		return nil
	})
	if err != nil {
		return err
	}
	stats.Truncated = true
	return nil
}

// stage wraps one stage in a span and records its duration.
func (o *Orchestrator) stage(ctx context.Context, stage mergemodels.Stage, size int, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "merge."+string(stage), trace.WithAttributes(
		attribute.Int("stage.records", size),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if o.metrics != nil {
		o.metrics.ObserveStage(string(stage), start)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage)+" failed")
	}
	return err
}

// recordError counts err against stage when it only invalidates one record,
// and returns it otherwise so the run aborts.
func (o *Orchestrator) recordError(ctx context.Context, stats *mergemodels.RunStats, stage mergemodels.Stage, logger *slog.Logger, err error, attrs ...any) error {
	if !dErrors.IsRecordError(err) {
		return err
	}
	stats.AddError(stage)
	if o.metrics != nil {
		o.metrics.IncrementRecordError(string(stage))
	}
	logger.WarnContext(ctx, "record skipped", append([]any{"stage", stage, "error", err}, attrs...)...)
	return nil
}

func (o *Orchestrator) mergeOffices(ctx context.Context, run *mergemodels.RunContext, stats *mergemodels.RunStats, offices []stagingmodels.Office, logger *slog.Logger) error {
	for _, staged := range offices {
		out, inserted, err := o.offices.Upsert(ctx, staged)
		if err != nil {
			if err := o.recordError(ctx, stats, mergemodels.StageOffices, logger, err, "staging_id", staged.ID); err != nil {
				return err
			}
			continue
		}
		run.Offices.Set(staged.ID, out.ID)
		stats.AddOffice(inserted)
		if o.metrics != nil {
			o.metrics.ObserveOffice(inserted)
		}
	}
	return nil
}

// mergePoliticians resolves politicians through a bounded pool. Records that
// share a base slug are serialized so two workers never pick the same numeric
// suffix or race on the same candidates.
func (o *Orchestrator) mergePoliticians(ctx context.Context, run *mergemodels.RunContext, stats *mergemodels.RunStats, politicians []stagingmodels.Politician, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, staged := range politicians {
		g.Go(func() error {
			return o.slugLocks.Do(gctx, normalize.BaseSlug(staged.Slug), func(ctx context.Context) error {
				decisions, err := o.politicians.Resolve(ctx, run, staged)
				if err != nil {
					return o.recordError(ctx, stats, mergemodels.StagePoliticians, logger, err,
						"staging_id", staged.ID, "slug", staged.Slug)
				}
				if id, ok := mergemodels.Resolved(decisions); ok {
					run.Politicians.Set(staged.ID, id)
				}
				stats.AddPolitician(decisions)
				if o.metrics != nil {
					for _, d := range decisions {
						o.metrics.ObservePoliticianDecision(outcomeLabel(d.Outcome), string(mergemodels.TierOf(d.Outcome)))
					}
				}
				return nil
			})
		})
	}
	return g.Wait()
}

func (o *Orchestrator) mergeRaces(ctx context.Context, run *mergemodels.RunContext, stats *mergemodels.RunStats, races []stagingmodels.Race, logger *slog.Logger) error {
	for _, staged := range races {
		out, inserted, err := o.races.Upsert(ctx, staged, run.Offices)
		if err != nil {
			if err := o.recordError(ctx, stats, mergemodels.StageRaces, logger, err, "staging_id", staged.ID); err != nil {
				return err
			}
			continue
		}
		run.Races.Set(staged.ID, out.ID)
		stats.AddRace(inserted)
		if o.metrics != nil {
			o.metrics.ObserveRace(inserted)
		}
	}
	return nil
}

func (o *Orchestrator) mergeLinks(ctx context.Context, run *mergemodels.RunContext, stats *mergemodels.RunStats, links []stagingmodels.RaceCandidate, logger *slog.Logger) error {
	for _, staged := range links {
		outcome, err := o.links.Link(ctx, staged, run.Races, run.Politicians)
		if err != nil {
			if err := o.recordError(ctx, stats, mergemodels.StageLinks, logger, err,
				"staging_race_id", staged.RaceID, "staging_candidate_id", staged.CandidateID); err != nil {
				return err
			}
			continue
		}
		stats.AddLink(outcome)
		if o.metrics != nil {
			o.metrics.ObserveLink(outcome == mergemodels.LinkInserted)
		}
	}
	return nil
}

func outcomeLabel(o mergemodels.Outcome) string {
	switch o.(type) {
	case mergemodels.ExactMatch:
		return "exact_match"
	case mergemodels.QuestionableSkipped:
		return "questionable_skipped"
	default:
		return "new_insert"
	}
}
