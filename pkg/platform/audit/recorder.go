package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Store persists audit records. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, rec Record) error
}

// Reader serves audit records back for review tooling and tests.
type Reader interface {
	ListByRun(ctx context.Context, runID domain.RunID) ([]Record, error)
	ListQuestionable(ctx context.Context, runID domain.RunID) ([]Record, error)
}

// Mirror receives a copy of every persisted record. Failures never fail the run.
type Mirror interface {
	Publish(ctx context.Context, rec Record) error
}

// ErrNoRun is returned when an event is emitted outside WithRun.
var ErrNoRun = errors.New("audit event emitted without run context")

// Recorder writes match decisions with fail-closed semantics: the caller
// blocks until the primary store accepts the record and must abort on error.
type Recorder struct {
	store           Store
	mirror          Mirror
	logger          *slog.Logger
	onMirrorFailure func()
	now             func() time.Time
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMirror adds a best-effort secondary sink.
func WithMirror(m Mirror) Option {
	return func(r *Recorder) {
		r.mirror = m
	}
}

// WithMirrorFailureHook is called once per record the mirror rejects.
func WithMirrorFailureHook(fn func()) Option {
	return func(r *Recorder) {
		r.onMirrorFailure = fn
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a Recorder over the primary store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Emit converts the event, stamps it with the run from ctx and appends it.
func (r *Recorder) Emit(ctx context.Context, event Event) error {
	runID, sourceID, ok := RunFrom(ctx)
	if !ok {
		return ErrNoRun
	}

	rec, err := event.ToRecord()
	if err != nil {
		return fmt.Errorf("build %s audit record: %w", event.Kind(), err)
	}
	rec.ID = uuid.New()
	rec.RunID = runID
	rec.SourceID = sourceID
	rec.RecordedAt = r.now().UTC()

	if err := r.store.Append(ctx, rec); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "match audit persistence failed",
				"kind", rec.Kind,
				"staging_id", rec.StagingID,
				"error", err,
			)
		}
		return fmt.Errorf("match audit persistence failed: %w", err)
	}

	if r.mirror != nil {
		if err := r.mirror.Publish(ctx, rec); err != nil {
			if r.onMirrorFailure != nil {
				r.onMirrorFailure()
			}
			if r.logger != nil {
				r.logger.WarnContext(ctx, "match audit mirror failed",
					"kind", rec.Kind,
					"staging_id", rec.StagingID,
					"error", err,
				)
			}
		}
	}
	return nil
}
