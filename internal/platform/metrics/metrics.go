package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the merge run's Prometheus collectors.
// Each instance owns its registry so a batch job can push exactly what it
// recorded and tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	OfficesTotal        *prometheus.CounterVec
	PoliticianDecisions *prometheus.CounterVec
	RacesTotal          *prometheus.CounterVec
	LinksTotal          *prometheus.CounterVec
	RecordErrors        *prometheus.CounterVec
	AuditMirrorFailures prometheus.Counter
	StageDuration       *prometheus.HistogramVec
	LastSuccess         prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		OfficesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_merge_offices_total",
			Help: "Offices processed, by outcome (existing, new)",
		}, []string{"outcome"}),
		PoliticianDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_merge_politician_decisions_total",
			Help: "Politician resolution decisions, by outcome and tier",
		}, []string{"outcome", "tier"}),
		RacesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_merge_races_total",
			Help: "Races processed, by outcome (existing, new)",
		}, []string{"outcome"}),
		LinksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_merge_race_candidate_links_total",
			Help: "Race-candidate links processed, by outcome (inserted, skipped)",
		}, []string{"outcome"}),
		RecordErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_merge_record_errors_total",
			Help: "Staging records skipped because of a per-record error, by stage",
		}, []string{"stage"}),
		AuditMirrorFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "candidate_merge_audit_mirror_failures_total",
			Help: "Audit records that could not be mirrored to Kafka",
		}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "candidate_merge_stage_duration_seconds",
			Help:    "Duration of each merge stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		}, []string{"stage"}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "candidate_merge_last_success_timestamp_seconds",
			Help: "Unix time of the last run that completed without errors",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOffice records an office upsert.
func (m *Metrics) ObserveOffice(inserted bool) {
	m.OfficesTotal.WithLabelValues(existingOrNew(inserted)).Inc()
}

// ObservePoliticianDecision records one resolver decision.
func (m *Metrics) ObservePoliticianDecision(outcome, tier string) {
	m.PoliticianDecisions.WithLabelValues(outcome, tier).Inc()
}

// ObserveRace records a race upsert.
func (m *Metrics) ObserveRace(inserted bool) {
	m.RacesTotal.WithLabelValues(existingOrNew(inserted)).Inc()
}

// ObserveLink records a race-candidate link as inserted or skipped.
func (m *Metrics) ObserveLink(inserted bool) {
	outcome := "skipped"
	if inserted {
		outcome = "inserted"
	}
	m.LinksTotal.WithLabelValues(outcome).Inc()
}

// IncrementRecordError records a per-record error in the given stage.
func (m *Metrics) IncrementRecordError(stage string) {
	m.RecordErrors.WithLabelValues(stage).Inc()
}

// IncrementAuditMirrorFailure records a failed Kafka mirror write.
func (m *Metrics) IncrementAuditMirrorFailure() {
	m.AuditMirrorFailures.Inc()
}

// ObserveStage records the duration of a stage.
// Call with time.Now() at the start of the stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// MarkSuccess sets the last-success gauge to now.
func (m *Metrics) MarkSuccess() {
	m.LastSuccess.SetToCurrentTime()
}

// Push sends everything in the registry to a Pushgateway, grouped by source.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job, source string) error {
	err := push.New(gatewayURL, job).
		Gatherer(m.registry).
		Grouping("source", source).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func existingOrNew(inserted bool) string {
	if inserted {
		return "new"
	}
	return "existing"
}
