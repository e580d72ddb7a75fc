// Package kafka mirrors persisted match audit records to a Kafka topic so
// review tooling can follow a run without polling the database.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/circuit"
)

// ErrCircuitOpen is returned instead of producing while the broker is
// considered down.
var ErrCircuitOpen = errors.New("audit mirror circuit open")

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher implements audit.Mirror.
type Publisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
}

type Option func(*Publisher)

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// New creates a publisher writing to topic. After repeated produce failures
// it stops calling the broker and only probes it once per cooldown.
func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("audit-kafka"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type payload struct {
	ID                string          `json:"id"`
	RunID             string          `json:"run_id"`
	SourceID          string          `json:"source_id"`
	Kind              string          `json:"kind"`
	Tier              string          `json:"tier"`
	MatchedFields     []string        `json:"matched_fields"`
	StagingID         string          `json:"staging_id"`
	CanonicalID       string          `json:"canonical_id,omitempty"`
	WasMerged         bool            `json:"was_merged"`
	Note              string          `json:"note,omitempty"`
	CandidateSlug     string          `json:"candidate_slug,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	InsertedSlug      string          `json:"inserted_slug,omitempty"`
	CandidateCount    int             `json:"candidate_count,omitempty"`
	StagingSnapshot   json.RawMessage `json:"staging_snapshot"`
	CanonicalSnapshot json.RawMessage `json:"canonical_snapshot,omitempty"`
	RecordedAt        string          `json:"recorded_at"`
}

// Publish writes one record keyed by staging id, so every decision about the
// same staging row lands on one partition in order.
func (p *Publisher) Publish(ctx context.Context, rec audit.Record) error {
	body := payload{
		ID:                rec.ID.String(),
		RunID:             rec.RunID.String(),
		SourceID:          rec.SourceID,
		Kind:              string(rec.Kind),
		Tier:              rec.Tier,
		MatchedFields:     rec.MatchedFields,
		StagingID:         rec.StagingID.String(),
		WasMerged:         rec.WasMerged,
		Note:              rec.Note,
		CandidateSlug:     rec.CandidateSlug,
		Phone:             rec.Phone,
		Reason:            rec.Reason,
		InsertedSlug:      rec.InsertedSlug,
		CandidateCount:    rec.CandidateCount,
		StagingSnapshot:   rec.StagingSnapshot,
		CanonicalSnapshot: rec.CanonicalSnapshot,
		RecordedAt:        rec.RecordedAt.Format(time.RFC3339Nano),
	}
	if rec.CanonicalID != nil {
		body.CanonicalID = rec.CanonicalID.String()
	}

	value, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(rec.StagingID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(rec.Kind)},
			{Key: "source_id", Value: []byte(rec.SourceID)},
		},
	}
	if !p.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.breaker.RecordFailure()
		return fmt.Errorf("produce audit record: %w", err)
	}
	p.breaker.RecordSuccess()
	return nil
}
