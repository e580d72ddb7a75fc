package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/populist-vote/platform-sub000/pkg/domain"
	audit "github.com/populist-vote/platform-sub000/pkg/platform/audit"
	"github.com/populist-vote/platform-sub000/pkg/platform/circuit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestPublish(t *testing.T) {
	producer := &fakeProducer{}
	pub := New(producer, "candidate-merge.match-audit")

	stagingID := domain.StagingID(uuid.New())
	canonicalID := domain.NewPoliticianID()
	rec := audit.Record{
		ID:              uuid.New(),
		RunID:           domain.NewRunID(),
		SourceID:        "tx-sos-2024",
		Kind:            audit.KindQuestionablePhone,
		Tier:            "phone",
		MatchedFields:   []string{"phone"},
		StagingID:       stagingID,
		CanonicalID:     &canonicalID,
		Phone:           "5125550100",
		StagingSnapshot: json.RawMessage(`{"Slug":"ann-lee"}`),
		RecordedAt:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.Publish(context.Background(), rec))
	require.Len(t, producer.records, 1)

	got := producer.records[0]
	assert.Equal(t, "candidate-merge.match-audit", got.Topic)
	assert.Equal(t, stagingID.String(), string(got.Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.Value, &body))
	assert.Equal(t, "questionable_phone_match", body["kind"])
	assert.Equal(t, canonicalID.String(), body["canonical_id"])
	assert.Equal(t, "5125550100", body["phone"])
	assert.Equal(t, map[string]any{"Slug": "ann-lee"}, body["staging_snapshot"])
	assert.NotContains(t, body, "inserted_slug")
}

func TestPublish_ProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("not leader")}
	pub := New(producer, "candidate-merge.match-audit")

	err := pub.Publish(context.Background(), audit.Record{
		Kind:            audit.KindExactMatch,
		StagingSnapshot: json.RawMessage(`{}`),
	})
	assert.Error(t, err)
}

func TestPublish_BreakerStopsProducing(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	breaker := circuit.New("audit-kafka", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	pub := New(producer, "candidate-merge.match-audit", WithBreaker(breaker))
	rec := audit.Record{Kind: audit.KindExactMatch, StagingSnapshot: json.RawMessage(`{}`)}

	for i := 0; i < 2; i++ {
		require.Error(t, pub.Publish(context.Background(), rec))
	}
	require.True(t, breaker.IsOpen())

	err := pub.Publish(context.Background(), rec)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, producer.records, 2, "no produce while open")
}
