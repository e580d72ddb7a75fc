package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveOffice(true)
	m.ObserveOffice(false)
	m.ObserveOffice(false)
	m.ObservePoliticianDecision("exact_match", "email")
	m.ObserveLink(false)
	m.IncrementRecordError("races")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OfficesTotal.WithLabelValues("new")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OfficesTotal.WithLabelValues("existing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PoliticianDecisions.WithLabelValues("exact_match", "email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinksTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordErrors.WithLabelValues("races")))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveRace(true)

	n, err := testutil.GatherAndCount(b.Registry(), "candidate_merge_races_total")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RacesTotal.WithLabelValues("new")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RacesTotal.WithLabelValues("new")))
}

func TestPush(t *testing.T) {
	var calls atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New()
	m.ObserveStage("offices", time.Now())
	m.MarkSuccess()

	require.NoError(t, m.Push(context.Background(), srv.URL, "candidate_merge", "mn-sos-2024"))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "/metrics/job/candidate_merge/source/mn-sos-2024", path.Load())
}

func TestPush_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "candidate_merge", "tx-sos-2024")
	assert.Error(t, err)
}
