package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	addressstore "github.com/populist-vote/platform-sub000/internal/canonical/store/address"
	officestore "github.com/populist-vote/platform-sub000/internal/canonical/store/office"
	politicianstore "github.com/populist-vote/platform-sub000/internal/canonical/store/politician"
	racestore "github.com/populist-vote/platform-sub000/internal/canonical/store/race"
	linkstore "github.com/populist-vote/platform-sub000/internal/canonical/store/racecandidate"
	"github.com/populist-vote/platform-sub000/internal/merge/address"
	"github.com/populist-vote/platform-sub000/internal/merge/link"
	"github.com/populist-vote/platform-sub000/internal/merge/office"
	"github.com/populist-vote/platform-sub000/internal/merge/orchestrator"
	"github.com/populist-vote/platform-sub000/internal/merge/politician"
	"github.com/populist-vote/platform-sub000/internal/merge/race"
	"github.com/populist-vote/platform-sub000/internal/platform/config"
	"github.com/populist-vote/platform-sub000/internal/platform/kafka"
	"github.com/populist-vote/platform-sub000/internal/platform/metrics"
	"github.com/populist-vote/platform-sub000/internal/platform/postgres"
	"github.com/populist-vote/platform-sub000/internal/platform/redis"
	"github.com/populist-vote/platform-sub000/pkg/platform/audit"
	auditkafka "github.com/populist-vote/platform-sub000/pkg/platform/audit/publishers/kafka"
	auditpostgres "github.com/populist-vote/platform-sub000/pkg/platform/audit/store/postgres"
)

// infra holds the external connections of one process.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

// connect opens the database and, when configured, Redis and Kafka.
// On error everything opened so far is closed.
func connect(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *infra, err error) {
	in := &infra{}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	in.db, err = postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.MigrateOnStart {
		if err = postgres.Migrate(ctx, in.db); err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "migrations applied")
	}

	in.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if in.redis == nil {
		log.InfoContext(ctx, "run lock disabled, REDIS_URL not set")
	}

	in.kafka, err = kafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if in.kafka != nil {
		if err = kafka.EnsureTopic(ctx, in.kafka, cfg.Kafka.Topic, cfg.Kafka.Partitions); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

// newRecorder builds the fail-closed audit recorder. Kafka, when configured,
// receives a best-effort copy of every record.
func (in *infra) newRecorder(cfg config.Kafka, log *slog.Logger, m *metrics.Metrics) *audit.Recorder {
	opts := []audit.Option{audit.WithLogger(log)}
	if in.kafka != nil {
		opts = append(opts,
			audit.WithMirror(auditkafka.New(in.kafka, cfg.Topic)),
			audit.WithMirrorFailureHook(m.IncrementAuditMirrorFailure),
		)
	}
	return audit.NewRecorder(auditpostgres.New(in.db), opts...)
}

// newOrchestrator wires the resolvers over the canonical Postgres stores.
func newOrchestrator(db *sql.DB, recorder politician.AuditRecorder, cfg config.Merge, log *slog.Logger, m *metrics.Metrics) (*orchestrator.Orchestrator, error) {
	addresses := addressstore.NewPostgres(db)

	merger, err := address.New(addresses, address.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("address merger: %w", err)
	}
	offices, err := office.New(officestore.NewPostgres(db), office.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("office resolver: %w", err)
	}
	politicians, err := politician.New(politicianstore.NewPostgres(db), addresses, merger, recorder, politician.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("politician resolver: %w", err)
	}
	races, err := race.New(racestore.NewPostgres(db), race.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("race resolver: %w", err)
	}
	links, err := link.New(linkstore.NewPostgres(db), link.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("race-candidate linker: %w", err)
	}

	return orchestrator.New(offices, politicians, races, links,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
		orchestrator.WithPoliticianWorkers(cfg.PoliticianWorkers),
		orchestrator.WithTruncateStaging(cfg.TruncateStaging),
	)
}
