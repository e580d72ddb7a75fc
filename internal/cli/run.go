package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/populist-vote/platform-sub000/internal/platform/config"
	"github.com/populist-vote/platform-sub000/internal/platform/logger"
	"github.com/populist-vote/platform-sub000/internal/platform/metrics"
	"github.com/populist-vote/platform-sub000/internal/platform/postgres"
	"github.com/populist-vote/platform-sub000/internal/platform/redis"
	"github.com/populist-vote/platform-sub000/internal/source"
	stagingstore "github.com/populist-vote/platform-sub000/internal/staging/store"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <source>",
		Short: "Merge one source's staging tables",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Lookup(args[0])
			if err != nil {
				return withExit(ExitUsage, err)
			}
			return runSource(cmd, src)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply canonical schema migrations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return withExit(ExitInfra, err)
			}
			defer db.Close()
			if err := postgres.Migrate(ctx, db); err != nil {
				return withExit(ExitInfra, err)
			}
			log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}

func newInitStagingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-staging <source>",
		Short: "Create a source's staging tables if they are missing",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Lookup(args[0])
			if err != nil {
				return withExit(ExitUsage, err)
			}
			cfg, log, err := setup(&src)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return withExit(ExitInfra, err)
			}
			defer db.Close()
			staging, err := stagingstore.NewPostgres(db, src.Namespace)
			if err != nil {
				return withExit(ExitUsage, err)
			}
			if err := staging.CreateTables(ctx); err != nil {
				return withExit(ExitInfra, err)
			}
			log.InfoContext(ctx, "staging tables ready", "namespace", src.Namespace)
			return nil
		},
	}
}

// setup loads configuration and builds the process logger.
func setup(src *source.Source) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		return config.Config{}, nil, withExit(ExitUsage, err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if src != nil {
		log = log.With("source", src.Key)
	}
	return cfg, log, nil
}

// runSource performs one merge run for src and prints its summary.
func runSource(cmd *cobra.Command, src source.Source) error {
	if err := src.Validate(); err != nil {
		return withExit(ExitUsage, err)
	}
	cfg, log, err := setup(&src)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	in, err := connect(ctx, cfg, log)
	if err != nil {
		return withExit(ExitInfra, err)
	}
	defer in.Close()

	if in.redis != nil {
		lock, err := in.redis.LockRun(ctx, src.ID, cfg.Redis.LockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockHeld) {
				return withExit(ExitLockHeld, err)
			}
			return withExit(ExitInfra, err)
		}
		defer func() {
			// The run context may already be cancelled.
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.WarnContext(ctx, "release run lock", "error", err)
			}
		}()
	}

	m := metrics.New()
	recorder := in.newRecorder(cfg.Kafka, log, m)
	o, err := newOrchestrator(in.db, recorder, cfg.Merge, log, m)
	if err != nil {
		return withExit(ExitInfra, err)
	}
	staging, err := stagingstore.NewPostgres(in.db, src.Namespace)
	if err != nil {
		return withExit(ExitUsage, err)
	}

	stats, runErr := o.Run(ctx, src, staging)
	if stats != nil {
		fmt.Fprintln(cmd.OutOrStdout(), stats.Summary())
	}
	pushMetrics(ctx, cfg.Metrics, m, src, log)

	if runErr != nil {
		return withExit(ExitInfra, runErr)
	}
	if n := stats.Errored(); n > 0 {
		return withExit(ExitRecordErrors, fmt.Errorf("merge of %s completed with %d record errors", src.ID, n))
	}
	return nil
}

func pushMetrics(ctx context.Context, cfg config.Metrics, m *metrics.Metrics, src source.Source, log *slog.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := m.Push(context.WithoutCancel(ctx), cfg.PushgatewayURL, cfg.Job, src.ID); err != nil {
		log.WarnContext(ctx, "metrics push failed", "error", err)
	}
}
