package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment so the
// per-source executables need no flags.
type Config struct {
	Database Database
	Log      Log
	Merge    Merge
	Redis    RedisConfig
	Kafka    Kafka
	Metrics  Metrics
}

// Database configures the canonical PostgreSQL database. Staging tables live
// in the same database under the staging schema.
type Database struct {
	URL            string `env:"DATABASE_URL"`
	MaxOpenConns   int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns   int    `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Merge tunes the orchestrator.
type Merge struct {
	// PoliticianWorkers > 1 resolves politicians with a bounded worker pool,
	// serialized per base slug.
	PoliticianWorkers int  `env:"MERGE_POLITICIAN_WORKERS" envDefault:"1"`
	TruncateStaging   bool `env:"MERGE_TRUNCATE_STAGING" envDefault:"true"`
}

// RedisConfig enables the per-source run lock when URL is set.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	LockTTL      time.Duration `env:"MERGE_LOCK_TTL" envDefault:"2h"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"4"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"0"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka enables mirroring of match audit records when Brokers is non-empty.
type Kafka struct {
	Brokers    []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	Topic      string   `env:"AUDIT_KAFKA_TOPIC" envDefault:"candidate-merge.match-audit"`
	Partitions int32    `env:"AUDIT_KAFKA_PARTITIONS" envDefault:"3"`
}

// Metrics pushes run metrics to a Prometheus Pushgateway when URL is set.
type Metrics struct {
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
	Job            string `env:"PUSHGATEWAY_JOB" envDefault:"candidate_merge"`
}

// DefaultEnvFiles are loaded when present; missing files are not an error.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Load reads optional env files, then parses and validates the environment.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Merge.PoliticianWorkers < 1 {
		errs = append(errs, fmt.Errorf("MERGE_POLITICIAN_WORKERS must be >= 1, got %d", c.Merge.PoliticianWorkers))
	}
	if c.Redis.URL != "" && c.Redis.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("MERGE_LOCK_TTL must be positive, got %s", c.Redis.LockTTL))
	}
	if len(c.Kafka.Brokers) > 0 && strings.TrimSpace(c.Kafka.Topic) == "" {
		errs = append(errs, errors.New("AUDIT_KAFKA_TOPIC is required when AUDIT_KAFKA_BROKERS is set"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
