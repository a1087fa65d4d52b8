package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding an optional YAML config path.
const FileEnv = "WISHPACT_CONFIG"

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `yaml:"serviceName" envconfig:"SERVICE_NAME"`
	HTTPPort    string `yaml:"httpPort"    envconfig:"HTTP_PORT"`
	LogLevel    string `yaml:"logLevel"    envconfig:"LOG_LEVEL"`

	StoreDriver string `yaml:"storeDriver" envconfig:"STORE_DRIVER"`
	PostgresDSN string `yaml:"postgresDSN" envconfig:"POSTGRES_DSN"`
	SQLitePath  string `yaml:"sqlitePath"  envconfig:"SQLITE_PATH"`
	RedisAddr   string `yaml:"redisAddr"   envconfig:"REDIS_ADDR"`

	ChainBridgeURL      string        `yaml:"chainBridgeURL"      envconfig:"CHAIN_BRIDGE_URL"`
	ChainBridgeAttempts int           `yaml:"chainBridgeAttempts" envconfig:"CHAIN_BRIDGE_ATTEMPTS"`
	ExternalCallTimeout time.Duration `yaml:"externalCallTimeout" envconfig:"EXTERNAL_CALL_TIMEOUT"`

	VerificationQuorum   int           `yaml:"verificationQuorum"   envconfig:"VERIFICATION_QUORUM"`
	ProposalQuorum       int           `yaml:"proposalQuorum"       envconfig:"PROPOSAL_QUORUM"`
	ProposalVotingPeriod time.Duration `yaml:"proposalVotingPeriod" envconfig:"PROPOSAL_VOTING_PERIOD"`

	ReconcileInterval  time.Duration `yaml:"reconcileInterval"  envconfig:"RECONCILE_INTERVAL"`
	ReconcileBatchSize int           `yaml:"reconcileBatchSize" envconfig:"RECONCILE_BATCH_SIZE"`
	OutboxPollInterval time.Duration `yaml:"outboxPollInterval" envconfig:"OUTBOX_POLL_INTERVAL"`

	EnableDeadlineReconciler bool `yaml:"enableDeadlineReconciler" envconfig:"ENABLE_DEADLINE_RECONCILER"`
	EnableTreasuryReconciler bool `yaml:"enableTreasuryReconciler" envconfig:"ENABLE_TREASURY_RECONCILER"`
	EnableProposalExpiry     bool `yaml:"enableProposalExpiry"     envconfig:"ENABLE_PROPOSAL_EXPIRY"`
}

func Default() Config {
	return Config{
		ServiceName:              "wishpact",
		HTTPPort:                 "8080",
		LogLevel:                 "info",
		StoreDriver:              StoreMemory,
		SQLitePath:               "data/wishpact.db",
		ChainBridgeAttempts:      3,
		ExternalCallTimeout:      5 * time.Second,
		VerificationQuorum:       10,
		ProposalQuorum:           10,
		ProposalVotingPeriod:     7 * 24 * time.Hour,
		ReconcileInterval:        time.Minute,
		ReconcileBatchSize:       100,
		OutboxPollInterval:       time.Second,
		EnableDeadlineReconciler: true,
		EnableTreasuryReconciler: true,
		EnableProposalExpiry:     true,
	}
}

// Load applies defaults, then the YAML file named by WISHPACT_CONFIG, then
// environment overrides, and validates the result.
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPPort) == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.ChainBridgeAttempts < 1 {
		errs = append(errs, errors.New("CHAIN_BRIDGE_ATTEMPTS must be at least 1"))
	}
	if c.VerificationQuorum < 1 || c.ProposalQuorum < 1 {
		errs = append(errs, errors.New("quorums must be at least 1"))
	}
	if c.ExternalCallTimeout <= 0 ||
		c.ProposalVotingPeriod <= 0 ||
		c.ReconcileInterval <= 0 ||
		c.OutboxPollInterval <= 0 {
		errs = append(errs, errors.New("durations must be positive"))
	}
	if c.ReconcileBatchSize < 1 {
		errs = append(errs, errors.New("RECONCILE_BATCH_SIZE must be at least 1"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, falling back to info.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", raw)
	}
	return level, nil
}
