// Package bootstrap is the composition root.
// Keep construction and wiring here so context code stays framework-agnostic.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	rankingservice "wishpact/contexts/community-experience/ranking-service"
	rankingpostgres "wishpact/contexts/community-experience/ranking-service/adapters/postgres"
	rankingports "wishpact/contexts/community-experience/ranking-service/ports"
	impacttreasury "wishpact/contexts/impact-governance/impact-treasury"
	treasurymemory "wishpact/contexts/impact-governance/impact-treasury/adapters/memory"
	treasurypostgres "wishpact/contexts/impact-governance/impact-treasury/adapters/postgres"
	treasuryports "wishpact/contexts/impact-governance/impact-treasury/ports"
	proposalgovernor "wishpact/contexts/impact-governance/proposal-governor"
	governorchain "wishpact/contexts/impact-governance/proposal-governor/adapters/chain"
	governormemory "wishpact/contexts/impact-governance/proposal-governor/adapters/memory"
	governorpostgres "wishpact/contexts/impact-governance/proposal-governor/adapters/postgres"
	governorports "wishpact/contexts/impact-governance/proposal-governor/ports"
	verificationservice "wishpact/contexts/wish-verification/verification-service"
	verificationmemory "wishpact/contexts/wish-verification/verification-service/adapters/memory"
	verificationpostgres "wishpact/contexts/wish-verification/verification-service/adapters/postgres"
	"wishpact/contexts/wish-verification/verification-service/adapters/rewards"
	verificationports "wishpact/contexts/wish-verification/verification-service/ports"
	"wishpact/internal/platform/chainbridge"
	"wishpact/internal/platform/config"
	"wishpact/internal/platform/db"
	"wishpact/internal/platform/httpserver"
	"wishpact/internal/platform/messaging"
	"wishpact/internal/platform/monitoring"
	"wishpact/internal/platform/notify"
	"wishpact/internal/platform/sanitize"
	"wishpact/internal/shared/outbox"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Runtime holds the wired contexts and the infrastructure they share.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Database *db.Database
	Redis    *redis.Client
	Registry *prometheus.Registry
	Bus      *messaging.Bus
	Outbox   outbox.Store
	Monitor  *monitoring.Monitor
	Modules  httpserver.Modules
}

type repositories struct {
	wishes      verificationports.WishRepository
	wishClock   verificationports.Clock
	wishIDs     verificationports.IDGenerator
	ledger      treasuryports.Repository
	ledgerClock treasuryports.Clock
	ledgerIDs   treasuryports.IDGenerator
	proposals   governorports.Repository
	govClock    governorports.Clock
	govIDs      governorports.IDGenerator
	snapshots   rankingports.SnapshotReader
	outbox      outbox.Store
}

func NewLogger(cfg config.Config, process string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler).With("service", cfg.ServiceName, "process", process)
}

// NewRuntime opens the configured store, migrates it when it is SQL backed
// and wires every context against it.
func NewRuntime(ctx context.Context, cfg config.Config, process string) (*Runtime, error) {
	logger := NewLogger(cfg, process)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Bus:      messaging.NewBus(messaging.NewMetrics(registry), logger),
		Monitor:  monitoring.New(registry, logger),
	}

	repos, err := rt.openStores(ctx)
	if err != nil {
		return nil, err
	}
	rt.Outbox = repos.outbox

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client, err := messaging.NewRedisClient(addr)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.Redis = client
	}

	var notifier verificationports.Notifier = notify.LogNotifier{Logger: logger}
	if rt.Redis != nil {
		notifier = notify.NewRedisNotifier(rt.Redis)
	}

	var relay chainbridge.Submitter = chainbridge.Noop{}
	if url := strings.TrimSpace(cfg.ChainBridgeURL); url != "" {
		relay = chainbridge.NewClient(url, chainbridge.WithAttempts(cfg.ChainBridgeAttempts))
	}
	sanitizer := sanitize.NewStrict()

	treasury := impacttreasury.NewModule(impacttreasury.Dependencies{
		Repository:  repos.ledger,
		Proposals:   proposalCounter{proposals: repos.proposals},
		Outbox:      repos.outbox,
		Clock:       repos.ledgerClock,
		IDGenerator: repos.ledgerIDs,
		Logger:      logger,
	})
	governor := proposalgovernor.NewModule(proposalgovernor.Dependencies{
		Repository:          repos.proposals,
		Treasury:            governorTreasury{treasury: treasury.Service},
		Chain:               governorchain.Bridge{Relay: relay},
		Sanitizer:           sanitizer,
		Outbox:              repos.outbox,
		Clock:               repos.govClock,
		IDGenerator:         repos.govIDs,
		Quorum:              cfg.ProposalQuorum,
		VotingPeriod:        cfg.ProposalVotingPeriod,
		ExternalCallTimeout: cfg.ExternalCallTimeout,
		ExpiryBatchSize:     cfg.ReconcileBatchSize,
		Logger:              logger,
	})
	verification := verificationservice.NewModule(verificationservice.Dependencies{
		Repository:          repos.wishes,
		Treasury:            treasuryCreditor{treasury: treasury.Service},
		Rewards:             rewards.Distributor{Relay: relay},
		Notifier:            notifier,
		Monitor:             rt.Monitor,
		Sanitizer:           sanitizer,
		Outbox:              repos.outbox,
		Clock:               repos.wishClock,
		IDGenerator:         repos.wishIDs,
		Quorum:              cfg.VerificationQuorum,
		ExternalCallTimeout: cfg.ExternalCallTimeout,
		ReconcileBatchSize:  cfg.ReconcileBatchSize,
		Logger:              logger,
	})
	ranking := rankingservice.NewModule(rankingservice.Dependencies{
		Snapshots: repos.snapshots,
		Logger:    logger,
	})

	rt.Modules = httpserver.Modules{
		Verification: verification,
		Treasury:     treasury,
		Governor:     governor,
		Ranking:      ranking,
	}
	logger.Info("runtime wired",
		"event", "bootstrap_runtime_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"store_driver", cfg.StoreDriver,
		"redis", rt.Redis != nil,
		"chain_bridge", strings.TrimSpace(cfg.ChainBridgeURL) != "",
	)
	return rt, nil
}

func (rt *Runtime) openStores(ctx context.Context) (repositories, error) {
	switch rt.Config.StoreDriver {
	case config.StoreMemory:
		wishes := verificationmemory.NewStore(nil)
		ledger := treasurymemory.NewStore()
		proposals := governormemory.NewStore()
		return repositories{
			wishes:      wishes,
			wishClock:   wishes,
			wishIDs:     wishes,
			ledger:      ledger,
			ledgerClock: ledger,
			ledgerIDs:   ledger,
			proposals:   proposals,
			govClock:    proposals,
			govIDs:      proposals,
			snapshots:   wishSnapshot{wishes: wishes},
			outbox:      outbox.NewMemoryStore(),
		}, nil
	case config.StoreSQLite, config.StorePostgres:
		database, err := rt.openDatabase()
		if err != nil {
			return repositories{}, err
		}
		rt.Database = database

		models := append([]any{}, verificationpostgres.Models()...)
		models = append(models, treasurypostgres.Models()...)
		models = append(models, governorpostgres.Models()...)
		models = append(models, outbox.Models()...)
		if err := database.Migrate(ctx, models...); err != nil {
			_ = database.Close()
			return repositories{}, err
		}

		return repositories{
			wishes:      verificationpostgres.NewRepository(database.DB, rt.Logger),
			wishClock:   verificationpostgres.SystemClock{},
			wishIDs:     verificationpostgres.UUIDGenerator{},
			ledger:      treasurypostgres.NewRepository(database.DB, rt.Logger),
			ledgerClock: treasurypostgres.SystemClock{},
			ledgerIDs:   treasurypostgres.UUIDGenerator{},
			proposals:   governorpostgres.NewRepository(database.DB, rt.Logger),
			govClock:    governorpostgres.SystemClock{},
			govIDs:      governorpostgres.UUIDGenerator{},
			snapshots:   rankingpostgres.NewSnapshotReader(database.DB, rt.Logger),
			outbox:      outbox.NewGormStore(database.DB, rt.Logger),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown store driver %q", rt.Config.StoreDriver)
	}
}

func (rt *Runtime) openDatabase() (*db.Database, error) {
	if rt.Config.StoreDriver == config.StoreSQLite {
		return db.OpenSQLite(rt.Config.SQLitePath)
	}
	return db.Connect(rt.Config.PostgresDSN)
}

// Publisher is where the outbox relay of this process delivers events. With
// Redis configured events go to Redis and every API process bridges them
// into its local bus.
func (rt *Runtime) Publisher() messaging.Publisher {
	if rt.Redis != nil {
		return messaging.NewRedisPublisher(rt.Redis)
	}
	return rt.Bus
}

func (rt *Runtime) Relay() outbox.Relay {
	return outbox.Relay{
		Store:     rt.Outbox,
		Publisher: rt.Publisher(),
		BatchSize: rt.Config.ReconcileBatchSize,
		Logger:    rt.Logger,
	}
}

func (rt *Runtime) Close() error {
	var err error
	if rt.Redis != nil {
		err = rt.Redis.Close()
	}
	if rt.Database != nil {
		if closeErr := rt.Database.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
