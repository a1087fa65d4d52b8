package verificationservice

import (
	"log/slog"
	"time"

	httpadapter "wishpact/contexts/wish-verification/verification-service/adapters/http"
	"wishpact/contexts/wish-verification/verification-service/adapters/memory"
	"wishpact/contexts/wish-verification/verification-service/application/commands"
	"wishpact/contexts/wish-verification/verification-service/application/queries"
	"wishpact/contexts/wish-verification/verification-service/application/workers"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contexts/wish-verification/verification-service/ports"
)

type Module struct {
	Handler            httpadapter.Handler
	Store              *memory.Store
	Wishes             commands.WishUseCase
	Votes              commands.VoteUseCase
	Resolution         commands.ResolutionUseCase
	Status             queries.VerificationStatusUseCase
	DeadlineReconciler workers.DeadlineReconciler
	TreasuryReconciler workers.TreasuryReconciler
}

type Dependencies struct {
	Repository          ports.WishRepository
	Treasury            ports.TreasuryCreditor
	Rewards             ports.RewardDistributor
	Notifier            ports.Notifier
	Monitor             ports.Monitor
	Sanitizer           ports.Sanitizer
	Outbox              ports.OutboxWriter
	Clock               ports.Clock
	IDGenerator         ports.IDGenerator
	Quorum              int
	ExternalCallTimeout time.Duration
	ReconcileBatchSize  int
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	status := queries.VerificationStatusUseCase{
		Wishes: deps.Repository,
		Clock:  deps.Clock,
		Quorum: deps.Quorum,
		Logger: deps.Logger,
	}
	resolution := commands.ResolutionUseCase{
		Wishes:              deps.Repository,
		Status:              status,
		Treasury:            deps.Treasury,
		Rewards:             deps.Rewards,
		Outbox:              deps.Outbox,
		Monitor:             deps.Monitor,
		Notifier:            deps.Notifier,
		Clock:               deps.Clock,
		IDGen:               deps.IDGenerator,
		ExternalCallTimeout: deps.ExternalCallTimeout,
		Logger:              deps.Logger,
	}
	wishes := commands.WishUseCase{
		Wishes:              deps.Repository,
		Sanitizer:           deps.Sanitizer,
		Outbox:              deps.Outbox,
		Monitor:             deps.Monitor,
		Notifier:            deps.Notifier,
		Clock:               deps.Clock,
		IDGen:               deps.IDGenerator,
		ExternalCallTimeout: deps.ExternalCallTimeout,
		Logger:              deps.Logger,
	}
	votes := commands.VoteUseCase{
		Wishes:              deps.Repository,
		Resolver:            resolution,
		Outbox:              deps.Outbox,
		Monitor:             deps.Monitor,
		Notifier:            deps.Notifier,
		Clock:               deps.Clock,
		IDGen:               deps.IDGenerator,
		ExternalCallTimeout: deps.ExternalCallTimeout,
		Logger:              deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Wishes:     wishes,
			Votes:      votes,
			Resolution: resolution,
			Status:     status,
			Logger:     deps.Logger,
		},
		Wishes:     wishes,
		Votes:      votes,
		Resolution: resolution,
		Status:     status,
		DeadlineReconciler: workers.DeadlineReconciler{
			Wishes:    deps.Repository,
			Resolver:  resolution,
			Clock:     deps.Clock,
			BatchSize: deps.ReconcileBatchSize,
			Logger:    deps.Logger,
		},
		TreasuryReconciler: workers.TreasuryReconciler{
			Wishes:    deps.Repository,
			Resolver:  resolution,
			BatchSize: deps.ReconcileBatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-process store. Treasury,
// rewards and outbox are left unset.
func NewInMemoryModule(seed []entities.Wish, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
