package proposalgovernor

import (
	"log/slog"
	"time"

	httpadapter "wishpact/contexts/impact-governance/proposal-governor/adapters/http"
	"wishpact/contexts/impact-governance/proposal-governor/adapters/memory"
	"wishpact/contexts/impact-governance/proposal-governor/application/commands"
	"wishpact/contexts/impact-governance/proposal-governor/application/queries"
	"wishpact/contexts/impact-governance/proposal-governor/application/workers"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Store    *memory.Store
	Governor commands.GovernorUseCase
	Queries  queries.ProposalQueries
	Expiry   workers.ProposalExpiry
}

type Dependencies struct {
	Repository          ports.Repository
	Treasury            ports.Treasury
	Chain               ports.ChainBridge
	Sanitizer           ports.Sanitizer
	Outbox              ports.OutboxWriter
	Clock               ports.Clock
	IDGenerator         ports.IDGenerator
	Quorum              int
	VotingPeriod        time.Duration
	ExternalCallTimeout time.Duration
	ExpiryBatchSize     int
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	governor := commands.GovernorUseCase{
		Repo:                deps.Repository,
		Treasury:            deps.Treasury,
		Chain:               deps.Chain,
		Sanitizer:           deps.Sanitizer,
		Outbox:              deps.Outbox,
		Clock:               deps.Clock,
		IDGen:               deps.IDGenerator,
		Quorum:              deps.Quorum,
		VotingPeriod:        deps.VotingPeriod,
		ExternalCallTimeout: deps.ExternalCallTimeout,
		Logger:              deps.Logger,
	}
	proposalQueries := queries.ProposalQueries{
		Repo:   deps.Repository,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Governor: governor,
			Queries:  proposalQueries,
			Logger:   deps.Logger,
		},
		Governor: governor,
		Queries:  proposalQueries,
		Expiry: workers.ProposalExpiry{
			Governor:  governor,
			BatchSize: deps.ExpiryBatchSize,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(treasury ports.Treasury, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Treasury:    treasury,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
