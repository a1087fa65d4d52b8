package rankingservice

import (
	"log/slog"

	httpadapter "wishpact/contexts/community-experience/ranking-service/adapters/http"
	"wishpact/contexts/community-experience/ranking-service/adapters/memory"
	"wishpact/contexts/community-experience/ranking-service/application"
	"wishpact/contexts/community-experience/ranking-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Snapshots ports.SnapshotReader
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Snapshots: deps.Snapshots,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Snapshots: store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
