package publisherdirectory

import (
	"log/slog"

	httpadapter "admesh/contexts/protocol-core/publisher-directory/adapters/http"
	"admesh/contexts/protocol-core/publisher-directory/adapters/memory"
	"admesh/contexts/protocol-core/publisher-directory/application"
	"admesh/contexts/protocol-core/publisher-directory/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository            ports.Repository
	Clock                 ports.ChainClock
	RateUpdateDelayBlocks uint64
	Logger                *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:                  deps.Repository,
		Clock:                 deps.Clock,
		RateUpdateDelayBlocks: deps.RateUpdateDelayBlocks,
		Logger:                deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(seed []ports.Publisher, clock ports.ChainClock, rateUpdateDelayBlocks uint64, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repository:            store,
		Clock:                 clock,
		RateUpdateDelayBlocks: rateUpdateDelayBlocks,
		Logger:                logger,
	})
	module.Store = store
	return module
}
