package claimsettlement

import (
	"log/slog"

	httpadapter "admesh/contexts/protocol-core/claim-settlement/adapters/http"
	"admesh/contexts/protocol-core/claim-settlement/adapters/memory"
	"admesh/contexts/protocol-core/claim-settlement/application/commands"
	"admesh/contexts/protocol-core/claim-settlement/application/queries"
	"admesh/contexts/protocol-core/claim-settlement/application/workers"
	"admesh/contexts/protocol-core/claim-settlement/ports"
	"admesh/internal/shared/reentrancy"
)

type Module struct {
	Handler      httpadapter.Handler
	SettleClaims commands.SettleClaimsUseCase
	Withdraw     commands.WithdrawUseCase
	OutboxRelay  workers.OutboxRelay
	Store        *memory.Store
}

type Config struct {
	CustodyAccount          string
	ProtocolTreasuryAccount string
	MaxClaimsPerBatch       int
}

type Dependencies struct {
	ChainStates ports.ChainStateRepository
	Balances    ports.BalanceRepository
	Records     ports.SettlementRecordRepository
	Campaigns   ports.CampaignGateway
	Treasury    ports.Treasury
	Clock       ports.ChainClock
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	IDGenerator ports.IDGenerator
	Config      Config
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	// One guard across settlement and withdrawal; the two paths share the
	// custody balances.
	guard := &reentrancy.Guard{}
	settleClaims := commands.SettleClaimsUseCase{
		ChainStates:       deps.ChainStates,
		Balances:          deps.Balances,
		Records:           deps.Records,
		Campaigns:         deps.Campaigns,
		Clock:             deps.Clock,
		Outbox:            deps.Outbox,
		IDGen:             deps.IDGenerator,
		Guard:             guard,
		ProtocolAccount:   deps.Config.ProtocolTreasuryAccount,
		MaxClaimsPerBatch: deps.Config.MaxClaimsPerBatch,
		Logger:            deps.Logger,
	}
	withdraw := commands.WithdrawUseCase{
		Balances:                deps.Balances,
		Treasury:                deps.Treasury,
		Clock:                   deps.Clock,
		Outbox:                  deps.Outbox,
		IDGen:                   deps.IDGenerator,
		Guard:                   guard,
		CustodyAccount:          deps.Config.CustodyAccount,
		ProtocolTreasuryAccount: deps.Config.ProtocolTreasuryAccount,
		Logger:                  deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			SettleClaims: settleClaims,
			Withdraw:     withdraw,
			GetChainState: queries.GetChainStateUseCase{
				ChainStates: deps.ChainStates,
				Logger:      deps.Logger,
			},
			GetBalances: queries.GetBalancesUseCase{
				Balances: deps.Balances,
				Logger:   deps.Logger,
			},
			ListRecords: queries.ListRecordsUseCase{
				Records: deps.Records,
				Logger:  deps.Logger,
			},
			Logger: deps.Logger,
		},
		SettleClaims: settleClaims,
		Withdraw:     withdraw,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(
	campaigns ports.CampaignGateway,
	treasury ports.Treasury,
	clock ports.ChainClock,
	publisher ports.EventPublisher,
	cfg Config,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		ChainStates: store,
		Balances:    store,
		Records:     store,
		Campaigns:   campaigns,
		Treasury:    treasury,
		Clock:       clock,
		Outbox:      store,
		Publisher:   publisher,
		IDGenerator: store,
		Config:      cfg,
		Logger:      logger,
	})
	module.Store = store
	return module
}
