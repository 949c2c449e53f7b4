package campaignledger

import (
	"log/slog"

	httpadapter "admesh/contexts/protocol-core/campaign-ledger/adapters/http"
	"admesh/contexts/protocol-core/campaign-ledger/adapters/memory"
	"admesh/contexts/protocol-core/campaign-ledger/application/commands"
	"admesh/contexts/protocol-core/campaign-ledger/application/queries"
	"admesh/contexts/protocol-core/campaign-ledger/application/workers"
	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
	"admesh/internal/shared/reentrancy"
)

type Module struct {
	Handler       httpadapter.Handler
	Lifecycle     commands.LifecycleUseCase
	DeductBudget  commands.DeductBudgetUseCase
	ExpirySweeper workers.ExpirySweeper
	OutboxRelay   workers.OutboxRelay
	Store         *memory.Store
}

type Config struct {
	EscrowAccount       string
	GovernanceAccount   string
	SettlementAccount   string
	MinBidCpmPlanck     uint64
	PendingExpiryBlocks uint64
}

type Dependencies struct {
	Campaigns   ports.CampaignRepository
	Directory   ports.PublisherDirectory
	Treasury    ports.Treasury
	Clock       ports.ChainClock
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	IDGenerator ports.IDGenerator
	Config      Config
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	// One guard across every escrow-moving use case in the module.
	guard := &reentrancy.Guard{}
	createCampaign := commands.CreateCampaignUseCase{
		Campaigns:           deps.Campaigns,
		Directory:           deps.Directory,
		Treasury:            deps.Treasury,
		Clock:               deps.Clock,
		Outbox:              deps.Outbox,
		IDGen:               deps.IDGenerator,
		Guard:               guard,
		EscrowAccount:       deps.Config.EscrowAccount,
		MinBidCpmPlanck:     deps.Config.MinBidCpmPlanck,
		PendingExpiryBlocks: deps.Config.PendingExpiryBlocks,
		Logger:              deps.Logger,
	}
	lifecycle := commands.LifecycleUseCase{
		Campaigns:         deps.Campaigns,
		Treasury:          deps.Treasury,
		Clock:             deps.Clock,
		Outbox:            deps.Outbox,
		IDGen:             deps.IDGenerator,
		Guard:             guard,
		EscrowAccount:     deps.Config.EscrowAccount,
		GovernanceAccount: deps.Config.GovernanceAccount,
		SettlementAccount: deps.Config.SettlementAccount,
		Logger:            deps.Logger,
	}
	deductBudget := commands.DeductBudgetUseCase{
		Campaigns:         deps.Campaigns,
		Treasury:          deps.Treasury,
		Clock:             deps.Clock,
		Outbox:            deps.Outbox,
		IDGen:             deps.IDGenerator,
		Guard:             guard,
		EscrowAccount:     deps.Config.EscrowAccount,
		SettlementAccount: deps.Config.SettlementAccount,
		Logger:            deps.Logger,
	}

	getCampaign := queries.GetCampaignUseCase{
		Campaigns: deps.Campaigns,
		Logger:    deps.Logger,
	}
	listCampaigns := queries.ListCampaignsUseCase{
		Campaigns: deps.Campaigns,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateCampaign: createCampaign,
			Lifecycle:      lifecycle,
			DeductBudget:   deductBudget,
			GetCampaign:    getCampaign,
			ListCampaigns:  listCampaigns,
			Logger:         deps.Logger,
		},
		Lifecycle:    lifecycle,
		DeductBudget: deductBudget,
		ExpirySweeper: workers.ExpirySweeper{
			Campaigns: deps.Campaigns,
			Lifecycle: lifecycle,
			Clock:     deps.Clock,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(
	seed []entities.Campaign,
	directory ports.PublisherDirectory,
	treasury ports.Treasury,
	clock ports.ChainClock,
	publisher ports.EventPublisher,
	cfg Config,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Campaigns:   store,
		Directory:   directory,
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
