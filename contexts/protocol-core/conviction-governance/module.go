package convictiongovernance

import (
	"log/slog"

	httpadapter "admesh/contexts/protocol-core/conviction-governance/adapters/http"
	"admesh/contexts/protocol-core/conviction-governance/adapters/memory"
	"admesh/contexts/protocol-core/conviction-governance/application/commands"
	"admesh/contexts/protocol-core/conviction-governance/application/queries"
	"admesh/contexts/protocol-core/conviction-governance/application/workers"
	"admesh/contexts/protocol-core/conviction-governance/ports"
	"admesh/internal/shared/reentrancy"
)

type Module struct {
	Handler     httpadapter.Handler
	Vote        commands.VoteUseCase
	Rewards     commands.RewardsUseCase
	OutboxRelay workers.OutboxRelay
	Store       *memory.Store
}

type Config struct {
	CustodyAccount         string
	RewardsOperatorAccount string
	BaseLockupBlocks       uint64
	MaxLockupBlocks        uint64
	ActivationThreshold    uint64
	TerminationThreshold   uint64
	MinReviewerStake       uint64
}

type Dependencies struct {
	Votes       ports.VoteRepository
	Tallies     ports.TallyRepository
	PullLedger  ports.PullLedgerRepository
	FailedNays  ports.FailedNayCounter
	Campaigns   ports.CampaignLifecycle
	Treasury    ports.Treasury
	Clock       ports.ChainClock
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	IDGenerator ports.IDGenerator
	Config      Config
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	// One guard across every stake- and reward-moving use case in the module.
	guard := &reentrancy.Guard{}
	vote := commands.VoteUseCase{
		Votes:                deps.Votes,
		Tallies:              deps.Tallies,
		FailedNays:           deps.FailedNays,
		Campaigns:            deps.Campaigns,
		Treasury:             deps.Treasury,
		Clock:                deps.Clock,
		Outbox:               deps.Outbox,
		IDGen:                deps.IDGenerator,
		Guard:                guard,
		CustodyAccount:       deps.Config.CustodyAccount,
		BaseLockupBlocks:     deps.Config.BaseLockupBlocks,
		MaxLockupBlocks:      deps.Config.MaxLockupBlocks,
		ActivationThreshold:  deps.Config.ActivationThreshold,
		TerminationThreshold: deps.Config.TerminationThreshold,
		MinReviewerStake:     deps.Config.MinReviewerStake,
		Logger:               deps.Logger,
	}
	rewards := commands.RewardsUseCase{
		Votes:                  deps.Votes,
		Tallies:                deps.Tallies,
		PullLedger:             deps.PullLedger,
		FailedNays:             deps.FailedNays,
		Campaigns:              deps.Campaigns,
		Treasury:               deps.Treasury,
		Clock:                  deps.Clock,
		Outbox:                 deps.Outbox,
		IDGen:                  deps.IDGenerator,
		Guard:                  guard,
		CustodyAccount:         deps.Config.CustodyAccount,
		RewardsOperatorAccount: deps.Config.RewardsOperatorAccount,
		Logger:                 deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Vote:    vote,
			Rewards: rewards,
			GetTally: queries.GetTallyUseCase{
				Tallies: deps.Tallies,
				Logger:  deps.Logger,
			},
			GetVote: queries.GetVoteUseCase{
				Votes:  deps.Votes,
				Logger: deps.Logger,
			},
			ListVotes: queries.ListVotesUseCase{
				Votes:  deps.Votes,
				Logger: deps.Logger,
			},
			GetClaimables: queries.GetClaimablesUseCase{
				PullLedger: deps.PullLedger,
				Logger:     deps.Logger,
			},
			FailedNayCount: queries.FailedNayCountUseCase{
				FailedNays: deps.FailedNays,
				Logger:     deps.Logger,
			},
			Logger: deps.Logger,
		},
		Vote:    vote,
		Rewards: rewards,
		OutboxRelay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(
	campaigns ports.CampaignLifecycle,
	treasury ports.Treasury,
	clock ports.ChainClock,
	publisher ports.EventPublisher,
	cfg Config,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:       store,
		Tallies:     store,
		PullLedger:  store,
		FailedNays:  store,
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
