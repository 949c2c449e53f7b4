package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	campaignledger "admesh/contexts/protocol-core/campaign-ledger"
	ledgerpostgres "admesh/contexts/protocol-core/campaign-ledger/adapters/postgres"
	ledgerworkers "admesh/contexts/protocol-core/campaign-ledger/application/workers"
	claimsettlement "admesh/contexts/protocol-core/claim-settlement"
	convictiongovernance "admesh/contexts/protocol-core/conviction-governance"
	publisherdirectory "admesh/contexts/protocol-core/publisher-directory"
	"admesh/internal/app/gateways"
	"admesh/internal/platform/chain"
	"admesh/internal/platform/config"
	"admesh/internal/platform/db"
	"admesh/internal/platform/httpserver"
	"admesh/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server        *httpserver.Server
	expirySweeper ledgerworkers.ExpirySweeper
	sweepInterval time.Duration
	postgres      *db.Postgres
	logger        *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  ledgerworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	node := chain.NewNode(logger)
	bus := messaging.NewBus(logger)

	directoryModule := publisherdirectory.NewInMemoryModule(
		nil,
		node,
		cfg.Protocol.RateUpdateDelayBlocks,
		logger,
	)

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	if err := ledgerRepo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	ledgerModule := campaignledger.NewModule(campaignledger.Dependencies{
		Campaigns:   ledgerRepo,
		Directory:   gateways.PublisherDirectoryGateway{Directory: directoryModule.Service},
		Treasury:    node,
		Clock:       node,
		Outbox:      ledgerRepo,
		Publisher:   bus,
		IDGenerator: ledgerpostgres.UUIDGenerator{},
		Config: campaignledger.Config{
			EscrowAccount:       cfg.Accounts.Escrow,
			GovernanceAccount:   cfg.Accounts.Governance,
			SettlementAccount:   cfg.Accounts.Settlement,
			MinBidCpmPlanck:     cfg.Protocol.MinBidCpmPlanck,
			PendingExpiryBlocks: cfg.Protocol.PendingExpiryBlocks,
		},
		Logger: logger,
	})

	governanceModule := convictiongovernance.NewInMemoryModule(
		gateways.GovernanceLedgerGateway{
			Campaigns:         ledgerModule.Handler.GetCampaign,
			Lifecycle:         ledgerModule.Lifecycle,
			GovernanceAccount: cfg.Accounts.Governance,
		},
		node,
		node,
		bus,
		convictiongovernance.Config{
			CustodyAccount:         cfg.Accounts.Governance,
			RewardsOperatorAccount: cfg.Accounts.RewardsOperator,
			BaseLockupBlocks:       cfg.Protocol.BaseLockupBlocks,
			MaxLockupBlocks:        cfg.Protocol.MaxLockupBlocks,
			ActivationThreshold:    cfg.Protocol.ActivationThreshold,
			TerminationThreshold:   cfg.Protocol.TerminationThreshold,
			MinReviewerStake:       cfg.Protocol.MinReviewerStake,
		},
		logger,
	)

	settlementModule := claimsettlement.NewInMemoryModule(
		gateways.SettlementLedgerGateway{
			Campaigns:         ledgerModule.Handler.GetCampaign,
			Deduct:            ledgerModule.DeductBudget,
			SettlementAccount: cfg.Accounts.Settlement,
		},
		node,
		node,
		bus,
		claimsettlement.Config{
			CustodyAccount:          cfg.Accounts.Settlement,
			ProtocolTreasuryAccount: cfg.Accounts.ProtocolTreasury,
			MaxClaimsPerBatch:       cfg.Protocol.MaxClaimsPerBatch,
		},
		logger,
	)

	server := httpserver.New(
		ledgerModule,
		governanceModule,
		settlementModule,
		directoryModule,
		node,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:        server,
		expirySweeper: ledgerModule.ExpirySweeper,
		sweepInterval: 5 * time.Second,
		postgres:      pg,
		logger:        logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: bus,
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	go a.runExpirySweeper(ctx)
	return a.server.Start()
}

// runExpirySweeper expires overdue pending campaigns on an interval. It
// lives in the API process because the in-process chain node holding the
// block counter is not shared across processes.
func (a *APIApp) runExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := a.expirySweeper.RunOnce(ctx); err != nil && a.logger != nil {
			a.logger.Error("expiry sweep failed",
				"event", "bootstrap_expiry_sweep_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
