package workers

import (
	"context"
	"errors"
	"log/slog"

	application "admesh/contexts/protocol-core/campaign-ledger/application"
	"admesh/contexts/protocol-core/campaign-ledger/application/commands"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
	"admesh/internal/shared/reentrancy"
)

// ExpirySweeper expires pending campaigns whose deadline block has passed.
// The Expire entry point stays public; the sweeper just saves interested
// parties from having to call it themselves.
type ExpirySweeper struct {
	Campaigns ports.CampaignRepository
	Lifecycle commands.LifecycleUseCase
	Clock     ports.ChainClock
	BatchSize int
	Logger    *slog.Logger
}

func (j ExpirySweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	due, err := j.Campaigns.ListExpirablePending(ctx, j.Clock.BlockNumber(), limit)
	if err != nil {
		logger.Error("expiry sweep listing failed",
			"event", "ledger_expiry_sweep_failed",
			"module", "protocol-core/campaign-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	expired := 0
	for _, campaign := range due {
		if err := j.Lifecycle.Expire(ctx, campaign.CampaignID); err != nil {
			// An in-flight escrow call wins the guard; the campaign stays
			// due and the next tick retries.
			if errors.Is(err, reentrancy.ErrReentrantCall) {
				return nil
			}
			logger.Error("expiry sweep expire failed",
				"event", "ledger_expiry_sweep_expire_failed",
				"module", "protocol-core/campaign-ledger",
				"layer", "worker",
				"campaign_id", campaign.CampaignID,
				"error", err.Error(),
			)
			return err
		}
		expired++
	}
	if expired > 0 {
		logger.Info("expiry sweep completed",
			"event", "ledger_expiry_sweep_completed",
			"module", "protocol-core/campaign-ledger",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
