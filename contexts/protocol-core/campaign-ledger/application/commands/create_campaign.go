package commands

import (
	"context"
	"log/slog"
	"strings"

	application "admesh/contexts/protocol-core/campaign-ledger/application"
	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	domainerrors "admesh/contexts/protocol-core/campaign-ledger/domain/errors"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
	"admesh/internal/shared/reentrancy"
)

// CreateCampaignCommand is the write-model input for campaign creation. The
// full budget is escrowed from the advertiser account in the same call.
type CreateCampaignCommand struct {
	Advertiser      string
	Publisher       string
	DailyCapPlanck  uint64
	MaxBidCpmPlanck uint64
	BudgetPlanck    uint64
}

type CreateCampaignUseCase struct {
	Campaigns           ports.CampaignRepository
	Directory           ports.PublisherDirectory
	Treasury            ports.Treasury
	Clock               ports.ChainClock
	Outbox              ports.OutboxWriter
	IDGen               ports.IDGenerator
	Guard               *reentrancy.Guard
	EscrowAccount       string
	MinBidCpmPlanck     uint64
	PendingExpiryBlocks uint64
	Logger              *slog.Logger
}

// Execute escrows the budget, snapshots the publisher take-rate, and creates
// the campaign in Pending status. Any precondition failure aborts the call
// with no state change.
func (uc CreateCampaignUseCase) Execute(ctx context.Context, cmd CreateCampaignCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	advertiser := strings.TrimSpace(cmd.Advertiser)
	publisher := strings.TrimSpace(cmd.Publisher)
	if advertiser == "" || publisher == "" {
		return entities.Campaign{}, domainerrors.ErrInvalidCampaignInput
	}
	if !entities.ValidateCreate(cmd.BudgetPlanck, cmd.DailyCapPlanck, cmd.MaxBidCpmPlanck, uc.MinBidCpmPlanck) {
		return entities.Campaign{}, domainerrors.ErrInvalidCampaignInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return entities.Campaign{}, err
	}
	defer uc.Guard.Exit()

	record, err := uc.Directory.GetPublisher(ctx, publisher)
	if err != nil {
		return entities.Campaign{}, err
	}
	if !record.Registered {
		return entities.Campaign{}, domainerrors.ErrPublisherNotRegistered
	}

	// Escrow before the record exists: a failed transfer leaves no trace.
	if err := uc.Treasury.Transfer(ctx, advertiser, uc.EscrowAccount, cmd.BudgetPlanck); err != nil {
		return entities.Campaign{}, err
	}

	campaignID, err := uc.Campaigns.NextCampaignID(ctx)
	if err != nil {
		return entities.Campaign{}, err
	}
	now := uc.Clock.Now().UTC()
	block := uc.Clock.BlockNumber()
	campaign := entities.Campaign{
		CampaignID:          campaignID,
		Advertiser:          advertiser,
		Publisher:           publisher,
		BudgetPlanck:        cmd.BudgetPlanck,
		RemainingPlanck:     cmd.BudgetPlanck,
		DailyCapPlanck:      cmd.DailyCapPlanck,
		MaxBidCpmPlanck:     cmd.MaxBidCpmPlanck,
		DailySpentPlanck:    0,
		LastSpendDay:        entities.DayIndex(now),
		PendingExpiryBlock:  block + uc.PendingExpiryBlocks,
		TerminationBlock:    0,
		SnapshotTakeRateBps: record.TakeRateBps,
		Status:              entities.CampaignStatusPending,
		SchemaVersion:       entities.CampaignSchemaVersion,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.Campaigns.CreateCampaign(ctx, campaign); err != nil {
		return entities.Campaign{}, err
	}

	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Campaign{}, err
		}
		envelope, err := newLedgerEnvelope(eventID, "campaign.created", campaign.CampaignID, now, map[string]any{
			"campaign_id":            campaign.CampaignID,
			"advertiser":             campaign.Advertiser,
			"publisher":              campaign.Publisher,
			"budget_planck":          campaign.BudgetPlanck,
			"daily_cap_planck":       campaign.DailyCapPlanck,
			"max_bid_cpm_planck":     campaign.MaxBidCpmPlanck,
			"snapshot_take_rate_bps": campaign.SnapshotTakeRateBps,
			"pending_expiry_block":   campaign.PendingExpiryBlock,
		})
		if err != nil {
			return entities.Campaign{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.Campaign{}, err
		}
	}

	logger.Info("campaign created",
		"event", "ledger_campaign_created",
		"module", "protocol-core/campaign-ledger",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"advertiser", campaign.Advertiser,
		"publisher", campaign.Publisher,
		"budget_planck", campaign.BudgetPlanck,
	)
	return campaign, nil
}
