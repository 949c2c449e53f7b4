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

// LifecycleUseCase drives every campaign status transition after creation.
// Activate and Terminate are reserved for the governance collaborator;
// Pause/Resume are advertiser-only; Complete accepts the advertiser or the
// settlement collaborator; Expire is callable by anyone once due. The
// escrow-refunding transitions share the module guard with creation and
// budget deduction, so no two escrow movements can overlap.
type LifecycleUseCase struct {
	Campaigns         ports.CampaignRepository
	Treasury          ports.Treasury
	Clock             ports.ChainClock
	Outbox            ports.OutboxWriter
	IDGen             ports.IDGenerator
	Guard             *reentrancy.Guard
	EscrowAccount     string
	GovernanceAccount string
	SettlementAccount string
	Logger            *slog.Logger
}

func (uc LifecycleUseCase) Activate(ctx context.Context, caller string, campaignID uint64) error {
	if strings.TrimSpace(caller) != uc.GovernanceAccount {
		return domainerrors.ErrUnauthorizedCaller
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != entities.CampaignStatusPending {
		return domainerrors.ErrInvalidStateTransition
	}
	campaign.Status = entities.CampaignStatusActive
	return uc.saveAndEmit(ctx, campaign, "campaign.activated", nil)
}

func (uc LifecycleUseCase) Pause(ctx context.Context, caller string, campaignID uint64) error {
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(caller) != campaign.Advertiser {
		return domainerrors.ErrUnauthorizedCaller
	}
	if campaign.Status != entities.CampaignStatusActive {
		return domainerrors.ErrInvalidStateTransition
	}
	campaign.Status = entities.CampaignStatusPaused
	return uc.saveAndEmit(ctx, campaign, "campaign.paused", nil)
}

func (uc LifecycleUseCase) Resume(ctx context.Context, caller string, campaignID uint64) error {
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(caller) != campaign.Advertiser {
		return domainerrors.ErrUnauthorizedCaller
	}
	if campaign.Status != entities.CampaignStatusPaused {
		return domainerrors.ErrInvalidStateTransition
	}
	campaign.Status = entities.CampaignStatusActive
	return uc.saveAndEmit(ctx, campaign, "campaign.resumed", nil)
}

// Complete finalizes a running campaign and refunds the remaining escrow to
// the advertiser.
func (uc LifecycleUseCase) Complete(ctx context.Context, caller string, campaignID uint64) error {
	if err := uc.Guard.Enter(); err != nil {
		return err
	}
	defer uc.Guard.Exit()
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	caller = strings.TrimSpace(caller)
	if caller != campaign.Advertiser && caller != uc.SettlementAccount {
		return domainerrors.ErrUnauthorizedCaller
	}
	if !campaign.CanComplete() {
		return domainerrors.ErrInvalidStateTransition
	}

	refund := campaign.RemainingPlanck
	campaign.RemainingPlanck = 0
	campaign.Status = entities.CampaignStatusCompleted
	if err := uc.saveAndEmit(ctx, campaign, "campaign.completed", map[string]any{
		"refund_planck": refund,
	}); err != nil {
		return err
	}
	if refund > 0 {
		return uc.Treasury.Transfer(ctx, uc.EscrowAccount, campaign.Advertiser, refund)
	}
	return nil
}

// Terminate zeroes the remaining budget and forwards it to governance
// custody for slashing. It returns the forwarded amount so the caller can
// capture the slash pool at this instant.
func (uc LifecycleUseCase) Terminate(ctx context.Context, caller string, campaignID uint64) (uint64, error) {
	if strings.TrimSpace(caller) != uc.GovernanceAccount {
		return 0, domainerrors.ErrUnauthorizedCaller
	}
	if err := uc.Guard.Enter(); err != nil {
		return 0, err
	}
	defer uc.Guard.Exit()
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if !campaign.CanTerminate() {
		return 0, domainerrors.ErrInvalidStateTransition
	}

	slashed := campaign.RemainingPlanck
	campaign.RemainingPlanck = 0
	campaign.TerminationBlock = uc.Clock.BlockNumber()
	campaign.Status = entities.CampaignStatusTerminated
	if err := uc.saveAndEmit(ctx, campaign, "campaign.terminated", map[string]any{
		"slashed_planck":    slashed,
		"termination_block": campaign.TerminationBlock,
	}); err != nil {
		return 0, err
	}
	if slashed > 0 {
		if err := uc.Treasury.Transfer(ctx, uc.EscrowAccount, uc.GovernanceAccount, slashed); err != nil {
			return 0, err
		}
	}
	return slashed, nil
}

// Expire refunds a campaign that never left Pending before its deadline.
// Callable by anyone.
func (uc LifecycleUseCase) Expire(ctx context.Context, campaignID uint64) error {
	if err := uc.Guard.Enter(); err != nil {
		return err
	}
	defer uc.Guard.Exit()
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != entities.CampaignStatusPending {
		return domainerrors.ErrInvalidStateTransition
	}
	if !campaign.PendingExpired(uc.Clock.BlockNumber()) {
		return domainerrors.ErrExpiryDeadlineNotDue
	}

	refund := campaign.RemainingPlanck
	campaign.RemainingPlanck = 0
	campaign.Status = entities.CampaignStatusExpired
	if err := uc.saveAndEmit(ctx, campaign, "campaign.expired", map[string]any{
		"refund_planck": refund,
	}); err != nil {
		return err
	}
	if refund > 0 {
		return uc.Treasury.Transfer(ctx, uc.EscrowAccount, campaign.Advertiser, refund)
	}
	return nil
}

func (uc LifecycleUseCase) saveAndEmit(
	ctx context.Context,
	campaign entities.Campaign,
	eventType string,
	extra map[string]any,
) error {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()
	campaign.UpdatedAt = now
	if err := uc.Campaigns.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}

	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		data := map[string]any{
			"campaign_id":      campaign.CampaignID,
			"status":           string(campaign.Status),
			"remaining_planck": campaign.RemainingPlanck,
		}
		for key, value := range extra {
			data[key] = value
		}
		envelope, err := newLedgerEnvelope(eventID, eventType, campaign.CampaignID, now, data)
		if err != nil {
			return err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
	}

	logger.Info("campaign status changed",
		"event", "ledger_campaign_status_changed",
		"module", "protocol-core/campaign-ledger",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"to_status", string(campaign.Status),
	)
	return nil
}
