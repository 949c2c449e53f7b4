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

// DeductBudgetUseCase is the settlement collaborator's only write path into
// campaign escrow. It enforces the daily spend cap and auto-completes the
// campaign when the budget reaches zero.
type DeductBudgetUseCase struct {
	Campaigns         ports.CampaignRepository
	Treasury          ports.Treasury
	Clock             ports.ChainClock
	Outbox            ports.OutboxWriter
	IDGen             ports.IDGenerator
	Guard             *reentrancy.Guard
	EscrowAccount     string
	SettlementAccount string
	Logger            *slog.Logger
}

func (uc DeductBudgetUseCase) Execute(ctx context.Context, caller string, campaignID uint64, amount uint64) error {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(caller) != uc.SettlementAccount {
		return domainerrors.ErrUnauthorizedCaller
	}
	if err := uc.Guard.Enter(); err != nil {
		return err
	}
	defer uc.Guard.Exit()
	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != entities.CampaignStatusActive {
		return domainerrors.ErrInvalidStateTransition
	}
	if amount > campaign.RemainingPlanck {
		return domainerrors.ErrInsufficientBudget
	}

	day := entities.DayIndex(uc.Clock.Now())
	if day != campaign.LastSpendDay {
		campaign.DailySpentPlanck = 0
		campaign.LastSpendDay = day
	}
	if amount > campaign.DailyCapPlanck-campaign.DailySpentPlanck {
		return domainerrors.ErrDailyCapExceeded
	}

	campaign.DailySpentPlanck += amount
	campaign.RemainingPlanck -= amount
	eventType := "campaign.budget_deducted"
	if campaign.RemainingPlanck == 0 {
		campaign.Status = entities.CampaignStatusCompleted
		eventType = "campaign.completed"
	}
	if err := uc.saveDeduction(ctx, campaign, eventType, amount); err != nil {
		return err
	}
	if amount > 0 {
		if err := uc.Treasury.Transfer(ctx, uc.EscrowAccount, uc.SettlementAccount, amount); err != nil {
			return err
		}
	}

	logger.Info("campaign budget deducted",
		"event", "ledger_budget_deducted",
		"module", "protocol-core/campaign-ledger",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"amount_planck", amount,
		"remaining_planck", campaign.RemainingPlanck,
	)
	return nil
}

func (uc DeductBudgetUseCase) saveDeduction(
	ctx context.Context,
	campaign entities.Campaign,
	eventType string,
	amount uint64,
) error {
	now := uc.Clock.Now().UTC()
	campaign.UpdatedAt = now
	if err := uc.Campaigns.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, eventType, campaign.CampaignID, now, map[string]any{
		"campaign_id":        campaign.CampaignID,
		"amount_planck":      amount,
		"remaining_planck":   campaign.RemainingPlanck,
		"daily_spent_planck": campaign.DailySpentPlanck,
		"spend_day":          campaign.LastSpendDay,
		"status":             string(campaign.Status),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
