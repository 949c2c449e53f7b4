package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "admesh/contexts/protocol-core/claim-settlement/application"
	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
	domainerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	"admesh/contexts/protocol-core/claim-settlement/domain/services"
	"admesh/contexts/protocol-core/claim-settlement/ports"
	"admesh/internal/shared/reentrancy"
)

// SettleResult sums the per-batch outcomes of one settlement call.
// SettledCount + RejectedCount always equals the number of claims submitted
// across all batches.
type SettleResult struct {
	SettledCount  int
	RejectedCount int
	Rejected      []entities.RejectedClaim
}

// SettleClaimsUseCase runs the ordered per-batch validation pipeline.
// Structural failures (wrong caller, oversized batch) abort the whole call;
// per-claim failures are recorded with a reason code and processing
// continues, subject to the stop-on-first-gap rule. One user's gap never
// affects another user's batch.
type SettleClaimsUseCase struct {
	ChainStates       ports.ChainStateRepository
	Balances          ports.BalanceRepository
	Records           ports.SettlementRecordRepository
	Campaigns         ports.CampaignGateway
	Clock             ports.ChainClock
	Outbox            ports.OutboxWriter
	IDGen             ports.IDGenerator
	Guard             *reentrancy.Guard
	ProtocolAccount   string
	MaxClaimsPerBatch int
	Logger            *slog.Logger
}

func (uc SettleClaimsUseCase) Execute(ctx context.Context, caller string, batches []entities.ClaimBatch) (SettleResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller = strings.TrimSpace(caller)
	if caller == "" || len(batches) == 0 {
		return SettleResult{}, domainerrors.ErrInvalidBatchInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return SettleResult{}, err
	}
	defer uc.Guard.Exit()
	for _, batch := range batches {
		if strings.TrimSpace(batch.User) != caller {
			return SettleResult{}, domainerrors.ErrUnauthorizedCaller
		}
		if len(batch.Claims) == 0 {
			return SettleResult{}, domainerrors.ErrInvalidBatchInput
		}
		if uc.MaxClaimsPerBatch > 0 && len(batch.Claims) > uc.MaxClaimsPerBatch {
			return SettleResult{}, domainerrors.ErrBatchTooLarge
		}
	}

	var result SettleResult
	for _, batch := range batches {
		if err := uc.settleBatch(ctx, batch, &result); err != nil {
			return SettleResult{}, err
		}
	}

	logger.Info("settlement call completed",
		"event", "settlement_call_completed",
		"module", "protocol-core/claim-settlement",
		"layer", "application",
		"caller", caller,
		"batch_count", len(batches),
		"settled_count", result.SettledCount,
		"rejected_count", result.RejectedCount,
	)
	return result, nil
}

func (uc SettleClaimsUseCase) settleBatch(ctx context.Context, batch entities.ClaimBatch, result *SettleResult) error {
	state, _, err := uc.ChainStates.GetChainState(ctx, batch.User, batch.CampaignID)
	if err != nil {
		return err
	}
	state.User = batch.User
	state.CampaignID = batch.CampaignID

	gapSeen := false
	for index, claim := range batch.Claims {
		campaign, reason, ok, err := uc.validateClaim(ctx, batch, claim, state, gapSeen)
		if err != nil {
			return err
		}
		if ok {
			settled, err := uc.settleClaim(ctx, claim, campaign, &state)
			if err != nil {
				return err
			}
			if settled {
				result.SettledCount++
				continue
			}
			// The ledger refused the deduction (its own budget or daily-cap
			// rule); downgrade to a per-claim rejection, not a call abort.
			reason = entities.RejectInsufficientBudget
		}
		if reason == entities.RejectNonceGap {
			gapSeen = true
		}
		result.RejectedCount++
		result.Rejected = append(result.Rejected, entities.RejectedClaim{
			CampaignID: claim.CampaignID,
			User:       batch.User,
			Nonce:      claim.Nonce,
			Index:      index,
			Reason:     reason,
		})
		if err := uc.emit(ctx, "claim.rejected", batch.CampaignID, map[string]any{
			"campaign_id": batch.CampaignID,
			"user":        batch.User,
			"nonce":       claim.Nonce,
			"reason":      string(reason),
		}); err != nil {
			return err
		}
	}
	return nil
}

// validateClaim applies the ordered checks; order matters because the first
// failing check names the reject reason. A campaign-id mismatch neither
// latches the gap nor halts the rest of the batch; only a nonce gap does.
func (uc SettleClaimsUseCase) validateClaim(
	ctx context.Context,
	batch entities.ClaimBatch,
	claim entities.Claim,
	state entities.ChainState,
	gapSeen bool,
) (ports.CampaignView, entities.RejectReason, bool, error) {
	if claim.CampaignID != batch.CampaignID {
		return ports.CampaignView{}, entities.RejectCampaignMismatch, false, nil
	}
	if gapSeen {
		return ports.CampaignView{}, entities.RejectSubsequentToGap, false, nil
	}
	if claim.Impressions == 0 {
		return ports.CampaignView{}, entities.RejectZeroImpressions, false, nil
	}

	campaign, found, err := uc.Campaigns.GetCampaign(ctx, claim.CampaignID)
	if err != nil {
		return ports.CampaignView{}, "", false, err
	}
	if !found {
		return ports.CampaignView{}, entities.RejectCampaignNotFound, false, nil
	}
	if !campaign.IsActive() {
		return campaign, entities.RejectCampaignNotActive, false, nil
	}
	if claim.Publisher != campaign.Publisher {
		return campaign, entities.RejectPublisherMismatch, false, nil
	}
	if claim.ClearingCpmPlanck > campaign.MaxBidCpmPlanck {
		return campaign, entities.RejectCpmExceedsBid, false, nil
	}
	if claim.Nonce != state.LastNonce+1 {
		return campaign, entities.RejectNonceGap, false, nil
	}
	if claim.Nonce == 1 {
		if claim.PrevHash != entities.ZeroHash {
			return campaign, entities.RejectBadGenesisHash, false, nil
		}
	} else if claim.PrevHash != state.LastHash {
		return campaign, entities.RejectBadChainHash, false, nil
	}
	if entities.ComputeClaimHash(claim) != claim.Hash {
		return campaign, entities.RejectBadClaimHash, false, nil
	}
	// An overflowing payment can never fit any budget; rejecting here keeps
	// the wrapped product away from the ceiling comparison.
	total, ok := services.TotalPayment(claim.ClearingCpmPlanck, claim.Impressions)
	if !ok || total > campaign.RemainingPlanck {
		return campaign, entities.RejectInsufficientBudget, false, nil
	}
	return campaign, "", true, nil
}

// settleClaim deducts through the ledger, advances the chain head, and
// credits the three pull-payment balances using the campaign's immutable
// snapshot take-rate. Returns false when the ledger refused the deduction.
func (uc SettleClaimsUseCase) settleClaim(
	ctx context.Context,
	claim entities.Claim,
	campaign ports.CampaignView,
	state *entities.ChainState,
) (bool, error) {
	split, ok := services.ComputeSplit(claim.ClearingCpmPlanck, claim.Impressions, campaign.SnapshotTakeRateBps)
	if !ok {
		return false, nil
	}

	if err := uc.Campaigns.DeductBudget(ctx, claim.CampaignID, split.TotalPlanck); err != nil {
		if errors.Is(err, domainerrors.ErrBudgetUnavailable) {
			return false, nil
		}
		return false, err
	}

	state.LastNonce = claim.Nonce
	state.LastHash = claim.Hash
	if err := uc.ChainStates.PutChainState(ctx, *state); err != nil {
		return false, err
	}

	if err := uc.Balances.AddBalance(ctx, entities.BalancePublisher, claim.Publisher, split.PublisherSharePlanck); err != nil {
		return false, err
	}
	if err := uc.Balances.AddBalance(ctx, entities.BalanceUser, claim.User, split.UserSharePlanck); err != nil {
		return false, err
	}
	if err := uc.Balances.AddBalance(ctx, entities.BalanceProtocol, uc.ProtocolAccount, split.ProtocolSharePlanck); err != nil {
		return false, err
	}

	recordID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return false, err
	}
	record := entities.SettlementRecord{
		RecordID:             recordID,
		CampaignID:           claim.CampaignID,
		User:                 claim.User,
		Publisher:            claim.Publisher,
		Nonce:                claim.Nonce,
		Impressions:          claim.Impressions,
		ClearingCpmPlanck:    claim.ClearingCpmPlanck,
		TotalPlanck:          split.TotalPlanck,
		PublisherSharePlanck: split.PublisherSharePlanck,
		UserSharePlanck:      split.UserSharePlanck,
		ProtocolSharePlanck:  split.ProtocolSharePlanck,
		ClaimHash:            claim.Hash,
		SettledAtBlock:       uc.Clock.BlockNumber(),
		SettledAt:            uc.Clock.Now().UTC(),
	}
	if err := uc.Records.AppendRecord(ctx, record); err != nil {
		return false, err
	}

	if err := uc.emit(ctx, "claim.settled", claim.CampaignID, map[string]any{
		"record_id":              record.RecordID,
		"campaign_id":            claim.CampaignID,
		"user":                   claim.User,
		"publisher":              claim.Publisher,
		"nonce":                  claim.Nonce,
		"total_planck":           split.TotalPlanck,
		"publisher_share_planck": split.PublisherSharePlanck,
		"user_share_planck":      split.UserSharePlanck,
		"protocol_share_planck":  split.ProtocolSharePlanck,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (uc SettleClaimsUseCase) emit(ctx context.Context, eventType string, campaignID uint64, data map[string]any) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newSettlementEnvelope(eventID, eventType, campaignID, uc.Clock.Now(), data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
