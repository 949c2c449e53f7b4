package commands

import (
	"context"
	"log/slog"
	"math/bits"
	"strings"
	"time"

	application "admesh/contexts/protocol-core/conviction-governance/application"
	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	domainerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	"admesh/contexts/protocol-core/conviction-governance/ports"
	"admesh/internal/shared/reentrancy"
)

// RewardsUseCase owns the governance pull ledger: slash distribution, aye
// reward crediting, and the claim/withdraw operations that consume balances.
// Every funds-moving method zeroes state before transferring and refuses
// re-entrant invocation through the shared guard.
type RewardsUseCase struct {
	Votes                  ports.VoteRepository
	Tallies                ports.TallyRepository
	PullLedger             ports.PullLedgerRepository
	FailedNays             ports.FailedNayCounter
	Campaigns              ports.CampaignLifecycle
	Treasury               ports.Treasury
	Clock                  ports.ChainClock
	Outbox                 ports.OutboxWriter
	IDGen                  ports.IDGenerator
	Guard                  *reentrancy.Guard
	CustodyAccount         string
	RewardsOperatorAccount string
	Logger                 *slog.Logger
}

// DistributeSlashRewards credits each nay voter a proportional share of the
// slash pool: pool × weight / totalWeight with integer division, rounding
// dust left undistributed. The operation is not idempotent: invoking it a
// second time double-credits, so the operator must call it exactly once per
// terminated campaign.
func (uc RewardsUseCase) DistributeSlashRewards(ctx context.Context, campaignID uint64) error {
	logger := application.ResolveLogger(uc.Logger)
	tally, found, err := uc.Tallies.GetTally(ctx, campaignID)
	if err != nil {
		return err
	}
	if !found || !tally.Terminated {
		return domainerrors.ErrCampaignNotTerminated
	}

	votes, err := uc.Votes.ListVotesByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	var totalWeight uint64
	for _, vote := range votes {
		if vote.Direction == entities.VoteDirectionNay {
			totalWeight = entities.SaturatingAddWeight(totalWeight, vote.Weight())
		}
	}
	if totalWeight == 0 {
		return nil
	}

	distributed := uint64(0)
	for _, vote := range votes {
		if vote.Direction != entities.VoteDirectionNay {
			continue
		}
		weight := vote.Weight()
		if weight == 0 {
			continue
		}
		share := mulDiv(tally.SlashPoolPlanck, weight, totalWeight)
		if share == 0 {
			continue
		}
		entry, _, err := uc.PullLedger.GetEntry(ctx, campaignID, vote.Voter)
		if err != nil {
			return err
		}
		entry.CampaignID = campaignID
		entry.Voter = vote.Voter
		entry.ClaimableSlashPlanck += share
		if err := uc.PullLedger.PutEntry(ctx, entry); err != nil {
			return err
		}
		distributed += share
	}

	if err := uc.emit(ctx, "slash.distributed", campaignID, map[string]any{
		"campaign_id":         campaignID,
		"slash_pool_planck":   tally.SlashPoolPlanck,
		"distributed_planck":  distributed,
		"total_weight_planck": totalWeight,
	}); err != nil {
		return err
	}
	logger.Info("slash pool distributed",
		"event", "governance_slash_distributed",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", campaignID,
		"slash_pool_planck", tally.SlashPoolPlanck,
		"distributed_planck", distributed,
	)
	return nil
}

// CreditAyeReward books an off-chain-computed reward for an aye voter. The
// rewards operator funds the credit at submission time, so the custody
// account always covers the sum of claimable balances.
func (uc RewardsUseCase) CreditAyeReward(ctx context.Context, caller string, campaignID uint64, voter string, amount uint64) error {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(caller) != uc.RewardsOperatorAccount {
		return domainerrors.ErrUnauthorizedCaller
	}
	voter = strings.TrimSpace(voter)
	if voter == "" || amount == 0 {
		return domainerrors.ErrInvalidVoteInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return err
	}
	defer uc.Guard.Exit()

	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if !campaign.IsConcluded() {
		return domainerrors.ErrCampaignNotConcluded
	}

	vote, found, err := uc.Votes.GetVote(ctx, campaignID, voter)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrVoteNotFound
	}
	if vote.Direction != entities.VoteDirectionAye {
		return domainerrors.ErrAyeVoteRequired
	}

	if err := uc.Treasury.Transfer(ctx, caller, uc.CustodyAccount, amount); err != nil {
		return err
	}

	entry, _, err := uc.PullLedger.GetEntry(ctx, campaignID, voter)
	if err != nil {
		return err
	}
	entry.CampaignID = campaignID
	entry.Voter = voter
	entry.ClaimableAyePlanck += amount
	if err := uc.PullLedger.PutEntry(ctx, entry); err != nil {
		return err
	}

	if err := uc.emit(ctx, "reward.credited", campaignID, map[string]any{
		"campaign_id":   campaignID,
		"voter":         voter,
		"amount_planck": amount,
	}); err != nil {
		return err
	}
	logger.Info("aye reward credited",
		"event", "governance_aye_reward_credited",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", campaignID,
		"voter", voter,
		"amount_planck", amount,
	)
	return nil
}

// ClaimSlashReward pays out the caller's accumulated slash share. The
// claimable balance is zeroed and persisted strictly before the transfer.
func (uc RewardsUseCase) ClaimSlashReward(ctx context.Context, caller string, campaignID uint64) (uint64, error) {
	var amount uint64
	return uc.claim(ctx, caller, campaignID, "slash.claimed",
		func(entry *entities.PullLedgerEntry) uint64 {
			amount = entry.ClaimableSlashPlanck
			entry.ClaimableSlashPlanck = 0
			return amount
		},
		func(entry *entities.PullLedgerEntry) {
			entry.ClaimableSlashPlanck += amount
		},
	)
}

// ClaimAyeReward pays out the caller's accumulated aye reward.
func (uc RewardsUseCase) ClaimAyeReward(ctx context.Context, caller string, campaignID uint64) (uint64, error) {
	var amount uint64
	return uc.claim(ctx, caller, campaignID, "reward.claimed",
		func(entry *entities.PullLedgerEntry) uint64 {
			amount = entry.ClaimableAyePlanck
			entry.ClaimableAyePlanck = 0
			return amount
		},
		func(entry *entities.PullLedgerEntry) {
			entry.ClaimableAyePlanck += amount
		},
	)
}

func (uc RewardsUseCase) claim(
	ctx context.Context,
	caller string,
	campaignID uint64,
	eventType string,
	consume func(entry *entities.PullLedgerEntry) uint64,
	restore func(entry *entities.PullLedgerEntry),
) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(caller)
	if voter == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return 0, err
	}
	defer uc.Guard.Exit()

	vote, found, err := uc.Votes.GetVote(ctx, campaignID, voter)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrVoteNotFound
	}
	if uc.Clock.BlockNumber() < vote.LockedUntilBlock {
		return 0, domainerrors.ErrLockNotMatured
	}

	entry, found, err := uc.PullLedger.GetEntry(ctx, campaignID, voter)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrNothingToClaim
	}
	amount := consume(&entry)
	if amount == 0 {
		return 0, domainerrors.ErrNothingToClaim
	}
	if err := uc.PullLedger.PutEntry(ctx, entry); err != nil {
		return 0, err
	}

	// Zeroed before the transfer; a failed transfer restores the balance so
	// the voter can retry.
	if err := uc.Treasury.Transfer(ctx, uc.CustodyAccount, voter, amount); err != nil {
		restored, _, restoreErr := uc.PullLedger.GetEntry(ctx, campaignID, voter)
		if restoreErr != nil {
			return 0, restoreErr
		}
		restore(&restored)
		restored.CampaignID = campaignID
		restored.Voter = voter
		if restoreErr := uc.PullLedger.PutEntry(ctx, restored); restoreErr != nil {
			return 0, restoreErr
		}
		return 0, err
	}

	if err := uc.emit(ctx, eventType, campaignID, map[string]any{
		"campaign_id":   campaignID,
		"voter":         voter,
		"amount_planck": amount,
	}); err != nil {
		return 0, err
	}
	logger.Info("governance claim paid",
		"event", "governance_claim_paid",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", campaignID,
		"voter", voter,
		"claim_type", eventType,
		"amount_planck", amount,
	)
	return amount, nil
}

// WithdrawStake returns the caller's locked stake once the lock has matured.
// The vote record survives with a zero stake, so the one-vote rule still
// holds and tallies are unaffected.
func (uc RewardsUseCase) WithdrawStake(ctx context.Context, caller string, campaignID uint64) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(caller)
	if voter == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return 0, err
	}
	defer uc.Guard.Exit()

	vote, found, err := uc.Votes.GetVote(ctx, campaignID, voter)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrVoteNotFound
	}
	if uc.Clock.BlockNumber() < vote.LockedUntilBlock {
		return 0, domainerrors.ErrLockNotMatured
	}
	amount := vote.StakePlanck
	if amount == 0 {
		return 0, domainerrors.ErrNothingToClaim
	}

	vote.StakePlanck = 0
	if err := uc.Votes.PutVote(ctx, vote); err != nil {
		return 0, err
	}

	// Consumed before the transfer; a failed transfer restores the stake so
	// the voter can retry.
	if err := uc.Treasury.Transfer(ctx, uc.CustodyAccount, voter, amount); err != nil {
		vote.StakePlanck = amount
		if restoreErr := uc.Votes.PutVote(ctx, vote); restoreErr != nil {
			return 0, restoreErr
		}
		return 0, err
	}

	if err := uc.emit(ctx, "stake.withdrawn", campaignID, map[string]any{
		"campaign_id":   campaignID,
		"voter":         voter,
		"amount_planck": amount,
	}); err != nil {
		return 0, err
	}
	logger.Info("stake withdrawn",
		"event", "governance_stake_withdrawn",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", campaignID,
		"voter", voter,
		"amount_planck", amount,
	)
	return amount, nil
}

// ResolveFailedNay records that a nay vote failed to terminate its campaign.
// Callable by anyone, once per (campaign, voter), only after the campaign
// completes. The counter raises the voter's lockup on future nay votes; it
// never changes existing locks.
func (uc RewardsUseCase) ResolveFailedNay(ctx context.Context, campaignID uint64, voter string) (uint32, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign.Status != ports.CampaignStatusCompleted {
		return 0, domainerrors.ErrCampaignNotCompleted
	}

	vote, found, err := uc.Votes.GetVote(ctx, campaignID, voter)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrVoteNotFound
	}
	if vote.Direction != entities.VoteDirectionNay {
		return 0, domainerrors.ErrNayVoteRequired
	}

	entry, _, err := uc.PullLedger.GetEntry(ctx, campaignID, voter)
	if err != nil {
		return 0, err
	}
	if entry.ResolvedFailedNay {
		return 0, domainerrors.ErrAlreadyResolved
	}
	entry.CampaignID = campaignID
	entry.Voter = voter
	entry.ResolvedFailedNay = true
	if err := uc.PullLedger.PutEntry(ctx, entry); err != nil {
		return 0, err
	}

	count, err := uc.FailedNays.IncrementFailedNay(ctx, voter)
	if err != nil {
		return 0, err
	}
	logger.Info("failed nay resolved",
		"event", "governance_failed_nay_resolved",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", campaignID,
		"voter", voter,
		"failed_nay_count", count,
	)
	return count, nil
}

func (uc RewardsUseCase) emit(ctx context.Context, eventType string, campaignID uint64, data map[string]any) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, campaignID, time.Now(), data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

// mulDiv computes pool × weight / total through a 128-bit intermediate.
// The quotient always fits: weight never exceeds total, which is the
// saturating sum of all weights including this one.
func mulDiv(pool, weight, total uint64) uint64 {
	hi, lo := bits.Mul64(pool, weight)
	quot, _ := bits.Div64(hi, lo, total)
	return quot
}
