package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "admesh/contexts/protocol-core/conviction-governance/application"
	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	domainerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	"admesh/contexts/protocol-core/conviction-governance/ports"
	"admesh/internal/shared/reentrancy"
)

// VoteCommand carries one conviction vote. The stake moves into governance
// custody before any record is written, so a failed transfer leaves no trace.
type VoteCommand struct {
	Voter       string
	CampaignID  uint64
	StakePlanck uint64
	Conviction  uint8
}

// VoteUseCase enforces the one-vote-per-(campaign,voter) rule, accumulates
// conviction-scaled weight, and fires the one-way activation and termination
// latches against the campaign ledger.
type VoteUseCase struct {
	Votes                ports.VoteRepository
	Tallies              ports.TallyRepository
	FailedNays           ports.FailedNayCounter
	Campaigns            ports.CampaignLifecycle
	Treasury             ports.Treasury
	Clock                ports.ChainClock
	Outbox               ports.OutboxWriter
	IDGen                ports.IDGenerator
	Guard                *reentrancy.Guard
	CustodyAccount       string
	BaseLockupBlocks     uint64
	MaxLockupBlocks      uint64
	ActivationThreshold  uint64
	TerminationThreshold uint64
	MinReviewerStake     uint64
	Logger               *slog.Logger
}

func (uc VoteUseCase) VoteAye(ctx context.Context, cmd VoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Guard.Enter(); err != nil {
		return entities.VoteRecord{}, err
	}
	defer uc.Guard.Exit()
	voter, err := uc.validate(ctx, cmd)
	if err != nil {
		return entities.VoteRecord{}, err
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if !campaign.IsPending() {
		return entities.VoteRecord{}, domainerrors.ErrCampaignNotPending
	}

	if err := uc.Treasury.Transfer(ctx, voter, uc.CustodyAccount, cmd.StakePlanck); err != nil {
		return entities.VoteRecord{}, err
	}

	block := uc.Clock.BlockNumber()
	vote := entities.VoteRecord{
		CampaignID:       cmd.CampaignID,
		Voter:            voter,
		Direction:        entities.VoteDirectionAye,
		StakePlanck:      cmd.StakePlanck,
		Conviction:       cmd.Conviction,
		LockedUntilBlock: block + entities.AyeLockupBlocks(uc.BaseLockupBlocks, cmd.Conviction),
		CastAtBlock:      block,
	}
	if err := uc.Votes.PutVote(ctx, vote); err != nil {
		return entities.VoteRecord{}, err
	}

	tally, _, err := uc.Tallies.GetTally(ctx, cmd.CampaignID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	tally.CampaignID = cmd.CampaignID
	tally.AyeWeightPlanck = entities.SaturatingAddWeight(tally.AyeWeightPlanck, vote.Weight())
	if cmd.StakePlanck >= uc.MinReviewerStake {
		tally.QualifyingAyeVoters++
	}

	activated := false
	if !tally.Activated && tally.AyeWeightPlanck >= uc.ActivationThreshold {
		tally.Activated = true
		activated = true
	}
	if err := uc.Tallies.PutTally(ctx, tally); err != nil {
		return entities.VoteRecord{}, err
	}
	if activated {
		if err := uc.Campaigns.Activate(ctx, cmd.CampaignID); err != nil {
			return entities.VoteRecord{}, err
		}
		if err := uc.emit(ctx, "campaign.activation_triggered", cmd.CampaignID, map[string]any{
			"campaign_id":       cmd.CampaignID,
			"aye_weight_planck": tally.AyeWeightPlanck,
		}); err != nil {
			return entities.VoteRecord{}, err
		}
	}

	if err := uc.emitVoteCast(ctx, vote); err != nil {
		return entities.VoteRecord{}, err
	}
	logger.Info("aye vote cast",
		"event", "governance_vote_aye_cast",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", cmd.CampaignID,
		"voter", voter,
		"stake_planck", cmd.StakePlanck,
		"conviction", cmd.Conviction,
		"activated", activated,
	)
	return vote, nil
}

func (uc VoteUseCase) VoteNay(ctx context.Context, cmd VoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Guard.Enter(); err != nil {
		return entities.VoteRecord{}, err
	}
	defer uc.Guard.Exit()
	voter, err := uc.validate(ctx, cmd)
	if err != nil {
		return entities.VoteRecord{}, err
	}

	campaign, err := uc.Campaigns.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if !campaign.IsRunning() {
		return entities.VoteRecord{}, domainerrors.ErrCampaignNotRunning
	}

	failedNays, err := uc.FailedNays.FailedNayCount(ctx, voter)
	if err != nil {
		return entities.VoteRecord{}, err
	}

	if err := uc.Treasury.Transfer(ctx, voter, uc.CustodyAccount, cmd.StakePlanck); err != nil {
		return entities.VoteRecord{}, err
	}

	block := uc.Clock.BlockNumber()
	vote := entities.VoteRecord{
		CampaignID:       cmd.CampaignID,
		Voter:            voter,
		Direction:        entities.VoteDirectionNay,
		StakePlanck:      cmd.StakePlanck,
		Conviction:       cmd.Conviction,
		LockedUntilBlock: block + entities.NayLockupBlocks(uc.BaseLockupBlocks, cmd.Conviction, failedNays, uc.MaxLockupBlocks),
		CastAtBlock:      block,
	}
	if err := uc.Votes.PutVote(ctx, vote); err != nil {
		return entities.VoteRecord{}, err
	}

	tally, _, err := uc.Tallies.GetTally(ctx, cmd.CampaignID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	tally.CampaignID = cmd.CampaignID
	tally.NayWeightPlanck = entities.SaturatingAddWeight(tally.NayWeightPlanck, vote.Weight())

	terminated := false
	if !tally.Terminated && tally.NayWeightPlanck >= uc.TerminationThreshold {
		tally.Terminated = true
		tally.TerminationBlock = block
		terminated = true
	}
	if err := uc.Tallies.PutTally(ctx, tally); err != nil {
		return entities.VoteRecord{}, err
	}
	if terminated {
		// The ledger zeroes the campaign's remaining budget and forwards it
		// into governance custody; that amount becomes the slash pool.
		slashed, err := uc.Campaigns.Terminate(ctx, cmd.CampaignID)
		if err != nil {
			return entities.VoteRecord{}, err
		}
		tally.SlashPoolPlanck = slashed
		if err := uc.Tallies.PutTally(ctx, tally); err != nil {
			return entities.VoteRecord{}, err
		}
		if err := uc.emit(ctx, "campaign.termination_triggered", cmd.CampaignID, map[string]any{
			"campaign_id":       cmd.CampaignID,
			"nay_weight_planck": tally.NayWeightPlanck,
			"slash_pool_planck": slashed,
			"termination_block": block,
		}); err != nil {
			return entities.VoteRecord{}, err
		}
	}

	if err := uc.emitVoteCast(ctx, vote); err != nil {
		return entities.VoteRecord{}, err
	}
	logger.Info("nay vote cast",
		"event", "governance_vote_nay_cast",
		"module", "protocol-core/conviction-governance",
		"layer", "application",
		"campaign_id", cmd.CampaignID,
		"voter", voter,
		"stake_planck", cmd.StakePlanck,
		"conviction", cmd.Conviction,
		"terminated", terminated,
	)
	return vote, nil
}

func (uc VoteUseCase) validate(ctx context.Context, cmd VoteCommand) (string, error) {
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" || cmd.StakePlanck == 0 || cmd.Conviction > entities.MaxConviction {
		return "", domainerrors.ErrInvalidVoteInput
	}
	if _, found, err := uc.Votes.GetVote(ctx, cmd.CampaignID, voter); err != nil {
		return "", err
	} else if found {
		return "", domainerrors.ErrAlreadyVoted
	}
	return voter, nil
}

func (uc VoteUseCase) emitVoteCast(ctx context.Context, vote entities.VoteRecord) error {
	return uc.emit(ctx, "vote.cast", vote.CampaignID, map[string]any{
		"campaign_id":        vote.CampaignID,
		"voter":              vote.Voter,
		"direction":          string(vote.Direction),
		"stake_planck":       vote.StakePlanck,
		"conviction":         vote.Conviction,
		"weight_planck":      vote.Weight(),
		"locked_until_block": vote.LockedUntilBlock,
	})
}

func (uc VoteUseCase) emit(ctx context.Context, eventType string, campaignID uint64, data map[string]any) error {
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
