package httpadapter

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/conviction-governance/application/commands"
	"admesh/contexts/protocol-core/conviction-governance/application/queries"
	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	httptransport "admesh/contexts/protocol-core/conviction-governance/transport/http"
)

type Handler struct {
	Vote           commands.VoteUseCase
	Rewards        commands.RewardsUseCase
	GetTally       queries.GetTallyUseCase
	GetVote        queries.GetVoteUseCase
	ListVotes      queries.ListVotesUseCase
	GetClaimables  queries.GetClaimablesUseCase
	FailedNayCount queries.FailedNayCountUseCase
	Logger         *slog.Logger
}

func (h Handler) VoteAyeHandler(
	ctx context.Context,
	caller string,
	campaignID uint64,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Vote.VoteAye(ctx, commands.VoteCommand{
		Voter:       caller,
		CampaignID:  campaignID,
		StakePlanck: req.StakePlanck,
		Conviction:  req.Conviction,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{Status: "success", Data: toVoteDTO(vote)}, nil
}

func (h Handler) VoteNayHandler(
	ctx context.Context,
	caller string,
	campaignID uint64,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Vote.VoteNay(ctx, commands.VoteCommand{
		Voter:       caller,
		CampaignID:  campaignID,
		StakePlanck: req.StakePlanck,
		Conviction:  req.Conviction,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{Status: "success", Data: toVoteDTO(vote)}, nil
}

func (h Handler) DistributeSlashRewardsHandler(ctx context.Context, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Rewards.DistributeSlashRewards(ctx, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) CreditAyeRewardHandler(
	ctx context.Context,
	caller string,
	campaignID uint64,
	req httptransport.CreditAyeRewardRequest,
) (httptransport.AckResponse, error) {
	if err := h.Rewards.CreditAyeReward(ctx, caller, campaignID, req.Voter, req.AmountPlanck); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) ClaimSlashRewardHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AmountResponse, error) {
	amount, err := h.Rewards.ClaimSlashReward(ctx, caller, campaignID)
	if err != nil {
		return httptransport.AmountResponse{}, err
	}
	return httptransport.AmountResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) ClaimAyeRewardHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AmountResponse, error) {
	amount, err := h.Rewards.ClaimAyeReward(ctx, caller, campaignID)
	if err != nil {
		return httptransport.AmountResponse{}, err
	}
	return httptransport.AmountResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) WithdrawStakeHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AmountResponse, error) {
	amount, err := h.Rewards.WithdrawStake(ctx, caller, campaignID)
	if err != nil {
		return httptransport.AmountResponse{}, err
	}
	return httptransport.AmountResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) ResolveFailedNayHandler(
	ctx context.Context,
	campaignID uint64,
	req httptransport.ResolveFailedNayRequest,
) (httptransport.FailedNayCountResponse, error) {
	count, err := h.Rewards.ResolveFailedNay(ctx, campaignID, req.Voter)
	if err != nil {
		return httptransport.FailedNayCountResponse{}, err
	}
	return httptransport.FailedNayCountResponse{Status: "success", Voter: req.Voter, Count: count}, nil
}

func (h Handler) GetTallyHandler(ctx context.Context, campaignID uint64) (httptransport.TallyResponse, error) {
	tally, err := h.GetTally.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{Status: "success", Data: httptransport.TallyDTO{
		CampaignID:          tally.CampaignID,
		AyeWeightPlanck:     tally.AyeWeightPlanck,
		NayWeightPlanck:     tally.NayWeightPlanck,
		QualifyingAyeVoters: tally.QualifyingAyeVoters,
		TerminationBlock:    tally.TerminationBlock,
		SlashPoolPlanck:     tally.SlashPoolPlanck,
		Activated:           tally.Activated,
		Terminated:          tally.Terminated,
	}}, nil
}

func (h Handler) GetVoteHandler(ctx context.Context, campaignID uint64, voter string) (httptransport.VoteResponse, error) {
	vote, err := h.GetVote.Execute(ctx, campaignID, voter)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{Status: "success", Data: toVoteDTO(vote)}, nil
}

func (h Handler) ListVotesHandler(ctx context.Context, campaignID uint64) (httptransport.ListVotesResponse, error) {
	votes, err := h.ListVotes.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.ListVotesResponse{}, err
	}
	resp := httptransport.ListVotesResponse{
		Status: "success",
		Data:   make([]httptransport.VoteDTO, 0, len(votes)),
	}
	for _, vote := range votes {
		resp.Data = append(resp.Data, toVoteDTO(vote))
	}
	return resp, nil
}

func (h Handler) GetClaimablesHandler(ctx context.Context, campaignID uint64, voter string) (httptransport.ClaimablesResponse, error) {
	entry, err := h.GetClaimables.Execute(ctx, campaignID, voter)
	if err != nil {
		return httptransport.ClaimablesResponse{}, err
	}
	return httptransport.ClaimablesResponse{Status: "success", Data: httptransport.ClaimablesDTO{
		CampaignID:           entry.CampaignID,
		Voter:                entry.Voter,
		ClaimableSlashPlanck: entry.ClaimableSlashPlanck,
		ClaimableAyePlanck:   entry.ClaimableAyePlanck,
		ResolvedFailedNay:    entry.ResolvedFailedNay,
	}}, nil
}

func (h Handler) FailedNayCountHandler(ctx context.Context, voter string) (httptransport.FailedNayCountResponse, error) {
	count, err := h.FailedNayCount.Execute(ctx, voter)
	if err != nil {
		return httptransport.FailedNayCountResponse{}, err
	}
	return httptransport.FailedNayCountResponse{Status: "success", Voter: voter, Count: count}, nil
}

func toVoteDTO(vote entities.VoteRecord) httptransport.VoteDTO {
	return httptransport.VoteDTO{
		CampaignID:       vote.CampaignID,
		Voter:            vote.Voter,
		Direction:        string(vote.Direction),
		StakePlanck:      vote.StakePlanck,
		Conviction:       vote.Conviction,
		WeightPlanck:     vote.Weight(),
		LockedUntilBlock: vote.LockedUntilBlock,
		CastAtBlock:      vote.CastAtBlock,
	}
}
