package queries

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	domainerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	"admesh/contexts/protocol-core/conviction-governance/ports"
)

type GetTallyUseCase struct {
	Tallies ports.TallyRepository
	Logger  *slog.Logger
}

// Execute returns the campaign tally, or a zero-valued tally when no vote
// has been cast yet.
func (uc GetTallyUseCase) Execute(ctx context.Context, campaignID uint64) (entities.CampaignVote, error) {
	tally, _, err := uc.Tallies.GetTally(ctx, campaignID)
	if err != nil {
		return entities.CampaignVote{}, err
	}
	tally.CampaignID = campaignID
	return tally, nil
}

type GetVoteUseCase struct {
	Votes  ports.VoteRepository
	Logger *slog.Logger
}

func (uc GetVoteUseCase) Execute(ctx context.Context, campaignID uint64, voter string) (entities.VoteRecord, error) {
	vote, found, err := uc.Votes.GetVote(ctx, campaignID, voter)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if !found {
		return entities.VoteRecord{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

type ListVotesUseCase struct {
	Votes  ports.VoteRepository
	Logger *slog.Logger
}

func (uc ListVotesUseCase) Execute(ctx context.Context, campaignID uint64) ([]entities.VoteRecord, error) {
	return uc.Votes.ListVotesByCampaign(ctx, campaignID)
}

type GetClaimablesUseCase struct {
	PullLedger ports.PullLedgerRepository
	Logger     *slog.Logger
}

// Execute returns the pull-ledger entry for a voter; absence maps to a
// zero-valued entry rather than an error, since nothing may have been
// credited yet.
func (uc GetClaimablesUseCase) Execute(ctx context.Context, campaignID uint64, voter string) (entities.PullLedgerEntry, error) {
	entry, _, err := uc.PullLedger.GetEntry(ctx, campaignID, voter)
	if err != nil {
		return entities.PullLedgerEntry{}, err
	}
	entry.CampaignID = campaignID
	entry.Voter = voter
	return entry, nil
}

type FailedNayCountUseCase struct {
	FailedNays ports.FailedNayCounter
	Logger     *slog.Logger
}

func (uc FailedNayCountUseCase) Execute(ctx context.Context, voter string) (uint32, error) {
	return uc.FailedNays.FailedNayCount(ctx, voter)
}
