package errors

import "errors"

var (
	ErrInvalidVoteInput      = errors.New("invalid vote input")
	ErrAlreadyVoted          = errors.New("voter has already voted on this campaign")
	ErrVoteNotFound          = errors.New("vote record not found")
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignNotPending    = errors.New("campaign is not pending")
	ErrCampaignNotRunning    = errors.New("campaign is not active or paused")
	ErrCampaignNotConcluded  = errors.New("campaign has not completed or terminated")
	ErrCampaignNotCompleted  = errors.New("campaign has not completed")
	ErrCampaignNotTerminated = errors.New("campaign has not been terminated")
	ErrUnauthorizedCaller    = errors.New("caller is not authorized for this operation")
	ErrLockNotMatured        = errors.New("stake lock has not matured")
	ErrNothingToClaim        = errors.New("no claimable balance for this voter")
	ErrAlreadyResolved       = errors.New("failed nay vote is already resolved")
	ErrNayVoteRequired       = errors.New("operation requires a nay vote record")
	ErrAyeVoteRequired       = errors.New("operation requires an aye vote record")
)
