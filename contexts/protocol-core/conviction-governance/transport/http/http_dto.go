package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VoteRequest struct {
	StakePlanck uint64 `json:"stake_planck"`
	Conviction  uint8  `json:"conviction"`
}

type VoteDTO struct {
	CampaignID       uint64 `json:"campaign_id"`
	Voter            string `json:"voter"`
	Direction        string `json:"direction"`
	StakePlanck      uint64 `json:"stake_planck"`
	Conviction       uint8  `json:"conviction"`
	WeightPlanck     uint64 `json:"weight_planck"`
	LockedUntilBlock uint64 `json:"locked_until_block"`
	CastAtBlock      uint64 `json:"cast_at_block"`
}

type VoteResponse struct {
	Status string  `json:"status"`
	Data   VoteDTO `json:"data"`
}

type ListVotesResponse struct {
	Status string    `json:"status"`
	Data   []VoteDTO `json:"data"`
}

type TallyDTO struct {
	CampaignID          uint64 `json:"campaign_id"`
	AyeWeightPlanck     uint64 `json:"aye_weight_planck"`
	NayWeightPlanck     uint64 `json:"nay_weight_planck"`
	QualifyingAyeVoters uint32 `json:"qualifying_aye_voters"`
	TerminationBlock    uint64 `json:"termination_block,omitempty"`
	SlashPoolPlanck     uint64 `json:"slash_pool_planck"`
	Activated           bool   `json:"activated"`
	Terminated          bool   `json:"terminated"`
}

type TallyResponse struct {
	Status string   `json:"status"`
	Data   TallyDTO `json:"data"`
}

type ClaimablesDTO struct {
	CampaignID           uint64 `json:"campaign_id"`
	Voter                string `json:"voter"`
	ClaimableSlashPlanck uint64 `json:"claimable_slash_planck"`
	ClaimableAyePlanck   uint64 `json:"claimable_aye_planck"`
	ResolvedFailedNay    bool   `json:"resolved_failed_nay"`
}

type ClaimablesResponse struct {
	Status string        `json:"status"`
	Data   ClaimablesDTO `json:"data"`
}

type CreditAyeRewardRequest struct {
	Voter        string `json:"voter"`
	AmountPlanck uint64 `json:"amount_planck"`
}

type ResolveFailedNayRequest struct {
	Voter string `json:"voter"`
}

type AmountResponse struct {
	Status       string `json:"status"`
	AmountPlanck uint64 `json:"amount_planck"`
}

type FailedNayCountResponse struct {
	Status string `json:"status"`
	Voter  string `json:"voter"`
	Count  uint32 `json:"count"`
}

type AckResponse struct {
	Status string `json:"status"`
}
