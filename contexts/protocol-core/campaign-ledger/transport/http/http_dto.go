package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateCampaignRequest struct {
	Publisher       string `json:"publisher"`
	DailyCapPlanck  uint64 `json:"daily_cap_planck"`
	MaxBidCpmPlanck uint64 `json:"max_bid_cpm_planck"`
	BudgetPlanck    uint64 `json:"budget_planck"`
}

type CampaignDTO struct {
	CampaignID          uint64 `json:"campaign_id"`
	Advertiser          string `json:"advertiser"`
	Publisher           string `json:"publisher"`
	BudgetPlanck        uint64 `json:"budget_planck"`
	RemainingPlanck     uint64 `json:"remaining_planck"`
	DailyCapPlanck      uint64 `json:"daily_cap_planck"`
	MaxBidCpmPlanck     uint64 `json:"max_bid_cpm_planck"`
	DailySpentPlanck    uint64 `json:"daily_spent_planck"`
	LastSpendDay        uint64 `json:"last_spend_day"`
	PendingExpiryBlock  uint64 `json:"pending_expiry_block"`
	TerminationBlock    uint64 `json:"termination_block,omitempty"`
	SnapshotTakeRateBps uint32 `json:"snapshot_take_rate_bps"`
	Status              string `json:"status"`
	SchemaVersion       uint32 `json:"schema_version"`
}

type CampaignResponse struct {
	Status string      `json:"status"`
	Data   CampaignDTO `json:"data"`
}

type ListCampaignsResponse struct {
	Status string        `json:"status"`
	Data   []CampaignDTO `json:"data"`
}

type DeductBudgetRequest struct {
	AmountPlanck uint64 `json:"amount_planck"`
}

type AckResponse struct {
	Status string `json:"status"`
}
