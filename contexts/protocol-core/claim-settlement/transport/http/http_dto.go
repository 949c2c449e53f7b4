package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ClaimDTO struct {
	CampaignID        uint64 `json:"campaign_id"`
	Publisher         string `json:"publisher"`
	User              string `json:"user"`
	Impressions       uint64 `json:"impressions"`
	ClearingCpmPlanck uint64 `json:"clearing_cpm_planck"`
	Nonce             uint64 `json:"nonce"`
	PrevHash          string `json:"prev_hash"`
	Hash              string `json:"hash"`
	AuctionProof      []byte `json:"auction_proof,omitempty"`
}

type ClaimBatchDTO struct {
	CampaignID uint64     `json:"campaign_id"`
	User       string     `json:"user"`
	Claims     []ClaimDTO `json:"claims"`
}

type SettleClaimsRequest struct {
	Batches []ClaimBatchDTO `json:"batches"`
}

type RejectedClaimDTO struct {
	CampaignID uint64 `json:"campaign_id"`
	User       string `json:"user"`
	Nonce      uint64 `json:"nonce"`
	Index      int    `json:"index"`
	Reason     string `json:"reason"`
}

type SettleClaimsResponse struct {
	Status        string             `json:"status"`
	SettledCount  int                `json:"settled_count"`
	RejectedCount int                `json:"rejected_count"`
	Rejected      []RejectedClaimDTO `json:"rejected"`
}

type WithdrawResponse struct {
	Status       string `json:"status"`
	AmountPlanck uint64 `json:"amount_planck"`
}

type ChainStateDTO struct {
	User       string `json:"user"`
	CampaignID uint64 `json:"campaign_id"`
	LastNonce  uint64 `json:"last_nonce"`
	LastHash   string `json:"last_hash"`
}

type ChainStateResponse struct {
	Status string        `json:"status"`
	Data   ChainStateDTO `json:"data"`
}

type BalancesDTO struct {
	Address         string `json:"address"`
	PublisherPlanck uint64 `json:"publisher_planck"`
	UserPlanck      uint64 `json:"user_planck"`
	ProtocolPlanck  uint64 `json:"protocol_planck"`
}

type BalancesResponse struct {
	Status string      `json:"status"`
	Data   BalancesDTO `json:"data"`
}

type SettlementRecordDTO struct {
	RecordID             string `json:"record_id"`
	CampaignID           uint64 `json:"campaign_id"`
	User                 string `json:"user"`
	Publisher            string `json:"publisher"`
	Nonce                uint64 `json:"nonce"`
	Impressions          uint64 `json:"impressions"`
	ClearingCpmPlanck    uint64 `json:"clearing_cpm_planck"`
	TotalPlanck          uint64 `json:"total_planck"`
	PublisherSharePlanck uint64 `json:"publisher_share_planck"`
	UserSharePlanck      uint64 `json:"user_share_planck"`
	ProtocolSharePlanck  uint64 `json:"protocol_share_planck"`
	ClaimHash            string `json:"claim_hash"`
	SettledAtBlock       uint64 `json:"settled_at_block"`
}

type ListRecordsResponse struct {
	Status string                `json:"status"`
	Data   []SettlementRecordDTO `json:"data"`
}
