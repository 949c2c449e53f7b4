package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ZeroHash is the genesis previous-hash a chain's first claim must carry.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Claim is the ephemeral settlement input built off-chain. Hash is never
// trusted from the caller: it is recomputed canonically and compared.
// AuctionProof is carried for forward compatibility and excluded from both
// the hash commitment and validation.
type Claim struct {
	CampaignID        uint64
	Publisher         string
	User              string
	Impressions       uint64
	ClearingCpmPlanck uint64
	Nonce             uint64
	PrevHash          string
	Hash              string
	AuctionProof      []byte
}

// ClaimBatch groups claims for one (user, campaign) pair.
type ClaimBatch struct {
	CampaignID uint64
	User       string
	Claims     []Claim
}

// ComputeClaimHash returns the canonical hex-encoded SHA-256 commitment over
// the claim's settled fields plus the previous hash in the chain.
func ComputeClaimHash(claim Claim) string {
	payload, _ := json.Marshal(map[string]any{
		"campaign_id":         claim.CampaignID,
		"publisher":           claim.Publisher,
		"user":                claim.User,
		"impressions":         claim.Impressions,
		"clearing_cpm_planck": claim.ClearingCpmPlanck,
		"nonce":               claim.Nonce,
		"prev_hash":           claim.PrevHash,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// RejectReason is the per-claim validation failure code reported to the
// caller; rejected claims never abort the settlement call.
type RejectReason string

const (
	RejectCampaignMismatch   RejectReason = "campaign_mismatch"
	RejectSubsequentToGap    RejectReason = "subsequent_to_gap"
	RejectZeroImpressions    RejectReason = "zero_impressions"
	RejectCampaignNotFound   RejectReason = "campaign_not_found"
	RejectCampaignNotActive  RejectReason = "campaign_not_active"
	RejectPublisherMismatch  RejectReason = "publisher_mismatch"
	RejectCpmExceedsBid      RejectReason = "cpm_exceeds_bid"
	RejectNonceGap           RejectReason = "nonce_gap"
	RejectBadGenesisHash     RejectReason = "bad_genesis_hash"
	RejectBadChainHash       RejectReason = "bad_chain_hash"
	RejectBadClaimHash       RejectReason = "bad_claim_hash"
	RejectInsufficientBudget RejectReason = "insufficient_budget"
)

// RejectedClaim pairs a rejected claim's position in its batch with why it
// was rejected.
type RejectedClaim struct {
	CampaignID uint64
	User       string
	Nonce      uint64
	Index      int
	Reason     RejectReason
}

// ChainState is the per-(user, campaign) accepted-chain head. LastNonce
// advances monotonically; LastHash always names the last accepted claim.
type ChainState struct {
	User       string
	CampaignID uint64
	LastNonce  uint64
	LastHash   string
}

// BalanceClass separates the three independent pull-payment ledgers.
type BalanceClass string

const (
	BalancePublisher BalanceClass = "publisher"
	BalanceUser      BalanceClass = "user"
	BalanceProtocol  BalanceClass = "protocol"
)

// SettlementRecord is the durable per-claim audit row written on success.
type SettlementRecord struct {
	RecordID             string
	CampaignID           uint64
	User                 string
	Publisher            string
	Nonce                uint64
	Impressions          uint64
	ClearingCpmPlanck    uint64
	TotalPlanck          uint64
	PublisherSharePlanck uint64
	UserSharePlanck      uint64
	ProtocolSharePlanck  uint64
	ClaimHash            string
	SettledAtBlock       uint64
	SettledAt            time.Time
}
