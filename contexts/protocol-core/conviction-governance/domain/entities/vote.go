package entities

import "math"

type VoteDirection string

const (
	VoteDirectionAye VoteDirection = "aye"
	VoteDirectionNay VoteDirection = "nay"
)

// MaxConviction bounds the voter-chosen multiplier exponent.
const MaxConviction uint8 = 6

// VoteRecord is the single permanent vote a voter may cast per campaign.
// Only WithdrawStake mutates it afterwards, by consuming the locked stake.
type VoteRecord struct {
	CampaignID       uint64
	Voter            string
	Direction        VoteDirection
	StakePlanck      uint64
	Conviction       uint8
	LockedUntilBlock uint64
	CastAtBlock      uint64
}

// Weight returns the conviction-scaled voting weight of the record,
// saturating at the uint64 maximum: a shifted-out stake must read as
// enormous, never as small, or the threshold latches could be suppressed.
func (v VoteRecord) Weight() uint64 {
	if v.Conviction > 0 && v.StakePlanck > math.MaxUint64>>v.Conviction {
		return math.MaxUint64
	}
	return v.StakePlanck << v.Conviction
}

// SaturatingAddWeight accumulates tally weight without wraparound.
func SaturatingAddWeight(total, weight uint64) uint64 {
	if sum := total + weight; sum >= total {
		return sum
	}
	return math.MaxUint64
}

// CampaignVote is the per-campaign running tally. Activated and Terminated
// are one-way latches: once set they are never cleared, no matter how much
// further weight accumulates.
type CampaignVote struct {
	CampaignID          uint64
	AyeWeightPlanck     uint64
	NayWeightPlanck     uint64
	QualifyingAyeVoters uint32
	TerminationBlock    uint64
	SlashPoolPlanck     uint64
	Activated           bool
	Terminated          bool
}

// PullLedgerEntry holds the claimable amounts credited to one voter for one
// campaign, consumed exactly once by the claim operations.
type PullLedgerEntry struct {
	CampaignID           uint64
	Voter                string
	ClaimableSlashPlanck uint64
	ClaimableAyePlanck   uint64
	ResolvedFailedNay    bool
}

// AyeLockupBlocks is the lock duration for an aye vote.
func AyeLockupBlocks(baseLockup uint64, conviction uint8) uint64 {
	return baseLockup << conviction
}

// NayLockupBlocks applies the graduated nay formula: the conviction lockup
// plus a grief penalty growing with the voter's resolved failed-nay count
// (exponent saturates at 4), the sum capped at maxLockup.
func NayLockupBlocks(baseLockup uint64, conviction uint8, failedNayCount uint32, maxLockup uint64) uint64 {
	penaltyExp := failedNayCount
	if penaltyExp > 4 {
		penaltyExp = 4
	}
	lockup := baseLockup<<conviction + baseLockup<<penaltyExp
	if lockup > maxLockup {
		return maxLockup
	}
	return lockup
}
