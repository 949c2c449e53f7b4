package entities

import "time"

type CampaignStatus string

const (
	CampaignStatusPending    CampaignStatus = "pending"
	CampaignStatusActive     CampaignStatus = "active"
	CampaignStatusPaused     CampaignStatus = "paused"
	CampaignStatusCompleted  CampaignStatus = "completed"
	CampaignStatusExpired    CampaignStatus = "expired"
	CampaignStatusTerminated CampaignStatus = "terminated"
)

// CampaignSchemaVersion is stamped on every new campaign record.
const CampaignSchemaVersion uint32 = 1

// Campaign is the escrowed budget record for one advertiser/publisher pair.
// All monetary fields are planck-denominated integers. SnapshotTakeRateBps
// is copied from the publisher directory at creation and never changes.
type Campaign struct {
	CampaignID          uint64
	Advertiser          string
	Publisher           string
	BudgetPlanck        uint64
	RemainingPlanck     uint64
	DailyCapPlanck      uint64
	MaxBidCpmPlanck     uint64
	DailySpentPlanck    uint64
	LastSpendDay        uint64
	PendingExpiryBlock  uint64
	TerminationBlock    uint64
	SnapshotTakeRateBps uint32
	Status              CampaignStatus
	SchemaVersion       uint32
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DayIndex derives the daily-cap bucket from the externally supplied wall
// clock. The timestamp is not independently validated.
func DayIndex(ts time.Time) uint64 {
	unix := ts.UTC().Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / 86400
}

// ValidateCreate checks the creation preconditions on the monetary inputs.
func ValidateCreate(budget uint64, dailyCap uint64, bidCpm uint64, minBidCpm uint64) bool {
	return budget > 0 &&
		dailyCap > 0 &&
		dailyCap <= budget &&
		bidCpm >= minBidCpm
}

// IsTerminal reports whether no further status transition exists.
func (c Campaign) IsTerminal() bool {
	switch c.Status {
	case CampaignStatusCompleted, CampaignStatusExpired, CampaignStatusTerminated:
		return true
	default:
		return false
	}
}

// CanTerminate reports whether governance may terminate the campaign.
func (c Campaign) CanTerminate() bool {
	return c.Status == CampaignStatusActive || c.Status == CampaignStatusPaused
}

// CanComplete mirrors CanTerminate: completion is only reachable from the
// running states.
func (c Campaign) CanComplete() bool {
	return c.Status == CampaignStatusActive || c.Status == CampaignStatusPaused
}

// PendingExpired reports whether the pending-expiry deadline has passed.
func (c Campaign) PendingExpired(block uint64) bool {
	return c.Status == CampaignStatusPending && block >= c.PendingExpiryBlock
}
