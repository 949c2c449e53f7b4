package ports

import (
	"context"
	"time"

	contractsv1 "admesh/contracts/gen/events/v1"
	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
)

type VoteRepository interface {
	PutVote(ctx context.Context, vote entities.VoteRecord) error
	GetVote(ctx context.Context, campaignID uint64, voter string) (entities.VoteRecord, bool, error)
	ListVotesByCampaign(ctx context.Context, campaignID uint64) ([]entities.VoteRecord, error)
}

type TallyRepository interface {
	PutTally(ctx context.Context, tally entities.CampaignVote) error
	GetTally(ctx context.Context, campaignID uint64) (entities.CampaignVote, bool, error)
}

type PullLedgerRepository interface {
	PutEntry(ctx context.Context, entry entities.PullLedgerEntry) error
	GetEntry(ctx context.Context, campaignID uint64, voter string) (entities.PullLedgerEntry, bool, error)
}

// FailedNayCounter tracks the per-voter lifetime count of resolved failed
// nay votes feeding the graduated lockup formula.
type FailedNayCounter interface {
	FailedNayCount(ctx context.Context, voter string) (uint32, error)
	IncrementFailedNay(ctx context.Context, voter string) (uint32, error)
}

// Campaign status values mirrored from the ledger's status machine.
const (
	CampaignStatusPending    = "pending"
	CampaignStatusActive     = "active"
	CampaignStatusPaused     = "paused"
	CampaignStatusCompleted  = "completed"
	CampaignStatusExpired    = "expired"
	CampaignStatusTerminated = "terminated"
)

// CampaignView is the slice of ledger state governance reads before acting.
type CampaignView struct {
	CampaignID      uint64
	Status          string
	RemainingPlanck uint64
}

func (v CampaignView) IsPending() bool { return v.Status == CampaignStatusPending }

func (v CampaignView) IsRunning() bool {
	return v.Status == CampaignStatusActive || v.Status == CampaignStatusPaused
}

func (v CampaignView) IsConcluded() bool {
	return v.Status == CampaignStatusCompleted || v.Status == CampaignStatusTerminated
}

// CampaignLifecycle is governance's synchronous gateway into the campaign
// ledger. Terminate returns the slashed remaining budget that the ledger
// forwarded into governance custody.
type CampaignLifecycle interface {
	GetCampaign(ctx context.Context, campaignID uint64) (CampaignView, error)
	Activate(ctx context.Context, campaignID uint64) error
	Terminate(ctx context.Context, campaignID uint64) (uint64, error)
}

type ChainClock interface {
	BlockNumber() uint64
}

type Treasury interface {
	Transfer(ctx context.Context, from string, to string, amount uint64) error
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	OutboxWriter
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
