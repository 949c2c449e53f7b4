package ports

import (
	"context"
	"time"

	contractsv1 "admesh/contracts/gen/events/v1"
	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
)

type ChainStateRepository interface {
	PutChainState(ctx context.Context, state entities.ChainState) error
	GetChainState(ctx context.Context, user string, campaignID uint64) (entities.ChainState, bool, error)
}

// BalanceRepository holds the three pull-payment ledgers, keyed by class and
// address, independent of the campaign ledger's escrow.
type BalanceRepository interface {
	AddBalance(ctx context.Context, class entities.BalanceClass, address string, amount uint64) error
	GetBalance(ctx context.Context, class entities.BalanceClass, address string) (uint64, error)
	// SetBalance overwrites the stored amount; withdrawals use it to zero
	// before transfer and to restore on transfer failure.
	SetBalance(ctx context.Context, class entities.BalanceClass, address string, amount uint64) error
}

type SettlementRecordRepository interface {
	AppendRecord(ctx context.Context, record entities.SettlementRecord) error
	ListRecordsByCampaign(ctx context.Context, campaignID uint64) ([]entities.SettlementRecord, error)
}

// Campaign status values mirrored from the ledger's status machine.
const CampaignStatusActive = "active"

// CampaignView is the slice of ledger state settlement reads per claim.
type CampaignView struct {
	CampaignID          uint64
	Publisher           string
	Status              string
	RemainingPlanck     uint64
	MaxBidCpmPlanck     uint64
	SnapshotTakeRateBps uint32
}

func (v CampaignView) IsActive() bool { return v.Status == CampaignStatusActive }

// CampaignGateway is settlement's synchronous gateway into the campaign
// ledger. DeductBudget enforces the ledger's own status, budget, and daily
// cap rules; any refusal surfaces as an error.
type CampaignGateway interface {
	GetCampaign(ctx context.Context, campaignID uint64) (CampaignView, bool, error)
	DeductBudget(ctx context.Context, campaignID uint64, amount uint64) error
}

type ChainClock interface {
	BlockNumber() uint64
	Now() time.Time
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
