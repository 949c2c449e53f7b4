package ports

import (
	"context"
	"time"

	contractsv1 "admesh/contracts/gen/events/v1"
	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
)

type CampaignFilter struct {
	Advertiser string
	Publisher  string
	Status     entities.CampaignStatus
}

type CampaignRepository interface {
	NextCampaignID(ctx context.Context) (uint64, error)
	CreateCampaign(ctx context.Context, campaign entities.Campaign) error
	UpdateCampaign(ctx context.Context, campaign entities.Campaign) error
	GetCampaign(ctx context.Context, campaignID uint64) (entities.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]entities.Campaign, error)
	// ListExpirablePending returns pending campaigns whose expiry block is at
	// or before the given block.
	ListExpirablePending(ctx context.Context, block uint64, limit int) ([]entities.Campaign, error)
}

// PublisherRecord is the directory projection consulted at creation only.
type PublisherRecord struct {
	Address     string
	TakeRateBps uint32
	Registered  bool
}

type PublisherDirectory interface {
	GetPublisher(ctx context.Context, address string) (PublisherRecord, error)
}

// ChainClock exposes the execution environment's two clocks: the monotonic
// block height and the wall clock used only for the daily spend index.
type ChainClock interface {
	BlockNumber() uint64
	Now() time.Time
}

// Treasury moves native value between custody accounts and reports failure.
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
