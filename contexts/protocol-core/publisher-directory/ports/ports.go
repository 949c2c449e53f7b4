package ports

import "context"

// Publisher is the directory record for a registered publisher address.
// A scheduled rate update stays pending until its effect block is reached;
// reads resolve the pending rate lazily instead of requiring a sweeper.
type Publisher struct {
	Address            string
	TakeRateBps        uint32
	PendingRateBps     uint32
	PendingEffectBlock uint64
	HasPendingRate     bool
}

type Repository interface {
	PutPublisher(ctx context.Context, publisher Publisher) error
	GetPublisher(ctx context.Context, address string) (Publisher, bool, error)
	ListPublishers(ctx context.Context) ([]Publisher, error)
}

type ChainClock interface {
	BlockNumber() uint64
}
