package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
	domainerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	"admesh/contexts/protocol-core/claim-settlement/ports"

	"github.com/google/uuid"
)

type chainKey struct {
	user       string
	campaignID uint64
}

type balanceKey struct {
	class   entities.BalanceClass
	address string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	chains   map[chainKey]entities.ChainState
	balances map[balanceKey]uint64
	records  []entities.SettlementRecord
	outbox   map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		chains:   make(map[chainKey]entities.ChainState),
		balances: make(map[balanceKey]uint64),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) PutChainState(_ context.Context, state entities.ChainState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[chainKey{state.User, state.CampaignID}] = state
	return nil
}

func (s *Store) GetChainState(_ context.Context, user string, campaignID uint64) (entities.ChainState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, found := s.chains[chainKey{user, campaignID}]
	return state, found, nil
}

func (s *Store) AddBalance(_ context.Context, class entities.BalanceClass, address string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{class, address}] += amount
	return nil
}

func (s *Store) GetBalance(_ context.Context, class entities.BalanceClass, address string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[balanceKey{class, address}], nil
}

func (s *Store) SetBalance(_ context.Context, class entities.BalanceClass, address string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey{class, address}] = amount
	return nil
}

func (s *Store) AppendRecord(_ context.Context, record entities.SettlementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *Store) ListRecordsByCampaign(_ context.Context, campaignID uint64) ([]entities.SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.SettlementRecord, 0)
	for _, record := range s.records {
		if record.CampaignID == campaignID {
			items = append(items, record)
		}
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if envelope.EventID == "" {
		return domainerrors.ErrInvalidBatchInput
	}
	if existing, ok := s.outbox[envelope.EventID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrInvalidBatchInput
		}
		return nil
	}
	s.outbox[envelope.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if !row.published {
			items = append(items, row.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrChainStateNotFound
	}
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
