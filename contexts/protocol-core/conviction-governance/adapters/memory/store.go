package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	domainerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	"admesh/contexts/protocol-core/conviction-governance/ports"

	"github.com/google/uuid"
)

type voteKey struct {
	campaignID uint64
	voter      string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	votes      map[voteKey]entities.VoteRecord
	tallies    map[uint64]entities.CampaignVote
	pullLedger map[voteKey]entities.PullLedgerEntry
	failedNays map[string]uint32
	outbox     map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		votes:      make(map[voteKey]entities.VoteRecord),
		tallies:    make(map[uint64]entities.CampaignVote),
		pullLedger: make(map[voteKey]entities.PullLedgerEntry),
		failedNays: make(map[string]uint32),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) PutVote(_ context.Context, vote entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey{vote.CampaignID, vote.Voter}] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, campaignID uint64, voter string) (entities.VoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, found := s.votes[voteKey{campaignID, voter}]
	return vote, found, nil
}

func (s *Store) ListVotesByCampaign(_ context.Context, campaignID uint64) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoteRecord, 0)
	for key, vote := range s.votes {
		if key.campaignID == campaignID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Voter < items[j].Voter })
	return items, nil
}

func (s *Store) PutTally(_ context.Context, tally entities.CampaignVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[tally.CampaignID] = tally
	return nil
}

func (s *Store) GetTally(_ context.Context, campaignID uint64) (entities.CampaignVote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally, found := s.tallies[campaignID]
	return tally, found, nil
}

func (s *Store) PutEntry(_ context.Context, entry entities.PullLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pullLedger[voteKey{entry.CampaignID, entry.Voter}] = entry
	return nil
}

func (s *Store) GetEntry(_ context.Context, campaignID uint64, voter string) (entities.PullLedgerEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.pullLedger[voteKey{campaignID, voter}]
	return entry, found, nil
}

func (s *Store) FailedNayCount(_ context.Context, voter string) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failedNays[voter], nil
}

func (s *Store) IncrementFailedNay(_ context.Context, voter string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedNays[voter]++
	return s.failedNays[voter], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	if envelope.EventID == "" {
		return domainerrors.ErrInvalidVoteInput
	}
	if existing, ok := s.outbox[envelope.EventID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrInvalidVoteInput
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
		return domainerrors.ErrVoteNotFound
	}
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
