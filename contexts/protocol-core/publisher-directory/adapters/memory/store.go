package memory

import (
	"context"
	"sort"
	"sync"

	"admesh/contexts/protocol-core/publisher-directory/ports"
)

type Store struct {
	mu         sync.RWMutex
	publishers map[string]ports.Publisher
}

func NewStore(seed []ports.Publisher) *Store {
	store := &Store{publishers: make(map[string]ports.Publisher, len(seed))}
	for _, publisher := range seed {
		store.publishers[publisher.Address] = publisher
	}
	return store
}

func (s *Store) PutPublisher(_ context.Context, publisher ports.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers[publisher.Address] = publisher
	return nil
}

func (s *Store) GetPublisher(_ context.Context, address string) (ports.Publisher, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	publisher, found := s.publishers[address]
	return publisher, found, nil
}

func (s *Store) ListPublishers(_ context.Context) ([]ports.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.Publisher, 0, len(s.publishers))
	for _, publisher := range s.publishers {
		out = append(out, publisher)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}
