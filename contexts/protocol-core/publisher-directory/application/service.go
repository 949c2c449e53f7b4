package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "admesh/contexts/protocol-core/publisher-directory/domain/errors"
	"admesh/contexts/protocol-core/publisher-directory/ports"
)

const maxTakeRateBps = 10_000

type Service struct {
	Repo                  ports.Repository
	Clock                 ports.ChainClock
	RateUpdateDelayBlocks uint64
	Logger                *slog.Logger
}

// RegisterPublisher adds an address to the directory with its initial
// take-rate. Registration is first-come: a second registration for the same
// address is rejected rather than silently updating the rate.
func (s Service) RegisterPublisher(ctx context.Context, address string, takeRateBps uint32) (ports.Publisher, error) {
	logger := resolveLogger(s.Logger)
	address = strings.TrimSpace(address)
	if address == "" || takeRateBps > maxTakeRateBps {
		return ports.Publisher{}, domainerrors.ErrInvalidPublisherInput
	}

	if _, found, err := s.Repo.GetPublisher(ctx, address); err != nil {
		return ports.Publisher{}, err
	} else if found {
		return ports.Publisher{}, domainerrors.ErrPublisherAlreadyExists
	}

	publisher := ports.Publisher{
		Address:     address,
		TakeRateBps: takeRateBps,
	}
	if err := s.Repo.PutPublisher(ctx, publisher); err != nil {
		return ports.Publisher{}, err
	}

	logger.Info("publisher registered",
		"event", "publisher_registered",
		"module", "protocol-core/publisher-directory",
		"layer", "application",
		"publisher", address,
		"take_rate_bps", takeRateBps,
	)
	return publisher, nil
}

// ScheduleRateUpdate queues a new take-rate that becomes effective only
// after the configured block delay. Until the effect block is reached,
// reads keep resolving the old rate, so campaigns created in the window
// still snapshot the rate the advertiser agreed to.
func (s Service) ScheduleRateUpdate(ctx context.Context, address string, newRateBps uint32) (ports.Publisher, error) {
	logger := resolveLogger(s.Logger)
	address = strings.TrimSpace(address)
	if address == "" || newRateBps > maxTakeRateBps {
		return ports.Publisher{}, domainerrors.ErrInvalidPublisherInput
	}

	publisher, found, err := s.Repo.GetPublisher(ctx, address)
	if err != nil {
		return ports.Publisher{}, err
	}
	if !found {
		return ports.Publisher{}, domainerrors.ErrPublisherNotFound
	}
	publisher = s.resolvePending(publisher)
	if publisher.HasPendingRate {
		return ports.Publisher{}, domainerrors.ErrRateUpdateAlreadyQueued
	}

	publisher.PendingRateBps = newRateBps
	publisher.PendingEffectBlock = s.Clock.BlockNumber() + s.RateUpdateDelayBlocks
	publisher.HasPendingRate = true
	if err := s.Repo.PutPublisher(ctx, publisher); err != nil {
		return ports.Publisher{}, err
	}

	logger.Info("publisher rate update scheduled",
		"event", "publisher_rate_update_scheduled",
		"module", "protocol-core/publisher-directory",
		"layer", "application",
		"publisher", address,
		"new_rate_bps", newRateBps,
		"effect_block", publisher.PendingEffectBlock,
	)
	return publisher, nil
}

// GetPublisher returns the directory record with any matured pending rate
// applied. Maturation is persisted so subsequent reads are stable.
func (s Service) GetPublisher(ctx context.Context, address string) (ports.Publisher, error) {
	publisher, found, err := s.Repo.GetPublisher(ctx, strings.TrimSpace(address))
	if err != nil {
		return ports.Publisher{}, err
	}
	if !found {
		return ports.Publisher{}, domainerrors.ErrPublisherNotFound
	}

	resolved := s.resolvePending(publisher)
	if resolved.TakeRateBps != publisher.TakeRateBps || resolved.HasPendingRate != publisher.HasPendingRate {
		if err := s.Repo.PutPublisher(ctx, resolved); err != nil {
			return ports.Publisher{}, err
		}
	}
	return resolved, nil
}

func (s Service) ListPublishers(ctx context.Context) ([]ports.Publisher, error) {
	publishers, err := s.Repo.ListPublishers(ctx)
	if err != nil {
		return nil, err
	}
	resolved := make([]ports.Publisher, 0, len(publishers))
	for _, publisher := range publishers {
		resolved = append(resolved, s.resolvePending(publisher))
	}
	return resolved, nil
}

func (s Service) resolvePending(publisher ports.Publisher) ports.Publisher {
	if publisher.HasPendingRate && s.Clock.BlockNumber() >= publisher.PendingEffectBlock {
		publisher.TakeRateBps = publisher.PendingRateBps
		publisher.PendingRateBps = 0
		publisher.PendingEffectBlock = 0
		publisher.HasPendingRate = false
	}
	return publisher
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
