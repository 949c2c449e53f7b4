package queries

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
	domainerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	"admesh/contexts/protocol-core/claim-settlement/ports"
)

type GetChainStateUseCase struct {
	ChainStates ports.ChainStateRepository
	Logger      *slog.Logger
}

func (uc GetChainStateUseCase) Execute(ctx context.Context, user string, campaignID uint64) (entities.ChainState, error) {
	state, found, err := uc.ChainStates.GetChainState(ctx, user, campaignID)
	if err != nil {
		return entities.ChainState{}, err
	}
	if !found {
		return entities.ChainState{}, domainerrors.ErrChainStateNotFound
	}
	return state, nil
}

// Balances groups the three pull-payment balances of one address.
type Balances struct {
	Address         string
	PublisherPlanck uint64
	UserPlanck      uint64
	ProtocolPlanck  uint64
}

type GetBalancesUseCase struct {
	Balances ports.BalanceRepository
	Logger   *slog.Logger
}

func (uc GetBalancesUseCase) Execute(ctx context.Context, address string) (Balances, error) {
	publisher, err := uc.Balances.GetBalance(ctx, entities.BalancePublisher, address)
	if err != nil {
		return Balances{}, err
	}
	user, err := uc.Balances.GetBalance(ctx, entities.BalanceUser, address)
	if err != nil {
		return Balances{}, err
	}
	protocol, err := uc.Balances.GetBalance(ctx, entities.BalanceProtocol, address)
	if err != nil {
		return Balances{}, err
	}
	return Balances{
		Address:         address,
		PublisherPlanck: publisher,
		UserPlanck:      user,
		ProtocolPlanck:  protocol,
	}, nil
}

type ListRecordsUseCase struct {
	Records ports.SettlementRecordRepository
	Logger  *slog.Logger
}

func (uc ListRecordsUseCase) Execute(ctx context.Context, campaignID uint64) ([]entities.SettlementRecord, error) {
	return uc.Records.ListRecordsByCampaign(ctx, campaignID)
}
