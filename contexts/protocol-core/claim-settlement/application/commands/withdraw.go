package commands

import (
	"context"
	"log/slog"
	"strings"

	application "admesh/contexts/protocol-core/claim-settlement/application"
	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
	domainerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	"admesh/contexts/protocol-core/claim-settlement/ports"
	"admesh/internal/shared/reentrancy"
)

// WithdrawUseCase pays out the three pull-payment balance classes. Each
// withdrawal zeroes the stored balance strictly before transferring and
// refuses re-entrant invocation; a failed transfer restores the balance so
// the caller can retry.
type WithdrawUseCase struct {
	Balances                ports.BalanceRepository
	Treasury                ports.Treasury
	Clock                   ports.ChainClock
	Outbox                  ports.OutboxWriter
	IDGen                   ports.IDGenerator
	Guard                   *reentrancy.Guard
	CustodyAccount          string
	ProtocolTreasuryAccount string
	Logger                  *slog.Logger
}

func (uc WithdrawUseCase) WithdrawPublisher(ctx context.Context, caller string) (uint64, error) {
	return uc.withdraw(ctx, entities.BalancePublisher, caller, caller)
}

func (uc WithdrawUseCase) WithdrawUser(ctx context.Context, caller string) (uint64, error) {
	return uc.withdraw(ctx, entities.BalanceUser, caller, caller)
}

// WithdrawProtocol is restricted to the configured protocol treasury
// address, which owns the single accumulated protocol balance.
func (uc WithdrawUseCase) WithdrawProtocol(ctx context.Context, caller string) (uint64, error) {
	if strings.TrimSpace(caller) != uc.ProtocolTreasuryAccount {
		return 0, domainerrors.ErrUnauthorizedCaller
	}
	return uc.withdraw(ctx, entities.BalanceProtocol, uc.ProtocolTreasuryAccount, uc.ProtocolTreasuryAccount)
}

func (uc WithdrawUseCase) withdraw(ctx context.Context, class entities.BalanceClass, address, recipient string) (uint64, error) {
	logger := application.ResolveLogger(uc.Logger)
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, domainerrors.ErrInvalidBatchInput
	}
	if err := uc.Guard.Enter(); err != nil {
		return 0, err
	}
	defer uc.Guard.Exit()

	amount, err := uc.Balances.GetBalance(ctx, class, address)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, domainerrors.ErrNothingToWithdraw
	}

	if err := uc.Balances.SetBalance(ctx, class, address, 0); err != nil {
		return 0, err
	}
	if err := uc.Treasury.Transfer(ctx, uc.CustodyAccount, recipient, amount); err != nil {
		if restoreErr := uc.Balances.SetBalance(ctx, class, address, amount); restoreErr != nil {
			return 0, restoreErr
		}
		return 0, err
	}

	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return 0, err
		}
		envelope, err := newSettlementEnvelope(eventID, "settlement.withdrawn", 0, uc.Clock.Now(), map[string]any{
			"class":         string(class),
			"address":       address,
			"amount_planck": amount,
		})
		if err != nil {
			return 0, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return 0, err
		}
	}

	logger.Info("settlement balance withdrawn",
		"event", "settlement_balance_withdrawn",
		"module", "protocol-core/claim-settlement",
		"layer", "application",
		"class", string(class),
		"address", address,
		"amount_planck", amount,
	)
	return amount, nil
}
