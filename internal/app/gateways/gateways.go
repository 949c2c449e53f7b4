package gateways

import (
	"context"
	"errors"

	ledgercommands "admesh/contexts/protocol-core/campaign-ledger/application/commands"
	ledgerqueries "admesh/contexts/protocol-core/campaign-ledger/application/queries"
	ledgererrors "admesh/contexts/protocol-core/campaign-ledger/domain/errors"
	ledgerports "admesh/contexts/protocol-core/campaign-ledger/ports"
	settlementerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	settlementports "admesh/contexts/protocol-core/claim-settlement/ports"
	governanceerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	governanceports "admesh/contexts/protocol-core/conviction-governance/ports"
	directoryapp "admesh/contexts/protocol-core/publisher-directory/application"
	directoryerrors "admesh/contexts/protocol-core/publisher-directory/domain/errors"
)

// Package gateways adapts each service's outbound port onto another
// service's inbound use cases. The cross-service calls the protocol needs
// are synchronous, so the adapters live here in the composition layer
// rather than coupling the contexts to each other.

// PublisherDirectoryGateway exposes the directory to the campaign ledger.
// An unknown address maps to an unregistered record, not an error.
type PublisherDirectoryGateway struct {
	Directory directoryapp.Service
}

func (g PublisherDirectoryGateway) GetPublisher(ctx context.Context, address string) (ledgerports.PublisherRecord, error) {
	publisher, err := g.Directory.GetPublisher(ctx, address)
	if errors.Is(err, directoryerrors.ErrPublisherNotFound) {
		return ledgerports.PublisherRecord{Address: address}, nil
	}
	if err != nil {
		return ledgerports.PublisherRecord{}, err
	}
	return ledgerports.PublisherRecord{
		Address:     publisher.Address,
		TakeRateBps: publisher.TakeRateBps,
		Registered:  true,
	}, nil
}

// GovernanceLedgerGateway lets conviction governance read campaign state and
// drive activations/terminations as the configured governance account.
type GovernanceLedgerGateway struct {
	Campaigns         ledgerqueries.GetCampaignUseCase
	Lifecycle         ledgercommands.LifecycleUseCase
	GovernanceAccount string
}

func (g GovernanceLedgerGateway) GetCampaign(ctx context.Context, campaignID uint64) (governanceports.CampaignView, error) {
	campaign, err := g.Campaigns.Execute(ctx, campaignID)
	if errors.Is(err, ledgererrors.ErrCampaignNotFound) {
		return governanceports.CampaignView{}, governanceerrors.ErrCampaignNotFound
	}
	if err != nil {
		return governanceports.CampaignView{}, err
	}
	return governanceports.CampaignView{
		CampaignID:      campaign.CampaignID,
		Status:          string(campaign.Status),
		RemainingPlanck: campaign.RemainingPlanck,
	}, nil
}

func (g GovernanceLedgerGateway) Activate(ctx context.Context, campaignID uint64) error {
	return g.Lifecycle.Activate(ctx, g.GovernanceAccount, campaignID)
}

func (g GovernanceLedgerGateway) Terminate(ctx context.Context, campaignID uint64) (uint64, error) {
	return g.Lifecycle.Terminate(ctx, g.GovernanceAccount, campaignID)
}

// SettlementLedgerGateway lets claim settlement read campaign state and
// deduct budget as the configured settlement account.
type SettlementLedgerGateway struct {
	Campaigns         ledgerqueries.GetCampaignUseCase
	Deduct            ledgercommands.DeductBudgetUseCase
	SettlementAccount string
}

func (g SettlementLedgerGateway) GetCampaign(ctx context.Context, campaignID uint64) (settlementports.CampaignView, bool, error) {
	campaign, err := g.Campaigns.Execute(ctx, campaignID)
	if errors.Is(err, ledgererrors.ErrCampaignNotFound) {
		return settlementports.CampaignView{}, false, nil
	}
	if err != nil {
		return settlementports.CampaignView{}, false, err
	}
	return settlementports.CampaignView{
		CampaignID:          campaign.CampaignID,
		Publisher:           campaign.Publisher,
		Status:              string(campaign.Status),
		RemainingPlanck:     campaign.RemainingPlanck,
		MaxBidCpmPlanck:     campaign.MaxBidCpmPlanck,
		SnapshotTakeRateBps: campaign.SnapshotTakeRateBps,
	}, true, nil
}

// DeductBudget translates the ledger's budget and daily-cap refusals into
// the settlement sentinel so settlement can downgrade them to per-claim
// rejections; anything else (repository or transfer failure) propagates
// untranslated and aborts the settlement call.
func (g SettlementLedgerGateway) DeductBudget(ctx context.Context, campaignID uint64, amount uint64) error {
	err := g.Deduct.Execute(ctx, g.SettlementAccount, campaignID, amount)
	if errors.Is(err, ledgererrors.ErrInsufficientBudget) || errors.Is(err, ledgererrors.ErrDailyCapExceeded) {
		return settlementerrors.ErrBudgetUnavailable
	}
	return err
}
