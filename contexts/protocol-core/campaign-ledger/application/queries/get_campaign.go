package queries

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
)

type GetCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc GetCampaignUseCase) Execute(ctx context.Context, campaignID uint64) (entities.Campaign, error) {
	return uc.Campaigns.GetCampaign(ctx, campaignID)
}

type ListCampaignsUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc ListCampaignsUseCase) Execute(ctx context.Context, filter ports.CampaignFilter) ([]entities.Campaign, error) {
	return uc.Campaigns.ListCampaigns(ctx, filter)
}
