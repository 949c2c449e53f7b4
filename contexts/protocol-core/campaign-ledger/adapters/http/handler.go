package httpadapter

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/campaign-ledger/application/commands"
	"admesh/contexts/protocol-core/campaign-ledger/application/queries"
	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
	httptransport "admesh/contexts/protocol-core/campaign-ledger/transport/http"
)

type Handler struct {
	CreateCampaign commands.CreateCampaignUseCase
	Lifecycle      commands.LifecycleUseCase
	DeductBudget   commands.DeductBudgetUseCase
	GetCampaign    queries.GetCampaignUseCase
	ListCampaigns  queries.ListCampaignsUseCase
	Logger         *slog.Logger
}

func (h Handler) CreateCampaignHandler(
	ctx context.Context,
	caller string,
	req httptransport.CreateCampaignRequest,
) (httptransport.CampaignResponse, error) {
	campaign, err := h.CreateCampaign.Execute(ctx, commands.CreateCampaignCommand{
		Advertiser:      caller,
		Publisher:       req.Publisher,
		DailyCapPlanck:  req.DailyCapPlanck,
		MaxBidCpmPlanck: req.MaxBidCpmPlanck,
		BudgetPlanck:    req.BudgetPlanck,
	})
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return httptransport.CampaignResponse{Status: "success", Data: toDTO(campaign)}, nil
}

func (h Handler) ActivateHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Lifecycle.Activate(ctx, caller, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) PauseHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Lifecycle.Pause(ctx, caller, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) ResumeHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Lifecycle.Resume(ctx, caller, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) CompleteHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Lifecycle.Complete(ctx, caller, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) TerminateHandler(ctx context.Context, caller string, campaignID uint64) (httptransport.AckResponse, error) {
	if _, err := h.Lifecycle.Terminate(ctx, caller, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) ExpireHandler(ctx context.Context, campaignID uint64) (httptransport.AckResponse, error) {
	if err := h.Lifecycle.Expire(ctx, campaignID); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) DeductBudgetHandler(
	ctx context.Context,
	caller string,
	campaignID uint64,
	req httptransport.DeductBudgetRequest,
) (httptransport.AckResponse, error) {
	if err := h.DeductBudget.Execute(ctx, caller, campaignID, req.AmountPlanck); err != nil {
		return httptransport.AckResponse{}, err
	}
	return httptransport.AckResponse{Status: "success"}, nil
}

func (h Handler) GetCampaignHandler(ctx context.Context, campaignID uint64) (httptransport.CampaignResponse, error) {
	campaign, err := h.GetCampaign.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.CampaignResponse{}, err
	}
	return httptransport.CampaignResponse{Status: "success", Data: toDTO(campaign)}, nil
}

func (h Handler) ListCampaignsHandler(ctx context.Context, filter ports.CampaignFilter) (httptransport.ListCampaignsResponse, error) {
	items, err := h.ListCampaigns.Execute(ctx, filter)
	if err != nil {
		return httptransport.ListCampaignsResponse{}, err
	}
	resp := httptransport.ListCampaignsResponse{
		Status: "success",
		Data:   make([]httptransport.CampaignDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, toDTO(item))
	}
	return resp, nil
}

func toDTO(campaign entities.Campaign) httptransport.CampaignDTO {
	return httptransport.CampaignDTO{
		CampaignID:          campaign.CampaignID,
		Advertiser:          campaign.Advertiser,
		Publisher:           campaign.Publisher,
		BudgetPlanck:        campaign.BudgetPlanck,
		RemainingPlanck:     campaign.RemainingPlanck,
		DailyCapPlanck:      campaign.DailyCapPlanck,
		MaxBidCpmPlanck:     campaign.MaxBidCpmPlanck,
		DailySpentPlanck:    campaign.DailySpentPlanck,
		LastSpendDay:        campaign.LastSpendDay,
		PendingExpiryBlock:  campaign.PendingExpiryBlock,
		TerminationBlock:    campaign.TerminationBlock,
		SnapshotTakeRateBps: campaign.SnapshotTakeRateBps,
		Status:              string(campaign.Status),
		SchemaVersion:       campaign.SchemaVersion,
	}
}
