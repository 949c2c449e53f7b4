package httpadapter

import (
	"context"
	"log/slog"

	"admesh/contexts/protocol-core/claim-settlement/application/commands"
	"admesh/contexts/protocol-core/claim-settlement/application/queries"
	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
	httptransport "admesh/contexts/protocol-core/claim-settlement/transport/http"
)

type Handler struct {
	SettleClaims  commands.SettleClaimsUseCase
	Withdraw      commands.WithdrawUseCase
	GetChainState queries.GetChainStateUseCase
	GetBalances   queries.GetBalancesUseCase
	ListRecords   queries.ListRecordsUseCase
	Logger        *slog.Logger
}

func (h Handler) SettleClaimsHandler(
	ctx context.Context,
	caller string,
	req httptransport.SettleClaimsRequest,
) (httptransport.SettleClaimsResponse, error) {
	batches := make([]entities.ClaimBatch, 0, len(req.Batches))
	for _, batchDTO := range req.Batches {
		batch := entities.ClaimBatch{
			CampaignID: batchDTO.CampaignID,
			User:       batchDTO.User,
			Claims:     make([]entities.Claim, 0, len(batchDTO.Claims)),
		}
		for _, claimDTO := range batchDTO.Claims {
			batch.Claims = append(batch.Claims, entities.Claim{
				CampaignID:        claimDTO.CampaignID,
				Publisher:         claimDTO.Publisher,
				User:              claimDTO.User,
				Impressions:       claimDTO.Impressions,
				ClearingCpmPlanck: claimDTO.ClearingCpmPlanck,
				Nonce:             claimDTO.Nonce,
				PrevHash:          claimDTO.PrevHash,
				Hash:              claimDTO.Hash,
				AuctionProof:      claimDTO.AuctionProof,
			})
		}
		batches = append(batches, batch)
	}

	result, err := h.SettleClaims.Execute(ctx, caller, batches)
	if err != nil {
		return httptransport.SettleClaimsResponse{}, err
	}

	resp := httptransport.SettleClaimsResponse{
		Status:        "success",
		SettledCount:  result.SettledCount,
		RejectedCount: result.RejectedCount,
		Rejected:      make([]httptransport.RejectedClaimDTO, 0, len(result.Rejected)),
	}
	for _, rejected := range result.Rejected {
		resp.Rejected = append(resp.Rejected, httptransport.RejectedClaimDTO{
			CampaignID: rejected.CampaignID,
			User:       rejected.User,
			Nonce:      rejected.Nonce,
			Index:      rejected.Index,
			Reason:     string(rejected.Reason),
		})
	}
	return resp, nil
}

func (h Handler) WithdrawPublisherHandler(ctx context.Context, caller string) (httptransport.WithdrawResponse, error) {
	amount, err := h.Withdraw.WithdrawPublisher(ctx, caller)
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return httptransport.WithdrawResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) WithdrawUserHandler(ctx context.Context, caller string) (httptransport.WithdrawResponse, error) {
	amount, err := h.Withdraw.WithdrawUser(ctx, caller)
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return httptransport.WithdrawResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) WithdrawProtocolHandler(ctx context.Context, caller string) (httptransport.WithdrawResponse, error) {
	amount, err := h.Withdraw.WithdrawProtocol(ctx, caller)
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return httptransport.WithdrawResponse{Status: "success", AmountPlanck: amount}, nil
}

func (h Handler) GetChainStateHandler(ctx context.Context, user string, campaignID uint64) (httptransport.ChainStateResponse, error) {
	state, err := h.GetChainState.Execute(ctx, user, campaignID)
	if err != nil {
		return httptransport.ChainStateResponse{}, err
	}
	return httptransport.ChainStateResponse{Status: "success", Data: httptransport.ChainStateDTO{
		User:       state.User,
		CampaignID: state.CampaignID,
		LastNonce:  state.LastNonce,
		LastHash:   state.LastHash,
	}}, nil
}

func (h Handler) GetBalancesHandler(ctx context.Context, address string) (httptransport.BalancesResponse, error) {
	balances, err := h.GetBalances.Execute(ctx, address)
	if err != nil {
		return httptransport.BalancesResponse{}, err
	}
	return httptransport.BalancesResponse{Status: "success", Data: httptransport.BalancesDTO{
		Address:         balances.Address,
		PublisherPlanck: balances.PublisherPlanck,
		UserPlanck:      balances.UserPlanck,
		ProtocolPlanck:  balances.ProtocolPlanck,
	}}, nil
}

func (h Handler) ListRecordsHandler(ctx context.Context, campaignID uint64) (httptransport.ListRecordsResponse, error) {
	records, err := h.ListRecords.Execute(ctx, campaignID)
	if err != nil {
		return httptransport.ListRecordsResponse{}, err
	}
	resp := httptransport.ListRecordsResponse{
		Status: "success",
		Data:   make([]httptransport.SettlementRecordDTO, 0, len(records)),
	}
	for _, record := range records {
		resp.Data = append(resp.Data, httptransport.SettlementRecordDTO{
			RecordID:             record.RecordID,
			CampaignID:           record.CampaignID,
			User:                 record.User,
			Publisher:            record.Publisher,
			Nonce:                record.Nonce,
			Impressions:          record.Impressions,
			ClearingCpmPlanck:    record.ClearingCpmPlanck,
			TotalPlanck:          record.TotalPlanck,
			PublisherSharePlanck: record.PublisherSharePlanck,
			UserSharePlanck:      record.UserSharePlanck,
			ProtocolSharePlanck:  record.ProtocolSharePlanck,
			ClaimHash:            record.ClaimHash,
			SettledAtBlock:       record.SettledAtBlock,
		})
	}
	return resp, nil
}
