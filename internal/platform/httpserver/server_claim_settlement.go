package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	settlementerrors "admesh/contexts/protocol-core/claim-settlement/domain/errors"
	settlementhttp "admesh/contexts/protocol-core/claim-settlement/transport/http"
	"admesh/internal/shared/reentrancy"
)

// handleSettleClaims godoc
// @Summary Settle hash-chained claim batches
// @Tags claim-settlement
// @Router /v1/settlement/claims [post]
func (s *Server) handleSettleClaims(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeSettlementError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}

	var req settlementhttp.SettleClaimsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSettlementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.settlement.Handler.SettleClaimsHandler(r.Context(), caller, req)
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawPublisher(w http.ResponseWriter, r *http.Request) {
	s.handleSettlementWithdrawal(w, r, s.settlement.Handler.WithdrawPublisherHandler)
}

func (s *Server) handleWithdrawUser(w http.ResponseWriter, r *http.Request) {
	s.handleSettlementWithdrawal(w, r, s.settlement.Handler.WithdrawUserHandler)
}

func (s *Server) handleWithdrawProtocol(w http.ResponseWriter, r *http.Request) {
	s.handleSettlementWithdrawal(w, r, s.settlement.Handler.WithdrawProtocolHandler)
}

func (s *Server) handleSettlementWithdrawal(
	w http.ResponseWriter,
	r *http.Request,
	withdraw func(ctx context.Context, caller string) (settlementhttp.WithdrawResponse, error),
) {
	caller := resolveCaller(r)
	if caller == "" {
		writeSettlementError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}

	resp, err := withdraw(r.Context(), caller)
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetChainState(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.PathValue("user"))
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeSettlementError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.settlement.Handler.GetChainStateHandler(r.Context(), user, campaignID)
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))

	resp, err := s.settlement.Handler.GetBalancesHandler(r.Context(), address)
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSettlementRecords(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeSettlementError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.settlement.Handler.ListRecordsHandler(r.Context(), campaignID)
	if err != nil {
		writeSettlementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSettlementDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlementerrors.ErrInvalidBatchInput):
		writeSettlementError(w, http.StatusBadRequest, "invalid_batch_input", err.Error())
	case errors.Is(err, settlementerrors.ErrBatchTooLarge):
		writeSettlementError(w, http.StatusRequestEntityTooLarge, "batch_too_large", err.Error())
	case errors.Is(err, settlementerrors.ErrUnauthorizedCaller):
		writeSettlementError(w, http.StatusForbidden, "unauthorized_caller", err.Error())
	case errors.Is(err, settlementerrors.ErrNothingToWithdraw):
		writeSettlementError(w, http.StatusConflict, "nothing_to_withdraw", err.Error())
	case errors.Is(err, settlementerrors.ErrChainStateNotFound):
		writeSettlementError(w, http.StatusNotFound, "chain_state_not_found", err.Error())
	case errors.Is(err, reentrancy.ErrReentrantCall):
		writeSettlementError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeSettlementError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSettlementError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, settlementhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
