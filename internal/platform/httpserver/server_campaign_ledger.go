package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "admesh/contexts/protocol-core/campaign-ledger/domain/errors"
	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	"admesh/contexts/protocol-core/campaign-ledger/ports"
	ledgerhttp "admesh/contexts/protocol-core/campaign-ledger/transport/http"
	"admesh/internal/shared/reentrancy"
)

// handleCreateCampaign godoc
// @Summary Create a campaign
// @Tags campaign-ledger
// @Router /v1/campaigns [post]
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}

	var req ledgerhttp.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CreateCampaignHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ports.CampaignFilter{
		Advertiser: query.Get("advertiser"),
		Publisher:  query.Get("publisher"),
		Status:     entities.CampaignStatus(query.Get("status")),
	}

	resp, err := s.ledger.Handler.ListCampaignsHandler(r.Context(), filter)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.ledger.Handler.GetCampaignHandler(r.Context(), campaignID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateCampaign(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycleTransition(w, r, s.ledger.Handler.ActivateHandler)
}

func (s *Server) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycleTransition(w, r, s.ledger.Handler.PauseHandler)
}

func (s *Server) handleResumeCampaign(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycleTransition(w, r, s.ledger.Handler.ResumeHandler)
}

func (s *Server) handleCompleteCampaign(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycleTransition(w, r, s.ledger.Handler.CompleteHandler)
}

func (s *Server) handleTerminateCampaign(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycleTransition(w, r, s.ledger.Handler.TerminateHandler)
}

// handleExpireCampaign is permissionless: anyone may expire a pending
// campaign once its deadline has passed.
func (s *Server) handleExpireCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.ledger.Handler.ExpireHandler(r.Context(), campaignID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeductBudget(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	var req ledgerhttp.DeductBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.DeductBudgetHandler(r.Context(), caller, campaignID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLifecycleTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, caller string, campaignID uint64) (ledgerhttp.AckResponse, error),
) {
	caller := resolveCaller(r)
	if caller == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeLedgerError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := transition(r.Context(), caller, campaignID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidCampaignInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_campaign_input", err.Error())
	case errors.Is(err, ledgererrors.ErrCampaignNotFound):
		writeLedgerError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrPublisherNotRegistered):
		writeLedgerError(w, http.StatusUnprocessableEntity, "publisher_not_registered", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidStateTransition):
		writeLedgerError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, ledgererrors.ErrUnauthorizedCaller):
		writeLedgerError(w, http.StatusForbidden, "unauthorized_caller", err.Error())
	case errors.Is(err, ledgererrors.ErrExpiryDeadlineNotDue):
		writeLedgerError(w, http.StatusConflict, "expiry_deadline_not_due", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBudget):
		writeLedgerError(w, http.StatusUnprocessableEntity, "insufficient_budget", err.Error())
	case errors.Is(err, ledgererrors.ErrDailyCapExceeded):
		writeLedgerError(w, http.StatusUnprocessableEntity, "daily_cap_exceeded", err.Error())
	case errors.Is(err, reentrancy.ErrReentrantCall):
		writeLedgerError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
