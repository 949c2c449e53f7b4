package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	governanceerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	governancehttp "admesh/contexts/protocol-core/conviction-governance/transport/http"
	"admesh/internal/shared/reentrancy"
)

// handleVoteAye godoc
// @Summary Cast an aye vote with conviction-weighted stake
// @Tags conviction-governance
// @Router /v1/campaigns/{campaign_id}/votes/aye [post]
func (s *Server) handleVoteAye(w http.ResponseWriter, r *http.Request) {
	s.handleVote(w, r, s.governance.Handler.VoteAyeHandler)
}

func (s *Server) handleVoteNay(w http.ResponseWriter, r *http.Request) {
	s.handleVote(w, r, s.governance.Handler.VoteNayHandler)
}

func (s *Server) handleVote(
	w http.ResponseWriter,
	r *http.Request,
	cast func(ctx context.Context, caller string, campaignID uint64, req governancehttp.VoteRequest) (governancehttp.VoteResponse, error),
) {
	caller := resolveCaller(r)
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	var req governancehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := cast(r.Context(), caller, campaignID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.governance.Handler.ListVotesHandler(r.Context(), campaignID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}
	voter := strings.TrimSpace(r.PathValue("voter"))

	resp, err := s.governance.Handler.GetVoteHandler(r.Context(), campaignID, voter)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.governance.Handler.GetTallyHandler(r.Context(), campaignID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetClaimables(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}
	voter := strings.TrimSpace(r.PathValue("voter"))

	resp, err := s.governance.Handler.GetClaimablesHandler(r.Context(), campaignID, voter)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDistributeSlashRewards is operator-driven but carries no caller
// check itself: distribution only credits the pull ledger.
func (s *Server) handleDistributeSlashRewards(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := s.governance.Handler.DistributeSlashRewardsHandler(r.Context(), campaignID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaimSlashReward(w http.ResponseWriter, r *http.Request) {
	s.handleGovernanceClaim(w, r, s.governance.Handler.ClaimSlashRewardHandler)
}

func (s *Server) handleClaimAyeReward(w http.ResponseWriter, r *http.Request) {
	s.handleGovernanceClaim(w, r, s.governance.Handler.ClaimAyeRewardHandler)
}

func (s *Server) handleWithdrawStake(w http.ResponseWriter, r *http.Request) {
	s.handleGovernanceClaim(w, r, s.governance.Handler.WithdrawStakeHandler)
}

func (s *Server) handleGovernanceClaim(
	w http.ResponseWriter,
	r *http.Request,
	claim func(ctx context.Context, caller string, campaignID uint64) (governancehttp.AmountResponse, error),
) {
	caller := resolveCaller(r)
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	resp, err := claim(r.Context(), caller, campaignID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreditAyeReward(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeGovernanceError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	var req governancehttp.CreditAyeRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.CreditAyeRewardHandler(r.Context(), caller, campaignID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveFailedNay(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(r)
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign_id must be a positive integer")
		return
	}

	var req governancehttp.ResolveFailedNayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.governance.Handler.ResolveFailedNayHandler(r.Context(), campaignID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFailedNayCount(w http.ResponseWriter, r *http.Request) {
	voter := strings.TrimSpace(r.PathValue("voter"))

	resp, err := s.governance.Handler.FailedNayCountHandler(r.Context(), voter)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrInvalidVoteInput):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_vote_input", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyVoted):
		writeGovernanceError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, governanceerrors.ErrVoteNotFound):
		writeGovernanceError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrCampaignNotFound):
		writeGovernanceError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrCampaignNotPending),
		errors.Is(err, governanceerrors.ErrCampaignNotRunning),
		errors.Is(err, governanceerrors.ErrCampaignNotConcluded),
		errors.Is(err, governanceerrors.ErrCampaignNotCompleted),
		errors.Is(err, governanceerrors.ErrCampaignNotTerminated):
		writeGovernanceError(w, http.StatusConflict, "campaign_state_conflict", err.Error())
	case errors.Is(err, governanceerrors.ErrUnauthorizedCaller):
		writeGovernanceError(w, http.StatusForbidden, "unauthorized_caller", err.Error())
	case errors.Is(err, governanceerrors.ErrLockNotMatured):
		writeGovernanceError(w, http.StatusConflict, "lock_not_matured", err.Error())
	case errors.Is(err, governanceerrors.ErrNothingToClaim):
		writeGovernanceError(w, http.StatusConflict, "nothing_to_claim", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyResolved):
		writeGovernanceError(w, http.StatusConflict, "already_resolved", err.Error())
	case errors.Is(err, governanceerrors.ErrNayVoteRequired),
		errors.Is(err, governanceerrors.ErrAyeVoteRequired):
		writeGovernanceError(w, http.StatusConflict, "vote_direction_required", err.Error())
	case errors.Is(err, reentrancy.ErrReentrantCall):
		writeGovernanceError(w, http.StatusConflict, "reentrant_call", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
