package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Dev chain endpoints drive the in-process node: advancing the block
// counter and funding accounts. They back local development and the test
// harness; an external sequencer deployment disables them at the proxy.

type chainAdvanceRequest struct {
	Blocks uint64 `json:"blocks"`
}

type chainMintRequest struct {
	Account      string `json:"account"`
	AmountPlanck uint64 `json:"amount_planck"`
}

type chainBlockResponse struct {
	Status string `json:"status"`
	Block  uint64 `json:"block"`
}

type chainBalanceResponse struct {
	Status       string `json:"status"`
	Account      string `json:"account"`
	AmountPlanck uint64 `json:"amount_planck"`
}

type chainErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleChainBlock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chainBlockResponse{Status: "success", Block: s.node.BlockNumber()})
}

func (s *Server) handleChainAdvance(w http.ResponseWriter, r *http.Request) {
	var req chainAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chainErrorResponse{Code: "invalid_json", Message: "request body must be valid JSON"})
		return
	}
	if req.Blocks == 0 {
		writeJSON(w, http.StatusBadRequest, chainErrorResponse{Code: "invalid_blocks", Message: "blocks must be positive"})
		return
	}

	s.node.AdvanceBlocks(req.Blocks)
	writeJSON(w, http.StatusOK, chainBlockResponse{Status: "success", Block: s.node.BlockNumber()})
}

func (s *Server) handleChainMint(w http.ResponseWriter, r *http.Request) {
	var req chainMintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chainErrorResponse{Code: "invalid_json", Message: "request body must be valid JSON"})
		return
	}
	if strings.TrimSpace(req.Account) == "" {
		writeJSON(w, http.StatusBadRequest, chainErrorResponse{Code: "invalid_account", Message: "account is required"})
		return
	}

	s.node.Mint(req.Account, req.AmountPlanck)
	writeJSON(w, http.StatusOK, chainBalanceResponse{
		Status:       "success",
		Account:      req.Account,
		AmountPlanck: s.node.BalanceOf(req.Account),
	})
}

func (s *Server) handleChainBalance(w http.ResponseWriter, r *http.Request) {
	account := strings.TrimSpace(r.PathValue("address"))
	writeJSON(w, http.StatusOK, chainBalanceResponse{
		Status:       "success",
		Account:      account,
		AmountPlanck: s.node.BalanceOf(account),
	})
}
