package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	campaignledger "admesh/contexts/protocol-core/campaign-ledger"
	claimsettlement "admesh/contexts/protocol-core/claim-settlement"
	convictiongovernance "admesh/contexts/protocol-core/conviction-governance"
	publisherdirectory "admesh/contexts/protocol-core/publisher-directory"
	"admesh/internal/platform/chain"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "admesh/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	seq        sync.Mutex
	logger     *slog.Logger
	addr       string
	ledger     campaignledger.Module
	governance convictiongovernance.Module
	settlement claimsettlement.Module
	directory  publisherdirectory.Module
	node       *chain.Node
}

func New(
	ledger campaignledger.Module,
	governance convictiongovernance.Module,
	settlement claimsettlement.Module,
	directory publisherdirectory.Module,
	node *chain.Node,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		ledger:     ledger,
		governance: governance,
		settlement: settlement,
		directory:  directory,
		node:       node,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s)
}

// ServeHTTP executes requests one at a time, mirroring the sequential
// extrinsic ordering of the chain runtime this service models. Use cases
// can therefore read-modify-write state without per-request races.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.seq.Lock()
	defer s.seq.Unlock()
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/campaigns", s.handleCreateCampaign)
	s.mux.HandleFunc("GET /v1/campaigns", s.handleListCampaigns)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}", s.handleGetCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/activate", s.handleActivateCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/pause", s.handlePauseCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/resume", s.handleResumeCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/complete", s.handleCompleteCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/terminate", s.handleTerminateCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/expire", s.handleExpireCampaign)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/deduct-budget", s.handleDeductBudget)

	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/votes/aye", s.handleVoteAye)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/votes/nay", s.handleVoteNay)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/votes/{voter}", s.handleGetVote)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/tally", s.handleGetTally)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/claimables/{voter}", s.handleGetClaimables)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/slash/distribute", s.handleDistributeSlashRewards)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/slash/claim", s.handleClaimSlashReward)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/rewards/credit", s.handleCreditAyeReward)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/rewards/claim", s.handleClaimAyeReward)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/stake/withdraw", s.handleWithdrawStake)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/failed-nay/resolve", s.handleResolveFailedNay)
	s.mux.HandleFunc("GET /v1/governance/failed-nays/{voter}", s.handleFailedNayCount)

	s.mux.HandleFunc("POST /v1/settlement/claims", s.handleSettleClaims)
	s.mux.HandleFunc("POST /v1/settlement/withdrawals/publisher", s.handleWithdrawPublisher)
	s.mux.HandleFunc("POST /v1/settlement/withdrawals/user", s.handleWithdrawUser)
	s.mux.HandleFunc("POST /v1/settlement/withdrawals/protocol", s.handleWithdrawProtocol)
	s.mux.HandleFunc("GET /v1/settlement/chains/{user}/{campaign_id}", s.handleGetChainState)
	s.mux.HandleFunc("GET /v1/settlement/balances/{address}", s.handleGetBalances)
	s.mux.HandleFunc("GET /v1/settlement/records/{campaign_id}", s.handleListSettlementRecords)

	s.mux.HandleFunc("POST /v1/publishers", s.handleRegisterPublisher)
	s.mux.HandleFunc("POST /v1/publishers/rate-update", s.handleScheduleRateUpdate)
	s.mux.HandleFunc("GET /v1/publishers", s.handleListPublishers)
	s.mux.HandleFunc("GET /v1/publishers/{address}", s.handleGetPublisher)

	s.mux.HandleFunc("GET /v1/dev/chain/block", s.handleChainBlock)
	s.mux.HandleFunc("POST /v1/dev/chain/advance", s.handleChainAdvance)
	s.mux.HandleFunc("POST /v1/dev/chain/mint", s.handleChainMint)
	s.mux.HandleFunc("GET /v1/dev/chain/accounts/{address}/balance", s.handleChainBalance)
}

// resolveCaller extracts the caller address asserted by the edge proxy.
// Signature verification happens upstream; services only compare addresses.
func resolveCaller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Caller-Address"))
}

func parseCampaignID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("campaign_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
