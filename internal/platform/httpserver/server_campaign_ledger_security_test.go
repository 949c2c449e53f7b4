package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	campaignledger "admesh/contexts/protocol-core/campaign-ledger"
	claimsettlement "admesh/contexts/protocol-core/claim-settlement"
	convictiongovernance "admesh/contexts/protocol-core/conviction-governance"
	publisherdirectory "admesh/contexts/protocol-core/publisher-directory"
	"admesh/internal/app/gateways"
	"admesh/internal/platform/chain"
	"admesh/internal/platform/messaging"
)

func newTestServer() *Server {
	logger := slog.Default()
	node := chain.NewNode(logger)
	bus := messaging.NewBus(logger)

	directory := publisherdirectory.NewInMemoryModule(nil, node, 10, logger)
	ledger := campaignledger.NewInMemoryModule(
		nil,
		gateways.PublisherDirectoryGateway{Directory: directory.Service},
		node,
		node,
		bus,
		campaignledger.Config{
			EscrowAccount:       "campaign-escrow",
			GovernanceAccount:   "governance",
			SettlementAccount:   "settlement",
			MinBidCpmPlanck:     1_000_000,
			PendingExpiryBlocks: 100,
		},
		logger,
	)
	governance := convictiongovernance.NewInMemoryModule(
		gateways.GovernanceLedgerGateway{
			Campaigns:         ledger.Handler.GetCampaign,
			Lifecycle:         ledger.Lifecycle,
			GovernanceAccount: "governance",
		},
		node,
		node,
		bus,
		convictiongovernance.Config{
			CustodyAccount:         "governance",
			RewardsOperatorAccount: "rewards-operator",
			BaseLockupBlocks:       10,
			MaxLockupBlocks:        1000,
			ActivationThreshold:    1_000_000,
			TerminationThreshold:   2_000_000,
			MinReviewerStake:       100,
		},
		logger,
	)
	settlement := claimsettlement.NewInMemoryModule(
		gateways.SettlementLedgerGateway{
			Campaigns:         ledger.Handler.GetCampaign,
			Deduct:            ledger.DeductBudget,
			SettlementAccount: "settlement",
		},
		node,
		node,
		bus,
		claimsettlement.Config{
			CustodyAccount:          "settlement",
			ProtocolTreasuryAccount: "protocol-treasury",
			MaxClaimsPerBatch:       50,
		},
		logger,
	)

	return New(ledger, governance, settlement, directory, node, logger, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller-Address", caller)
	}

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func mintTestFunds(t *testing.T, server *Server, account string, amount uint64) {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/v1/dev/chain/mint", "", map[string]any{
		"account":       account,
		"amount_planck": amount,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("mint failed: %d body=%s", rr.Code, rr.Body.String())
	}
}

func registerTestPublisher(t *testing.T, server *Server, address string, takeRateBps uint32) {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/v1/publishers", address, map[string]any{
		"take_rate_bps": takeRateBps,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register publisher failed: %d body=%s", rr.Code, rr.Body.String())
	}
}

func createTestCampaign(t *testing.T, server *Server, advertiser string, publisher string, budget uint64, dailyCap uint64, bidCpm uint64) uint64 {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns", advertiser, map[string]any{
		"publisher":          publisher,
		"budget_planck":      budget,
		"daily_cap_planck":   dailyCap,
		"max_bid_cpm_planck": bidCpm,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create campaign failed: %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Data struct {
			CampaignID uint64 `json:"campaign_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	return payload.Data.CampaignID
}

func TestCreateCampaignRequiresCaller(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns", "", map[string]any{
		"publisher":          "pub-1",
		"budget_planck":      1000,
		"daily_cap_planck":   100,
		"max_bid_cpm_planck": 2_000_000,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateCampaignRejectsUnregisteredPublisher(t *testing.T) {
	server := newTestServer()
	mintTestFunds(t, server, "adv-1", 10_000)
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns", "adv-1", map[string]any{
		"publisher":          "pub-unknown",
		"budget_planck":      1000,
		"daily_cap_planck":   100,
		"max_bid_cpm_planck": 2_000_000,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateCampaignReturnsCanonicalResponse(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns", "adv-1", map[string]any{
		"publisher":          "pub-1",
		"budget_planck":      1000,
		"daily_cap_planck":   100,
		"max_bid_cpm_planck": 2_000_000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if payload["status"] != "success" {
		t.Fatalf("expected success status, got %#v", payload["status"])
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data payload, got %#v", payload["data"])
	}
	if data["status"] != "pending" {
		t.Fatalf("expected pending campaign, got %#v", data["status"])
	}
	if data["snapshot_take_rate_bps"] != float64(5000) {
		t.Fatalf("expected snapshot take rate 5000, got %#v", data["snapshot_take_rate_bps"])
	}
}

func TestGetCampaignRejectsInvalidID(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/not-a-number", nil)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetCampaignUnknownReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/campaigns/999", nil)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestActivateCampaignRequiresGovernanceCaller(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	campaignID := createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/activate", "adv-1", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for campaign %d, got %d body=%s", campaignID, rr.Code, rr.Body.String())
	}
}

func TestDeductBudgetRequiresSettlementCaller(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/deduct-budget", "adv-1", map[string]any{
		"amount_planck": 10,
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestExpireCampaignBeforeDeadlineConflicts(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/expire", "", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestExpireCampaignAfterDeadlineRefundsAdvertiser(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	advance := doJSON(t, server, http.MethodPost, "/v1/dev/chain/advance", "", map[string]any{"blocks": 200})
	if advance.Code != http.StatusOK {
		t.Fatalf("advance failed: %d body=%s", advance.Code, advance.Body.String())
	}

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/expire", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	balance := doJSON(t, server, http.MethodGet, "/v1/dev/chain/accounts/adv-1/balance", "", nil)
	var payload struct {
		AmountPlanck uint64 `json:"amount_planck"`
	}
	if err := json.Unmarshal(balance.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid balance response: %v", err)
	}
	if payload.AmountPlanck != 10_000 {
		t.Fatalf("expected full refund to 10000, got %d", payload.AmountPlanck)
	}
}
