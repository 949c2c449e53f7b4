package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"admesh/contexts/protocol-core/claim-settlement/domain/entities"
)

func newChainedClaim(campaignID uint64, publisher string, user string, impressions uint64, cpm uint64, nonce uint64, prevHash string) map[string]any {
	claim := entities.Claim{
		CampaignID:        campaignID,
		Publisher:         publisher,
		User:              user,
		Impressions:       impressions,
		ClearingCpmPlanck: cpm,
		Nonce:             nonce,
		PrevHash:          prevHash,
	}
	return map[string]any{
		"campaign_id":         claim.CampaignID,
		"publisher":           claim.Publisher,
		"user":                claim.User,
		"impressions":         claim.Impressions,
		"clearing_cpm_planck": claim.ClearingCpmPlanck,
		"nonce":               claim.Nonce,
		"prev_hash":           claim.PrevHash,
		"hash":                entities.ComputeClaimHash(claim),
	}
}

// activateFundedCampaign drives a campaign to active through governance so
// settlement has a live target: budget 1e10, daily cap 1e9, bid cap 2e6.
func activateFundedCampaign(t *testing.T, server *Server) uint64 {
	t.Helper()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 20_000_000_000)
	mintTestFunds(t, server, "voter-1", 2_000_000)
	campaignID := createTestCampaign(t, server, "adv-1", "pub-1", 10_000_000_000, 1_000_000_000, 2_000_000)

	vote := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 1_000_000,
		"conviction":   0,
	})
	if vote.Code != http.StatusOK {
		t.Fatalf("activation vote failed: %d body=%s", vote.Code, vote.Body.String())
	}
	return campaignID
}

func TestSettleClaimsRequiresCaller(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/claims", "", map[string]any{
		"batches": []any{},
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSettleClaimsRejectsForeignBatchUser(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/claims", "user-1", map[string]any{
		"batches": []map[string]any{{
			"campaign_id": 1,
			"user":        "user-2",
			"claims": []map[string]any{
				newChainedClaim(1, "pub-1", "user-2", 100, 1_000_000, 1, entities.ZeroHash),
			},
		}},
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSettleClaimsEmptyBatchesRejected(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/claims", "user-1", map[string]any{
		"batches": []any{},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSettleClaimsSettlesAndCreditsSplit(t *testing.T) {
	server := newTestServer()
	campaignID := activateFundedCampaign(t, server)

	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/claims", "user-1", map[string]any{
		"batches": []map[string]any{{
			"campaign_id": campaignID,
			"user":        "user-1",
			"claims": []map[string]any{
				newChainedClaim(campaignID, "pub-1", "user-1", 1000, 1_000_000, 1, entities.ZeroHash),
			},
		}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		SettledCount  int `json:"settled_count"`
		RejectedCount int `json:"rejected_count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if payload.SettledCount != 1 || payload.RejectedCount != 0 {
		t.Fatalf("expected 1 settled 0 rejected, body=%s", rr.Body.String())
	}

	// total = 1e6 * 1000 / 1000 = 1e6; publisher 50%, remainder split 75/25
	balances := doJSON(t, server, http.MethodGet, "/v1/settlement/balances/pub-1", "", nil)
	var pubPayload struct {
		Data struct {
			PublisherPlanck uint64 `json:"publisher_planck"`
		} `json:"data"`
	}
	if err := json.Unmarshal(balances.Body.Bytes(), &pubPayload); err != nil {
		t.Fatalf("invalid balances response: %v", err)
	}
	if pubPayload.Data.PublisherPlanck != 500_000 {
		t.Fatalf("expected publisher share 500000, got %d", pubPayload.Data.PublisherPlanck)
	}
}

func TestSettleClaimsStopsOnNonceGap(t *testing.T) {
	server := newTestServer()
	campaignID := activateFundedCampaign(t, server)

	first := newChainedClaim(campaignID, "pub-1", "user-1", 100, 1_000_000, 1, entities.ZeroHash)
	// nonce 3 leaves a gap after 1; everything after it is rejected too
	gapped := newChainedClaim(campaignID, "pub-1", "user-1", 100, 1_000_000, 3, first["hash"].(string))
	trailing := newChainedClaim(campaignID, "pub-1", "user-1", 100, 1_000_000, 4, gapped["hash"].(string))

	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/claims", "user-1", map[string]any{
		"batches": []map[string]any{{
			"campaign_id": campaignID,
			"user":        "user-1",
			"claims":      []map[string]any{first, gapped, trailing},
		}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		SettledCount int `json:"settled_count"`
		Rejected     []struct {
			Nonce  uint64 `json:"nonce"`
			Reason string `json:"reason"`
		} `json:"rejected"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if payload.SettledCount != 1 {
		t.Fatalf("expected 1 settled, body=%s", rr.Body.String())
	}
	if len(payload.Rejected) != 2 {
		t.Fatalf("expected 2 rejected, body=%s", rr.Body.String())
	}
	if payload.Rejected[0].Reason != "nonce_gap" {
		t.Fatalf("expected nonce_gap first, got %q", payload.Rejected[0].Reason)
	}
	if payload.Rejected[1].Reason != "subsequent_to_gap" {
		t.Fatalf("expected subsequent_to_gap second, got %q", payload.Rejected[1].Reason)
	}
}

func TestWithdrawUserRequiresCaller(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/withdrawals/user", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawProtocolRequiresTreasuryCaller(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/withdrawals/protocol", "user-1", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawUserWithoutBalanceConflicts(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/settlement/withdrawals/user", "user-1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetChainStateUnknownReturnsNotFound(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/v1/settlement/chains/user-1/5", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
