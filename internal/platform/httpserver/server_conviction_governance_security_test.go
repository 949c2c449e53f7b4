package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestVoteAyeRequiresCaller(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "", map[string]any{
		"stake_planck": 100,
		"conviction":   1,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVoteAyeUnknownCampaignReturnsNotFound(t *testing.T) {
	server := newTestServer()
	mintTestFunds(t, server, "voter-1", 1000)
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/42/votes/aye", "voter-1", map[string]any{
		"stake_planck": 100,
		"conviction":   1,
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVoteAyeRejectsExcessiveConviction(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	mintTestFunds(t, server, "voter-1", 1000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 100,
		"conviction":   7,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVoteAyeRejectsSecondVote(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	mintTestFunds(t, server, "voter-1", 1000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	first := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 100,
		"conviction":   1,
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first vote failed: %d body=%s", first.Code, first.Body.String())
	}

	second := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 100,
		"conviction":   1,
	})
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", second.Code, second.Body.String())
	}
}

func TestVoteAyeAtThresholdActivatesCampaign(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	mintTestFunds(t, server, "voter-1", 2_000_000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 1_000_000,
		"conviction":   0,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("vote failed: %d body=%s", rr.Code, rr.Body.String())
	}

	campaign := doJSON(t, server, http.MethodGet, "/v1/campaigns/1", "", nil)
	var payload struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(campaign.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid campaign response: %v", err)
	}
	if payload.Data.Status != "active" {
		t.Fatalf("expected active campaign, got %q", payload.Data.Status)
	}

	tally := doJSON(t, server, http.MethodGet, "/v1/campaigns/1/tally", "", nil)
	var tallyPayload struct {
		Data struct {
			Activated bool `json:"activated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(tally.Body.Bytes(), &tallyPayload); err != nil {
		t.Fatalf("invalid tally response: %v", err)
	}
	if !tallyPayload.Data.Activated {
		t.Fatalf("expected activated tally, body=%s", tally.Body.String())
	}
}

func TestCreditAyeRewardRequiresOperator(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/rewards/credit", "voter-1", map[string]any{
		"voter":         "voter-1",
		"amount_planck": 100,
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWithdrawStakeBeforeMaturityConflicts(t *testing.T) {
	server := newTestServer()
	registerTestPublisher(t, server, "pub-1", 5000)
	mintTestFunds(t, server, "adv-1", 10_000)
	mintTestFunds(t, server, "voter-1", 1000)
	createTestCampaign(t, server, "adv-1", "pub-1", 1000, 100, 2_000_000)

	vote := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/votes/aye", "voter-1", map[string]any{
		"stake_planck": 100,
		"conviction":   2,
	})
	if vote.Code != http.StatusOK {
		t.Fatalf("vote failed: %d body=%s", vote.Code, vote.Body.String())
	}

	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/stake/withdraw", "voter-1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestClaimSlashRewardWithoutEntryConflicts(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/campaigns/1/slash/claim", "voter-1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFailedNayCountDefaultsToZero(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/v1/governance/failed-nays/voter-9", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Count uint32 `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if payload.Count != 0 {
		t.Fatalf("expected zero failed nays, got %d", payload.Count)
	}
}
