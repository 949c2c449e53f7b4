package services

import (
	"math"
	"testing"
)

func TestTotalPayment(t *testing.T) {
	got, ok := TotalPayment(100_000_000, 1_000)
	if !ok || got != 100_000_000 {
		t.Fatalf("TotalPayment = %d ok=%v, want 100000000", got, ok)
	}
	got, ok = TotalPayment(1_000_000, 1)
	if !ok || got != 1_000 {
		t.Fatalf("TotalPayment = %d ok=%v, want 1000", got, ok)
	}
}

func TestTotalPaymentRejectsOverflow(t *testing.T) {
	// cpm × impressions wraps uint64; the pre-division product must be
	// rejected, not truncated to the low 64 bits.
	cases := []struct {
		cpm         uint64
		impressions uint64
	}{
		{2_000_000, 9_223_372_037_854},
		{math.MaxUint64, 2},
		{math.MaxUint64, math.MaxUint64},
	}
	for _, tc := range cases {
		if got, ok := TotalPayment(tc.cpm, tc.impressions); ok {
			t.Fatalf("TotalPayment(%d, %d) = %d, want overflow rejection",
				tc.cpm, tc.impressions, got)
		}
	}
}

func TestTotalPaymentLargestRepresentable(t *testing.T) {
	// The product may exceed 64 bits as long as the quotient fits.
	got, ok := TotalPayment(math.MaxUint64/1_000*1_000, 1_000)
	if !ok {
		t.Fatalf("TotalPayment rejected a quotient that fits uint64")
	}
	if want := math.MaxUint64 / uint64(1_000) * 1_000; got != want {
		t.Fatalf("TotalPayment = %d, want %d", got, want)
	}
}

func TestComputeSplitReferenceFigures(t *testing.T) {
	// 1000 impressions at 0.1 token CPM with a 50% take-rate.
	split, ok := ComputeSplit(100_000_000, 1_000, 5_000)
	if !ok {
		t.Fatalf("ComputeSplit rejected valid inputs")
	}

	if split.TotalPlanck != 100_000_000 {
		t.Fatalf("total = %d, want 100000000", split.TotalPlanck)
	}
	if split.PublisherSharePlanck != 50_000_000 {
		t.Fatalf("publisher = %d, want 50000000", split.PublisherSharePlanck)
	}
	if split.UserSharePlanck != 37_500_000 {
		t.Fatalf("user = %d, want 37500000", split.UserSharePlanck)
	}
	if split.ProtocolSharePlanck != 12_500_000 {
		t.Fatalf("protocol = %d, want 12500000", split.ProtocolSharePlanck)
	}
}

func TestComputeSplitConservesEveryPlanck(t *testing.T) {
	cases := []struct {
		cpm         uint64
		impressions uint64
		takeRate    uint32
	}{
		{1_000_000, 1, 0},
		{1_000_000, 1, 10_000},
		{1_000_001, 7, 3_333},
		{999_983, 13, 1},
		{123_456_789, 997, 9_999},
		{7, 1_000, 5_000},
	}
	for _, tc := range cases {
		split, ok := ComputeSplit(tc.cpm, tc.impressions, tc.takeRate)
		if !ok {
			t.Fatalf("cpm=%d impressions=%d: unexpected rejection", tc.cpm, tc.impressions)
		}
		sum := split.PublisherSharePlanck + split.UserSharePlanck + split.ProtocolSharePlanck
		if sum != split.TotalPlanck {
			t.Fatalf("cpm=%d impressions=%d take=%d: shares sum to %d, total %d",
				tc.cpm, tc.impressions, tc.takeRate, sum, split.TotalPlanck)
		}
		total, ok := TotalPayment(tc.cpm, tc.impressions)
		if !ok || split.TotalPlanck != total {
			t.Fatalf("cpm=%d impressions=%d: total %d disagrees with TotalPayment",
				tc.cpm, tc.impressions, split.TotalPlanck)
		}
	}
}

func TestComputeSplitRejectsOverflow(t *testing.T) {
	if split, ok := ComputeSplit(2_000_000, 9_223_372_037_854, 5_000); ok {
		t.Fatalf("ComputeSplit = %+v, want overflow rejection", split)
	}
}

func TestComputeSplitRoundingFavorsProtocol(t *testing.T) {
	// Total 1001 with a 50% take-rate: publisher 500, remainder 501,
	// user 375, protocol keeps the truncation remainder.
	split, ok := ComputeSplit(1_001_000, 1, 5_000)
	if !ok {
		t.Fatalf("ComputeSplit rejected valid inputs")
	}
	if split.TotalPlanck != 1_001 {
		t.Fatalf("total = %d, want 1001", split.TotalPlanck)
	}
	if split.PublisherSharePlanck != 500 {
		t.Fatalf("publisher = %d, want 500", split.PublisherSharePlanck)
	}
	if split.UserSharePlanck != 375 {
		t.Fatalf("user = %d, want 375", split.UserSharePlanck)
	}
	if split.ProtocolSharePlanck != 126 {
		t.Fatalf("protocol = %d, want 126", split.ProtocolSharePlanck)
	}
}
