package services

import "math/bits"

// RevenueSplit is the exact three-way division of one claim's payment.
// PublisherSharePlanck + UserSharePlanck + ProtocolSharePlanck always equals
// TotalPlanck: the protocol share is computed by subtraction, so integer
// rounding never loses a planck.
type RevenueSplit struct {
	TotalPlanck          uint64
	PublisherSharePlanck uint64
	UserSharePlanck      uint64
	ProtocolSharePlanck  uint64
}

const (
	bpsDenominator = 10_000
	userShareBps   = 7_500
)

// TotalPayment converts a CPM price and an impression count into planck.
// Both factors are caller-controlled, so the product is taken at 128 bits;
// ok is false when the true payment does not fit in uint64. A wrapped
// payment must never be compared against a budget.
func TotalPayment(clearingCpmPlanck, impressions uint64) (uint64, bool) {
	hi, lo := bits.Mul64(clearingCpmPlanck, impressions)
	if hi >= 1_000 {
		return 0, false
	}
	quot, _ := bits.Div64(hi, lo, 1_000)
	return quot, true
}

// ComputeSplit divides a claim's total payment between publisher, user, and
// protocol using the campaign's immutable snapshot take-rate. ok mirrors
// TotalPayment's overflow signal.
func ComputeSplit(clearingCpmPlanck, impressions uint64, takeRateBps uint32) (RevenueSplit, bool) {
	total, ok := TotalPayment(clearingCpmPlanck, impressions)
	if !ok {
		return RevenueSplit{}, false
	}
	publisherShare := mulDivBps(total, uint64(takeRateBps))
	remainder := total - publisherShare
	userShare := mulDivBps(remainder, userShareBps)
	return RevenueSplit{
		TotalPlanck:          total,
		PublisherSharePlanck: publisherShare,
		UserSharePlanck:      userShare,
		ProtocolSharePlanck:  remainder - userShare,
	}, true
}

// mulDivBps computes amount × bps / 10000 through the 128-bit intermediate.
// bps never exceeds the denominator, so the quotient always fits.
func mulDivBps(amount, bps uint64) uint64 {
	hi, lo := bits.Mul64(amount, bps)
	quot, _ := bits.Div64(hi, lo, bpsDenominator)
	return quot
}
