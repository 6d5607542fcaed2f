package valuation

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller contract violations (negative prices or costs).
// These are surfaced, never silently corrected.
var ErrInvalidInput = errors.New("valuation: invalid input")

// Channel fee schedules. Linear-affine in gross, so net profit is non-decreasing
// in gross price.
const (
	ebayFeeRate  = 0.1325
	ebayFeeFixed = 0.30

	amazonFeeRate  = 0.15
	amazonFeeFixed = 1.80
)

// EBayFees returns the eBay selling fee for a gross sale price.
func EBayFees(gross float64) (float64, error) {
	if gross < 0 {
		return 0, fmt.Errorf("%w: negative gross %.2f", ErrInvalidInput, gross)
	}
	return gross*ebayFeeRate + ebayFeeFixed, nil
}

// AmazonFees returns the Amazon marketplace selling fee for a gross sale price.
func AmazonFees(gross float64) (float64, error) {
	if gross < 0 {
		return 0, fmt.Errorf("%w: negative gross %.2f", ErrInvalidInput, gross)
	}
	return gross*amazonFeeRate + amazonFeeFixed, nil
}

// BuybackFees returns the fee on a buyback offer. Vendor offers are already net
// of fees.
func BuybackFees(gross float64) (float64, error) {
	if gross < 0 {
		return 0, fmt.Errorf("%w: negative gross %.2f", ErrInvalidInput, gross)
	}
	return 0, nil
}
