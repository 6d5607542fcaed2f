package comps

import "sort"

// Median returns the median of prices, 0 when empty. Input order is preserved.
func Median(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SellThroughRate is sold / (sold + active), the share of comparable listings
// that actually moved. Returns 0 when there is nothing to compare.
func SellThroughRate(soldCount, activeCount int) float64 {
	total := soldCount + activeCount
	if total == 0 {
		return 0
	}
	return float64(soldCount) / float64(total)
}

// TotalComps is the evidence count the decision engine checks against its
// minimum-comparables threshold.
func TotalComps(soldCount, activeCount int) int {
	return soldCount + activeCount
}
