// Package fdr implements false-discovery-rate control for families of
// simultaneous hypothesis tests.
package fdr

import "sort"

// Adjust applies the Benjamini-Hochberg step-up procedure to a family of
// raw p-values and returns the adjusted p-values in the same order.
//
// For raw p-values sorted ascending with 1-based rank i of m, the adjusted
// value is min over j >= i of (p_j * m / j), clipped to 1. The returned
// slice is therefore non-decreasing when reordered by ascending raw
// p-value, and every entry is >= its raw p-value.
func Adjust(pValues []float64) []float64 {
	m := len(pValues)
	adjusted := make([]float64, m)
	if m == 0 {
		return adjusted
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pValues[order[a]] < pValues[order[b]]
	})

	// Step-up pass from the largest p-value down, carrying the running
	// minimum to enforce monotonicity.
	running := 1.0
	for i := m - 1; i >= 0; i-- {
		idx := order[i]
		q := pValues[idx] * float64(m) / float64(i+1)
		if q < running {
			running = q
		}
		adjusted[idx] = running
	}

	return adjusted
}
