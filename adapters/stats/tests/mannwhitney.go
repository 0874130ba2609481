package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// exactThreshold is the largest combined sample size for which the exact
// U distribution is enumerated instead of the normal approximation.
const exactThreshold = 20

// MannWhitney performs the two-sided Wilcoxon rank-sum (Mann-Whitney U)
// test between two independent groups. For small tie-free samples the
// p-value is exact; otherwise a normal approximation with tie and
// continuity corrections is used.
//
// The effect size is the rank-biserial correlation: positive when group x
// tends to exceed group y. Degenerate inputs (an empty group, or zero
// variance after ties) yield a p-value of 1, never an error.
func MannWhitney(x, y []float64) (effect, pValue float64) {
	n1 := len(x)
	n2 := len(y)
	if n1 < 1 || n2 < 1 {
		return 0, 1.0
	}

	combined := make([]float64, 0, n1+n2)
	combined = append(combined, x...)
	combined = append(combined, y...)
	ranks := midranks(combined)

	// Rank sum of the first group
	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}

	u1 := r1 - float64(n1)*float64(n1+1)/2.0
	u2 := float64(n1)*float64(n2) - u1
	effect = 2.0*u1/(float64(n1)*float64(n2)) - 1.0

	if n1+n2 <= exactThreshold && !hasTies(combined) {
		return effect, exactPValue(n1, n2, math.Min(u1, u2))
	}
	return effect, approxPValue(n1, n2, u1, combined)
}

// exactPValue enumerates the null distribution of U by counting, and
// returns the two-sided tail probability 2*P(U <= uMin) clipped to 1.
func exactPValue(n1, n2 int, uMin float64) float64 {
	maxU := n1 * n2

	// counts[k][u]: arrangements of k group-1 members among the first items
	// producing statistic u. Recurrence over the combined sample.
	counts := make([][]float64, n1+1)
	for k := range counts {
		counts[k] = make([]float64, maxU+1)
	}
	counts[0][0] = 1
	for item := 1; item <= n1+n2; item++ {
		for k := min(item, n1); k >= 1; k-- {
			for u := maxU; u >= 0; u-- {
				// Adding the item to group 1 contributes (item - k) to U.
				contrib := item - k
				if u >= contrib {
					counts[k][u] += counts[k-1][u-contrib]
				}
			}
		}
	}

	total := binomial(n1+n2, n1)
	tail := 0.0
	limit := int(math.Floor(uMin + 1e-9))
	for u := 0; u <= limit && u <= maxU; u++ {
		tail += counts[n1][u]
	}

	p := 2.0 * tail / total
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// approxPValue applies the normal approximation with midrank tie
// correction and a 0.5 continuity correction.
func approxPValue(n1, n2 int, u1 float64, combined []float64) float64 {
	n := float64(n1 + n2)
	mean := float64(n1) * float64(n2) / 2.0

	tieTerm := 0.0
	for _, t := range tieGroups(combined) {
		tf := float64(t)
		tieTerm += tf*tf*tf - tf
	}
	variance := float64(n1) * float64(n2) / 12.0 * ((n + 1) - tieTerm/(n*(n-1)))
	if variance <= 0 {
		// All values identical: the test is degenerate.
		return 1.0
	}

	z := u1 - mean
	switch {
	case z > 0.5:
		z -= 0.5
	case z < -0.5:
		z += 0.5
	default:
		z = 0
	}
	z /= math.Sqrt(variance)

	normal := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2.0 * normal.Survival(math.Abs(z))
	if p > 1.0 {
		p = 1.0
	}
	return p
}

func binomial(n, k int) float64 {
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}
