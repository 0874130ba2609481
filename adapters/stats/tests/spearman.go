package tests

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spearman computes the rank correlation between x and y and a two-sided
// p-value from the t approximation. Ties are handled with midranks, so rho
// is the Pearson correlation of the rank vectors. Fewer than 3 paired
// observations, or a zero-variance input, yields rho 0 and p-value 1.
func Spearman(x, y []float64) (rho, pValue float64) {
	n := len(x)
	if n != len(y) || n < 3 {
		return 0, 1.0
	}

	xRanks := midranks(x)
	yRanks := midranks(y)

	if rankVariance(xRanks) == 0 || rankVariance(yRanks) == 0 {
		return 0, 1.0
	}

	rho = stat.Correlation(xRanks, yRanks, nil)
	if math.IsNaN(rho) {
		return 0, 1.0
	}
	// Snap to the boundary so floating-point noise cannot leak a rho just
	// past (or just short of) a perfect correlation.
	if rho > 1.0-1e-12 {
		rho = 1.0
	} else if rho < -1.0+1e-12 {
		rho = -1.0
	}

	// Perfect monotone association leaves no t statistic to evaluate.
	if math.Abs(rho) == 1.0 {
		return rho, 0.0
	}

	df := float64(n - 2)
	tStat := rho * math.Sqrt(df/(1.0-rho*rho))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2.0 * tDist.Survival(math.Abs(tStat))
	if pValue > 1.0 {
		pValue = 1.0
	}
	return rho, pValue
}

func rankVariance(ranks []float64) float64 {
	mean := 0.0
	for _, r := range ranks {
		mean += r
	}
	mean /= float64(len(ranks))

	variance := 0.0
	for _, r := range ranks {
		d := r - mean
		variance += d * d
	}
	return variance
}
