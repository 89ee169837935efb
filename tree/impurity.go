package tree

import "math"

// Gini returns the gini impurity 1 - sum_k p_k^2 of a class weight
// distribution. An empty distribution has impurity 0.
func Gini(dist []float64) float64 {
	total := 0.0
	for _, d := range dist {
		total += d
	}
	if total <= 0 {
		return 0
	}
	g := 1.0
	for _, d := range dist {
		if d > 0 {
			p := d / total
			g -= p * p
		}
	}
	return g
}

// GiniGain scores a binary split as the impurity decrease
//
//	gini(parent) - (wL*gini(left) + wR*gini(right)) / (wL + wR)
//
// parent is the distribution being partitioned, that is the node distribution
// without the weight of rows missing the split feature, and left + right must
// equal parent. The result is NaN, an invalid candidate, when either side
// holds no weight or a non-finite weight.
func GiniGain(parent, left, right []float64) float64 {
	var wL, wR float64
	for k := range left {
		wL += left[k]
		wR += right[k]
	}
	if wL <= 0 || wR <= 0 || math.IsInf(wL, 0) || math.IsInf(wR, 0) || math.IsNaN(wL) || math.IsNaN(wR) {
		return math.NaN()
	}
	return Gini(parent) - (wL*Gini(left)+wR*Gini(right))/(wL+wR)
}
