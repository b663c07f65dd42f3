// Package metrics computes detection and segmentation quality scores.
package metrics

import (
	"math"
	"sort"
)

// AUROC computes the area under the ROC curve for scalar anomaly scores via
// the rank-sum formulation, with average ranks for tied scores. Returns NaN
// when either class is absent.
func AUROC(scores []float64, anomalous []bool) float64 {
	n := len(scores)
	if n == 0 || n != len(anomalous) {
		return math.NaN()
	}

	var nPos, nNeg int
	for _, a := range anomalous {
		if a {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return math.NaN()
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })

	// Walk tie groups and assign each member the group's average rank.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var rankSum float64
	for i, a := range anomalous {
		if a {
			rankSum += ranks[i]
		}
	}

	p := float64(nPos)
	return (rankSum - p*(p+1)/2) / (p * float64(nNeg))
}

// PixelAUROC flattens per-image anomaly maps and ground-truth masks and
// scores every pixel as one instance.
func PixelAUROC(maps [][]float64, masks [][]bool) float64 {
	var scores []float64
	var labels []bool
	for i := range maps {
		scores = append(scores, maps[i]...)
		labels = append(labels, masks[i]...)
	}
	return AUROC(scores, labels)
}
