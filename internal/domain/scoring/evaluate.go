package scoring

import (
	"math"
	"sort"
)

// AUC returns the area under the ROC curve of scores against binary labels,
// with tied scores sharing their average rank. It is NaN unless both classes
// are present.
func AUC(scores []float64, labels []int) float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var pos, neg, sum float64
	for i, y := range labels {
		if y == 1 {
			pos++
			sum += ranks[i]
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return math.NaN()
	}
	return (sum - pos*(pos+1)/2) / (pos * neg)
}

// Accuracy is the share of labels matched by thresholding scores at 0.5.
func Accuracy(scores []float64, labels []int) float64 {
	if len(labels) == 0 {
		return math.NaN()
	}
	var hit int
	for i, y := range labels {
		p := 0
		if scores[i] >= 0.5 {
			p = 1
		}
		if p == y {
			hit++
		}
	}
	return float64(hit) / float64(len(labels))
}
