package scoring

import (
	"math"
	"math/rand"
	"sort"
)

// stratifiedSplit partitions row positions into train and evaluation sets,
// holding out fraction of each class. Every class keeps at least one row in
// training. Both outputs are ascending.
func stratifiedSplit(labels []int, fraction float64, rng *rand.Rand) (train, eval []int) {
	byClass := map[int][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		n := int(math.Round(float64(len(idx)) * fraction))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		if n < 0 {
			n = 0
		}
		eval = append(eval, idx[:n]...)
		train = append(train, idx[n:]...)
	}
	sort.Ints(train)
	sort.Ints(eval)
	return train, eval
}

// balancedWeights returns n/(2*n_class) for each label, so both classes carry
// equal total weight.
func balancedWeights(labels []int) []float64 {
	var pos int
	for _, y := range labels {
		pos += y
	}
	neg := len(labels) - pos
	n := float64(len(labels))
	w := make([]float64, len(labels))
	for i, y := range labels {
		if y == 1 {
			w[i] = n / (2 * float64(pos))
		} else {
			w[i] = n / (2 * float64(neg))
		}
	}
	return w
}
