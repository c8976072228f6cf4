// Package stats provides the integer list and stack means.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean averages values. With round set it returns the float mean rounded
// half-up to two decimals; otherwise the integer-truncated mean. An empty
// slice yields 0 either way.
func Mean(values []int, round bool) float64 {
	if len(values) == 0 {
		return 0
	}
	if !round {
		sum := 0
		for _, v := range values {
			sum += v
		}
		return float64(sum / len(values))
	}

	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return math.Round(stat.Mean(data, nil)*100) / 100
}

// DefaultList returns the sample list used by the CLI.
func DefaultList() []int {
	return []int{5, 8, 8, 7, 3, 3, 2, 9, 1, 2, 8, 6, 4}
}
