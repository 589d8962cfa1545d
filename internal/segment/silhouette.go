// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"math"
)

// Silhouette computes the mean silhouette coefficient over all samples:
// (b-a)/max(a,b) with a the mean intra-cluster distance and b the lowest
// mean distance to any other cluster. Bounded in [-1, 1]; higher values
// mean tighter, better separated clusters. Samples in singleton clusters
// score 0.
//
// The straightforward O(n^2) pairwise computation is acceptable for the
// customer counts this pipeline sees.
func Silhouette(points [][]float64, assignments []int, k int) float64 {
	n := len(points)
	if n == 0 || k < 2 || k > n {
		return 0
	}

	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}

	var total float64
	sums := make([]float64, k)
	for i, p := range points {
		for j := range sums {
			sums[j] = 0
		}
		for j, q := range points {
			if i == j {
				continue
			}
			sums[assignments[j]] += math.Sqrt(sqDist(p, q))
		}

		own := assignments[i]
		if sizes[own] <= 1 {
			continue // singleton clusters contribute 0
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for j := 0; j < k; j++ {
			if j == own || sizes[j] == 0 {
				continue
			}
			if mean := sums[j] / float64(sizes[j]); mean < b {
				b = mean
			}
		}

		if max := math.Max(a, b); max > 0 {
			total += (b - a) / max
		}
	}

	return total / float64(n)
}
