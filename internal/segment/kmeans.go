// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"fmt"
	"math"
	"math/rand"
)

// Model is a fitted K-means clustering model: K centroids in the scaled
// 3-D RFM space. It is the serialized cluster-model artifact.
type Model struct {
	K         int         `json:"k"`
	Centroids [][]float64 `json:"centroids"`
}

// Predict assigns a point to its nearest centroid by Euclidean distance.
func (m *Model) Predict(point []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range m.Centroids {
		if d := sqDist(point, c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// KMeansConfig controls a single K-means fit.
type KMeansConfig struct {
	// K is the cluster count.
	K int

	// NInit is the number of random restarts; the restart with the
	// lowest inertia wins. Reduces sensitivity to initialization.
	NInit int

	// MaxIter bounds Lloyd iterations within one restart.
	MaxIter int

	// Seed makes the fit deterministic.
	Seed int64
}

// KMeansResult is the outcome of a K-means fit.
type KMeansResult struct {
	Model       *Model
	Assignments []int
	Inertia     float64
}

// FitKMeans runs K-means with k-means++ seeding and NInit restarts.
// Points must all share the same dimension. The fit is deterministic for
// a fixed seed.
func FitKMeans(points [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if cfg.K < 1 {
		return nil, fmt.Errorf("kmeans: invalid cluster count %d", cfg.K)
	}
	if cfg.K > len(points) {
		return nil, fmt.Errorf("kmeans: cluster count %d exceeds sample count %d", cfg.K, len(points))
	}
	if cfg.NInit < 1 {
		cfg.NInit = 1
	}
	if cfg.MaxIter < 1 {
		cfg.MaxIter = 300
	}

	best := KMeansResult{Inertia: math.Inf(1)}
	for restart := 0; restart < cfg.NInit; restart++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(restart))) //nolint:gosec // deterministic seeding is the point
		centroids := seedCentroids(points, cfg.K, rng)
		assignments, inertia := lloyd(points, centroids, cfg.MaxIter)

		if inertia < best.Inertia {
			best = KMeansResult{
				Model:       &Model{K: cfg.K, Centroids: centroids},
				Assignments: assignments,
				Inertia:     inertia,
			}
		}
	}

	return &best, nil
}

// seedCentroids picks initial centroids with k-means++ weighting: the
// first uniformly, each subsequent one with probability proportional to
// its squared distance from the nearest chosen centroid.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clonePoint(points[rng.Intn(len(points))]))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				if sd := sqDist(p, c); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}

		// All remaining points coincide with a centroid; fall back to
		// uniform choice to keep k centroids.
		if total == 0 {
			centroids = append(centroids, clonePoint(points[rng.Intn(len(points))]))
			continue
		}

		target := rng.Float64() * total
		var cum float64
		chosen := len(points) - 1
		for i, d := range dists {
			cum += d
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clonePoint(points[chosen]))
	}

	return centroids
}

// lloyd iterates assignment and centroid updates until assignments are
// stable or maxIter is reached. Returns final assignments and inertia.
func lloyd(points [][]float64, centroids [][]float64, maxIter int) ([]int, float64) {
	k := len(centroids)
	dim := len(points[0])
	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := math.Inf(1)
			for j, c := range centroids {
				if d := sqDist(p, c); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for j := range sums {
			sums[j] = make([]float64, dim)
		}
		for i, p := range points {
			j := assignments[i]
			counts[j]++
			for d, v := range p {
				sums[j][d] += v
			}
		}

		for j := range centroids {
			if counts[j] == 0 {
				// Empty cluster: re-seat on the point farthest from
				// its current centroid.
				centroids[j] = clonePoint(points[farthestPoint(points, centroids, assignments)])
				continue
			}
			for d := range centroids[j] {
				centroids[j][d] = sums[j][d] / float64(counts[j])
			}
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centroids[assignments[i]])
	}
	return assignments, inertia
}

// farthestPoint returns the index of the point with the largest distance
// to its assigned centroid.
func farthestPoint(points [][]float64, centroids [][]float64, assignments []int) int {
	best := 0
	bestDist := -1.0
	for i, p := range points {
		if d := sqDist(p, centroids[assignments[i]]); d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func clonePoint(p []float64) []float64 {
	c := make([]float64, len(p))
	copy(c, p)
	return c
}
