// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"errors"
	"math"
	"testing"
)

// twoBlobs returns two well-separated groups of five points each.
func twoBlobs() [][]float64 {
	return [][]float64{
		{0, 0, 0}, {0.1, 0, 0}, {0, 0.1, 0}, {0.1, 0.1, 0}, {0.05, 0.05, 0},
		{10, 10, 10}, {10.1, 10, 10}, {10, 10.1, 10}, {10.1, 10.1, 10}, {10.05, 10.05, 10},
	}
}

func TestFitKMeansSeparatesBlobs(t *testing.T) {
	points := twoBlobs()

	res, err := FitKMeans(points, KMeansConfig{K: 2, NInit: 5, MaxIter: 100, Seed: 42})
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}

	if res.Model.K != 2 || len(res.Model.Centroids) != 2 {
		t.Fatalf("unexpected model shape: K=%d centroids=%d", res.Model.K, len(res.Model.Centroids))
	}

	// All points in the same blob share a cluster, and the blobs differ.
	first := res.Assignments[0]
	for i := 1; i < 5; i++ {
		if res.Assignments[i] != first {
			t.Errorf("point %d assigned %d, want %d", i, res.Assignments[i], first)
		}
	}
	second := res.Assignments[5]
	if second == first {
		t.Errorf("both blobs share cluster %d", first)
	}
	for i := 6; i < 10; i++ {
		if res.Assignments[i] != second {
			t.Errorf("point %d assigned %d, want %d", i, res.Assignments[i], second)
		}
	}

	if res.Inertia < 0 {
		t.Errorf("Inertia = %v, want >= 0", res.Inertia)
	}
}

func TestFitKMeansDeterministic(t *testing.T) {
	points := twoBlobs()
	cfg := KMeansConfig{K: 3, NInit: 4, MaxIter: 100, Seed: 42}

	a, err := FitKMeans(points, cfg)
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	b, err := FitKMeans(points, cfg)
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}

	if a.Inertia != b.Inertia {
		t.Errorf("inertia differs across identical fits: %v vs %v", a.Inertia, b.Inertia)
	}
	for i := range a.Assignments {
		if a.Assignments[i] != b.Assignments[i] {
			t.Fatalf("assignment %d differs: %d vs %d", i, a.Assignments[i], b.Assignments[i])
		}
	}
	for i := range a.Model.Centroids {
		for d := range a.Model.Centroids[i] {
			if a.Model.Centroids[i][d] != b.Model.Centroids[i][d] {
				t.Fatalf("centroid %d differs across identical fits", i)
			}
		}
	}
}

func TestFitKMeansErrors(t *testing.T) {
	tests := []struct {
		name   string
		points [][]float64
		cfg    KMeansConfig
	}{
		{"empty input", nil, KMeansConfig{K: 2}},
		{"k zero", twoBlobs(), KMeansConfig{K: 0}},
		{"k exceeds samples", [][]float64{{1, 1, 1}}, KMeansConfig{K: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FitKMeans(tt.points, tt.cfg); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestFitKMeansEmptyInputSentinel(t *testing.T) {
	_, err := FitKMeans(nil, KMeansConfig{K: 2})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("error = %v, want ErrEmptyInput", err)
	}
}

func TestFitKMeansKEqualsSamples(t *testing.T) {
	points := [][]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}

	res, err := FitKMeans(points, KMeansConfig{K: 3, NInit: 2, MaxIter: 10, Seed: 1})
	if err != nil {
		t.Fatalf("FitKMeans() error = %v", err)
	}
	// Each point gets its own cluster, so inertia collapses to zero.
	if res.Inertia != 0 {
		t.Errorf("Inertia = %v, want 0", res.Inertia)
	}

	seen := make(map[int]bool)
	for _, a := range res.Assignments {
		seen[a] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct clusters, got %d", len(seen))
	}
}

func TestModelPredict(t *testing.T) {
	m := Model{
		K: 2,
		Centroids: [][]float64{
			{0, 0, 0},
			{10, 10, 10},
		},
	}

	if got := m.Predict([]float64{1, 1, 1}); got != 0 {
		t.Errorf("Predict(near origin) = %d, want 0", got)
	}
	if got := m.Predict([]float64{9, 9, 9}); got != 1 {
		t.Errorf("Predict(near far blob) = %d, want 1", got)
	}
}

func TestSilhouetteWellSeparated(t *testing.T) {
	points := twoBlobs()
	assignments := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}

	score := Silhouette(points, assignments, 2)
	if score < 0.9 {
		t.Errorf("Silhouette = %v, want > 0.9 for well-separated blobs", score)
	}
	if score > 1 {
		t.Errorf("Silhouette = %v, exceeds upper bound 1", score)
	}
}

func TestSilhouetteDegenerateInputs(t *testing.T) {
	tests := []struct {
		name        string
		points      [][]float64
		assignments []int
		k           int
	}{
		{"no points", nil, nil, 2},
		{"single cluster", [][]float64{{1}, {2}}, []int{0, 0}, 1},
		{"k exceeds samples", [][]float64{{1}}, []int{0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Silhouette(tt.points, tt.assignments, tt.k); got != 0 {
				t.Errorf("Silhouette = %v, want 0", got)
			}
		})
	}
}

func TestSilhouetteSingletonContributesZero(t *testing.T) {
	// One singleton cluster and one pair. The singleton contributes 0 and
	// the overall score stays within bounds.
	points := [][]float64{{0, 0, 0}, {0.1, 0, 0}, {10, 10, 10}}
	assignments := []int{0, 0, 1}

	score := Silhouette(points, assignments, 2)
	if math.IsNaN(score) {
		t.Fatal("Silhouette returned NaN")
	}
	if score < -1 || score > 1 {
		t.Errorf("Silhouette = %v, outside [-1, 1]", score)
	}
}
