// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"errors"
	"math"
	"testing"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

func TestScalerFitEmpty(t *testing.T) {
	var s StandardScaler
	if err := s.Fit(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Fit(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestScalerTransformBeforeFit(t *testing.T) {
	var s StandardScaler
	if _, err := s.Transform(1, 2, 3); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("Transform before Fit error = %v, want ErrNotFitted", err)
	}
	if _, err := s.Params(); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("Params before Fit error = %v, want ErrNotFitted", err)
	}
}

func TestScalerZScores(t *testing.T) {
	// Means 50/5/500, population stds 25/3/300.
	records := []models.RFMRecord{
		{CustomerID: 1, Recency: 25, Frequency: 2, Monetary: 200},
		{CustomerID: 2, Recency: 75, Frequency: 8, Monetary: 800},
	}

	var s StandardScaler
	if err := s.Fit(records); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	params, err := s.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	wantMeans := [3]float64{50, 5, 500}
	wantStds := [3]float64{25, 3, 300}
	for i := 0; i < 3; i++ {
		if math.Abs(params.Means[i]-wantMeans[i]) > 1e-9 {
			t.Errorf("Means[%d] = %v, want %v", i, params.Means[i], wantMeans[i])
		}
		if math.Abs(params.Stds[i]-wantStds[i]) > 1e-9 {
			t.Errorf("Stds[%d] = %v, want %v", i, params.Stds[i], wantStds[i])
		}
	}

	z, err := s.Transform(30, 10, 500)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := [3]float64{-0.8, 5.0 / 3.0, 0}
	for i := 0; i < 3; i++ {
		if math.Abs(z[i]-want[i]) > 1e-9 {
			t.Errorf("z[%d] = %v, want %v", i, z[i], want[i])
		}
	}
}

func TestScalerZeroVarianceFeature(t *testing.T) {
	records := []models.RFMRecord{
		{CustomerID: 1, Recency: 10, Frequency: 3, Monetary: 100},
		{CustomerID: 2, Recency: 10, Frequency: 5, Monetary: 300},
	}

	var s StandardScaler
	if err := s.Fit(records); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	z, err := s.Transform(10, 4, 200)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// Constant recency scales with std 1, so the z-score is finite 0.
	if z[0] != 0 {
		t.Errorf("z[0] = %v, want 0 for zero-variance feature", z[0])
	}
	if math.IsNaN(z[0]) || math.IsInf(z[0], 0) {
		t.Errorf("z[0] is not finite: %v", z[0])
	}
}

func TestScalerTransformRecordsPreservesOrder(t *testing.T) {
	records := []models.RFMRecord{
		{CustomerID: 1, Recency: 1, Frequency: 1, Monetary: 10},
		{CustomerID: 2, Recency: 5, Frequency: 3, Monetary: 50},
		{CustomerID: 3, Recency: 9, Frequency: 5, Monetary: 90},
	}

	var s StandardScaler
	if err := s.Fit(records); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	points, err := s.TransformRecords(records)
	if err != nil {
		t.Fatalf("TransformRecords() error = %v", err)
	}
	if len(points) != len(records) {
		t.Fatalf("got %d points, want %d", len(points), len(records))
	}

	for i, r := range records {
		z, err := s.Transform(float64(r.Recency), float64(r.Frequency), r.Monetary)
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		for d := 0; d < 3; d++ {
			if points[i][d] != z[d] {
				t.Errorf("points[%d][%d] = %v, want %v", i, d, points[i][d], z[d])
			}
		}
	}
}

func TestScalerFromParams(t *testing.T) {
	params := ScalerParams{
		Means: [3]float64{10, 2, 100},
		Stds:  [3]float64{5, 1, 50},
	}

	s := NewScalerFromParams(params)
	z, err := s.Transform(15, 3, 50)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	want := [3]float64{1, 1, -1}
	if z != want {
		t.Errorf("Transform() = %v, want %v", z, want)
	}
}
