// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"errors"
	"math"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// ErrEmptyInput is returned when fitting against an empty RFM table.
var ErrEmptyInput = errors.New("segment: no records to fit")

// ScalerParams holds per-feature mean and standard deviation for the
// three RFM features, in the order recency, frequency, monetary. These
// are the serialized scaler artifact.
type ScalerParams struct {
	Means [3]float64 `json:"means"`
	Stds  [3]float64 `json:"stds"`
}

// StandardScaler standardizes RFM features to z-scores. Parameters are
// fitted once over the full RFM table and frozen; any later query point
// is transformed with the same parameters, never refitted.
type StandardScaler struct {
	params ScalerParams
	fitted bool
}

// NewScalerFromParams restores a scaler from persisted parameters.
func NewScalerFromParams(p ScalerParams) *StandardScaler {
	return &StandardScaler{params: p, fitted: true}
}

// Fit computes per-feature mean and population standard deviation over
// the RFM table. A feature with zero variance gets scale 1 so transforms
// stay finite.
func (s *StandardScaler) Fit(records []models.RFMRecord) error {
	if len(records) == 0 {
		return ErrEmptyInput
	}

	n := float64(len(records))
	var sums, sqSums [3]float64
	for _, r := range records {
		features := [3]float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
		for i, v := range features {
			sums[i] += v
			sqSums[i] += v * v
		}
	}

	for i := 0; i < 3; i++ {
		mean := sums[i] / n
		variance := sqSums[i]/n - mean*mean
		if variance < 0 {
			variance = 0 // numeric noise
		}
		std := math.Sqrt(variance)
		if std == 0 {
			std = 1
		}
		s.params.Means[i] = mean
		s.params.Stds[i] = std
	}

	s.fitted = true
	return nil
}

// Transform standardizes a single (recency, frequency, monetary) point
// with the frozen parameters.
func (s *StandardScaler) Transform(recency, frequency, monetary float64) ([3]float64, error) {
	if !s.fitted {
		return [3]float64{}, ErrNotFitted
	}
	return [3]float64{
		(recency - s.params.Means[0]) / s.params.Stds[0],
		(frequency - s.params.Means[1]) / s.params.Stds[1],
		(monetary - s.params.Means[2]) / s.params.Stds[2],
	}, nil
}

// TransformRecords standardizes the whole RFM table, preserving order.
func (s *StandardScaler) TransformRecords(records []models.RFMRecord) ([][]float64, error) {
	if !s.fitted {
		return nil, ErrNotFitted
	}

	points := make([][]float64, len(records))
	for i, r := range records {
		z, err := s.Transform(float64(r.Recency), float64(r.Frequency), r.Monetary)
		if err != nil {
			return nil, err
		}
		points[i] = []float64{z[0], z[1], z[2]}
	}
	return points, nil
}

// Params returns the frozen scaler parameters for persistence.
func (s *StandardScaler) Params() (ScalerParams, error) {
	if !s.fitted {
		return ScalerParams{}, ErrNotFitted
	}
	return s.params, nil
}
