// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package rfm

import (
	"math"
	"sort"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// Thresholds holds the global 33rd and 67th percentile of each RFM
// feature across all customers. Cluster labeling compares cluster means
// against these values, never against per-customer quantities.
type Thresholds struct {
	RecencyP33   float64 `json:"recency_p33"`
	RecencyP67   float64 `json:"recency_p67"`
	FrequencyP33 float64 `json:"frequency_p33"`
	FrequencyP67 float64 `json:"frequency_p67"`
	MonetaryP33  float64 `json:"monetary_p33"`
	MonetaryP67  float64 `json:"monetary_p67"`
}

// ComputeThresholds derives labeling thresholds from the full RFM table.
func ComputeThresholds(records []models.RFMRecord) Thresholds {
	recency := make([]float64, len(records))
	frequency := make([]float64, len(records))
	monetary := make([]float64, len(records))
	for i, r := range records {
		recency[i] = float64(r.Recency)
		frequency[i] = float64(r.Frequency)
		monetary[i] = r.Monetary
	}

	return Thresholds{
		RecencyP33:   Quantile(recency, 0.33),
		RecencyP67:   Quantile(recency, 0.67),
		FrequencyP33: Quantile(frequency, 0.33),
		FrequencyP67: Quantile(frequency, 0.67),
		MonetaryP33:  Quantile(monetary, 0.33),
		MonetaryP67:  Quantile(monetary, 0.67),
	}
}

// Quantile returns the q-quantile of values using linear interpolation
// between closest order statistics, matching the convention of most
// statistics tooling. values need not be sorted; q is clamped to [0, 1].
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
