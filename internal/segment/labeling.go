// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/rfm"
)

// ClusterSummary holds the mean RFM values of one cluster. Labeling is a
// pure function of these four values and the global thresholds.
type ClusterSummary struct {
	Cluster       int     `json:"cluster"`
	Customers     int     `json:"customers"`
	MeanRecency   float64 `json:"mean_recency"`
	MeanFrequency float64 `json:"mean_frequency"`
	MeanMonetary  float64 `json:"mean_monetary"`
}

// Summarize computes per-cluster mean RFM values from the raw (unscaled)
// records and their cluster assignments. Returned summaries are ordered
// by cluster id and include empty clusters with zero means.
func Summarize(records []models.RFMRecord, assignments []int, k int) []ClusterSummary {
	summaries := make([]ClusterSummary, k)
	for i := range summaries {
		summaries[i].Cluster = i
	}

	for i, r := range records {
		s := &summaries[assignments[i]]
		s.Customers++
		s.MeanRecency += float64(r.Recency)
		s.MeanFrequency += float64(r.Frequency)
		s.MeanMonetary += r.Monetary
	}

	for i := range summaries {
		if n := float64(summaries[i].Customers); n > 0 {
			summaries[i].MeanRecency /= n
			summaries[i].MeanFrequency /= n
			summaries[i].MeanMonetary /= n
		}
	}

	return summaries
}

// LabelCluster assigns a segment label to a cluster summary. The rule
// precedence is definitional - first match wins, and reordering the
// rules changes labels for the same clustering:
//
//  1. High-Value: mean recency below the global 33rd recency percentile
//     AND mean frequency above the 67th frequency percentile AND mean
//     monetary above the 67th monetary percentile.
//  2. Regular: mean frequency >= 33rd frequency percentile AND mean
//     monetary >= 33rd monetary percentile.
//  3. At-Risk: mean recency above the 67th recency percentile.
//  4. Occasional: default.
//
// A consequence of this order: a high-recency cluster that also clears
// rule 2's moderate frequency/monetary bars is labeled Regular, and a
// high-recency cluster failing rule 2 with recency inside the 67th
// percentile falls through to Occasional. Both outcomes are inherited
// behavior, kept intentionally.
func LabelCluster(s ClusterSummary, th rfm.Thresholds) models.Segment {
	switch {
	case s.MeanRecency < th.RecencyP33 &&
		s.MeanFrequency > th.FrequencyP67 &&
		s.MeanMonetary > th.MonetaryP67:
		return models.SegmentHighValue
	case s.MeanFrequency >= th.FrequencyP33 && s.MeanMonetary >= th.MonetaryP33:
		return models.SegmentRegular
	case s.MeanRecency > th.RecencyP67:
		return models.SegmentAtRisk
	default:
		return models.SegmentOccasional
	}
}

// LabelClusters labels every cluster and returns the cluster->label map
// artifact.
func LabelClusters(summaries []ClusterSummary, th rfm.Thresholds) map[int]models.Segment {
	labels := make(map[int]models.Segment, len(summaries))
	for _, s := range summaries {
		labels[s.Cluster] = LabelCluster(s, th)
	}
	return labels
}
