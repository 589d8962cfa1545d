// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package models

// Segment is a human-readable customer segment label. The vocabulary is
// fixed: labels are derived by rule from cluster-mean RFM values, never
// free-form.
type Segment string

const (
	// SegmentHighValue marks clusters of recent, frequent, high-spend
	// customers.
	SegmentHighValue Segment = "High-Value"

	// SegmentRegular marks clusters with at least moderate frequency
	// and spend.
	SegmentRegular Segment = "Regular"

	// SegmentOccasional is the fallback label when no other rule
	// matches.
	SegmentOccasional Segment = "Occasional"

	// SegmentAtRisk marks clusters whose customers have not purchased
	// for a long time.
	SegmentAtRisk Segment = "At-Risk"
)

// Segments lists the full label vocabulary in rule-precedence order.
var Segments = []Segment{
	SegmentHighValue,
	SegmentRegular,
	SegmentAtRisk,
	SegmentOccasional,
}

// Valid reports whether s is one of the four known segment labels.
func (s Segment) Valid() bool {
	switch s {
	case SegmentHighValue, SegmentRegular, SegmentOccasional, SegmentAtRisk:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Segment) String() string {
	return string(s)
}
