// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package models

import "testing"

func TestSegmentValid(t *testing.T) {
	for _, s := range Segments {
		if !s.Valid() {
			t.Errorf("Segment %q reported invalid", s)
		}
	}

	invalid := []Segment{"", "high-value", "VIP", "At Risk"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("Segment %q reported valid", s)
		}
	}
}

func TestSegmentString(t *testing.T) {
	if got := SegmentHighValue.String(); got != "High-Value" {
		t.Errorf("String() = %q, want High-Value", got)
	}
	if got := SegmentAtRisk.String(); got != "At-Risk" {
		t.Errorf("String() = %q, want At-Risk", got)
	}
}

func TestSegmentsVocabularySize(t *testing.T) {
	if len(Segments) != 4 {
		t.Fatalf("vocabulary holds %d labels, want 4", len(Segments))
	}
	seen := make(map[Segment]bool)
	for _, s := range Segments {
		if seen[s] {
			t.Errorf("duplicate label %q", s)
		}
		seen[s] = true
	}
}
