// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package rfm

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

func tx(customer int, invoice string, ts time.Time, total float64) models.Transaction {
	return models.Transaction{
		InvoiceID:  invoice,
		CustomerID: customer,
		Timestamp:  ts,
		Total:      total,
	}
}

func TestBuildEmptyTable(t *testing.T) {
	_, _, err := Build(nil)
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("Build(nil) error = %v, want ErrEmptyTable", err)
	}
}

func TestBuildSingleCustomer(t *testing.T) {
	base := time.Date(2011, 12, 1, 10, 0, 0, 0, time.UTC)

	// Two rows on the same invoice, one on a second invoice a day later.
	table := []models.Transaction{
		tx(17850, "INV-1", base, 10),
		tx(17850, "INV-1", base, 5),
		tx(17850, "INV-2", base.Add(24*time.Hour), 15),
	}

	records, reference, err := Build(table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantRef := base.Add(48 * time.Hour)
	if !reference.Equal(wantRef) {
		t.Errorf("reference = %v, want %v", reference, wantRef)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.CustomerID != 17850 {
		t.Errorf("CustomerID = %d, want 17850", rec.CustomerID)
	}
	// Last purchase is one day before the reference date.
	if rec.Recency != 1 {
		t.Errorf("Recency = %d, want 1", rec.Recency)
	}
	// Frequency counts distinct invoices, not rows.
	if rec.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", rec.Frequency)
	}
	if rec.Monetary != 30 {
		t.Errorf("Monetary = %v, want 30", rec.Monetary)
	}
}

// A customer whose only purchase (3 units at 10.00) was the day before
// the dataset's latest date has recency 2, frequency 1, monetary 30.
func TestBuildYesterdayPurchaser(t *testing.T) {
	latest := time.Date(2011, 12, 9, 12, 0, 0, 0, time.UTC)

	table := []models.Transaction{
		tx(2, "I2", latest, 999),
		{InvoiceID: "I1", CustomerID: 1, Timestamp: latest.Add(-24 * time.Hour), Quantity: 3, UnitPrice: 10, Total: 30},
	}

	records, _, err := Build(table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rec := records[0]
	if rec.CustomerID != 1 {
		t.Fatalf("records[0].CustomerID = %d, want 1", rec.CustomerID)
	}
	if rec.Recency != 2 {
		t.Errorf("Recency = %d, want 2", rec.Recency)
	}
	if rec.Frequency != 1 {
		t.Errorf("Frequency = %d, want 1", rec.Frequency)
	}
	if rec.Monetary != 30 {
		t.Errorf("Monetary = %v, want 30", rec.Monetary)
	}
}

func TestBuildRecencyAnchor(t *testing.T) {
	base := time.Date(2011, 12, 9, 12, 0, 0, 0, time.UTC)

	table := []models.Transaction{
		tx(1, "A1", base, 100),                     // most recent purchaser
		tx(2, "B1", base.Add(-48*time.Hour), 200),  // two days earlier
		tx(3, "C1", base.Add(-240*time.Hour), 300), // ten days earlier
	}

	records, _, err := Build(table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := map[int]int{1: 1, 2: 3, 3: 11}
	for _, rec := range records {
		if rec.Recency != want[rec.CustomerID] {
			t.Errorf("customer %d recency = %d, want %d", rec.CustomerID, rec.Recency, want[rec.CustomerID])
		}
	}
}

func TestBuildSortedByCustomerID(t *testing.T) {
	base := time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)

	table := []models.Transaction{
		tx(300, "I3", base, 1),
		tx(100, "I1", base, 1),
		tx(200, "I2", base, 1),
	}

	records, _, err := Build(table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for i := 1; i < len(records); i++ {
		if records[i-1].CustomerID >= records[i].CustomerID {
			t.Fatalf("records not sorted by customer id: %v then %v",
				records[i-1].CustomerID, records[i].CustomerID)
		}
	}
}

func TestBuildSharedInvoiceAcrossCustomers(t *testing.T) {
	base := time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)

	// The same invoice id used by different customers counts once per
	// customer.
	table := []models.Transaction{
		tx(1, "SHARED", base, 10),
		tx(2, "SHARED", base, 20),
	}

	records, _, err := Build(table)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, rec := range records {
		if rec.Frequency != 1 {
			t.Errorf("customer %d frequency = %d, want 1", rec.CustomerID, rec.Frequency)
		}
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"median odd", []float64{3, 1, 2}, 0.5, 2},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"min", []float64{5, 1, 9}, 0, 1},
		{"max", []float64{5, 1, 9}, 1, 9},
		{"single value", []float64{7}, 0.33, 7},
		{"interpolated p33", []float64{1, 2, 3, 4}, 0.33, 1.99},
		{"clamped below", []float64{1, 2}, -0.5, 1},
		{"clamped above", []float64{1, 2}, 1.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantile(tt.values, tt.q)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Quantile(%v, %v) = %v, want %v", tt.values, tt.q, got, tt.want)
			}
		})
	}
}

func TestQuantileEmpty(t *testing.T) {
	if got := Quantile(nil, 0.5); !math.IsNaN(got) {
		t.Errorf("Quantile(nil) = %v, want NaN", got)
	}
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input slice mutated: %v", values)
	}
}

func TestComputeThresholds(t *testing.T) {
	records := []models.RFMRecord{
		{CustomerID: 1, Recency: 1, Frequency: 1, Monetary: 100},
		{CustomerID: 2, Recency: 2, Frequency: 2, Monetary: 200},
		{CustomerID: 3, Recency: 3, Frequency: 3, Monetary: 300},
		{CustomerID: 4, Recency: 4, Frequency: 4, Monetary: 400},
	}

	th := ComputeThresholds(records)

	// 0.33 * 3 = 0.99 -> 1 + 0.99*(2-1) = 1.99; 0.67 * 3 = 2.01.
	if math.Abs(th.RecencyP33-1.99) > 1e-9 {
		t.Errorf("RecencyP33 = %v, want 1.99", th.RecencyP33)
	}
	if math.Abs(th.RecencyP67-3.01) > 1e-9 {
		t.Errorf("RecencyP67 = %v, want 3.01", th.RecencyP67)
	}
	if math.Abs(th.MonetaryP33-199) > 1e-9 {
		t.Errorf("MonetaryP33 = %v, want 199", th.MonetaryP33)
	}
	if math.Abs(th.MonetaryP67-301) > 1e-9 {
		t.Errorf("MonetaryP67 = %v, want 301", th.MonetaryP67)
	}
}
