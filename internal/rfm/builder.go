// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package rfm derives Recency/Frequency/Monetary features per customer
// from the canonical transaction table, and computes the global quantile
// thresholds used for cluster labeling.
package rfm

import (
	"errors"
	"sort"
	"time"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// ErrEmptyTable is returned when the canonical table has no rows.
var ErrEmptyTable = errors.New("rfm: empty transaction table")

// referenceOffset is added to the latest invoice date to form the fixed
// reference instant, so the most recent purchaser has recency 1.
const referenceOffset = 24 * time.Hour

// Build computes one RFMRecord per distinct customer. The reference date
// is a single global anchor: max(timestamp) across the whole table plus
// one day. Records are returned sorted by customer id for deterministic
// downstream iteration.
func Build(table []models.Transaction) ([]models.RFMRecord, time.Time, error) {
	if len(table) == 0 {
		return nil, time.Time{}, ErrEmptyTable
	}

	type accum struct {
		last     time.Time
		invoices map[string]struct{}
		monetary float64
	}

	customers := make(map[int]*accum)
	var maxTS time.Time

	for i := range table {
		tx := &table[i]
		if tx.Timestamp.After(maxTS) {
			maxTS = tx.Timestamp
		}

		a := customers[tx.CustomerID]
		if a == nil {
			a = &accum{invoices: make(map[string]struct{})}
			customers[tx.CustomerID] = a
		}
		if tx.Timestamp.After(a.last) {
			a.last = tx.Timestamp
		}
		a.invoices[tx.InvoiceID] = struct{}{}
		a.monetary += tx.Total
	}

	reference := maxTS.Add(referenceOffset)

	records := make([]models.RFMRecord, 0, len(customers))
	for id, a := range customers {
		records = append(records, models.RFMRecord{
			CustomerID: id,
			Recency:    wholeDays(reference.Sub(a.last)),
			Frequency:  len(a.invoices),
			Monetary:   a.monetary,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CustomerID < records[j].CustomerID
	})

	logging.Info().
		Int("customers", len(records)).
		Time("reference_date", reference).
		Msg("RFM features computed")

	return records, reference, nil
}

// wholeDays truncates a duration to whole days.
func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
