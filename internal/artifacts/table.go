// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// RFMTableFile is the name of the persisted RFM+segment table.
const RFMTableFile = "rfm_segments.csv"

var rfmHeader = []string{"customer_id", "recency", "frequency", "monetary", "cluster", "segment"}

// SaveRFMTable writes the segmented RFM table as CSV next to the binary
// artifacts. Rows keep their input order, which upstream guarantees to
// be sorted by customer ID.
func (s *Store) SaveRFMTable(records []models.SegmentedRFMRecord) error {
	f, err := os.Create(filepath.Join(s.baseDir, RFMTableFile)) //nolint:gosec // path is under the store's base directory
	if err != nil {
		return fmt.Errorf("create rfm table: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(rfmHeader); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write rfm header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.CustomerID),
			strconv.Itoa(rec.Recency),
			strconv.Itoa(rec.Frequency),
			strconv.FormatFloat(rec.Monetary, 'f', -1, 64),
			strconv.Itoa(rec.Cluster),
			string(rec.Segment),
		}
		if err := w.Write(row); err != nil {
			_ = f.Close() //nolint:errcheck // write error takes precedence
			return fmt.Errorf("write rfm row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close() //nolint:errcheck // flush error takes precedence
		return fmt.Errorf("flush rfm table: %w", err)
	}

	return f.Close()
}

// LoadRFMTable reads back a previously saved RFM+segment table.
func (s *Store) LoadRFMTable() ([]models.SegmentedRFMRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, RFMTableFile)) //nolint:gosec // path is under the store's base directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("rfm table: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("open rfm table: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after read is not actionable

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rfm table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rfm table: empty file")
	}

	records := make([]models.SegmentedRFMRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(rfmHeader) {
			return nil, fmt.Errorf("rfm table row %d: expected %d columns, got %d", i+2, len(rfmHeader), len(row))
		}

		customerID, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("rfm table row %d: customer_id: %w", i+2, err)
		}
		recency, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("rfm table row %d: recency: %w", i+2, err)
		}
		frequency, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("rfm table row %d: frequency: %w", i+2, err)
		}
		monetary, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("rfm table row %d: monetary: %w", i+2, err)
		}
		cluster, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("rfm table row %d: cluster: %w", i+2, err)
		}

		records = append(records, models.SegmentedRFMRecord{
			RFMRecord: models.RFMRecord{
				CustomerID: customerID,
				Recency:    recency,
				Frequency:  frequency,
				Monetary:   monetary,
			},
			Cluster: cluster,
			Segment: models.Segment(row[5]),
		})
	}

	return records, nil
}
