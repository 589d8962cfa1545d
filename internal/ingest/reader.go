// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package ingest reads the raw transaction file into memory.
//
// The input boundary is a single CSV file with the columns invoice id,
// product code, description, quantity, unit price, customer id, timestamp
// and country. Header names are matched case-insensitively against the
// aliases each column is known under. No validation happens here; every
// row is surfaced verbatim so the cleaner can account for each drop.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// columnAliases maps each logical column to the header names it may
// appear under in exported retail datasets.
var columnAliases = map[string][]string{
	"invoice_id":   {"invoiceno", "invoice_no", "invoice", "invoice_id"},
	"product_code": {"stockcode", "stock_code", "product_code"},
	"description":  {"description", "product_description"},
	"quantity":     {"quantity", "qty"},
	"unit_price":   {"unitprice", "unit_price", "price"},
	"customer_id":  {"customerid", "customer_id", "customer"},
	"timestamp":    {"invoicedate", "invoice_date", "timestamp", "date"},
	"country":      {"country"},
}

// ReadFile reads the raw transaction CSV at path.
func ReadFile(path string) ([]models.RawTransaction, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	return Read(f)
}

// Read reads raw transactions from r. The first record must be a header.
func Read(r io.Reader) ([]models.RawTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per field
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []models.RawTransaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		rows = append(rows, models.RawTransaction{
			InvoiceID:   field(record, idx["invoice_id"]),
			ProductCode: field(record, idx["product_code"]),
			Description: field(record, idx["description"]),
			Quantity:    field(record, idx["quantity"]),
			UnitPrice:   field(record, idx["unit_price"]),
			CustomerID:  field(record, idx["customer_id"]),
			Timestamp:   field(record, idx["timestamp"]),
			Country:     field(record, idx["country"]),
		})
	}

	return rows, nil
}

// mapHeader resolves each logical column to its index in the header.
// Every column must be present; a missing column is a hard error because
// the downstream contract depends on all eight fields.
func mapHeader(header []string) (map[string]int, error) {
	normalized := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		normalized[key] = i
	}

	idx := make(map[string]int, len(columnAliases))
	for column, aliases := range columnAliases {
		found := -1
		for _, alias := range aliases {
			if i, ok := normalized[alias]; ok {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("input header missing column %q (known names: %s)",
				column, strings.Join(columnAliases[column], ", "))
		}
		idx[column] = found
	}

	return idx, nil
}

// field returns record[i] or empty string when the row is too short.
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
