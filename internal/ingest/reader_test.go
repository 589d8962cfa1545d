// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,85123A,WHITE HANGING HEART T-LIGHT HOLDER,6,12/1/2010 8:26,2.55,17850,United Kingdom
536365,71053,WHITE METAL LANTERN,6,12/1/2010 8:26,3.39,17850,United Kingdom
C536379,D,Discount,-1,12/1/2010 9:41,27.50,14527,United Kingdom
`

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	if first.InvoiceID != "536365" {
		t.Errorf("InvoiceID = %q, want 536365", first.InvoiceID)
	}
	if first.ProductCode != "85123A" {
		t.Errorf("ProductCode = %q, want 85123A", first.ProductCode)
	}
	if first.Description != "WHITE HANGING HEART T-LIGHT HOLDER" {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Quantity != "6" || first.UnitPrice != "2.55" {
		t.Errorf("Quantity/UnitPrice = %q/%q", first.Quantity, first.UnitPrice)
	}
	if first.CustomerID != "17850" {
		t.Errorf("CustomerID = %q, want 17850", first.CustomerID)
	}
	if first.Timestamp != "12/1/2010 8:26" {
		t.Errorf("Timestamp = %q", first.Timestamp)
	}
	if first.Country != "United Kingdom" {
		t.Errorf("Country = %q", first.Country)
	}

	// Rows are surfaced verbatim; the cancellation row is not filtered.
	if rows[2].InvoiceID != "C536379" {
		t.Errorf("rows[2].InvoiceID = %q, want C536379", rows[2].InvoiceID)
	}
	if rows[2].Quantity != "-1" {
		t.Errorf("rows[2].Quantity = %q, want -1", rows[2].Quantity)
	}
}

func TestReadHeaderAliases(t *testing.T) {
	csv := `invoice_id,product_code,description,qty,price,customer_id,date,country
1,P1,THING,2,1.00,100,2011-01-05 10:00:00,France
`
	rows, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].UnitPrice != "1.00" || rows[0].Timestamp != "2011-01-05 10:00:00" {
		t.Errorf("alias columns misread: %+v", rows[0])
	}
}

func TestReadMissingColumn(t *testing.T) {
	csv := `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,Country
536365,85123A,X,6,12/1/2010 8:26,2.55,United Kingdom
`
	_, err := Read(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing customer column")
	}
	if !strings.Contains(err.Error(), "customer_id") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestReadShortRow(t *testing.T) {
	csv := `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,85123A,X,6
`
	rows, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	// Fields past the row's end come back empty instead of failing.
	if rows[0].CustomerID != "" || rows[0].Country != "" {
		t.Errorf("short row fields not empty: %+v", rows[0])
	}
	if rows[0].Quantity != "6" {
		t.Errorf("Quantity = %q, want 6", rows[0].Quantity)
	}
}

func TestReadEmptyInput(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatalf("write sample file: %v", err)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
