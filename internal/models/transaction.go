// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package models contains the core domain types shared across the
// analytics pipeline: raw and canonical transaction records, per-customer
// RFM feature records, and the segment label vocabulary.
package models

import (
	"time"
)

// RawTransaction is a single row of the raw input file, before any
// validation or coercion. All fields are kept as strings so the cleaner
// can decide, per rule, whether a row is recoverable or must be dropped.
type RawTransaction struct {
	// InvoiceID is the invoice identifier. Cancellations carry a
	// reserved prefix (conventionally "C").
	InvoiceID string `json:"invoice_id"`

	// ProductCode is the stock code of the purchased product.
	ProductCode string `json:"product_code"`

	// Description is the product description. It is the product
	// identity for the recommendation engine and is never normalized.
	Description string `json:"description"`

	// Quantity is the purchased quantity, unparsed.
	Quantity string `json:"quantity"`

	// UnitPrice is the per-unit price, unparsed.
	UnitPrice string `json:"unit_price"`

	// CustomerID is the customer identifier, possibly empty.
	CustomerID string `json:"customer_id"`

	// Timestamp is the invoice date string in whatever layout the
	// source system emitted.
	Timestamp string `json:"timestamp"`

	// Country is the customer's country.
	Country string `json:"country"`
}

// Transaction is one cleaned row of the canonical transaction table.
// Invariants: CustomerID is present and integral, InvoiceID does not
// denote a cancellation, Quantity > 0, UnitPrice > 0 and
// Total == Quantity * UnitPrice. Records are never mutated after the
// cleaning pass.
type Transaction struct {
	// InvoiceID is the invoice identifier.
	InvoiceID string `json:"invoice_id"`

	// ProductCode is the stock code of the purchased product.
	ProductCode string `json:"product_code"`

	// Description is the verbatim product description.
	Description string `json:"description"`

	// Quantity is the purchased quantity (always > 0).
	Quantity float64 `json:"quantity"`

	// UnitPrice is the per-unit price (always > 0).
	UnitPrice float64 `json:"unit_price"`

	// CustomerID is the integral customer identifier.
	CustomerID int `json:"customer_id"`

	// Timestamp is the parsed invoice date.
	Timestamp time.Time `json:"timestamp"`

	// Country is the customer's country.
	Country string `json:"country"`

	// Total is the derived row revenue: Quantity * UnitPrice.
	Total float64 `json:"total"`
}

// RFMRecord holds the three behavioral features for one customer,
// computed once from the canonical table and immutable afterwards.
type RFMRecord struct {
	// CustomerID is the customer this record describes.
	CustomerID int `json:"customer_id"`

	// Recency is the number of whole days between the global reference
	// date (latest invoice date in the table plus one day) and the
	// customer's most recent purchase. Always >= 1.
	Recency int `json:"recency"`

	// Frequency is the count of distinct invoice identifiers for the
	// customer, not the row count.
	Frequency int `json:"frequency"`

	// Monetary is the customer's total spend across all rows.
	Monetary float64 `json:"monetary"`
}

// SegmentedRFMRecord extends an RFMRecord with its clustering outcome.
// One row per customer in the persisted RFM+segment table.
type SegmentedRFMRecord struct {
	RFMRecord

	// Cluster is the model-assigned cluster id (0..K-1). Ids are
	// arbitrary; only the label carries meaning.
	Cluster int `json:"cluster"`

	// Segment is the human-readable label derived for the cluster.
	Segment Segment `json:"segment"`
}
