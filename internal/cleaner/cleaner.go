// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package cleaner turns raw transaction rows into the canonical
// transaction table.
//
// Rules are applied in a fixed order, and every dropped row is counted
// under exactly one reason - the first rule it fails:
//
//  1. Missing customer identifier
//  2. Non-integral customer identifier
//  3. Cancelled invoice (reserved prefix, conventionally "C")
//  4. Quantity <= 0 (or unparseable)
//  5. Unit price <= 0 (or unparseable)
//  6. Unparseable timestamp (explicit drop, never a default epoch)
//
// Surviving rows get a derived Total = Quantity * UnitPrice and the table
// is immutable afterwards.
package cleaner

import (
	"strconv"
	"strings"
	"time"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/metrics"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// timestampLayouts lists the accepted invoice date layouts, tried in
// order. The first two match the online retail export format.
var timestampLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"02/01/2006 15:04",
}

// Config controls cleaning behavior.
type Config struct {
	// CancelPrefix is the invoice-id prefix marking a cancelled order.
	CancelPrefix string
}

// DefaultConfig returns the default cleaning configuration.
func DefaultConfig() Config {
	return Config{CancelPrefix: "C"}
}

// Stats reports row counts for each cleaning rule. One row increments at
// most one drop counter.
type Stats struct {
	// InitialRows is the raw row count before any rule runs.
	InitialRows int `json:"initial_rows"`

	// MissingCustomer counts rows with an empty customer identifier.
	MissingCustomer int `json:"missing_customer"`

	// BadCustomerID counts rows whose customer identifier is not
	// integral.
	BadCustomerID int `json:"bad_customer_id"`

	// Cancelled counts rows whose invoice carries the cancel prefix.
	Cancelled int `json:"cancelled"`

	// BadQuantity counts rows with quantity <= 0 or unparseable.
	BadQuantity int `json:"bad_quantity"`

	// BadPrice counts rows with unit price <= 0 or unparseable.
	BadPrice int `json:"bad_price"`

	// BadTimestamp counts rows whose invoice date failed to parse.
	BadTimestamp int `json:"bad_timestamp"`

	// Retained is the size of the canonical table.
	Retained int `json:"retained"`
}

// Dropped returns the total number of dropped rows.
func (s Stats) Dropped() int {
	return s.MissingCustomer + s.BadCustomerID + s.Cancelled +
		s.BadQuantity + s.BadPrice + s.BadTimestamp
}

// RetainedPercent returns the percentage of raw rows that survived.
func (s Stats) RetainedPercent() float64 {
	if s.InitialRows == 0 {
		return 0
	}
	return float64(s.Retained) / float64(s.InitialRows) * 100
}

// Cleaner applies the cleaning rules.
type Cleaner struct {
	cfg Config
}

// New creates a Cleaner. An empty CancelPrefix falls back to the default.
func New(cfg Config) *Cleaner {
	if cfg.CancelPrefix == "" {
		cfg.CancelPrefix = DefaultConfig().CancelPrefix
	}
	return &Cleaner{cfg: cfg}
}

// Clean converts raw rows into the canonical transaction table, counting
// each drop under the first rule the row fails.
func (c *Cleaner) Clean(rows []models.RawTransaction) ([]models.Transaction, Stats) {
	stats := Stats{InitialRows: len(rows)}
	table := make([]models.Transaction, 0, len(rows))

	for i := range rows {
		tx, reason := c.cleanRow(&rows[i])
		if reason != "" {
			stats.count(reason)
			metrics.RowsDropped.WithLabelValues(reason).Inc()
			continue
		}
		table = append(table, tx)
	}

	stats.Retained = len(table)
	metrics.RowsRetained.Add(float64(stats.Retained))

	logging.Info().
		Int("initial_rows", stats.InitialRows).
		Int("missing_customer", stats.MissingCustomer).
		Int("bad_customer_id", stats.BadCustomerID).
		Int("cancelled", stats.Cancelled).
		Int("bad_quantity", stats.BadQuantity).
		Int("bad_price", stats.BadPrice).
		Int("bad_timestamp", stats.BadTimestamp).
		Int("retained", stats.Retained).
		Float64("retained_percent", stats.RetainedPercent()).
		Msg("Cleaning completed")

	return table, stats
}

// drop reasons, shared with the metrics label values.
const (
	reasonMissingCustomer = "missing_customer"
	reasonBadCustomerID   = "bad_customer_id"
	reasonCancelled       = "cancelled"
	reasonBadQuantity     = "bad_quantity"
	reasonBadPrice        = "bad_price"
	reasonBadTimestamp    = "bad_timestamp"
)

// cleanRow validates a single row. It returns the canonical transaction
// and an empty reason on success, or a zero transaction and the drop
// reason on failure.
func (c *Cleaner) cleanRow(raw *models.RawTransaction) (models.Transaction, string) {
	customerField := strings.TrimSpace(raw.CustomerID)
	if customerField == "" {
		return models.Transaction{}, reasonMissingCustomer
	}

	customerID, err := parseCustomerID(customerField)
	if err != nil {
		return models.Transaction{}, reasonBadCustomerID
	}

	if strings.HasPrefix(raw.InvoiceID, c.cfg.CancelPrefix) {
		return models.Transaction{}, reasonCancelled
	}

	quantity, err := strconv.ParseFloat(strings.TrimSpace(raw.Quantity), 64)
	if err != nil || quantity <= 0 {
		return models.Transaction{}, reasonBadQuantity
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(raw.UnitPrice), 64)
	if err != nil || unitPrice <= 0 {
		return models.Transaction{}, reasonBadPrice
	}

	ts, err := parseTimestamp(strings.TrimSpace(raw.Timestamp))
	if err != nil {
		return models.Transaction{}, reasonBadTimestamp
	}

	return models.Transaction{
		InvoiceID:   raw.InvoiceID,
		ProductCode: raw.ProductCode,
		Description: raw.Description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CustomerID:  customerID,
		Timestamp:   ts,
		Country:     raw.Country,
		Total:       quantity * unitPrice,
	}, ""
}

// parseCustomerID coerces a customer identifier to an integer. Source
// exports often carry ids as floats ("17850.0"), which are accepted when
// the fractional part is zero.
func parseCustomerID(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// parseTimestamp tries each accepted layout in order.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (s *Stats) count(reason string) {
	switch reason {
	case reasonMissingCustomer:
		s.MissingCustomer++
	case reasonBadCustomerID:
		s.BadCustomerID++
	case reasonCancelled:
		s.Cancelled++
	case reasonBadQuantity:
		s.BadQuantity++
	case reasonBadPrice:
		s.BadPrice++
	case reasonBadTimestamp:
		s.BadTimestamp++
	}
}
