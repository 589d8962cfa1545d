// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package metrics provides Prometheus instrumentation for the batch
// pipeline: cleaning drop counts by reason, per-stage durations, and
// summary gauges describing the fitted models.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsDropped counts raw rows dropped during cleaning, by reason.
	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spectrum_rows_dropped_total",
			Help: "Raw transaction rows dropped during cleaning",
		},
		[]string{"reason"}, // "missing_customer", "bad_customer_id", "cancelled", "bad_quantity", "bad_price", "bad_timestamp"
	)

	// RowsRetained counts rows that survived cleaning.
	RowsRetained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spectrum_rows_retained_total",
			Help: "Raw transaction rows retained in the canonical table",
		},
	)

	// StageDuration observes wall-clock duration of each pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spectrum_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"stage"}, // "ingest", "clean", "rfm", "segment", "recommend", "persist"
	)

	// PipelineRuns counts completed pipeline runs by outcome.
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spectrum_pipeline_runs_total",
			Help: "Completed pipeline runs by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	// Customers reports the number of distinct customers in the last run.
	Customers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spectrum_customers",
			Help: "Distinct customers in the last completed run",
		},
	)

	// Products reports the size of the product catalog in the last run.
	Products = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spectrum_products",
			Help: "Distinct product descriptions in the last completed run",
		},
	)

	// SelectedClusters reports the K chosen by the cluster-count sweep.
	SelectedClusters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spectrum_selected_clusters",
			Help: "Cluster count selected by the silhouette sweep",
		},
	)

	// SilhouetteScore reports the silhouette of the final clustering.
	SilhouetteScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spectrum_silhouette_score",
			Help: "Silhouette score of the final clustering",
		},
	)
)

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
