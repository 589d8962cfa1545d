// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package segment clusters customers by their RFM features.
//
// Fitting has two frozen stages: standardization of the RFM table, then
// a silhouette-driven search over candidate cluster counts followed by a
// final K-means fit. Each cluster receives one of four labels derived by
// rule from its mean RFM values. A fitted (or restored) Engine answers
// segment queries for arbitrary (recency, frequency, monetary) triples.
package segment

import (
	"context"
	"errors"
	"fmt"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/rfm"
)

// ErrNotFitted is returned when a query arrives before the scaler and
// cluster model exist. This is a precondition violation, not a data
// error: the engine never auto-trains on demand.
var ErrNotFitted = errors.New("segment: engine not fitted")

// Engine holds the frozen scaler, the fitted cluster model and the
// cluster->label map. Immutable once fitted.
type Engine struct {
	scaler *StandardScaler
	model  *Model
	labels map[int]models.Segment
}

// NewEngine creates an unfitted Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// NewEngineFromArtifacts restores an Engine from persisted artifacts.
func NewEngineFromArtifacts(params ScalerParams, model *Model, labels map[int]models.Segment) *Engine {
	return &Engine{
		scaler: NewScalerFromParams(params),
		model:  model,
		labels: labels,
	}
}

// FitResult describes a completed segmentation fit.
type FitResult struct {
	// SelectedK is the cluster count chosen by the sweep.
	SelectedK int `json:"selected_k"`

	// Silhouette is the separation score of the final clustering.
	Silhouette float64 `json:"silhouette"`

	// Inertia is the within-cluster sum of squared distances of the
	// final clustering.
	Inertia float64 `json:"inertia"`

	// Sweep holds the quality signals for every feasible candidate K.
	Sweep []KResult `json:"sweep"`

	// Assignments maps record index to cluster id.
	Assignments []int `json:"-"`

	// Summaries holds per-cluster mean RFM values.
	Summaries []ClusterSummary `json:"summaries"`

	// Labels is the cluster->segment label map.
	Labels map[int]models.Segment `json:"labels"`

	// Thresholds are the global quantile thresholds used for labeling.
	Thresholds rfm.Thresholds `json:"thresholds"`
}

// Fit runs both stages over the RFM table: fit and freeze the scaler,
// sweep candidate cluster counts, refit at the selected K, then label
// each cluster against the global RFM quantiles.
func (e *Engine) Fit(ctx context.Context, records []models.RFMRecord, cfg SweepConfig) (*FitResult, error) {
	scaler := &StandardScaler{}
	if err := scaler.Fit(records); err != nil {
		return nil, err
	}

	points, err := scaler.TransformRecords(records)
	if err != nil {
		return nil, err
	}

	sweep, err := Sweep(ctx, points, cfg)
	if err != nil {
		return nil, err
	}
	for _, r := range sweep {
		logging.Debug().
			Int("k", r.K).
			Float64("inertia", r.Inertia).
			Float64("silhouette", r.Silhouette).
			Msg("Sweep candidate evaluated")
	}

	k, err := SelectK(sweep)
	if err != nil {
		return nil, err
	}

	fit, err := FitKMeans(points, KMeansConfig{
		K:       k,
		NInit:   cfg.NInit,
		MaxIter: cfg.MaxIter,
		Seed:    cfg.Seed + int64(k),
	})
	if err != nil {
		return nil, fmt.Errorf("final fit at k=%d: %w", k, err)
	}

	thresholds := rfm.ComputeThresholds(records)
	summaries := Summarize(records, fit.Assignments, k)
	labels := LabelClusters(summaries, thresholds)

	e.scaler = scaler
	e.model = fit.Model
	e.labels = labels

	result := &FitResult{
		SelectedK:   k,
		Silhouette:  Silhouette(points, fit.Assignments, k),
		Inertia:     fit.Inertia,
		Sweep:       sweep,
		Assignments: fit.Assignments,
		Summaries:   summaries,
		Labels:      labels,
		Thresholds:  thresholds,
	}

	logging.Info().
		Int("selected_k", k).
		Float64("silhouette", result.Silhouette).
		Float64("inertia", result.Inertia).
		Msg("Segmentation fitted")

	return result, nil
}

// Assign scales a query triple with the frozen parameters, assigns it to
// the nearest fitted centroid and returns that cluster's label. Returns
// ErrNotFitted when the engine has no model.
func (e *Engine) Assign(recency, frequency, monetary float64) (models.Segment, int, error) {
	if e.scaler == nil || e.model == nil || e.labels == nil {
		return "", 0, ErrNotFitted
	}

	z, err := e.scaler.Transform(recency, frequency, monetary)
	if err != nil {
		return "", 0, err
	}

	cluster := e.model.Predict(z[:])
	label, ok := e.labels[cluster]
	if !ok {
		return "", cluster, fmt.Errorf("segment: no label for cluster %d", cluster)
	}
	return label, cluster, nil
}

// ScalerParams exposes the frozen scaler parameters for persistence.
func (e *Engine) ScalerParams() (ScalerParams, error) {
	if e.scaler == nil {
		return ScalerParams{}, ErrNotFitted
	}
	return e.scaler.Params()
}

// Model exposes the fitted cluster model for persistence.
func (e *Engine) Model() (*Model, error) {
	if e.model == nil {
		return nil, ErrNotFitted
	}
	return e.model, nil
}

// Labels exposes the cluster->label map for persistence.
func (e *Engine) Labels() (map[int]models.Segment, error) {
	if e.labels == nil {
		return nil, ErrNotFitted
	}
	return e.labels, nil
}
