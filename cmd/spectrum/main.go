// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package main is the entry point for the Shopper Spectrum analytics CLI.
//
// Shopper Spectrum turns a raw online-retail transaction export into
// customer segments and product recommendations. A training run cleans
// the export, builds per-customer RFM features (recency, frequency,
// monetary), selects a cluster count by silhouette score, fits K-means,
// labels the resulting clusters, and trains an item-based cosine
// similarity model over customer purchase quantities. Every fitted
// artifact is persisted so later invocations can answer queries without
// retraining.
//
// # Modes
//
// Without query flags the binary runs the full training pipeline:
//
//	spectrum
//
// With -segment the fitted models answer a segment query for an RFM
// triple (recency days, frequency, monetary):
//
//	spectrum -segment "12,5,431.50"
//
// With -recommend the similarity model returns the most similar
// products for an exact product description:
//
//	spectrum -recommend "WHITE HANGING HEART T-LIGHT HOLDER" -top 5
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (SPECTRUM_*, see internal/config)
//   - Config file (spectrum.yaml, or SPECTRUM_CONFIG)
//   - Built-in defaults
//
// # Signal Handling
//
// A training run cancels on SIGINT and SIGTERM; partially written
// artifact sets are never referenced by a manifest.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/artifacts"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/config"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/pipeline"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/recommend"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/segment"
)

func main() {
	var (
		segmentQuery   = flag.String("segment", "", `query the segment for an RFM triple, e.g. "12,5,431.50"`)
		recommendQuery = flag.String("recommend", "", "query similar products for an exact product description")
		topN           = flag.Int("top", 0, "number of recommendations to return (default from config)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	store, err := artifacts.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open artifact store")
	}

	switch {
	case *segmentQuery != "":
		err = querySegment(store, *segmentQuery)
	case *recommendQuery != "":
		n := *topN
		if n <= 0 {
			n = cfg.Recommend.TopN
		}
		err = queryRecommend(store, *recommendQuery, n)
	default:
		err = train(cfg, store)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("Command failed")
	}
}

// train runs the full pipeline with cancellation on SIGINT/SIGTERM.
func train(cfg *config.Config, store *artifacts.Store) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(*cfg, store)
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s complete in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
	return nil
}

// querySegment assigns an RFM triple to its customer segment using the
// persisted scaler, cluster model and label map.
func querySegment(store *artifacts.Store, query string) error {
	recency, frequency, monetary, err := parseRFMQuery(query)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var params segment.ScalerParams
	if _, err := store.Load(ctx, artifacts.NameScaler, 0, &params); err != nil {
		return loadErr(err)
	}
	var model segment.Model
	if _, err := store.Load(ctx, artifacts.NameClusterModel, 0, &model); err != nil {
		return loadErr(err)
	}
	var labels map[int]models.Segment
	if _, err := store.Load(ctx, artifacts.NameClusterLabels, 0, &labels); err != nil {
		return loadErr(err)
	}

	engine := segment.NewEngineFromArtifacts(params, &model, labels)
	label, cluster, err := engine.Assign(recency, frequency, monetary)
	if err != nil {
		return err
	}

	fmt.Printf("cluster: %d\nsegment: %s\n", cluster, label)
	return nil
}

// queryRecommend returns the most similar products for an exact product
// description using the persisted similarity model.
func queryRecommend(store *artifacts.Store, product string, topN int) error {
	var state recommend.ModelState
	if _, err := store.Load(context.Background(), artifacts.NameSimilarity, 0, &state); err != nil {
		return loadErr(err)
	}

	engine := recommend.NewEngineFromModel(&state)
	neighbors, err := engine.Recommend(product, topN)
	if err != nil {
		if errors.Is(err, recommend.ErrProductNotFound) {
			return fmt.Errorf("product %q is not in the trained catalog", product)
		}
		return err
	}

	for i, n := range neighbors {
		fmt.Printf("%d. %s (similarity %.4f)\n", i+1, n.Description, n.Similarity)
	}
	return nil
}

// parseRFMQuery parses "recency,frequency,monetary".
func parseRFMQuery(query string) (recency, frequency, monetary float64, err error) {
	parts := strings.Split(query, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("segment query must be \"recency,frequency,monetary\", got %q", query)
	}

	values := make([]float64, 3)
	for i, part := range parts {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("segment query component %d: %w", i+1, err)
		}
	}

	return values[0], values[1], values[2], nil
}

// loadErr gives a friendlier message when no training run has happened
// yet.
func loadErr(err error) error {
	if errors.Is(err, artifacts.ErrNotFound) {
		return fmt.Errorf("no trained artifacts found; run a training pass first: %w", err)
	}
	return err
}
