// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package pipeline orchestrates a full training run: ingest the raw
// transaction export, clean it, build RFM features, fit the
// segmentation and recommendation models in parallel and persist every
// artifact the serving commands need.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/artifacts"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/cleaner"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/config"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/ingest"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/metrics"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/recommend"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/rfm"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/segment"
)

// Result summarizes a completed pipeline run.
type Result struct {
	RunID            string
	CleanStats       cleaner.Stats
	Dataset          DatasetSummary
	Customers        int
	Products         int
	SelectedK        int
	Silhouette       float64
	SegmentCounts    map[models.Segment]int
	SegmentSummaries []SegmentSummary
	Duration         time.Duration
}

// DatasetSummary describes the cleaned transaction table: distinct
// customers, products (by description) and countries, and the summed
// row revenue.
type DatasetSummary struct {
	Rows      int
	Customers int
	Products  int
	Countries int
	Revenue   float64
}

// SegmentSummary aggregates the customers of one segment across every
// cluster carrying that label.
type SegmentSummary struct {
	Segment       models.Segment
	Customers     int
	MeanRecency   float64
	MeanFrequency float64
	MeanMonetary  float64
}

// Cleaning that drops more rows than it keeps usually means the export
// is malformed rather than merely noisy.
const minRetainedPercent = 50.0

// Runner executes the end-to-end training pipeline.
type Runner struct {
	cfg   config.Config
	store *artifacts.Store
}

// NewRunner creates a pipeline runner backed by the given artifact
// store.
func NewRunner(cfg config.Config, store *artifacts.Store) *Runner {
	return &Runner{cfg: cfg, store: store}
}

// Run executes ingest, cleaning, feature building, model fitting and
// artifact persistence. Model fitting for segmentation and
// recommendations runs concurrently since both depend only on the
// cleaned table.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	log := logging.With().Str("run_id", runID).Logger()
	log.Info().Str("input", r.cfg.Input.Path).Msg("Starting pipeline run")

	res, err := r.run(ctx, runID, &log)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("error").Inc()
		logging.Err(err).Str("run_id", runID).Msg("Pipeline run failed")
		return nil, err
	}

	res.Duration = time.Since(start)
	metrics.PipelineRuns.WithLabelValues("success").Inc()

	log.Info().
		Int("customers", res.Customers).
		Int("products", res.Products).
		Int("selected_k", res.SelectedK).
		Float64("silhouette", res.Silhouette).
		Dur("duration", res.Duration).
		Msg("Pipeline run complete")

	return res, nil
}

func (r *Runner) run(ctx context.Context, runID string, log *zerolog.Logger) (*Result, error) {
	ingestStart := time.Now()
	raw, err := ingest.ReadFile(r.cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	metrics.ObserveStage("ingest", ingestStart)

	cleanStart := time.Now()
	cl := cleaner.New(cleaner.Config{CancelPrefix: r.cfg.Input.CancelPrefix})
	table, stats := cl.Clean(raw)
	metrics.ObserveStage("clean", cleanStart)

	if len(table) == 0 {
		return nil, fmt.Errorf("cleaning removed every row of %d", stats.InitialRows)
	}
	if stats.RetainedPercent() < minRetainedPercent {
		logging.Warn().
			Int("initial_rows", stats.InitialRows).
			Float64("retained_percent", stats.RetainedPercent()).
			Msg("Cleaning dropped most of the input rows")
	}

	dataset := summarizeTable(table)
	log.Info().
		Int("rows", dataset.Rows).
		Int("unique_customers", dataset.Customers).
		Int("unique_products", dataset.Products).
		Int("countries", dataset.Countries).
		Float64("total_revenue", dataset.Revenue).
		Msg("Cleaned dataset summary")

	featureStart := time.Now()
	rfmRecords, reference, err := rfm.Build(table)
	if err != nil {
		return nil, fmt.Errorf("build rfm features: %w", err)
	}
	metrics.ObserveStage("rfm", featureStart)
	metrics.Customers.Set(float64(len(rfmRecords)))

	log.Info().
		Int("customers", len(rfmRecords)).
		Time("reference", reference).
		Msg("RFM features built")

	segEngine := segment.NewEngine()
	recEngine := recommend.NewEngine(recommend.Config{Workers: r.cfg.Recommend.Workers})

	var fit *segment.FitResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fitStart := time.Now()
		var err error
		fit, err = segEngine.Fit(gctx, rfmRecords, segment.SweepConfig{
			KMin:    r.cfg.Segmentation.KMin,
			KMax:    r.cfg.Segmentation.KMax,
			NInit:   r.cfg.Segmentation.NInit,
			MaxIter: r.cfg.Segmentation.MaxIter,
			Seed:    r.cfg.Segmentation.Seed,
			Workers: r.cfg.Segmentation.Workers,
		})
		if err != nil {
			return fmt.Errorf("fit segmentation: %w", err)
		}
		metrics.ObserveStage("segment", fitStart)
		return nil
	})
	g.Go(func() error {
		trainStart := time.Now()
		if err := recEngine.Train(gctx, table); err != nil {
			return fmt.Errorf("train recommender: %w", err)
		}
		metrics.ObserveStage("recommend", trainStart)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products, err := recEngine.Products()
	if err != nil {
		return nil, fmt.Errorf("read product catalog: %w", err)
	}

	metrics.SelectedClusters.Set(float64(fit.SelectedK))
	metrics.SilhouetteScore.Set(fit.Silhouette)
	metrics.Products.Set(float64(len(products)))

	segmented, segSummaries := assembleSegments(rfmRecords, fit)

	counts := make(map[models.Segment]int, len(segSummaries))
	for _, s := range segSummaries {
		counts[s.Segment] = s.Customers
		log.Info().
			Str("segment", s.Segment.String()).
			Int("customers", s.Customers).
			Float64("mean_recency", s.MeanRecency).
			Float64("mean_frequency", s.MeanFrequency).
			Float64("mean_monetary", s.MeanMonetary).
			Msg("Segment summary")
	}

	persistStart := time.Now()
	saved, err := r.persist(ctx, runID, segEngine, recEngine, segmented, stats, fit, len(products))
	if err != nil {
		return nil, fmt.Errorf("persist artifacts: %w", err)
	}
	metrics.ObserveStage("persist", persistStart)

	log.Info().
		Int("artifacts", len(saved)).
		Str("dir", r.store.Dir()).
		Msg("Artifacts written")

	return &Result{
		RunID:            runID,
		CleanStats:       stats,
		Dataset:          dataset,
		Customers:        len(rfmRecords),
		Products:         len(products),
		SelectedK:        fit.SelectedK,
		Silhouette:       fit.Silhouette,
		SegmentCounts:    counts,
		SegmentSummaries: segSummaries,
	}, nil
}

// summarizeTable computes the post-cleaning dataset summary. Products
// are counted by verbatim description, the recommendation identity.
func summarizeTable(table []models.Transaction) DatasetSummary {
	customers := make(map[int]struct{})
	products := make(map[string]struct{})
	countries := make(map[string]struct{})

	var revenue float64
	for i := range table {
		tx := &table[i]
		customers[tx.CustomerID] = struct{}{}
		products[tx.Description] = struct{}{}
		countries[tx.Country] = struct{}{}
		revenue += tx.Total
	}

	return DatasetSummary{
		Rows:      len(table),
		Customers: len(customers),
		Products:  len(products),
		Countries: len(countries),
		Revenue:   revenue,
	}
}

// assembleSegments joins the RFM records with their cluster assignment
// and label, and aggregates per-segment means over the raw (unscaled)
// feature values. Summaries are ordered by the label vocabulary;
// segments with no customers are omitted.
func assembleSegments(records []models.RFMRecord, fit *segment.FitResult) ([]models.SegmentedRFMRecord, []SegmentSummary) {
	segmented := make([]models.SegmentedRFMRecord, len(records))
	sums := make(map[models.Segment]*SegmentSummary, len(models.Segments))

	for i, rec := range records {
		cluster := fit.Assignments[i]
		label := fit.Labels[cluster]
		segmented[i] = models.SegmentedRFMRecord{
			RFMRecord: rec,
			Cluster:   cluster,
			Segment:   label,
		}

		s := sums[label]
		if s == nil {
			s = &SegmentSummary{Segment: label}
			sums[label] = s
		}
		s.Customers++
		s.MeanRecency += float64(rec.Recency)
		s.MeanFrequency += float64(rec.Frequency)
		s.MeanMonetary += rec.Monetary
	}

	summaries := make([]SegmentSummary, 0, len(sums))
	for _, label := range models.Segments {
		s, ok := sums[label]
		if !ok {
			continue
		}
		n := float64(s.Customers)
		s.MeanRecency /= n
		s.MeanFrequency /= n
		s.MeanMonetary /= n
		summaries = append(summaries, *s)
	}

	return segmented, summaries
}

func (r *Runner) persist(
	ctx context.Context,
	runID string,
	segEngine *segment.Engine,
	recEngine *recommend.Engine,
	segmented []models.SegmentedRFMRecord,
	stats cleaner.Stats,
	fit *segment.FitResult,
	products int,
) ([]artifacts.Metadata, error) {
	scalerParams, err := segEngine.ScalerParams()
	if err != nil {
		return nil, err
	}
	model, err := segEngine.Model()
	if err != nil {
		return nil, err
	}
	labels, err := segEngine.Labels()
	if err != nil {
		return nil, err
	}
	state, err := recEngine.State()
	if err != nil {
		return nil, err
	}

	saved := make([]artifacts.Metadata, 0, 4)

	meta, err := r.store.Save(ctx, artifacts.NameScaler, scalerParams)
	if err != nil {
		return nil, err
	}
	saved = append(saved, meta)

	meta, err = r.store.Save(ctx, artifacts.NameClusterModel, model)
	if err != nil {
		return nil, err
	}
	saved = append(saved, meta)

	meta, err = r.store.Save(ctx, artifacts.NameClusterLabels, labels)
	if err != nil {
		return nil, err
	}
	saved = append(saved, meta)

	meta, err = r.store.Save(ctx, artifacts.NameSimilarity, state)
	if err != nil {
		return nil, err
	}
	saved = append(saved, meta)

	if err := r.store.SaveRFMTable(segmented); err != nil {
		return nil, err
	}

	manifest := artifacts.Manifest{
		RunID:       runID,
		CreatedAt:   time.Now(),
		Customers:   len(segmented),
		Products:    products,
		SelectedK:   fit.SelectedK,
		Silhouette:  fit.Silhouette,
		RowsRead:    stats.InitialRows,
		RowsDropped: stats.Dropped(),
		Artifacts:   saved,
	}
	if err := r.store.WriteManifest(manifest); err != nil {
		return nil, err
	}

	return saved, nil
}
