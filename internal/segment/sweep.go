// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package segment

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrNoFeasibleK is returned when no candidate cluster count can be
// fitted, for example when the sample count is below every candidate.
var ErrNoFeasibleK = errors.New("segment: no feasible cluster count in range")

// SweepConfig controls the cluster-count search.
type SweepConfig struct {
	// KMin and KMax bound the candidate range, inclusive.
	KMin int
	KMax int

	// NInit, MaxIter and Seed are passed to every candidate fit. Each
	// candidate derives its own seed from Seed and K so results do not
	// depend on scheduling order.
	NInit   int
	MaxIter int
	Seed    int64

	// Workers bounds concurrent candidate fits. 0 fits every candidate
	// concurrently.
	Workers int
}

// DefaultSweepConfig returns the practical default search range.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		KMin:    2,
		KMax:    10,
		NInit:   10,
		MaxIter: 300,
		Seed:    42,
	}
}

// KResult records the quality signals for one candidate cluster count.
type KResult struct {
	K          int     `json:"k"`
	Inertia    float64 `json:"inertia"`
	Silhouette float64 `json:"silhouette"`
}

// Sweep fits every feasible candidate K in [KMin, KMax] and returns one
// KResult per candidate, ordered by K. Candidates that cannot be fitted
// on the given sample count (K >= number of points, or fewer than two
// points overall) are skipped rather than failing the sweep.
//
// Sweep is a pure function of its inputs: candidate fits share only the
// read-only point matrix and each writes to its own result slot, so they
// run concurrently on an errgroup.
func Sweep(ctx context.Context, points [][]float64, cfg SweepConfig) ([]KResult, error) {
	if cfg.KMin < 2 {
		cfg.KMin = 2
	}
	if cfg.KMax < cfg.KMin {
		return nil, fmt.Errorf("segment: invalid sweep range [%d, %d]", cfg.KMin, cfg.KMax)
	}

	type slot struct {
		result KResult
		ok     bool
	}
	slots := make([]slot, cfg.KMax-cfg.KMin+1)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for k := cfg.KMin; k <= cfg.KMax; k++ {
		// Silhouette needs at least one sample outside each cluster,
		// so K must stay strictly below the sample count.
		if k >= len(points) {
			continue
		}

		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fit, err := FitKMeans(points, KMeansConfig{
				K:       k,
				NInit:   cfg.NInit,
				MaxIter: cfg.MaxIter,
				Seed:    cfg.Seed + int64(k),
			})
			if err != nil {
				return fmt.Errorf("fit k=%d: %w", k, err)
			}

			slots[k-cfg.KMin] = slot{
				result: KResult{
					K:          k,
					Inertia:    fit.Inertia,
					Silhouette: Silhouette(points, fit.Assignments, k),
				},
				ok: true,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]KResult, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.result)
		}
	}
	if len(results) == 0 {
		return nil, ErrNoFeasibleK
	}
	return results, nil
}

// SelectK reduces sweep results to the chosen cluster count: the K with
// the highest silhouette, ties broken by the smallest K.
func SelectK(results []KResult) (int, error) {
	if len(results) == 0 {
		return 0, ErrNoFeasibleK
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Silhouette > best.Silhouette ||
			(r.Silhouette == best.Silhouette && r.K < best.K) {
			best = r
		}
	}
	return best.K, nil
}
