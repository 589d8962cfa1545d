// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package recommend builds item-item product recommendations from
// purchase co-occurrence.
//
// Training builds a customer-product interaction matrix (cell = total
// quantity purchased) and computes pairwise cosine similarity between
// product columns. The product identity is the verbatim description
// string: no case folding, no whitespace trimming. Two descriptions that
// differ only by trailing whitespace are distinct products.
//
// Product vectors are held sparsely (customer -> quantity maps); the
// cosine over the intersection of non-zero entries equals the dense dot
// product, so the dense semantics are preserved exactly.
package recommend

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/models"
)

// ErrProductNotFound signals a lookup for a product description that is
// not a key in the similarity matrix. This is the expected result of an
// unknown key, distinct from any fatal error; callers test for it with
// errors.Is.
var ErrProductNotFound = errors.New("recommend: product not found")

// ErrNotTrained is returned when querying an engine that has neither
// been fitted nor restored from a persisted model.
var ErrNotTrained = errors.New("recommend: engine not trained")

// Neighbor is one product with its cosine similarity to the query
// product.
type Neighbor struct {
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

// ModelState is the serializable state of a trained engine: the product
// catalog and, per product, every other product ordered by similarity.
// It is the persisted similarity-matrix artifact.
type ModelState struct {
	// Products is the sorted product catalog.
	Products []string

	// Neighbors maps each product to all other products, sorted by
	// similarity descending with lexicographic tie-break.
	Neighbors map[string][]Neighbor
}

// Config controls training.
type Config struct {
	// Workers bounds concurrent per-product similarity computation.
	// 0 means runtime.NumCPU().
	Workers int
}

// Engine answers top-N similar-product queries.
type Engine struct {
	cfg       Config
	products  []string
	neighbors map[string][]Neighbor
	trained   bool
}

// NewEngine creates an untrained engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Engine{cfg: cfg}
}

// NewEngineFromModel restores an engine from a persisted model.
func NewEngineFromModel(state *ModelState) *Engine {
	return &Engine{
		products:  state.Products,
		neighbors: state.Neighbors,
		trained:   true,
	}
}

// Train builds the interaction matrix from the canonical table and
// precomputes the full sorted neighbor row for every product. Symmetry
// holds by construction: sim(a, b) and sim(b, a) are the same cosine.
func (e *Engine) Train(ctx context.Context, table []models.Transaction) error {
	// product -> customer -> total quantity
	vectors := make(map[string]map[int]float64)
	for i := range table {
		tx := &table[i]
		vec := vectors[tx.Description]
		if vec == nil {
			vec = make(map[int]float64)
			vectors[tx.Description] = vec
		}
		vec[tx.CustomerID] += tx.Quantity
	}

	products := make([]string, 0, len(vectors))
	for p := range vectors {
		products = append(products, p)
	}
	sort.Strings(products)

	norms := make(map[string]float64, len(products))
	for p, vec := range vectors {
		var sq float64
		for _, v := range vec {
			sq += v * v
		}
		norms[p] = math.Sqrt(sq)
	}

	// Each product's neighbor row is independent: workers share the
	// read-only vectors and norms and write into their own row slot.
	rows := make([][]Neighbor, len(products))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			row := make([]Neighbor, 0, len(products)-1)
			for _, other := range products {
				if other == product {
					continue
				}
				row = append(row, Neighbor{
					Description: other,
					Similarity:  cosine(vectors[product], vectors[other], norms[product], norms[other]),
				})
			}

			sortNeighbors(row)
			rows[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	neighbors := make(map[string][]Neighbor, len(products))
	for i, p := range products {
		neighbors[p] = rows[i]
	}

	e.products = products
	e.neighbors = neighbors
	e.trained = true

	logging.Info().
		Int("products", len(products)).
		Msg("Product similarity matrix computed")

	return nil
}

// Recommend returns the topN products most similar to product, sorted by
// similarity descending, excluding product itself. Ties are broken
// lexicographically by description for reproducible output. Returns
// min(topN, catalog-1) neighbors, ErrProductNotFound for an unknown key,
// and ErrNotTrained before training.
func (e *Engine) Recommend(product string, topN int) ([]Neighbor, error) {
	if !e.trained {
		return nil, ErrNotTrained
	}

	row, ok := e.neighbors[product]
	if !ok {
		return nil, ErrProductNotFound
	}

	if topN > len(row) {
		topN = len(row)
	}
	if topN < 0 {
		topN = 0
	}

	out := make([]Neighbor, topN)
	copy(out, row[:topN])
	return out, nil
}

// Similarity returns the cosine similarity between two products from the
// trained matrix. Self-similarity is 1 by definition.
func (e *Engine) Similarity(a, b string) (float64, error) {
	if !e.trained {
		return 0, ErrNotTrained
	}

	row, ok := e.neighbors[a]
	if !ok {
		return 0, ErrProductNotFound
	}
	if a == b {
		return 1, nil
	}

	for _, n := range row {
		if n.Description == b {
			return n.Similarity, nil
		}
	}
	return 0, ErrProductNotFound
}

// Products returns the sorted product catalog.
func (e *Engine) Products() ([]string, error) {
	if !e.trained {
		return nil, ErrNotTrained
	}
	out := make([]string, len(e.products))
	copy(out, e.products)
	return out, nil
}

// State exposes the trained model for persistence.
func (e *Engine) State() (*ModelState, error) {
	if !e.trained {
		return nil, ErrNotTrained
	}
	return &ModelState{Products: e.products, Neighbors: e.neighbors}, nil
}

// IsTrained reports whether the engine can answer queries.
func (e *Engine) IsTrained() bool {
	return e.trained
}

// cosine computes the cosine similarity of two sparse quantity vectors.
// Zero-norm vectors cannot occur here (every product has at least one
// positive-quantity purchase), but guard anyway.
func cosine(a, b map[int]float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}

	// Iterate the smaller vector; entries outside the intersection
	// contribute nothing to the dot product.
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for customer, qty := range a {
		if other, ok := b[customer]; ok {
			dot += qty * other
		}
	}

	return dot / (normA * normB)
}

// sortNeighbors orders a row by similarity descending, breaking ties
// lexicographically by description.
func sortNeighbors(row []Neighbor) {
	sort.Slice(row, func(i, j int) bool {
		if row[i].Similarity != row[j].Similarity {
			return row[i].Similarity > row[j].Similarity
		}
		return row[i].Description < row[j].Description
	})
}
