// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package config defines pipeline configuration and its layered loading.
//
// Configuration is resolved with Koanf v2 in three layers, later layers
// overriding earlier ones:
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the analytics pipeline.
type Config struct {
	Input        InputConfig        `koanf:"input"`
	Artifacts    ArtifactsConfig    `koanf:"artifacts"`
	Segmentation SegmentationConfig `koanf:"segmentation"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// InputConfig describes the raw transaction file and its conventions.
type InputConfig struct {
	// Path is the location of the raw transaction CSV file.
	Path string `koanf:"path" validate:"required"`

	// CancelPrefix is the invoice-id prefix that marks a cancelled
	// order. Rows with such invoices are dropped during cleaning.
	CancelPrefix string `koanf:"cancel_prefix" validate:"required"`
}

// ArtifactsConfig describes where fitted artifacts are persisted.
type ArtifactsConfig struct {
	// Dir is the directory holding serialized artifacts.
	Dir string `koanf:"dir" validate:"required"`
}

// SegmentationConfig controls scaling, the cluster-count sweep and the
// final K-means fit.
type SegmentationConfig struct {
	// KMin is the smallest candidate cluster count.
	KMin int `koanf:"k_min" validate:"gte=2"`

	// KMax is the largest candidate cluster count.
	KMax int `koanf:"k_max" validate:"gtefield=KMin"`

	// NInit is the number of random restarts per candidate fit. The
	// best restart by inertia wins.
	NInit int `koanf:"n_init" validate:"gte=1"`

	// MaxIter bounds Lloyd iterations within a single restart.
	MaxIter int `koanf:"max_iter" validate:"gte=1"`

	// Seed is the base random seed. Every fit derives its seed from
	// this value, making the whole sweep deterministic.
	Seed int64 `koanf:"seed"`

	// Workers bounds parallel candidate fits during the sweep.
	// 0 means one worker per candidate K.
	Workers int `koanf:"workers" validate:"gte=0"`
}

// RecommendConfig controls the product similarity engine.
type RecommendConfig struct {
	// TopN is the default number of similar products returned by a
	// recommendation query.
	TopN int `koanf:"top_n" validate:"gte=1"`

	// Workers bounds parallel per-product similarity computation.
	// 0 means runtime.NumCPU().
	Workers int `koanf:"workers" validate:"gte=0"`
}

// LoggingConfig mirrors the logging package configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns a Config populated with all default values. These are
// applied first, then overridden by the config file and environment.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path:         "online_retail.csv",
			CancelPrefix: "C",
		},
		Artifacts: ArtifactsConfig{
			Dir: "models",
		},
		Segmentation: SegmentationConfig{
			KMin:    2,
			KMax:    10,
			NInit:   10,
			MaxIter: 300,
			Seed:    42,
			Workers: 0,
		},
		Recommend: RecommendConfig{
			TopN:    5,
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
