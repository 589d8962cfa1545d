// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"spectrum.yaml",
	"spectrum.yml",
	"/etc/spectrum/config.yaml",
	"/etc/spectrum/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "SPECTRUM_CONFIG"

// Load resolves configuration using Koanf v2 with layered sources:
//
//  1. Defaults from Default()
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// SPECTRUM_INPUT_PATH -> input.path, SPECTRUM_SEGMENTATION_K_MAX ->
	// segmentation.k_max, and so on via the explicit mapping table.
	envProvider := env.Provider("SPECTRUM_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (after prefix stripping and
// lowercasing) to koanf config paths. Unknown variables are ignored so
// unrelated SPECTRUM_* settings cannot corrupt the config tree.
var envMappings = map[string]string{
	"input_path":            "input.path",
	"input_cancel_prefix":   "input.cancel_prefix",
	"artifacts_dir":         "artifacts.dir",
	"segmentation_k_min":    "segmentation.k_min",
	"segmentation_k_max":    "segmentation.k_max",
	"segmentation_n_init":   "segmentation.n_init",
	"segmentation_max_iter": "segmentation.max_iter",
	"segmentation_seed":     "segmentation.seed",
	"segmentation_workers":  "segmentation.workers",
	"recommend_top_n":       "recommend.top_n",
	"recommend_workers":     "recommend.workers",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SPECTRUM_"))
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}
