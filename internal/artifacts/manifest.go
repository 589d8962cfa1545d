// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// ManifestFile is the name of the run manifest written per pipeline run.
const ManifestFile = "manifest.json"

// Manifest records what a pipeline run produced and the artifact
// versions it wrote, so serving processes and operators can tell which
// model set belongs together.
type Manifest struct {
	RunID       string     `json:"run_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Customers   int        `json:"customers"`
	Products    int        `json:"products"`
	SelectedK   int        `json:"selected_k"`
	Silhouette  float64    `json:"silhouette"`
	RowsRead    int        `json:"rows_read"`
	RowsDropped int        `json:"rows_dropped"`
	Artifacts   []Metadata `json:"artifacts"`
}

// WriteManifest persists the run manifest, replacing any previous one.
func (s *Store) WriteManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(s.baseDir, ManifestFile)
	if err := os.WriteFile(path, data, 0o640); err != nil { //nolint:gosec // manifest is not sensitive
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// LoadManifest reads the manifest of the most recent pipeline run.
func (s *Store) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, ManifestFile)) //nolint:gosec // path is under the store's base directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}
