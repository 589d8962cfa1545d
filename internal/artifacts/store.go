// Shopper Spectrum - Customer Segmentation and Product Recommendations
// Copyright 2024 Pruthviraj Tarode (pruthvirajtarode)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation

// Package artifacts persists and restores the fitted pipeline outputs:
// the scaler parameters, the cluster model, the cluster->label map and
// the product similarity matrix as opaque versioned blobs, plus the
// RFM+segment table as CSV.
//
// Blobs are gob-encoded, gzip-compressed and carry a SHA-256 checksum
// that is verified on load. Filenames are versioned
// ({name}_v{version}.gob.gz) so a serving process can always resolve the
// latest artifact set.
package artifacts

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pruthvirajtarode/Shopper-Spectrum-Customer-Segmentation/internal/logging"
)

// Well-known artifact names.
const (
	// NameScaler is the fitted StandardScaler parameters.
	NameScaler = "scaler"

	// NameClusterModel is the fitted K-means centroids.
	NameClusterModel = "kmeans_model"

	// NameClusterLabels is the cluster->segment label map.
	NameClusterLabels = "cluster_labels"

	// NameSimilarity is the product similarity model.
	NameSimilarity = "product_similarity"
)

// ErrChecksumMismatch signals a corrupted artifact file.
var ErrChecksumMismatch = errors.New("artifacts: checksum mismatch")

// ErrNotFound signals that no version of the requested artifact exists.
var ErrNotFound = errors.New("artifacts: not found")

// Metadata describes a stored artifact.
type Metadata struct {
	// Name is the artifact name (e.g. "scaler").
	Name string `json:"name"`

	// Version is monotonically increasing per artifact name.
	Version int `json:"version"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format for artifact blobs.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages artifact persistence in a single directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// Latest known version per artifact name.
	versions map[string]int
}

// NewStore creates an artifact store at baseDir, creating the directory
// if needed and scanning it for existing artifact versions.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}

	return s, nil
}

// Dir returns the store's base directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scan discovers existing artifact files and records the latest version
// per name.
func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name, ok := strings.CutSuffix(entry.Name(), ".gob.gz")
		if !ok {
			continue
		}

		artifactName, version := parseFilename(name)
		if artifactName == "" {
			continue
		}

		if current, ok := s.versions[artifactName]; !ok || version > current {
			s.versions[artifactName] = version
		}
	}

	return nil
}

// parseFilename extracts artifact name and version from a name like
// "scaler_v3".
func parseFilename(name string) (artifactName string, version int) {
	idx := strings.LastIndex(name, "_v")
	if idx < 1 {
		return "", 0
	}

	if _, err := fmt.Sscanf(name[idx+2:], "%d", &version); err != nil || version < 1 {
		return "", 0
	}
	return name[:idx], version
}

// Save stores an artifact under the next version for its name. The data
// value must be gob-encodable.
func (s *Store) Save(ctx context.Context, name string, data interface{}) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return Metadata{}, fmt.Errorf("encode artifact %s: %w", name, err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return Metadata{}, fmt.Errorf("compress artifact %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	version := s.versions[name] + 1
	meta := Metadata{
		Name:      name,
		Version:   version,
		SavedAt:   time.Now(),
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}

	f, err := os.Create(s.path(name, version)) //nolint:gosec // path is constructed from trusted artifact names
	if err != nil {
		return Metadata{}, fmt.Errorf("create artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after successful write is reported via Encode

	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return Metadata{}, fmt.Errorf("write artifact file: %w", err)
	}

	s.versions[name] = version
	return meta, nil
}

// Load restores the artifact with the given name into target, which must
// be a pointer to the type that was saved. Version 0 loads the latest.
// The payload checksum is verified before decoding.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("artifact %s: %w", name, ErrNotFound)
		}
	}

	f, err := os.Open(s.path(name, version)) //nolint:gosec // path is constructed from trusted artifact names
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %s v%d: %w", name, version, ErrNotFound)
		}
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close error after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		logging.Error().
			Str("artifact", name).
			Int("version", version).
			Str("expected", sf.Metadata.Checksum).
			Str("actual", checksum).
			Msg("Artifact file is corrupted")
		return nil, fmt.Errorf("artifact %s v%d: %w", name, version, ErrChecksumMismatch)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}

	return &sf.Metadata, nil
}

// LatestVersion returns the latest version number for an artifact name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// path returns the file path for an artifact version.
func (s *Store) path(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", name, version))
}
