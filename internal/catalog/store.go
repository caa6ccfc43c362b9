// Package catalog loads the static solution catalog the advisor matches against.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"care-advisor/internal/models"

	"gopkg.in/yaml.v3"
)

// ErrCatalogLoad is matched by every error Load returns.
var ErrCatalogLoad = errors.New("catalog load failed")

// LoadError describes why a catalog file was rejected. Index is the offending
// record position, or -1 when the file as a whole is bad.
type LoadError struct {
	Path   string
	Index  int
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("catalog %s: %s", e.Path, e.Reason)
	if e.Index >= 0 {
		msg = fmt.Sprintf("catalog %s: record %d: %s", e.Path, e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrCatalogLoad }

// Store holds the loaded records. It exposes no mutation and is safe to share
// between goroutines.
type Store struct {
	path    string
	records []models.CatalogRecord
}

type catalogFile struct {
	Records []models.CatalogRecord `json:"records" yaml:"records"`
}

// Load reads, decodes and validates a catalog file. JSON and YAML are
// supported, selected by file extension.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Index: -1, Reason: "cannot read file", Err: err}
	}

	records, err := decode(path, data)
	if err != nil {
		return nil, &LoadError{Path: path, Index: -1, Reason: "cannot decode file", Err: err}
	}

	store, err := newStore(path, records)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewStore validates records that were built in code.
func NewStore(records []models.CatalogRecord) (*Store, error) {
	return newStore("<memory>", records)
}

func newStore(path string, records []models.CatalogRecord) (*Store, error) {
	if len(records) == 0 {
		return nil, &LoadError{Path: path, Index: -1, Reason: "no records"}
	}

	cleaned := make([]models.CatalogRecord, len(records))
	for i, rec := range records {
		rec, reason := validate(rec)
		if reason != "" {
			return nil, &LoadError{Path: path, Index: i, Reason: reason}
		}
		cleaned[i] = rec
	}

	return &Store{path: path, records: cleaned}, nil
}

// Records returns the catalog in file order. Callers must treat the slice as read-only.
func (s *Store) Records() []models.CatalogRecord {
	return s.records
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) Path() string {
	return s.path
}

func decode(path string, data []byte) ([]models.CatalogRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var records []models.CatalogRecord
		if err := yaml.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		return file.Records, nil
	case ".json":
		var records []models.CatalogRecord
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		var file catalogFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
		return file.Records, nil
	default:
		return nil, fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
}

// validate trims a record and returns a non-empty reason when it breaks the
// catalog invariants.
func validate(rec models.CatalogRecord) (models.CatalogRecord, string) {
	var keywords []string
	for _, kw := range rec.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return rec, "missing keywords"
	}
	rec.Keywords = keywords

	rec.Product = strings.TrimSpace(rec.Product)
	if rec.Product == "" {
		return rec, "missing product"
	}
	if !models.IsKnownProduct(rec.Product) {
		return rec, fmt.Sprintf("unknown product %q", rec.Product)
	}

	var features models.TextList
	for _, item := range rec.Features {
		for _, name := range strings.Split(item, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if !models.IsKnownFeature(name) {
				return rec, fmt.Sprintf("unknown feature %q", name)
			}
			features = append(features, name)
		}
	}
	if len(features) == 0 {
		return rec, "missing features"
	}
	rec.Features = features

	rec.Issue = strings.TrimSpace(rec.Issue)
	rec.Solution = strings.TrimSpace(rec.Solution)
	return rec, ""
}
