// Package config defines the canonical, JSON-serializable configuration model
// for the ingestion application. It is intentionally small, explicit, and
// dependency-free so that jobs can be loaded from disk (or other sources) and
// passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in job files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library, with defaults applied after decode.
//
// Example (trimmed):
//
//	{
//	  "job": "acs-metadata",
//	  "catalog_url": "https://api.census.gov/data.json",
//	  "link_filter": "http://api.census.gov/data/\\d\\d\\d\\d/acs/acs\\d/variables.json",
//	  "cache_dir": "cache",
//	  "db": { "dsn": "postgresql://..." }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Defaults applied by Load when the corresponding field is absent.
const (
	// DefaultCatalogURL is the Census Bureau's published dataset catalog.
	DefaultCatalogURL = "https://api.census.gov/data.json"

	// DefaultLinkFilter selects the American Community Survey endpoints by
	// their variables link. The catalog publishes these links with an http
	// scheme.
	DefaultLinkFilter = `http://api.census.gov/data/\d\d\d\d/acs/acs\d/variables.json`

	// DefaultCacheDir is where fetched documents are mirrored.
	DefaultCacheDir = "cache"

	// DefaultBatchSize bounds one insert statement.
	DefaultBatchSize = 5000

	// DefaultHTTPTimeoutSeconds bounds one document fetch.
	DefaultHTTPTimeoutSeconds = 30
)

// Config describes one ingestion job in JSON. It is the top-level object
// decoded from a job file (e.g., configs/ingest.json).
type Config struct {
	// Job names the run. It labels emitted metrics and log lines.
	Job string `json:"job"`

	// CatalogURL is the data.json catalog location. The catalog is fetched
	// once, on first run against an empty database, to seed the endpoint
	// table.
	CatalogURL string `json:"catalog_url"`

	// LinkFilter is a POSIX regular expression matched against each
	// endpoint's variables link to select which endpoints to ingest.
	LinkFilter string `json:"link_filter"`

	// CacheDir is the base directory for the on-disk document cache.
	CacheDir string `json:"cache_dir"`

	// BatchSize bounds the number of rows per insert statement.
	BatchSize int `json:"batch_size"`

	// HTTPTimeoutSeconds bounds one document fetch, in seconds.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`

	// DB configures the Postgres sink.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the connection string for pgx/pgxpool (e.g., postgresql://...).
	DSN string `json:"dsn"`
}

// Load reads and decodes a job file, then applies defaults to absent fields.
// The decoded config is not validated; call Validate separately so callers
// can decide how to surface issues.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills absent fields with the package defaults. Explicitly
// configured values, including zero-length strings set to non-defaults, are
// left alone.
func (c *Config) ApplyDefaults() {
	if c.CatalogURL == "" {
		c.CatalogURL = DefaultCatalogURL
	}
	if c.LinkFilter == "" {
		c.LinkFilter = DefaultLinkFilter
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = DefaultHTTPTimeoutSeconds
	}
}
