// Package config provides configuration models and helpers for ingestion jobs.
//
// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "db.dsn"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	cfg, err := config.Load(path)
//	if err != nil { ... }
//	for _, iss := range config.Validate(cfg) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	if strings.TrimSpace(c.CatalogURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "catalog_url",
			Message:  "catalog_url must not be empty",
		})
	} else if u, err := url.Parse(c.CatalogURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "catalog_url",
			Message:  fmt.Sprintf("catalog_url %q is not an absolute URL", c.CatalogURL),
		})
	}

	if strings.TrimSpace(c.LinkFilter) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "link_filter",
			Message:  "link_filter is empty; every catalog endpoint will be ingested",
		})
	} else if _, err := regexp.Compile(c.LinkFilter); err != nil {
		// Postgres evaluates the filter, but a pattern Go cannot compile is
		// almost certainly broken there too. Catch it before a run starts.
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "link_filter",
			Message:  fmt.Sprintf("link_filter does not compile: %v", err),
		})
	}

	if strings.TrimSpace(c.CacheDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cache_dir",
			Message:  "cache_dir must not be empty",
		})
	}

	if c.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "batch_size",
			Message:  "batch_size must not be negative",
		})
	} else if c.BatchSize > 5000 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "batch_size",
			Message:  fmt.Sprintf("batch_size=%d; large batches risk the Postgres bind-parameter limit", c.BatchSize),
		})
	}

	if c.HTTPTimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http_timeout_seconds",
			Message:  "http_timeout_seconds must not be negative",
		})
	}

	if strings.TrimSpace(c.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.dsn",
			Message:  "db.dsn must not be empty",
		})
	}

	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
