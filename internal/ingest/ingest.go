// Package ingest coordinates the per-endpoint ingestion flow: fetch the
// endpoint's variables and geography documents, parse them, and persist both
// result sets in a single transaction.
//
// Design goals:
//
//   - Both documents are fetched and parsed concurrently; persistence starts
//     only once both have succeeded, so a malformed geography document never
//     leaves half an endpoint in the database.
//   - Failures carry the endpoint and the stage they occurred in, so a run
//     over hundreds of endpoints produces a log that says exactly which
//     document broke and how.
//   - Batch sizes stay well under Postgres's 65535 bind-parameter ceiling.
package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"censusetl/internal/catalog"
	"censusetl/internal/metrics"
	"censusetl/internal/parser/geography"
	"censusetl/internal/parser/variables"
	"censusetl/internal/storage"
)

// DefaultBatchSize bounds one insert statement. The widest table binds 12
// parameters per row, so 5000 rows stays comfortably under the Postgres
// parameter ceiling.
const DefaultBatchSize = 5000

// Stages an ingestion error can occur in.
const (
	StageFetchVariables = "fetch_variables"
	StageParseVariables = "parse_variables"
	StageFetchGeography = "fetch_geography"
	StageParseGeography = "parse_geography"
	StagePersist        = "persist"
)

// Error is an ingestion failure tagged with the endpoint and the stage in
// which it occurred.
type Error struct {
	Endpoint string // the endpoint's variables link, its most recognizable name
	Stage    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves a document by URL. Satisfied by cache.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Coordinator runs the ingestion flow for one endpoint at a time.
type Coordinator struct {
	fetcher   Fetcher
	repo      storage.Repository
	job       string
	batchSize int
}

// NewCoordinator constructs a Coordinator. A batchSize of zero or less means
// DefaultBatchSize; job names the run in emitted metrics.
func NewCoordinator(fetcher Fetcher, repo storage.Repository, job string, batchSize int) *Coordinator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Coordinator{
		fetcher:   fetcher,
		repo:      repo,
		job:       job,
		batchSize: batchSize,
	}
}

// Ingest fetches, parses, and persists one endpoint's metadata. constraint
// names the unique constraint on the variables table that the upsert keys on.
// The endpoint must carry its database identity (ep.ID).
func (c *Coordinator) Ingest(ctx context.Context, ep catalog.ApiPath, constraint string) error {
	var (
		vars []variables.Record
		geos []geography.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vars, err = c.fetchVariables(gctx, ep)
		return err
	})
	g.Go(func() error {
		var err error
		geos, err = c.fetchGeography(gctx, ep)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	metrics.RecordRow(c.job, "variables_parsed", int64(len(vars)))
	metrics.RecordRow(c.job, "geography_parsed", int64(len(geos)))

	start := time.Now()
	err := c.repo.RunInTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return c.persist(ctx, tx, ep, vars, geos, constraint)
	})
	metrics.RecordStep(c.job, StagePersist, err, time.Since(start))
	if err != nil {
		return &Error{Endpoint: ep.VariablesLink, Stage: StagePersist, Err: err}
	}

	metrics.RecordRow(c.job, "variables_upserted", int64(len(vars)))
	metrics.RecordRow(c.job, "geography_inserted", int64(len(geos)))
	return nil
}

func (c *Coordinator) fetchVariables(ctx context.Context, ep catalog.ApiPath) ([]variables.Record, error) {
	start := time.Now()
	data, err := c.fetcher.Fetch(ctx, ep.VariablesLink)
	metrics.RecordStep(c.job, StageFetchVariables, err, time.Since(start))
	if err != nil {
		return nil, &Error{Endpoint: ep.VariablesLink, Stage: StageFetchVariables, Err: err}
	}

	recs, err := variables.Parse(data)
	if err != nil {
		return nil, &Error{Endpoint: ep.VariablesLink, Stage: StageParseVariables, Err: err}
	}
	return recs, nil
}

func (c *Coordinator) fetchGeography(ctx context.Context, ep catalog.ApiPath) ([]geography.Record, error) {
	start := time.Now()
	data, err := c.fetcher.Fetch(ctx, ep.GeographyLink)
	metrics.RecordStep(c.job, StageFetchGeography, err, time.Since(start))
	if err != nil {
		return nil, &Error{Endpoint: ep.VariablesLink, Stage: StageFetchGeography, Err: err}
	}

	recs, err := geography.Parse(data)
	if err != nil {
		return nil, &Error{Endpoint: ep.VariablesLink, Stage: StageParseGeography, Err: err}
	}
	return recs, nil
}

// persist writes both result sets inside one transaction. Variables are
// upserted in batches and linked to the endpoint; the endpoint's previous
// geography rows are cleared once, then the new rows inserted in batches.
func (c *Coordinator) persist(ctx context.Context, tx storage.Tx, ep catalog.ApiPath, vars []variables.Record, geos []geography.Record, constraint string) error {
	for start := 0; start < len(vars); start += c.batchSize {
		end := min(start+c.batchSize, len(vars))
		ids, err := tx.UpsertVariables(ctx, vars[start:end], constraint)
		if err != nil {
			return err
		}
		if err := tx.LinkVariables(ctx, ep.ID, ids); err != nil {
			return err
		}
		metrics.RecordBatches(c.job, 1)
	}

	// Clear once, before the first insert batch: clearing per batch would
	// delete rows inserted by earlier batches.
	if err := tx.ClearGeography(ctx, ep.ID); err != nil {
		return err
	}
	for start := 0; start < len(geos); start += c.batchSize {
		end := min(start+c.batchSize, len(geos))
		if err := tx.InsertGeography(ctx, ep.ID, geos[start:end]); err != nil {
			return err
		}
		metrics.RecordBatches(c.job, 1)
	}
	return nil
}
