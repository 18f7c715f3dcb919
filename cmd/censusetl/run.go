package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"censusetl/internal/catalog"
	"censusetl/internal/config"
	"censusetl/internal/datasource/cache"
	"censusetl/internal/datasource/httpds"
	"censusetl/internal/ingest"
	"censusetl/internal/storage"
	"censusetl/internal/storage/postgres"
)

// run executes one full ingestion pass: seed the catalog if the database is
// empty, select the endpoints matching the configured filter, and ingest each
// one in turn. It returns the number of endpoints that failed; a per-endpoint
// failure is logged and the run continues, since each endpoint commits
// independently and a re-run picks up where the cache left off.
func run(ctx context.Context, cfg config.Config, verbose bool) (failed int, err error) {
	repo, err := postgres.NewRepository(ctx, postgres.Config{DSN: cfg.DB.DSN})
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	client := httpds.NewClient(httpds.Config{
		Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
	})
	fetcher := cache.NewFetcher(cfg.CacheDir, client)

	if err := seedCatalog(ctx, repo, fetcher, cfg.CatalogURL, verbose); err != nil {
		return 0, err
	}

	constraint, err := variablesConstraint(ctx, repo)
	if err != nil {
		return 0, err
	}

	endpoints, err := repo.ListAPIPaths(ctx, cfg.LinkFilter)
	if err != nil {
		return 0, err
	}
	if verbose {
		log.Printf("selected %d endpoint(s) matching %q", len(endpoints), cfg.LinkFilter)
	}

	coord := ingest.NewCoordinator(fetcher, repo, cfg.Job, cfg.BatchSize)
	for _, ep := range endpoints {
		if err := coord.Ingest(ctx, ep, constraint); err != nil {
			log.Printf("endpoint failed: %v", err)
			failed++
			continue
		}
		if verbose {
			log.Printf("ingested %s", ep.VariablesLink)
		}
	}
	return failed, nil
}

// seedCatalog populates the endpoint table from the data.json catalog when
// the table is empty. Later runs reuse the stored catalog; clear the table to
// pick up newly published endpoints.
func seedCatalog(ctx context.Context, repo storage.Repository, fetcher *cache.Fetcher, catalogURL string, verbose bool) error {
	seeded, err := repo.HasAPIPaths(ctx)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	data, err := fetcher.Fetch(ctx, catalogURL)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	paths, err := catalog.Parse(data)
	if err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if err := repo.SeedAPIPaths(ctx, paths); err != nil {
		return err
	}
	if verbose {
		log.Printf("seeded %d catalog endpoint(s)", len(paths))
	}
	return nil
}

// variablesConstraint resolves the unique constraint the variables upsert
// keys on. The schema must declare exactly one; with none the upsert cannot
// deduplicate, with several the choice would be ambiguous.
func variablesConstraint(ctx context.Context, repo storage.Repository) (string, error) {
	names, err := repo.UniqueConstraints(ctx, "variables")
	if err != nil {
		return "", err
	}
	if len(names) != 1 {
		return "", fmt.Errorf("variables table declares %d unique constraints, want exactly 1", len(names))
	}
	return names[0], nil
}
