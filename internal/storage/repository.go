// Package storage defines the narrow persistence surface the ingester
// depends on. The interfaces mirror exactly the operations the ingestion
// flow needs; everything database-specific (schema, SQL, constraint
// handling) lives in backend subpackages.
package storage

import (
	"context"

	"censusetl/internal/catalog"
	"censusetl/internal/parser/geography"
	"censusetl/internal/parser/variables"
)

// Repository is the storage backend for the API catalog and per-endpoint
// metadata. Implementations must be safe for use from multiple goroutines,
// though the ingester itself persists one endpoint at a time.
type Repository interface {
	// HasAPIPaths reports whether the catalog has already been seeded.
	HasAPIPaths(ctx context.Context) (bool, error)

	// SeedAPIPaths inserts catalog entries. Called once, on an empty table.
	SeedAPIPaths(ctx context.Context, paths []catalog.ApiPath) error

	// ListAPIPaths returns the endpoints whose variables link matches the
	// given POSIX regular expression, with database identities populated.
	ListAPIPaths(ctx context.Context, variablesLinkPattern string) ([]catalog.ApiPath, error)

	// UniqueConstraints returns the names of the unique constraints declared
	// on the given table.
	UniqueConstraints(ctx context.Context, table string) ([]string, error)

	// RunInTx runs fn inside a single transaction. Any error from fn rolls
	// the whole transaction back and is returned.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the underlying connections.
	Close()
}

// Tx is the transactional surface used while ingesting one endpoint. All
// methods act within the transaction opened by Repository.RunInTx.
type Tx interface {
	// UpsertVariables inserts one batch of variable records using an
	// idempotent upsert keyed by the named unique constraint, returning the
	// database id of every record in batch order (existing rows report
	// their existing id).
	UpsertVariables(ctx context.Context, recs []variables.Record, constraint string) ([]int32, error)

	// LinkVariables associates the endpoint with the given variable ids.
	// Existing associations are left untouched.
	LinkVariables(ctx context.Context, apiPathID int32, variableIDs []int32) error

	// ClearGeography removes the endpoint's geography associations and the
	// geography rows they referenced. Geography rows are endpoint-specific,
	// so dropping them here cannot orphan another endpoint.
	ClearGeography(ctx context.Context, apiPathID int32) error

	// InsertGeography inserts one batch of geography records and associates
	// all of them with the endpoint, unconditionally.
	InsertGeography(ctx context.Context, apiPathID int32, recs []geography.Record) error
}
