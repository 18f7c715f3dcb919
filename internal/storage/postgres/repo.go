// Package postgres implements the storage.Repository interface on Postgres
// using pgx v5. Variables are written with a batched upsert keyed by the
// table's unique constraint so that re-ingesting an endpoint reuses existing
// rows; geography rows are endpoint-specific and replaced wholesale.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"censusetl/internal/catalog"
	"censusetl/internal/parser/geography"
	"censusetl/internal/parser/variables"
	"censusetl/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the connection string for pgxpool, e.g. "postgresql://...".
	DSN string
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository. Close releases the pool.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() { r.pool.Close() }

// HasAPIPaths reports whether any catalog entry has been persisted.
func (r *Repository) HasAPIPaths(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM api_paths)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check api_paths: %w", err)
	}
	return exists, nil
}

// seedBatchSize bounds one catalog insert statement. The full catalog is
// around 1500 entries, so this normally means a single batch.
const seedBatchSize = 1000

// SeedAPIPaths inserts catalog entries in bounded batches.
func (r *Repository) SeedAPIPaths(ctx context.Context, paths []catalog.ApiPath) error {
	cols := []string{"c_vintage", "c_dataset", "c_geography_link", "c_variables_link", "title", "description"}
	for start := 0; start < len(paths); start += seedBatchSize {
		end := min(start+seedBatchSize, len(paths))
		chunk := paths[start:end]

		args := make([]any, 0, len(chunk)*len(cols))
		for i := range chunk {
			p := &chunk[i]
			args = append(args, p.Vintage, p.Dataset, p.GeographyLink, p.VariablesLink, p.Title, p.Description)
		}
		sql := fmt.Sprintf("INSERT INTO api_paths (%s) VALUES %s",
			strings.Join(mapIdent(cols), ","), valuesPlaceholders(len(chunk), len(cols)))
		if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
			return wrapPgErr("seed api_paths", err)
		}
	}
	return nil
}

// ListAPIPaths returns the endpoints whose c_variables_link matches the given
// POSIX regular expression.
func (r *Repository) ListAPIPaths(ctx context.Context, variablesLinkPattern string) ([]catalog.ApiPath, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, c_vintage, c_dataset, c_geography_link, c_variables_link, title, description
		 FROM api_paths WHERE c_variables_link ~ $1 ORDER BY id`,
		variablesLinkPattern)
	if err != nil {
		return nil, fmt.Errorf("list api_paths: %w", err)
	}
	defer rows.Close()

	var out []catalog.ApiPath
	for rows.Next() {
		var p catalog.ApiPath
		if err := rows.Scan(&p.ID, &p.Vintage, &p.Dataset, &p.GeographyLink, &p.VariablesLink, &p.Title, &p.Description); err != nil {
			return nil, fmt.Errorf("scan api_paths: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list api_paths: %w", err)
	}
	return out, nil
}

// UniqueConstraints returns the unique constraint names declared on table.
// contype 'u' selects unique constraints; ::regclass resolves the table name
// to its object id.
func (r *Repository) UniqueConstraints(ctx context.Context, table string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT conname FROM pg_constraint WHERE conrelid = $1::regclass AND contype = 'u'",
		table)
	if err != nil {
		return nil, fmt.Errorf("unique constraints for %s: %w", table, err)
	}
	defer rows.Close()
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("unique constraints for %s: %w", table, err)
	}
	return names, nil
}

// RunInTx runs fn inside one transaction; fn's error aborts and rolls back.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(ptx pgx.Tx) error {
		return fn(ctx, &repoTx{tx: ptx})
	})
}

// repoTx implements storage.Tx over one pgx transaction.
type repoTx struct {
	tx pgx.Tx
}

// UpsertVariables inserts one batch of variables, reusing rows that already
// satisfy the named unique constraint, and returns every row's id.
func (t *repoTx) UpsertVariables(ctx context.Context, recs []variables.Record, constraint string) ([]int32, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	rows, err := t.tx.Query(ctx, upsertVariablesSQL(len(recs), constraint), variableArgs(recs)...)
	if err != nil {
		return nil, wrapPgErr("upsert variables", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, wrapPgErr("upsert variables", err)
	}
	if len(ids) != len(recs) {
		return nil, fmt.Errorf("upsert variables: got %d ids for %d records", len(ids), len(recs))
	}
	return ids, nil
}

// LinkVariables associates the endpoint with the given variable ids,
// skipping pairs that already exist. unnest keeps the statement at two bind
// parameters regardless of batch size.
func (t *repoTx) LinkVariables(ctx context.Context, apiPathID int32, variableIDs []int32) error {
	if len(variableIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO api_paths_variables_association (api_paths_id, variables_id)
		 SELECT $1, unnest($2::int4[])
		 ON CONFLICT DO NOTHING`,
		apiPathID, variableIDs)
	if err != nil {
		return wrapPgErr("link variables", err)
	}
	return nil
}

// ClearGeography deletes the endpoint's association rows and then the
// geography rows they pointed at. Geography is the parent table of the
// association, so this explicit two-step delete stands in for a cascade.
func (t *repoTx) ClearGeography(ctx context.Context, apiPathID int32) error {
	rows, err := t.tx.Query(ctx,
		"SELECT geography_id FROM api_paths_geography_association WHERE api_paths_id = $1",
		apiPathID)
	if err != nil {
		return wrapPgErr("clear geography", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return wrapPgErr("clear geography", err)
	}

	if _, err := t.tx.Exec(ctx,
		"DELETE FROM api_paths_geography_association WHERE api_paths_id = $1", apiPathID); err != nil {
		return wrapPgErr("clear geography associations", err)
	}
	if len(ids) > 0 {
		if _, err := t.tx.Exec(ctx, "DELETE FROM geography WHERE id = ANY($1)", ids); err != nil {
			return wrapPgErr("clear geography rows", err)
		}
	}
	return nil
}

// InsertGeography inserts one batch of geography rows and links all of them
// to the endpoint.
func (t *repoTx) InsertGeography(ctx context.Context, apiPathID int32, recs []geography.Record) error {
	if len(recs) == 0 {
		return nil
	}
	rows, err := t.tx.Query(ctx, insertGeographySQL(len(recs)), geographyArgs(recs)...)
	if err != nil {
		return wrapPgErr("insert geography", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return wrapPgErr("insert geography", err)
	}

	if _, err := t.tx.Exec(ctx,
		`INSERT INTO api_paths_geography_association (api_paths_id, geography_id)
		 SELECT $1, unnest($2::int4[])`,
		apiPathID, ids); err != nil {
		return wrapPgErr("link geography", err)
	}
	return nil
}

// wrapPgErr includes the Postgres error detail when present; constraint
// violations are unreadable without it.
func wrapPgErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %s (%s): %w", op, pgErr.Detail, pgErr.SQLState(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
