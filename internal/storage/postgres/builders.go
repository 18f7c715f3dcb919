package postgres

import (
	"fmt"
	"strings"

	"censusetl/internal/parser/geography"
	"censusetl/internal/parser/variables"
)

// variableColumns is the insert column order for the variables table. The
// trailing underscore-prefixed columns are derived at persistence time, not
// parsed from the document.
var variableColumns = []string{
	"name", "label", "concept", "required", "predicate_type",
	"group", "limit", "predicate_only", "attributes",
	"_first_group", "_concept_hash", "_attributes_hash",
}

// geographyColumns is the insert column order for the geography table.
var geographyColumns = []string{
	"name", "geo_level_display", "reference_date", "requires",
	"wildcard", "limit", "geo_level_id", "optional_with_wildcard_for",
}

// valuesPlaceholders renders "($1,$2),($3,$4)" style placeholder lists for a
// multi-row insert of rows x cols parameters.
func valuesPlaceholders(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// upsertVariablesSQL builds the batched variables upsert. The DO UPDATE arm
// exists only so that conflicting rows still appear in RETURNING; it assigns
// name to itself and changes nothing. ON CONFLICT DO NOTHING would suppress
// those rows and lose their ids.
func upsertVariablesSQL(rows int, constraint string) string {
	return fmt.Sprintf(
		"INSERT INTO variables (%s) VALUES %s ON CONFLICT ON CONSTRAINT %s DO UPDATE SET name = EXCLUDED.name RETURNING id",
		strings.Join(mapIdent(variableColumns), ","),
		valuesPlaceholders(rows, len(variableColumns)),
		pgIdent(constraint),
	)
}

// variableArgs flattens records into the argument list matching
// upsertVariablesSQL, deriving the first-group and hash columns.
func variableArgs(recs []variables.Record) []any {
	args := make([]any, 0, len(recs)*len(variableColumns))
	for i := range recs {
		rec := &recs[i]
		args = append(args,
			rec.Name,
			[]string(rec.Label),
			rec.Concept,
			rec.Required,
			rec.PredicateType,
			stringsOrNil(rec.Group),
			rec.Limit,
			rec.PredicateOnly,
			stringsOrNil(rec.Attributes),
			rec.FirstGroup(),
			rec.ConceptHash(),
			rec.AttributesHash(),
		)
	}
	return args
}

// insertGeographySQL builds the batched geography insert. Plain insert, no
// conflict handling: the caller clears the endpoint's old rows first.
func insertGeographySQL(rows int) string {
	return fmt.Sprintf(
		"INSERT INTO geography (%s) VALUES %s RETURNING id",
		strings.Join(mapIdent(geographyColumns), ","),
		valuesPlaceholders(rows, len(geographyColumns)),
	)
}

// geographyArgs flattens records into the argument list matching
// insertGeographySQL.
func geographyArgs(recs []geography.Record) []any {
	args := make([]any, 0, len(recs)*len(geographyColumns))
	for i := range recs {
		rec := &recs[i]
		args = append(args,
			rec.Name,
			rec.GeoLevelDisplay,
			dateOrNil(rec),
			rec.Requires,
			stringsOrNil(rec.Wildcard),
			(*int32)(rec.Limit),
			rec.GeoLevelID,
			rec.OptionalWithWildcardFor,
		)
	}
	return args
}

// stringsOrNil converts a named string-slice type for pgx encoding while
// keeping the absent (nil) vs present-but-empty distinction, which maps to
// NULL vs '{}' for the array columns.
func stringsOrNil[S ~[]string](s S) []string {
	if s == nil {
		return nil
	}
	return []string(s)
}

func dateOrNil(rec *geography.Record) any {
	if rec.ReferenceDate == nil {
		return nil
	}
	return rec.ReferenceDate.Time
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
