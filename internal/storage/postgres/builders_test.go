package postgres

import (
	"reflect"
	"strings"
	"testing"

	"censusetl/internal/parser/flexfield"
	"censusetl/internal/parser/geography"
	"censusetl/internal/parser/variables"
)

// TestValuesPlaceholders verifies placeholder numbering across rows.
func TestValuesPlaceholders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rows, cols int
		want       string
	}{
		{1, 1, "($1)"},
		{1, 3, "($1,$2,$3)"},
		{2, 2, "($1,$2),($3,$4)"},
		{3, 1, "($1),($2),($3)"},
	}
	for _, tt := range tests {
		if got := valuesPlaceholders(tt.rows, tt.cols); got != tt.want {
			t.Fatalf("valuesPlaceholders(%d,%d) = %q, want %q", tt.rows, tt.cols, got, tt.want)
		}
	}
}

// TestUpsertVariablesSQL checks the upsert shape: quoted reserved-word
// columns, the named constraint, the self-assigning DO UPDATE arm, and
// RETURNING id.
func TestUpsertVariablesSQL(t *testing.T) {
	t.Parallel()

	sql := upsertVariablesSQL(2, "variables_name_label_key")

	for _, want := range []string{
		`"group"`,
		`"limit"`,
		`ON CONFLICT ON CONSTRAINT "variables_name_label_key"`,
		"DO UPDATE SET name = EXCLUDED.name",
		"RETURNING id",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("sql missing %q:\n%s", want, sql)
		}
	}

	// Two rows of twelve columns end at $24.
	if !strings.Contains(sql, "$24)") {
		t.Fatalf("expected placeholders through $24:\n%s", sql)
	}
	if strings.Contains(sql, "$25") {
		t.Fatalf("unexpected placeholder past $24:\n%s", sql)
	}
}

// TestVariableArgs verifies argument order, nil propagation for absent
// fields, and the derived first-group and hash columns.
func TestVariableArgs(t *testing.T) {
	t.Parallel()

	concept := "SEX BY AGE"
	rec := variables.Record{
		Name:       "B01001_001E",
		Label:      flexfield.LabelList{"Estimate", "Total"},
		Concept:    &concept,
		Group:      flexfield.CommaList{"B01001"},
		Attributes: flexfield.CommaList{"B01001_001EA"},
	}

	args := variableArgs([]variables.Record{rec})
	if len(args) != len(variableColumns) {
		t.Fatalf("got %d args, want %d", len(args), len(variableColumns))
	}

	if args[0] != "B01001_001E" {
		t.Fatalf("args[0] = %v, want name", args[0])
	}
	if want := []string{"Estimate", "Total"}; !reflect.DeepEqual(args[1], want) {
		t.Fatalf("args[1] = %v, want %v", args[1], want)
	}
	// required and predicate_type are absent: typed-nil pointers encode NULL.
	if v := args[3].(*string); v != nil {
		t.Fatalf("args[3] = %v, want nil required", v)
	}
	if fg := args[9].(*string); fg == nil || *fg != "B01001" {
		t.Fatalf("args[9] = %v, want first group B01001", fg)
	}
	if h := args[10].(*string); h == nil || len(*h) != 16 {
		t.Fatalf("args[10] = %v, want 16-char concept hash", h)
	}
}

// TestGeographyArgs verifies the NULL vs empty-array distinction for
// wildcard and the date conversion.
func TestGeographyArgs(t *testing.T) {
	t.Parallel()

	withWildcard := geography.Record{Name: "us", Wildcard: flexfield.Wildcard{}}
	withoutWildcard := geography.Record{Name: "state"}

	args := geographyArgs([]geography.Record{withWildcard, withoutWildcard})
	if len(args) != 2*len(geographyColumns) {
		t.Fatalf("got %d args, want %d", len(args), 2*len(geographyColumns))
	}

	// wildcard is column index 4.
	if w := args[4].([]string); w == nil || len(w) != 0 {
		t.Fatalf("args[4] = %#v, want empty non-nil slice", args[4])
	}
	if w := args[len(geographyColumns)+4].([]string); w != nil {
		t.Fatalf("second wildcard = %#v, want nil", w)
	}

	// reference_date is column index 2; absent encodes as untyped nil.
	if args[2] != nil {
		t.Fatalf("args[2] = %v, want nil date", args[2])
	}
}

// TestInsertGeographySQL checks the plain-insert shape.
func TestInsertGeographySQL(t *testing.T) {
	t.Parallel()

	sql := insertGeographySQL(1)
	if strings.Contains(sql, "ON CONFLICT") {
		t.Fatalf("geography insert must not carry conflict handling:\n%s", sql)
	}
	if !strings.Contains(sql, "RETURNING id") {
		t.Fatalf("geography insert must return ids:\n%s", sql)
	}
	if !strings.Contains(sql, `"optional_with_wildcard_for"`) {
		t.Fatalf("missing quoted column:\n%s", sql)
	}
}

// TestPgIdent covers quote escaping in identifiers.
func TestPgIdent(t *testing.T) {
	t.Parallel()

	if got := pgIdent(`weird"name`); got != `"weird""name"` {
		t.Fatalf("pgIdent = %s", got)
	}
}
