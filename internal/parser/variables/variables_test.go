package variables

import (
	"errors"
	"reflect"
	"testing"

	"censusetl/internal/parser/flexfield"
)

// TestParse_TwoVariables parses a small document and verifies the flattening:
// names come from the object keys, labels and comma-packed fields are split,
// and document order is preserved.
func TestParse_TwoVariables(t *testing.T) {
	t.Parallel()

	doc := `{
	  "variables": {
	    "a": {
	      "label": "foo!!bar!!baz",
	      "predicateType": "int",
	      "group": "g1,g2,g3,g4",
	      "limit": 0,
	      "attributes": "A,B,C"
	    },
	    "b": {
	      "label": "qux!!quux!!corge",
	      "predicateType": "int",
	      "group": "g2",
	      "limit": 0,
	      "attributes": "D,E,F"
	    }
	  }
	}`

	recs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	if recs[0].Name != "a" || recs[1].Name != "b" {
		t.Fatalf("names = %q, %q; want a, b", recs[0].Name, recs[1].Name)
	}
	if want := (flexfield.LabelList{"foo", "bar", "baz"}); !reflect.DeepEqual(recs[0].Label, want) {
		t.Fatalf("label = %v, want %v", recs[0].Label, want)
	}
	if want := (flexfield.CommaList{"g1", "g2", "g3", "g4"}); !reflect.DeepEqual(recs[0].Group, want) {
		t.Fatalf("group = %v, want %v", recs[0].Group, want)
	}
	if want := (flexfield.CommaList{"D", "E", "F"}); !reflect.DeepEqual(recs[1].Attributes, want) {
		t.Fatalf("attributes = %v, want %v", recs[1].Attributes, want)
	}
	if recs[0].Limit == nil || *recs[0].Limit != 0 {
		t.Fatalf("limit = %v, want 0", recs[0].Limit)
	}
	if recs[0].Concept != nil {
		t.Fatalf("expected nil concept, got %q", *recs[0].Concept)
	}
}

// TestParse_NameFromKeyWins verifies that a "name" field nested inside a
// value object is ignored in favor of the map key.
func TestParse_NameFromKeyWins(t *testing.T) {
	t.Parallel()

	doc := `{"variables": {"B01001_001E": {"name": "SOMETHING_ELSE", "label": "Total"}}}`
	recs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "B01001_001E" {
		t.Fatalf("got %+v, want single record named B01001_001E", recs)
	}
}

// TestParse_DocumentOrder feeds many entries and checks the output sequence
// matches the document sequence, which a map-based decode would scramble.
func TestParse_DocumentOrder(t *testing.T) {
	t.Parallel()

	doc := `{"variables": {
	  "v3": {"label": "three"},
	  "v1": {"label": "one"},
	  "v2": {"label": "two"},
	  "for": {"label": "Census API Geography Specification"},
	  "in": {"label": "Census API Geography Specification"}
	}}`

	recs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"v3", "v1", "v2", "for", "in"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, name := range want {
		if recs[i].Name != name {
			t.Fatalf("record %d = %q, want %q", i, recs[i].Name, name)
		}
	}
}

// TestParse_AbsentListFieldsStayNil distinguishes absent group/attributes
// (nil) from present single-element lists.
func TestParse_AbsentListFieldsStayNil(t *testing.T) {
	t.Parallel()

	doc := `{"variables": {"x": {"label": "only a label"}}}`
	recs, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := recs[0]
	if r.Group != nil {
		t.Fatalf("group = %v, want nil", r.Group)
	}
	if r.Attributes != nil {
		t.Fatalf("attributes = %v, want nil", r.Attributes)
	}
	if want := (flexfield.LabelList{"only a label"}); !reflect.DeepEqual(r.Label, want) {
		t.Fatalf("label = %v, want %v", r.Label, want)
	}
}

// TestParse_Errors exercises the structural failure modes: missing
// "variables" key, non-object "variables" value, and a variable without a
// label.
func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"missing variables key", `{"fips": []}`},
		{"variables is an array", `{"variables": [{"label": "x"}]}`},
		{"variable without label", `{"variables": {"x": {"concept": "c"}}}`},
		{"top level array", `[1,2,3]`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Fatalf("expected error for %s", tt.doc)
			}
		})
	}
}

// TestParse_BadLabelTypeSurfacesDecodeError checks that field-level decode
// errors from flexfield propagate out of Parse unwrapped enough for
// errors.As.
func TestParse_BadLabelTypeSurfacesDecodeError(t *testing.T) {
	t.Parallel()

	doc := `{"variables": {"x": {"label": 42}}}`
	_, err := Parse([]byte(doc))
	var decErr *flexfield.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

// TestRecord_DerivedColumns covers FirstGroup, ConceptHash, and
// AttributesHash presence rules and hash stability across spellings.
func TestRecord_DerivedColumns(t *testing.T) {
	t.Parallel()

	concept := "SEX BY AGE"
	conceptLower := "sex  by age"
	a := Record{Concept: &concept, Group: flexfield.CommaList{"B01001", "B01"}, Attributes: flexfield.CommaList{"X", "Y"}}
	b := Record{Concept: &conceptLower}

	if fg := a.FirstGroup(); fg == nil || *fg != "B01001" {
		t.Fatalf("FirstGroup = %v, want B01001", fg)
	}
	if fg := b.FirstGroup(); fg != nil {
		t.Fatalf("FirstGroup = %v, want nil", fg)
	}

	ha, hb := a.ConceptHash(), b.ConceptHash()
	if ha == nil || hb == nil {
		t.Fatal("expected non-nil concept hashes")
	}
	if *ha != *hb {
		t.Fatalf("hashes differ for equivalent concepts: %s vs %s", *ha, *hb)
	}

	var empty Record
	if h := empty.ConceptHash(); h != nil {
		t.Fatalf("ConceptHash = %v, want nil", h)
	}
	if h := empty.AttributesHash(); h != nil {
		t.Fatalf("AttributesHash = %v, want nil", h)
	}
	if h := a.AttributesHash(); h == nil || len(*h) != 16 {
		t.Fatalf("AttributesHash = %v, want 16 hex chars", h)
	}
}
