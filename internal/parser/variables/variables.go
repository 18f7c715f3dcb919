// Package variables parses the variables.json document published for each
// Census API endpoint.
//
// The document's top-level "variables" field is not an array: it is an object
// keyed by variable name, where each value describes that variable's other
// fields. The parser walks the JSON token stream so that records come out in
// document order, flattening each (name, object) entry into one Record with
// Name taken from the key. Any "name" field nested inside a value object is
// ignored; the key is authoritative.
package variables

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"censusetl/internal/parser/flexfield"

	"github.com/zeebo/xxh3"
)

// Record is one variable from a variables.json document. Pointer and nil
// slice fields distinguish an absent field from a present empty one; database
// identity is assigned at persistence time, not here.
type Record struct {
	// Name is the key of the entry in the top-level "variables" object.
	Name string `json:"-"`

	// Label is the variable's display hierarchy, split from its packed
	// single-string form. Present labels always hold at least one element.
	Label flexfield.LabelList `json:"label"`

	Concept       *string             `json:"concept"`
	Required      *string             `json:"required"`
	PredicateType *string             `json:"predicateType"`
	Group         flexfield.CommaList `json:"group"`
	Limit         *int16              `json:"limit"`
	PredicateOnly *bool               `json:"predicateOnly"`
	Attributes    flexfield.CommaList `json:"attributes"`
}

// FirstGroup returns the first entry of Group, or nil when the variable has
// no group. It feeds the _first_group column used for group-level lookups.
func (r *Record) FirstGroup() *string {
	if len(r.Group) == 0 {
		return nil
	}
	g := r.Group[0]
	return &g
}

// ConceptHash returns a stable hex digest of the normalized concept, or nil
// when the concept is absent. Feeds the _concept_hash column.
func (r *Record) ConceptHash() *string {
	if r.Concept == nil {
		return nil
	}
	return hashKey(*r.Concept)
}

// AttributesHash returns a stable hex digest of the normalized, re-joined
// attributes list, or nil when attributes are absent. Feeds the
// _attributes_hash column.
func (r *Record) AttributesHash() *string {
	if r.Attributes == nil {
		return nil
	}
	return hashKey(strings.Join(r.Attributes, ","))
}

func hashKey(s string) *string {
	h := fmt.Sprintf("%016x", xxh3.HashString(flexfield.HashKey(s)))
	return &h
}

// Parse decodes a variables.json document into its records, in document
// order. A document without a "variables" key, or whose "variables" value is
// not an object, is a decode error; so is an entry without a usable label.
func Parse(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("variables document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &flexfield.DecodeError{Field: "variables document", Value: fmt.Sprint(tok), Msg: "expected a top-level object"}
	}

	var recs []Record
	seen := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("variables document: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("variables document: unexpected token %v", keyTok)
		}
		if key != "variables" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("variables document: skip %q: %w", key, err)
			}
			continue
		}

		seen = true
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("variables document: %w", err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, &flexfield.DecodeError{Field: "variables", Value: fmt.Sprint(tok), Msg: "expected an object keyed by variable name"}
		}
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("variables document: %w", err)
			}
			name, ok := nameTok.(string)
			if !ok {
				return nil, fmt.Errorf("variables document: unexpected key token %v", nameTok)
			}

			var rec Record
			if err := dec.Decode(&rec); err != nil {
				return nil, fmt.Errorf("variable %q: %w", name, err)
			}
			rec.Name = name
			if len(rec.Label) == 0 {
				return nil, &flexfield.DecodeError{Field: "label", Value: name, Msg: "variable has no label"}
			}
			recs = append(recs, rec)
		}
		// Consume the closing brace of the "variables" object.
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("variables document: %w", err)
		}
	}

	if !seen {
		return nil, &flexfield.DecodeError{Field: "variables", Value: "", Msg: "document has no \"variables\" key"}
	}
	return recs, nil
}
