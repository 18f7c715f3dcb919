// Package geography parses the geography.json document published for each
// Census API endpoint. One Record is produced per entry in the document's
// "fips" array; a document without a "fips" key is valid and yields an empty
// collection, since some endpoints publish no geography hierarchy at all.
package geography

import (
	"encoding/json"
	"fmt"

	"censusetl/internal/parser/flexfield"
)

// Record is one geography aggregation level from a geography.json document.
// Pointer and nil slice fields distinguish absent fields from present empty
// ones; database identity is assigned at persistence time.
type Record struct {
	Name            string          `json:"name"`
	GeoLevelDisplay *string         `json:"geoLevelDisplay"`
	ReferenceDate   *flexfield.Date `json:"referenceDate"`

	// Requires lists the parent levels that must be specified alongside this
	// one (e.g. "county" requires "state").
	Requires []string `json:"requires"`

	// Wildcard lists the parent levels that accept a wildcard value. Present
	// but empty (from the upstream's "wildcard": false) means none do.
	Wildcard flexfield.Wildcard `json:"wildcard"`

	Limit                   *flexfield.Limit `json:"limit"`
	GeoLevelID              *string          `json:"geoLevelId"`
	OptionalWithWildcardFor *string          `json:"optionalWithWCFor"`
}

// Collection is the decoded top-level shape of geography.json.
type Collection struct {
	Fips []Record `json:"fips"`
}

// Parse decodes a geography.json document into its records. A missing "fips"
// key yields an empty slice, not an error.
func Parse(data []byte) ([]Record, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("geography document: %w", err)
	}
	return c.Fips, nil
}
