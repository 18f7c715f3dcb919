// Package catalog models the Census Bureau API catalog published at
// https://api.census.gov/data.json. Each entry in the catalog's "dataset"
// array describes one API endpoint and carries the links to that endpoint's
// variables.json and geography.json metadata documents.
package catalog

import (
	"encoding/json"
	"fmt"
)

// ApiPath is one endpoint descriptor from data.json. ID is the database
// identity assigned when the catalog is seeded; it anchors the variable and
// geography associations and is zero until then.
type ApiPath struct {
	ID int32 `json:"-"`

	// Vintage is the data year the endpoint covers; absent for timeseries
	// endpoints.
	Vintage *int32 `json:"c_vintage"`

	// Dataset is the endpoint's dataset path, e.g. ["acs", "acs5"].
	Dataset []string `json:"c_dataset"`

	GeographyLink string `json:"c_geographyLink"`
	VariablesLink string `json:"c_variablesLink"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// Catalog is the decoded top-level shape of data.json.
type Catalog struct {
	Dataset []ApiPath `json:"dataset"`
}

// Parse decodes a data.json document. An empty or missing "dataset" array is
// an error: a catalog without endpoints means the fetch went wrong upstream.
func Parse(data []byte) ([]ApiPath, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog document: %w", err)
	}
	if len(c.Dataset) == 0 {
		return nil, fmt.Errorf("catalog document: no entries under \"dataset\"")
	}
	return c.Dataset, nil
}
