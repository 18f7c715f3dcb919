// Package flexfield implements tolerant decoders for the irregularly typed
// fields found in the Census Bureau's variables.json and geography.json
// documents. The upstream publishes no schema: the same field can appear as a
// string, an array, a number, or a boolean depending on the dataset and
// vintage. Each decoder in this package accepts the documented shapes for one
// field, normalizes them to a single canonical Go type, and rejects anything
// else with a DecodeError that carries the offending value.
//
// The decoders are plain json.Unmarshaler implementations so that record
// structs in parser/variables and parser/geography decode directly with
// encoding/json and no reflection tricks.
package flexfield

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Splitter turns one delimited string into a list of parts. The split pattern
// is compiled once at package init and shared by every call.
type Splitter struct {
	re   *regexp.Regexp
	trim string // cutset removed from both ends before splitting
}

var (
	// LabelSplitter splits variable labels. Labels pack a hierarchy into one
	// string, e.g. "Estimate!!Total:!!Male", where "!!" separates levels and
	// a level may carry a trailing ":" marker. Terminal colons are trimmed
	// and ":!!" collapses to a single boundary.
	LabelSplitter = &Splitter{re: regexp.MustCompile(`:?!!`), trim: ":"}

	// CommaSplitter splits comma-packed lists such as the "group" and
	// "attributes" fields.
	CommaSplitter = &Splitter{re: regexp.MustCompile(`,`), trim: " "}
)

// Split trims the configured cutset from both ends of s and splits on the
// pattern. A string without the delimiter yields a one-element list.
func (sp *Splitter) Split(s string) []string {
	return sp.re.Split(strings.Trim(s, sp.trim), -1)
}

// LabelList is a variable label decoded from its single-string form into its
// hierarchy levels. A present label always yields at least one element.
type LabelList []string

// UnmarshalJSON decodes a JSON string via LabelSplitter.
func (l *LabelList) UnmarshalJSON(data []byte) error {
	var s string
	if string(data) == "null" {
		return &DecodeError{Field: "label", Value: "null", Msg: "expected a delimited string"}
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Field: "label", Value: string(data), Msg: "expected a delimited string"}
	}
	*l = LabelList(LabelSplitter.Split(s))
	return nil
}

// CommaList is a comma-packed string field decoded into its parts. An absent
// field stays nil; a present field always yields at least one element.
type CommaList []string

// UnmarshalJSON decodes a JSON string via CommaSplitter. A JSON null leaves
// the list nil, matching an absent field.
func (c *CommaList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Field: "comma list", Value: string(data), Msg: "expected a comma-separated string"}
	}
	*c = CommaList(CommaSplitter.Split(s))
	return nil
}
