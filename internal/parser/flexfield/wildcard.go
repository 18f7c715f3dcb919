package flexfield

import "encoding/json"

// Wildcard is a geography wildcard field. The upstream encodes it either as
// an array of strings or as the boolean false; false normalizes to an empty
// (non-nil) list. The boolean true is rejected: the format defines no meaning
// for it, and guessing one would silently change query semantics.
type Wildcard []string

// UnmarshalJSON decodes the array-or-false shape. A JSON null leaves the
// field nil, matching an absent field.
func (w *Wildcard) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return &DecodeError{Field: "wildcard", Value: "", Msg: "expected an array of strings or the boolean false"}
	}
	// data is a syntactically valid JSON value; the first byte identifies it.
	switch data[0] {
	case 'n':
		return nil
	case '[':
		var vals []string
		if err := json.Unmarshal(data, &vals); err != nil {
			return &DecodeError{Field: "wildcard", Value: string(data), Msg: "expected an array of strings or the boolean false"}
		}
		*w = Wildcard(vals)
		return nil
	case 'f':
		*w = Wildcard{}
		return nil
	case 't':
		return &DecodeError{Field: "wildcard", Value: "true", Msg: "boolean true is not allowed"}
	default:
		return &DecodeError{Field: "wildcard", Value: string(data), Msg: "expected an array of strings or the boolean false"}
	}
}
