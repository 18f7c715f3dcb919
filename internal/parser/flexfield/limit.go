package flexfield

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Limit is a geography row limit. The upstream encodes it either as a native
// integer or as a numeric string, sometimes with stray literal quote
// characters baked into the string (e.g. "\"51"). Quotes are stripped from
// both ends before parsing; a non-numeric remainder is a DecodeError.
type Limit int32

// UnmarshalJSON decodes the integer-or-string shape.
func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &DecodeError{Field: "limit", Value: string(data), Msg: "expected an integer or numeric string"}
		}
		n, err := strconv.ParseInt(strings.Trim(s, `"`), 10, 32)
		if err != nil {
			return &DecodeError{Field: "limit", Value: s, Msg: "expected an integer or numeric string"}
		}
		*l = Limit(n)
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return &DecodeError{Field: "limit", Value: string(data), Msg: "expected an integer or numeric string"}
	}
	*l = Limit(n)
	return nil
}
