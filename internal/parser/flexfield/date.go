package flexfield

import (
	"encoding/json"
	"time"
)

// dateLayout is the full-date form used by geography.json reference dates.
const dateLayout = "2006-01-02"

// Date is a calendar date decoded from either a bare 4-digit year (taken as
// January 1 of that year) or a full "YYYY-MM-DD" string. Any other string is
// a DecodeError.
type Date struct {
	time.Time
}

// UnmarshalJSON implements the year-or-full-date decoding rule.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Field: "referenceDate", Value: string(data), Msg: "expected a YYYY or YYYY-MM-DD string"}
	}
	if len(s) == 4 && allDigits(s) {
		t, err := time.Parse("2006", s)
		if err != nil {
			return &DecodeError{Field: "referenceDate", Value: s, Msg: "expected a YYYY or YYYY-MM-DD string"}
		}
		d.Time = t
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return &DecodeError{Field: "referenceDate", Value: s, Msg: "expected a YYYY or YYYY-MM-DD string"}
	}
	d.Time = t
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
