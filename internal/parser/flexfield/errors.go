package flexfield

import "fmt"

// DecodeError reports a field whose JSON value did not match any of the
// accepted shapes. Value carries the offending raw text so the bad document
// can be located in the upstream metadata.
type DecodeError struct {
	// Field is the logical field (or decoder) that rejected the value,
	// e.g. "referenceDate" or "wildcard".
	Field string

	// Value is the offending raw value as it appeared in the document.
	Value string

	// Msg describes the accepted shapes.
	Msg string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s (got %q)", e.Field, e.Msg, e.Value)
}
