package clean

import (
	"errors"
	"fmt"
)

// ValidationError reports a contractually required field that could not be
// normalized. It aborts cleaning of the record; the record is excluded from
// downstream stages until the source data or the cleaning logic is fixed.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("clean: field %s invalid (%s): %q", e.Field, e.Reason, e.Value)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
