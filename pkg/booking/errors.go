package booking

import (
	"errors"
	"fmt"
)

// ErrConflict signals that a candidate interval overlaps an existing
// non-cancelled booking for the same equipment and date.
var ErrConflict = errors.New("time slot conflicts with an existing booking")

// ErrStorage marks a failure to read or write the booking collection. It is
// never downgraded to an empty result: proceeding as if no bookings existed
// would allow double-booking against data that is actually there.
var ErrStorage = errors.New("booking storage failure")

// ValidationError describes a rejected input field. It is raised before any
// mutation, so a failed create leaves no partial state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
