package screening

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOutOfRangeScore  = errors.New("exam score out of range")
	ErrIncompleteGrades = errors.New("grades incomplete")
)

// User-facing messages for each error kind.
const (
	MessageOutOfRangeScore  = "Please enter a valid JAMB score between 0 and 400."
	MessageIncompleteGrades = "Please select all 5 O'Level grades."
	messageUnexpected       = "Unable to calculate the screening score."
)

// Stable codes for each error kind, used by transport layers.
const (
	CodeOutOfRangeScore  = "out_of_range_score"
	CodeIncompleteGrades = "incomplete_grades"
	codeUnknown          = "unknown"
)

// InputError describes a rejected input. Kind is one of the sentinel errors
// above; Err carries the underlying cause, if any.
type InputError struct {
	Op   string
	Kind error
	Err  error
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newInputError(op string, kind, err error) error {
	return &InputError{Op: op, Kind: kind, Err: err}
}

// KindOf returns the stable code for err.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrOutOfRangeScore):
		return CodeOutOfRangeScore
	case errors.Is(err, ErrIncompleteGrades):
		return CodeIncompleteGrades
	default:
		return codeUnknown
	}
}
