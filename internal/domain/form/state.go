// Package form models the screening form interaction: field edits, submit
// enablement, validation, the simulated loading delay and the error display
// that clears itself.
package form

// State is the interaction state of a Form.
type State int

// Form states.
const (
	Idle State = iota
	Validating
	Computing
	ShowingResult
	ShowingError
)

var stateNames = [...]string{ //nolint:gochecknoglobals // read-only names
	Idle:          "idle",
	Validating:    "validating",
	Computing:     "computing",
	ShowingResult: "showing_result",
	ShowingError:  "showing_error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Field identifies a form field for error decoration.
type Field string

// FieldExam is the exam score field. Grade slots are named by GradeField.
const FieldExam Field = "exam_score"

// GradeField returns the field name of grade slot i (zero based).
func GradeField(i int) Field {
	return Field("grade_" + string(rune('1'+i)))
}
