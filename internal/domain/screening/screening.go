package screening

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Scoring constants.
const (
	MaxExamScore     = 400
	ExamWeight       = 60
	RequiredSubjects = 5
)

// RawInput is the unvalidated input received from a presentation surface.
type RawInput struct {
	ExamScore string   `json:"exam_score"`
	Grades    []string `json:"grades"`
}

// Input is a validated screening input.
type Input struct {
	ExamScore int
	Grades    [RequiredSubjects]Grade
}

// Result is a computed screening score.
type Result struct {
	ExamScore      int     `json:"exam_score"`
	ExamPercentage float64 `json:"exam_percentage"`
	GradePoints    int     `json:"grade_points"`
	Total          float64 `json:"total"`
}

// ValidateExamScore parses raw as an integer exam score in [0, MaxExamScore].
func ValidateExamScore(raw string) (int, error) {
	const op = "screening.validate_exam_score"
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, newInputError(op, ErrOutOfRangeScore, errors.New("missing exam score"))
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, newInputError(op, ErrOutOfRangeScore, err)
	}
	if v < 0 || v > MaxExamScore {
		return 0, newInputError(op, ErrOutOfRangeScore, fmt.Errorf("%d not in [0, %d]", v, MaxExamScore))
	}
	return v, nil
}

// ValidateGradeSelection checks that exactly RequiredSubjects grades are
// selected. An empty or unrecognised label counts as an unset slot.
func ValidateGradeSelection(grades []Grade) error {
	const op = "screening.validate_grades"
	if len(grades) != RequiredSubjects {
		return newInputError(op, ErrIncompleteGrades, fmt.Errorf("got %d grades, want %d", len(grades), RequiredSubjects))
	}
	if missing := MissingSlots(grades); len(missing) > 0 {
		return newInputError(op, ErrIncompleteGrades, fmt.Errorf("%d slot(s) unset", len(missing)))
	}
	return nil
}

// MissingSlots returns the indexes of grade slots that are not set to a known
// label.
func MissingSlots(grades []Grade) []int {
	var missing []int
	for i, g := range grades {
		if !Known(Grade(strings.TrimSpace(string(g)))) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Validate checks the exam score first and the grades second.
func Validate(raw RawInput) (Input, error) {
	score, err := ValidateExamScore(raw.ExamScore)
	if err != nil {
		return Input{}, err
	}
	grades := make([]Grade, len(raw.Grades))
	for i, g := range raw.Grades {
		grades[i] = Grade(strings.TrimSpace(g))
	}
	if err := ValidateGradeSelection(grades); err != nil {
		return Input{}, err
	}
	in := Input{ExamScore: score}
	copy(in.Grades[:], grades)
	return in, nil
}

// Compute returns the composite score for in. It is pure.
func Compute(in Input) Result {
	pct := float64(in.ExamScore*ExamWeight) / MaxExamScore
	points := 0
	for _, g := range in.Grades {
		points += Points(g)
	}
	return Result{
		ExamScore:      in.ExamScore,
		ExamPercentage: pct,
		GradePoints:    points,
		Total:          pct + float64(points),
	}
}

// Calculate validates raw and computes its score.
func Calculate(raw RawInput) (Result, error) {
	in, err := Validate(raw)
	if err != nil {
		return Result{}, err
	}
	return Compute(in), nil
}

// FormatResult renders r for display.
func FormatResult(r Result) string {
	return fmt.Sprintf("Your UNIOSUN Screening Score: %.2f%%\nJAMB: %d/%d (%.1f%%) + O'Level: %d points",
		r.Total, r.ExamScore, MaxExamScore, r.ExamPercentage, r.GradePoints)
}

// FormatError returns the user-facing message for err.
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrOutOfRangeScore):
		return MessageOutOfRangeScore
	case errors.Is(err, ErrIncompleteGrades):
		return MessageIncompleteGrades
	default:
		return messageUnexpected
	}
}
