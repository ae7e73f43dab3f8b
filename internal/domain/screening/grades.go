// Package screening computes admission screening scores from an entrance-exam
// score and five secondary-school grades.
package screening

// Grade is a secondary-school grade label such as "A1" or "F9".
type Grade string

// Grade labels accepted by the calculator.
const (
	A1 Grade = "A1"
	B2 Grade = "B2"
	B3 Grade = "B3"
	C4 Grade = "C4"
	C5 Grade = "C5"
	C6 Grade = "C6"
	D7 Grade = "D7"
	E8 Grade = "E8"
	F9 Grade = "F9"
)

// GradeEntry pairs a grade label with its point value.
type GradeEntry struct {
	Grade  Grade `json:"grade"`
	Points int   `json:"points"`
}

// gradeTable is ordered from the best grade to the worst. It is never mutated.
var gradeTable = [...]GradeEntry{ //nolint:gochecknoglobals // immutable lookup table
	{A1, 8}, {B2, 7}, {B3, 6}, {C4, 5}, {C5, 4}, {C6, 3}, {D7, 2}, {E8, 1}, {F9, 0},
}

// Points returns the point value of g. Unknown labels are worth 0.
func Points(g Grade) int {
	p, _ := lookup(g)
	return p
}

// Known reports whether g is one of the nine grade labels.
func Known(g Grade) bool {
	_, ok := lookup(g)
	return ok
}

// Table returns a copy of the grade table, best grade first.
func Table() []GradeEntry {
	out := make([]GradeEntry, len(gradeTable))
	copy(out, gradeTable[:])
	return out
}

// Labels returns the grade labels, best grade first.
func Labels() []Grade {
	out := make([]Grade, len(gradeTable))
	for i, e := range gradeTable {
		out[i] = e.Grade
	}
	return out
}

func lookup(g Grade) (int, bool) {
	for _, e := range gradeTable {
		if e.Grade == g {
			return e.Points, true
		}
	}
	return 0, false
}
